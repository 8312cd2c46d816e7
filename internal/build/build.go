// Package build holds version information stamped in at link time:
//
//	go build -ldflags "-X github.com/stripe/apm/internal/build.VERSION=$(git rev-parse HEAD)"
package build

import "fmt"

const defaultValue = "dirty"

var (
	BUILD_DATE = defaultValue
	VERSION    = defaultValue
)

// String describes the build for -version output and error reports.
func String() string {
	return fmt.Sprintf("%s (built %s)", VERSION, BUILD_DATE)
}
