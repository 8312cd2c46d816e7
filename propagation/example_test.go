package propagation_test

import (
	"fmt"
	"net/http"

	"github.com/stripe/apm/propagation"
	"github.com/stripe/apm/trace"
)

func ExampleInject() {
	span := trace.NewSpan(nil, "outgoing", trace.TraceID(1234))
	span.SpanID = 5678

	header := http.Header{}
	if err := propagation.Inject(span.Context(), header); err != nil {
		panic(err)
	}
	fmt.Println(header.Get("X-Datadog-Trace-Id"), header.Get("X-Datadog-Parent-Id"))
	// Output: 1234 5678
}
