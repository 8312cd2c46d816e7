// Command apm-request performs one traced HTTP request and ships its
// span to the configured collector.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/getsentry/sentry-go"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stripe/apm/config"
	"github.com/stripe/apm/contrib/nethttp"
	restytrace "github.com/stripe/apm/contrib/resty"
	"github.com/stripe/apm/intercept"
	"github.com/stripe/apm/internal/build"
	"github.com/stripe/apm/internal/sentryhook"
	"github.com/stripe/apm/trace"
)

var (
	configFile     = flag.String("f", "", "The config file to read for settings. Without one, settings come from the environment.")
	validateConfig = flag.Bool("validate-config", false, "Validate the config file, then immediately exit.")
	printSecrets   = flag.Bool("print-secrets", false, "Disables redacting config secrets.")
	targetURL      = flag.String("url", "", "The URL to request.")
	method         = flag.String("method", http.MethodGet, "The HTTP method of the request.")
	clientKind     = flag.String("client", "net", "The HTTP client to use: net or resty.")
	timeout        = flag.Duration("timeout", 30*time.Second, "The request timeout.")
	statsdAddress  = flag.String("statsd-address", "", "A statsd address to report trace client metrics to.")
	printVersion   = flag.Bool("version", false, "Print the version and exit.")
)

func main() {
	flag.Parse()
	if *printVersion {
		fmt.Println(build.String())
		os.Exit(0)
	}
	config.PrintSecrets = *printSecrets

	conf, err := loadConfig(*configFile)
	if err != nil {
		logrus.WithError(err).Fatal("Error reading config file")
	}
	if *validateConfig {
		os.Exit(0)
	}
	if *targetURL == "" {
		logrus.Fatal("You must specify a URL")
	}
	if conf.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	hostname, _ := os.Hostname()
	var hub *sentry.Hub
	if conf.SentryDsn.Value != "" {
		client, err := sentry.NewClient(sentry.ClientOptions{
			Dsn:        conf.SentryDsn.Value,
			ServerName: hostname,
			Release:    build.VERSION,
		})
		if err != nil {
			logrus.WithError(err).Error("Error initializing Sentry client")
		} else {
			hook := sentryhook.New(client, hostname)
			logrus.AddHook(hook)
			hub = hook.Hub()
		}
	}
	defer func() {
		sentryhook.ConsumePanic(hub, hostname, recover())
	}()

	log := logrus.WithFields(logrus.Fields{
		"service":   conf.Service,
		"collector": conf.CollectorAddress,
		"version":   build.VERSION,
	})
	log.WithField("sentry_dsn", conf.SentryDsn.String()).Debug("Loaded config")

	client, err := newTraceClient(conf, log)
	if err != nil {
		log.WithError(err).Fatal("Could not create trace client")
	}
	tracer := trace.NewTracer(
		trace.WithClient(client),
		trace.WithServiceName(conf.Service),
		trace.WithLogger(log))
	registry := config.NewRegistry(tracer)
	if err := registry.Configure(conf); err != nil {
		log.WithError(err).Fatal("Invalid integration settings")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	status, err := request(ctx, tracer, registry, log)

	if ferr := trace.Flush(client); ferr != nil {
		log.WithError(ferr).Warn("Could not flush spans")
	}
	if cerr := client.Close(); cerr != nil {
		log.WithError(cerr).Warn("Could not close trace client")
	}
	if err != nil {
		log.WithError(err).Error("Request failed")
		if hub != nil {
			hub.Flush(sentryhook.FlushTimeout)
		}
		os.Exit(1)
	}
	fmt.Println(status)
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.ReadEnvironment()
	}
	return config.Read(path)
}

func newTraceClient(conf config.Config, log *logrus.Entry) (*trace.Client, error) {
	interval, err := conf.ParseFlushInterval()
	if err != nil {
		return nil, errors.Wrap(err, "parsing flush interval")
	}
	opts := []trace.ClientParam{
		trace.Capacity(conf.Capacity),
		trace.FlushInterval(interval),
		trace.Logger(log),
	}
	if conf.Buffered {
		opts = append(opts, trace.Buffered)
	}
	if *statsdAddress != "" {
		stats, err := statsd.New(*statsdAddress, statsd.WithNamespace("apm."))
		if err != nil {
			return nil, errors.Wrap(err, "creating statsd client")
		}
		opts = append(opts, trace.Statsd(stats, "service:"+conf.Service))
	}
	return trace.NewClient(conf.CollectorAddress, opts...)
}

// request performs the request inside a root span, through the
// integration selected with -client, and returns the response status.
func request(ctx context.Context, tracer *trace.Tracer, registry *config.Registry, log *logrus.Entry) (string, error) {
	root, ctx := tracer.StartSpanFromContext(ctx, "apm_request.run",
		trace.Resource(*method+" "+*targetURL))
	defer root.Finish()

	switch *clientKind {
	case "net":
		client := nethttp.WrapClient(&http.Client{Timeout: *timeout},
			registry.Handle(nethttp.IntegrationName), intercept.WithLogger(log))
		req, err := http.NewRequestWithContext(ctx, *method, *targetURL, nil)
		if err != nil {
			root.SetError(err)
			return "", err
		}
		resp, err := client.Do(req)
		if err != nil {
			root.SetError(err)
			return "", err
		}
		defer resp.Body.Close()
		return resp.Status, nil
	case "resty":
		exec := restytrace.NewExecutor(resty.New().SetTimeout(*timeout), registry.Handle(restytrace.IntegrationName), intercept.WithLogger(log))
		req := exec.R().SetContext(ctx)
		resp, err := exec.Execute(req, *method, *targetURL)
		if err != nil {
			root.SetError(err)
			return "", err
		}
		return resp.Status(), nil
	}
	err := errors.Errorf("unknown client %q", *clientKind)
	root.SetError(err)
	return "", err
}
