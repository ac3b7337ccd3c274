package tracing

import (
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Bootstrap installs the global tracer. A disabled tracer keeps the opentracing no-op tracer, the
// jaeger tracer is configured from the JAEGER_* environment.
func Bootstrap(serviceName string, enabled bool) (io.Closer, error) {
	if !enabled {
		logrus.Info("tracing disabled")
		return nopCloser{}, nil
	}
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		return nil, err
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = serviceName
	}
	tracer, closer, err := cfg.NewTracer(jaegercfg.Logger(jaeger.StdLogger))
	if err != nil {
		return nil, err
	}
	opentracing.SetGlobalTracer(tracer)
	logrus.WithField("serviceName", cfg.ServiceName).Info("jaeger tracer installed")
	return closer, nil
}
