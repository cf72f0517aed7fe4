package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jingkaihe/findskill/pkg/config"
	"github.com/jingkaihe/findskill/pkg/telemetry"
	"github.com/jingkaihe/findskill/pkg/version"
)

// initTracing initializes the OpenTelemetry tracing system
func initTracing(ctx context.Context, cfg config.TracingConfig) (telemetry.ShutdownFunc, error) {
	return telemetry.InitTracer(ctx, telemetry.Config{
		Enabled:        cfg.Enabled,
		ServiceVersion: version.Get().Version,
		SamplerType:    cfg.Sampler,
		SamplerRatio:   cfg.Ratio,
	})
}

// withTracing runs fn inside a span describing the command invocation
func withTracing(ctx context.Context, cmd *cobra.Command, args []string, fn func(context.Context) error) error {
	attrs := []attribute.KeyValue{
		attribute.String("command.name", cmd.Name()),
		attribute.String("command.path", cmd.CommandPath()),
		attribute.Int("args.count", len(args)),
	}

	cmd.Flags().Visit(func(flag *pflag.Flag) {
		attrs = append(attrs, attribute.String("flag."+flag.Name, flag.Value.String()))
	})

	ctx, span := telemetry.StartSpan(ctx, "cli.command", attrs...)
	err := fn(ctx)
	telemetry.EndSpan(span, err)
	return err
}
