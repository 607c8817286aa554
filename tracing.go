// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package uplcdec

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/blinklabs-io/uplcdec"

func (d *Decompiler) setupTracing() error {
	var exporter sdktrace.SpanExporter
	var err error
	if d.config.tracingStdout {
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	} else {
		exporter, err = otlptracehttp.New(context.Background())
	}
	if err != nil {
		return fmt.Errorf("create trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(
			resource.NewSchemaless(
				attribute.String("service.name", "uplcdec"),
			),
		),
	)
	otel.SetTracerProvider(tp)
	d.shutdownFuncs = append(d.shutdownFuncs, tp.Shutdown)
	return nil
}

func (d *Decompiler) tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// stage runs one pipeline stage inside a span, checking for cancellation
// first and counting failures by stage
func (d *Decompiler) stage(
	ctx context.Context,
	name string,
	fn func(ctx context.Context) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, span := d.tracer().Start(ctx, "uplcdec."+name)
	defer span.End()
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.metrics.failure(name)
		return &StageError{Stage: name, Err: err}
	}
	return nil
}
