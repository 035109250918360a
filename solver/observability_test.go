// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package solver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

// TestSearchTracer_Disabled verifies the disabled tracer hands out noop
// spans and never panics.
func TestSearchTracer_Disabled(t *testing.T) {
	tracer := NewSearchTracer(quietLogger(), ObservabilityConfig{TracingEnabled: false})
	p := referenceProblem()

	ctx, span := tracer.StartRun(context.Background(), p, DefaultConfig())
	require.NotNil(t, span)
	assert.Equal(t, noop.Span{}, span)

	tracer.RecordNewBest(ctx, p.InitialState(), 3)
	tracer.EndRun(span, &Result{Steps: 1}, nil)
}

// TestSearchTracer_Enabled verifies the enabled tracer produces real
// spans and survives the full start/record/end cycle.
func TestSearchTracer_Enabled(t *testing.T) {
	tracer := NewSearchTracer(quietLogger(), ObservabilityConfig{TracingEnabled: true})
	p := referenceProblem()

	ctx, span := tracer.StartRun(context.Background(), p, Config{Fair: true})
	require.NotNil(t, span)

	tracer.RecordNewBest(ctx, p.InitialState(), 3)
	tracer.EndRun(span, &Result{Steps: 4, Exhausted: true}, nil)
}

// TestSearchTracer_EndRunError verifies error runs are recorded without
// panicking, including a nil result.
func TestSearchTracer_EndRunError(t *testing.T) {
	tracer := NewSearchTracer(nil, ObservabilityConfig{TracingEnabled: true})

	_, span := tracer.StartRun(context.Background(), referenceProblem(), DefaultConfig())
	tracer.EndRun(span, nil, errors.New("stopped early"))

	// A nil span is tolerated.
	tracer.EndRun(nil, nil, nil)
}

// TestEngineRun_WithObservability verifies a run wired with tracer and
// metrics completes normally.
func TestEngineRun_WithObservability(t *testing.T) {
	tracer := NewSearchTracer(quietLogger(), ObservabilityConfig{TracingEnabled: true})

	e, err := NewEngine(referenceProblem(), DefaultConfig(),
		WithLogger(quietLogger()), WithTracer(tracer))
	require.NoError(t, err)

	result, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Exhausted)
	assert.Equal(t, 9.0, result.Stats.BestProfit)
}
