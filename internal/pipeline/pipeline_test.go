package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tjfontaine/numagg/internal/domain"
	"github.com/tjfontaine/numagg/internal/stats"
)

func newTestPipeline(t *testing.T, opts ...Option) (*Pipeline, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	opts = append([]Option{WithTracer(tp.Tracer("test"))}, opts...)
	return New(opts...), sr
}

func TestRun_Success(t *testing.T) {
	tests := []struct {
		kind domain.AggregationKind
		raw  string
		want float64
	}{
		{domain.AggregationMean, "1,-1,4,2", 1.5},
		{domain.AggregationMedian, "1,-1,4,2", 1.5},
		{domain.AggregationMedian, "1,-1,4", 1},
		{domain.AggregationMode, "1,1,1,2,2,3", 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.raw, func(t *testing.T) {
			p, _ := newTestPipeline(t)
			exec := p.Run(context.Background(), tt.kind, tt.raw)

			require.NotNil(t, exec.Envelope)
			require.True(t, exec.Envelope.OK())
			assert.Nil(t, exec.Err())
			assert.Equal(t, StateSuccess, exec.State)
			assert.Equal(t, []State{StateStart, StateParsing, StateAggregating, StateResponding, StateSuccess}, exec.Transitions)
			assert.Equal(t, tt.kind, exec.Envelope.Result.Operation)
			assert.Equal(t, tt.want, exec.Envelope.Result.Result)
		})
	}
}

func TestRun_ParseFailures(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind domain.ErrorKind
		wantMsg  string
	}{
		{"missing", "", domain.ErrorKindMissingInput, domain.MessageMissingInput},
		{"malformed", "1,2,x", domain.ErrorKindMalformedElement, "The value 'x' at index 2 is not a valid number."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPipeline(t)
			exec := p.Run(context.Background(), domain.AggregationMedian, tt.raw)

			require.NotNil(t, exec.Err())
			assert.Nil(t, exec.Envelope.Result)
			assert.Equal(t, tt.wantKind, exec.Err().Kind)
			assert.Equal(t, 400, exec.Err().Status)
			assert.Equal(t, tt.wantMsg, exec.Err().Message)
			assert.Equal(t, []State{StateStart, StateParsing, StateFailed}, exec.Transitions)
		})
	}
}

func TestRun_UnknownKind(t *testing.T) {
	p, _ := newTestPipeline(t)
	exec := p.Run(context.Background(), domain.AggregationKind("variance"), "1,2")

	require.NotNil(t, exec.Err())
	assert.Equal(t, domain.ErrorKindNotFound, exec.Err().Kind)
	assert.Equal(t, 404, exec.Err().Status)
	assert.Equal(t, []State{StateStart, StateFailed}, exec.Transitions)
}

func TestRun_CalculatorError(t *testing.T) {
	p, _ := newTestPipeline(t, WithCalculator(domain.AggregationMean, func(domain.NumberSequence) (float64, error) {
		return 0, errors.New("overflow")
	}))
	exec := p.Run(context.Background(), domain.AggregationMean, "1,2")

	require.NotNil(t, exec.Err())
	assert.Equal(t, domain.ErrorKindInternal, exec.Err().Kind)
	assert.Equal(t, 500, exec.Err().Status)
	assert.Equal(t, "overflow", exec.Err().Message)
	assert.Equal(t, StateFailed, exec.State)
}

func TestRun_PanicBecomesInternal(t *testing.T) {
	p, sr := newTestPipeline(t, WithCalculator(domain.AggregationMode, func(domain.NumberSequence) (float64, error) {
		panic("index out of range")
	}))

	var exec *Execution
	require.NotPanics(t, func() {
		exec = p.Run(context.Background(), domain.AggregationMode, "1,2,3")
	})

	require.NotNil(t, exec.Err())
	assert.Equal(t, domain.ErrorKindInternal, exec.Err().Kind)
	assert.Equal(t, "panic in aggregating stage: index out of range", exec.Err().Message)
	assert.Equal(t, []State{StateStart, StateParsing, StateAggregating, StateFailed}, exec.Transitions)

	var found bool
	for _, s := range sr.Ended() {
		if s.Name() == "pipeline.aggregating" {
			found = true
			assert.Equal(t, codes.Error, s.Status().Code)
		}
	}
	assert.True(t, found, "expected aggregating span")
}

func TestRun_Spans(t *testing.T) {
	p, sr := newTestPipeline(t)
	p.Run(context.Background(), domain.AggregationMean, "1,2,3")

	var names []string
	for _, s := range sr.Ended() {
		names = append(names, s.Name())
	}
	assert.ElementsMatch(t, []string{"pipeline.parsing", "pipeline.aggregating", "pipeline.run"}, names)
}

func TestRun_EmptySequenceIsClassified(t *testing.T) {
	// Parse never yields an empty sequence, so drop it inside the calculator.
	p, _ := newTestPipeline(t, WithCalculator(domain.AggregationMedian, func(domain.NumberSequence) (float64, error) {
		return stats.Median(nil)
	}))
	exec := p.Run(context.Background(), domain.AggregationMedian, "1")

	require.NotNil(t, exec.Err())
	assert.Equal(t, domain.ErrorKindMalformedElement, exec.Err().Kind)
	assert.Equal(t, "Cannot compute median of an empty sequence.", exec.Err().Message)
}

func TestRun_DoesNotShareState(t *testing.T) {
	p, _ := newTestPipeline(t)
	a := p.Run(context.Background(), domain.AggregationMedian, "3,1,2")
	b := p.Run(context.Background(), domain.AggregationMedian, "10,20")

	assert.Equal(t, domain.NumberSequence{3, 1, 2}, a.Sequence)
	assert.Equal(t, 2.0, a.Envelope.Result.Result)
	assert.Equal(t, 15.0, b.Envelope.Result.Result)
}
