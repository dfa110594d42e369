package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tjfontaine/numagg/internal/codec"
	"github.com/tjfontaine/numagg/internal/domain"
	"github.com/tjfontaine/numagg/internal/numbers"
	"github.com/tjfontaine/numagg/internal/stats"
)

const tracerName = "github.com/tjfontaine/numagg/internal/pipeline"

// State is a step of a pipeline run.
type State string

const (
	StateStart       State = "start"
	StateParsing     State = "parsing"
	StateAggregating State = "aggregating"
	StateResponding  State = "responding"
	StateSuccess     State = "success"
	StateFailed      State = "failed"
)

// Execution holds everything produced by one run. It is owned by the caller
// once Run returns.
type Execution struct {
	Kind        domain.AggregationKind
	Raw         string
	State       State
	Transitions []State
	Sequence    domain.NumberSequence
	Value       float64
	Envelope    *domain.Envelope
}

// Err returns the classified failure of the run, or nil on success.
func (e *Execution) Err() *domain.PipelineError {
	if e.Envelope == nil {
		return nil
	}
	return e.Envelope.Error
}

// PanicError is returned by a stage that panicked.
type PanicError struct {
	Stage State
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s stage: %v", e.Stage, e.Value)
}

// Pipeline turns raw input into envelopes. It holds no per-request state and
// is safe for concurrent use.
type Pipeline struct {
	calculators map[domain.AggregationKind]stats.Calculator
	logger      *slog.Logger
	tracer      trace.Tracer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for state transitions and failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithTracer sets the tracer used for stage spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Pipeline) {
		p.tracer = tracer
	}
}

// WithCalculator overrides the calculator for kind.
func WithCalculator(kind domain.AggregationKind, calc stats.Calculator) Option {
	return func(p *Pipeline) {
		p.calculators[kind] = calc
	}
}

// New creates a pipeline with the mean, median and mode calculators.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		calculators: stats.Calculators(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.tracer == nil {
		p.tracer = otel.Tracer(tracerName)
	}
	return p
}

// Run executes one request. It never returns nil and never panics.
func (p *Pipeline) Run(ctx context.Context, kind domain.AggregationKind, raw string) *Execution {
	exec := &Execution{
		Kind:        kind,
		Raw:         raw,
		State:       StateStart,
		Transitions: []State{StateStart},
	}

	ctx, span := p.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.String("aggregation.kind", string(kind))))
	defer span.End()

	calc, ok := p.calculators[kind]
	if !ok {
		return p.fail(ctx, span, exec, domain.ErrNotFound())
	}

	if err := p.runStage(ctx, exec, StateParsing, p.parse); err != nil {
		return p.fail(ctx, span, exec, err)
	}

	err := p.runStage(ctx, exec, StateAggregating, func(ctx context.Context, exec *Execution) error {
		v, err := calc(exec.Sequence)
		if err != nil {
			return err
		}
		exec.Value = v
		return nil
	})
	if err != nil {
		return p.fail(ctx, span, exec, err)
	}

	p.transition(ctx, exec, StateResponding)
	exec.Envelope = domain.Success(kind, exec.Value)
	p.transition(ctx, exec, StateSuccess)

	span.SetAttributes(attribute.Float64("aggregation.result", exec.Value))
	return exec
}

func (p *Pipeline) parse(_ context.Context, exec *Execution) error {
	seq, err := numbers.Parse(exec.Raw)
	if err != nil {
		return err
	}
	exec.Sequence = seq
	return nil
}

// runStage moves exec into state and runs fn inside a span, converting a
// panic into a *PanicError.
func (p *Pipeline) runStage(ctx context.Context, exec *Execution, state State, fn func(context.Context, *Execution) error) (err error) {
	p.transition(ctx, exec, state)

	ctx, span := p.tracer.Start(ctx, "pipeline."+string(state))
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Stage: state, Value: r}
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("sequence.length", len(exec.Sequence)))
		}
		span.End()
	}()

	return fn(ctx, exec)
}

func (p *Pipeline) fail(ctx context.Context, span trace.Span, exec *Execution, err error) *Execution {
	perr := codec.ClassifyFor(exec.Kind, err)
	exec.Envelope = domain.Failure(perr)

	span.SetStatus(codes.Error, perr.Message)
	span.SetAttributes(attribute.String("error.kind", string(perr.Kind)))

	level := slog.LevelDebug
	if perr.Kind == domain.ErrorKindInternal {
		level = slog.LevelError
	}
	p.logger.LogAttrs(ctx, level, "pipeline failed",
		slog.String("operation", string(exec.Kind)),
		slog.String("stage", string(exec.State)),
		slog.String("error_kind", string(perr.Kind)),
		slog.String("error", err.Error()),
	)

	p.transition(ctx, exec, StateFailed)
	return exec
}

func (p *Pipeline) transition(ctx context.Context, exec *Execution, next State) {
	p.logger.LogAttrs(ctx, slog.LevelDebug, "pipeline transition",
		slog.String("operation", string(exec.Kind)),
		slog.String("from", string(exec.State)),
		slog.String("to", string(next)),
	)
	exec.State = next
	exec.Transitions = append(exec.Transitions, next)
}
