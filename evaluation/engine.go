package evaluation

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/notargets/DGPost/postprocess"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

const tracerName = "github.com/notargets/DGPost/evaluation"

// Result holds the derived quantities of one run
type Result struct {
	Source  string
	Names   []string
	Batches []*mat.Dense // [batch] of [M × N], nil for empty batches
}

// Engine evaluates sources batch by batch and feeds them to postprocessors
type Engine struct {
	workers int
	logger  *zap.Logger
	tracer  trace.Tracer
}

type Option func(*Engine)

// WithWorkers bounds the number of batches evaluated concurrently
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		workers: runtime.GOMAXPROCS(0),
		logger:  zap.NewNop(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Workers() int { return e.workers }

// Run binds p, evaluates every batch of src with exactly the raw data p
// requests and returns the labelled results. Any contract violation aborts
// the whole run.
func (e *Engine) Run(ctx context.Context, src Source, p postprocess.Postprocessor) (*Result, error) {
	b, err := postprocess.Bind(p)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", src.Name(), err)
	}
	return e.run(ctx, src, b)
}

func (e *Engine) run(ctx context.Context, src Source, b *postprocess.Binding) (res *Result, err error) {
	ctx, span := e.tracer.Start(ctx, "evaluation.Run", trace.WithAttributes(
		attribute.String("source", src.Name()),
		attribute.Int("batches", src.NumBatches()),
		attribute.Int("outputs", b.NOutputVariables()),
		attribute.String("flags", b.Flags().String()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	arity, err := postprocess.ArityOf(src.NComponents())
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", src.Name(), err)
	}

	log := e.logger.With(
		zap.String("source", src.Name()),
		zap.Stringer("arity", arity),
		zap.Strings("names", b.Names()),
		zap.Stringer("flags", b.Flags()),
	)
	log.Info("Binding postprocessor", zap.Int("batches", src.NumBatches()), zap.Int("workers", e.workers))

	start := time.Now()
	res = &Result{
		Source:  src.Name(),
		Names:   b.Names(),
		Batches: make([]*mat.Dense, src.NumBatches()),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for batch := 0; batch < src.NumBatches(); batch++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := evaluateBatch(src, b, arity, batch)
			if err != nil {
				return fmt.Errorf("source %s, batch %d: %w", src.Name(), batch, err)
			}
			res.Batches[batch] = out
			log.Debug("Batch evaluated", zap.Int("batch", batch))
			return nil
		})
	}
	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	b.Retire()
	if err != nil {
		log.Error("Run aborted", zap.Error(err))
		return nil, err
	}
	log.Info("Run complete", zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

// evaluateBatch computes the raw data of one batch and dispatches it
func evaluateBatch(src Source, b *postprocess.Binding, arity postprocess.Arity, batch int) (*mat.Dense, error) {
	var (
		M   = src.BatchLen(batch)
		out = b.NewOutput(M)
		sc  *postprocess.ScalarInputs
		vc  *postprocess.VectorInputs
		err error
	)
	if out == nil {
		return nil, nil
	}
	if arity == postprocess.ScalarArity {
		sc, err = src.EvaluateScalar(batch, b.Flags())
	} else {
		vc, err = src.EvaluateVector(batch, b.Flags())
	}
	if err != nil {
		return nil, err
	}
	if err = b.Evaluate(arity, out, M, sc, vc); err != nil {
		return nil, err
	}
	return out, nil
}
