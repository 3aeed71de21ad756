package evaluation

import (
	"context"
	"fmt"

	"github.com/notargets/DGPost/postprocess"
	"github.com/notargets/DGPost/writer"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

type dataEntry struct {
	src    Source
	pp     postprocess.Postprocessor
	labels []string
}

// DataOut collects (field, postprocessor) pairs over a common batch layout
// and builds a single labelled table per batch from all of them. The
// postprocessors are referenced, not owned, and must stay unchanged until
// Build returns.
type DataOut struct {
	engine  *Engine
	entries []dataEntry
}

func NewDataOut(engine *Engine) *DataOut {
	if engine == nil {
		engine = NewEngine()
	}
	return &DataOut{engine: engine}
}

// AddDataVector schedules src to be written through pp. The writer reserves
// one column per declared name, labelled by those names unless labels are
// given; labels must then cover exactly the declared outputs.
func (d *DataOut) AddDataVector(src Source, pp postprocess.Postprocessor, labels ...string) {
	d.entries = append(d.entries, dataEntry{src: src, pp: pp, labels: labels})
}

// Output is the merged result of a DataOut build
type Output struct {
	Names   []string
	Batches []*mat.Dense // [batch] of [M × len(Names)]
	Results []*Result    // per added data vector
}

// Write hands the labelled output to w
func (o *Output) Write(w writer.Writer) error {
	return w.Write(o.Names, o.Batches)
}

// Build binds every postprocessor and checks the writer's column allocation
// before any point is evaluated, then runs the entries in order and merges
// their columns batch by batch.
func (d *DataOut) Build(ctx context.Context) (out *Output, err error) {
	if len(d.entries) == 0 {
		return nil, fmt.Errorf("no data vectors added")
	}
	ctx, span := d.engine.tracer.Start(ctx, "evaluation.DataOut.Build")
	span.SetAttributes(attribute.Int("entries", len(d.entries)))
	defer span.End()

	out = &Output{}
	bindings := make([]*postprocess.Binding, len(d.entries))
	for i, en := range d.entries {
		b, err := postprocess.Bind(en.pp)
		if err != nil {
			return nil, fmt.Errorf("data vector %d (%s): %w", i, en.src.Name(), err)
		}
		columns := en.labels
		if columns == nil {
			columns = b.Names()
		}
		if err := b.CheckWidth(len(columns)); err != nil {
			return nil, fmt.Errorf("data vector %d (%s): %w", i, en.src.Name(), err)
		}
		bindings[i] = b
		out.Names = append(out.Names, columns...)
	}
	if err := d.checkLayout(); err != nil {
		return nil, err
	}

	for i, en := range d.entries {
		res, err := d.engine.run(ctx, en.src, bindings[i])
		if err != nil {
			return nil, fmt.Errorf("data vector %d: %w", i, err)
		}
		out.Results = append(out.Results, res)
	}
	out.Batches = merge(out.Results, d.entries[0].src.NumBatches())
	d.engine.logger.Info("Patches built",
		zap.Int("entries", len(d.entries)),
		zap.Strings("names", out.Names))
	return out, nil
}

// checkLayout requires every source to share batch count and batch sizes
func (d *DataOut) checkLayout() error {
	ref := d.entries[0].src
	for i, en := range d.entries[1:] {
		if en.src.NumBatches() != ref.NumBatches() {
			return fmt.Errorf("data vector %d (%s): %w", i+1, en.src.Name(),
				&postprocess.ContractError{Invariant: "batch count", Expected: ref.NumBatches(), Actual: en.src.NumBatches()})
		}
		for b := 0; b < ref.NumBatches(); b++ {
			if en.src.BatchLen(b) != ref.BatchLen(b) {
				return fmt.Errorf("data vector %d (%s), batch %d: %w", i+1, en.src.Name(), b,
					&postprocess.ContractError{Invariant: "batch length", Expected: ref.BatchLen(b), Actual: en.src.BatchLen(b)})
			}
		}
	}
	return nil
}

// merge concatenates the columns of every result for each batch
func merge(results []*Result, nb int) []*mat.Dense {
	batches := make([]*mat.Dense, nb)
	for b := 0; b < nb; b++ {
		for _, res := range results {
			part := res.Batches[b]
			if part == nil {
				continue
			}
			if batches[b] == nil {
				batches[b] = mat.DenseCopyOf(part)
				continue
			}
			var joined mat.Dense
			joined.Augment(batches[b], part)
			batches[b] = &joined
		}
	}
	return batches
}
