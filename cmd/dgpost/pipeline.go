package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/notargets/DGPost/element"
	"github.com/notargets/DGPost/evaluation"
	"github.com/notargets/DGPost/internal/config"
	"github.com/notargets/DGPost/postprocess/library"
	"github.com/notargets/DGPost/writer"
	"go.uber.org/zap"
)

// buildField samples the configured analytic field on a fresh mesh
func buildField(cfg *config.Config) (*element.LineField, error) {
	lm, err := element.NewUniformLineMesh(cfg.Mesh.Order, cfg.Mesh.Elements, cfg.Mesh.XMin, cfg.Mesh.XMax)
	if err != nil {
		return nil, err
	}
	switch cfg.Field {
	case "sine":
		return element.NewLineField(cfg.Field, lm, cfg.Faces,
			lm.Interpolate(func(x float64) float64 { return math.Sin(2 * math.Pi * x) }))
	case "poly":
		return element.NewLineField(cfg.Field, lm, cfg.Faces,
			lm.Interpolate(func(x float64) float64 { return x*x*x - x }))
	case "wave":
		return element.NewLineField(cfg.Field, lm, cfg.Faces,
			lm.Interpolate(func(x float64) float64 { return math.Sin(2 * math.Pi * x) }),
			lm.Interpolate(func(x float64) float64 { return math.Cos(2 * math.Pi * x) }))
	default:
		return nil, fmt.Errorf("unknown field %q", cfg.Field)
	}
}

// postprocessField runs every configured postprocessor over the field
func postprocessField(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*evaluation.Output, error) {
	src, err := buildField(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("Mesh ready", zap.Stringer("mesh", src.Mesh()), zap.Bool("faces", src.OnFaces()))

	engine := evaluation.NewEngine(evaluation.WithWorkers(cfg.Workers), evaluation.WithLogger(logger))
	do := evaluation.NewDataOut(engine)
	for _, name := range cfg.Postprocessors {
		pp, err := library.Lookup(name, src.Dim(), src.NComponents())
		if err != nil {
			return nil, err
		}
		do.AddDataVector(src, pp)
	}
	return do.Build(ctx)
}

// column flattens one named output over all batches
func column(out *evaluation.Output, name string) ([]float64, error) {
	j := -1
	for i, n := range out.Names {
		if n == name {
			j = i
			break
		}
	}
	if j < 0 {
		return nil, fmt.Errorf("no output named %q in %v", name, out.Names)
	}
	var series []float64
	for _, m := range out.Batches {
		if m == nil {
			continue
		}
		r, _ := m.Dims()
		for i := 0; i < r; i++ {
			series = append(series, m.At(i, j))
		}
	}
	return series, nil
}

// writeOutput writes out in format to dst and closes it. A close failure is
// reported like a write failure since buffered data may be lost.
func writeOutput(out *evaluation.Output, format string, dst io.WriteCloser) (err error) {
	defer func() {
		err = errors.Join(err, dst.Close())
	}()
	w, err := writer.New(format, dst)
	if err != nil {
		return err
	}
	return out.Write(w)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
