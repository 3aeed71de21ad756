package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// Writer receives labelled derived quantities after a run: names[j] labels
// column j of every batch.
type Writer interface {
	Write(names []string, batches []*mat.Dense) error
}

// checkWidths rejects any batch whose width disagrees with the labels
func checkWidths(names []string, batches []*mat.Dense) error {
	for b, m := range batches {
		if m == nil {
			continue
		}
		_, c := m.Dims()
		if c != len(names) {
			return fmt.Errorf("batch %d has %d columns for %d names", b, c, len(names))
		}
	}
	return nil
}

// CSVWriter writes one row per point, prefixed by batch and point index
type CSVWriter struct {
	w io.Writer
}

func NewCSVWriter(w io.Writer) *CSVWriter { return &CSVWriter{w: w} }

func (cw *CSVWriter) Write(names []string, batches []*mat.Dense) error {
	if err := checkWidths(names, batches); err != nil {
		return err
	}
	w := csv.NewWriter(cw.w)
	if err := w.Write(append([]string{"batch", "point"}, names...)); err != nil {
		return err
	}
	for b, m := range batches {
		if m == nil {
			continue
		}
		r, c := m.Dims()
		for i := 0; i < r; i++ {
			row := make([]string, 0, c+2)
			row = append(row, strconv.Itoa(b), strconv.Itoa(i))
			for j := 0; j < c; j++ {
				row = append(row, strconv.FormatFloat(m.At(i, j), 'g', -1, 64))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// Document is the YAML layout written by YAMLWriter
type Document struct {
	Fields  []string      `yaml:"fields"`
	Batches [][][]float64 `yaml:"batches"`
}

// YAMLWriter writes a single Document
type YAMLWriter struct {
	w io.Writer
}

func NewYAMLWriter(w io.Writer) *YAMLWriter { return &YAMLWriter{w: w} }

func (yw *YAMLWriter) Write(names []string, batches []*mat.Dense) error {
	if err := checkWidths(names, batches); err != nil {
		return err
	}
	doc := Document{Fields: names, Batches: make([][][]float64, len(batches))}
	for b, m := range batches {
		doc.Batches[b] = [][]float64{}
		if m == nil {
			continue
		}
		r, _ := m.Dims()
		for i := 0; i < r; i++ {
			doc.Batches[b] = append(doc.Batches[b], mat.Row(nil, i, m))
		}
	}
	enc := yaml.NewEncoder(yw.w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// New returns the writer for a format name
func New(format string, w io.Writer) (Writer, error) {
	switch format {
	case "csv", "":
		return NewCSVWriter(w), nil
	case "yaml", "yml":
		return NewYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
