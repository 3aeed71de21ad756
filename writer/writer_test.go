package writer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

func sampleBatches() []*mat.Dense {
	return []*mat.Dense{
		mat.NewDense(2, 2, []float64{1, 2, 3.5, -4}),
		nil,
		mat.NewDense(1, 2, []float64{0.25, 8}),
	}
}

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(&buf).Write([]string{"a", "b"}, sampleBatches()))
	want := strings.Join([]string{
		"batch,point,a,b",
		"0,0,1,2",
		"0,1,3.5,-4",
		"2,0,0.25,8",
		"",
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestYAMLWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLWriter(&buf).Write([]string{"a", "b"}, sampleBatches()))

	var doc Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	want := Document{
		Fields: []string{"a", "b"},
		Batches: [][][]float64{
			{{1, 2}, {3.5, -4}},
			{},
			{{0.25, 8}},
		},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("yaml mismatch (-want +got):\n%s", diff)
	}
}

func TestWriters_RejectWidthMismatch(t *testing.T) {
	for _, format := range []string{"csv", "yaml"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			w, err := New(format, &buf)
			require.NoError(t, err)
			err = w.Write([]string{"only"}, sampleBatches())
			assert.ErrorContains(t, err, "2 columns for 1 names")
			assert.Zero(t, buf.Len(), "nothing may be written on mismatch")
		})
	}
	_, err := New("vtk", nil)
	assert.Error(t, err)
}
