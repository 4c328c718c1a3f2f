package diagnostics

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/YuminosukeSato/unifit/evaluation"
	"github.com/YuminosukeSato/unifit/pkg/errors"
	"github.com/YuminosukeSato/unifit/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
)

func sampleDiagnostics() evaluation.Diagnostics {
	var diags evaluation.Diagnostics
	for fold := 1; fold <= 2; fold++ {
		for _, v := range []struct{ name, title string }{{"smooth", "Smooth"}, {"periodic", "Smooth + Periodic"}} {
			diags = append(diags, evaluation.Diagnostic{
				Fold:      fold,
				Variant:   v.name,
				Title:     v.title,
				X:         []float64{3, 1, 2, 0},
				Y:         []float64{3.2, 0.9, 2.1, 0.1},
				Predicted: []float64{3, 1, 2, 0},
			})
		}
	}
	return diags
}

func newTestRenderer() (*Renderer, *log.TestLogger) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	return NewRenderer(WithLogger(logger), WithPanelSize(2*vg.Inch, 1.5*vg.Inch)), logger
}

func TestFittedLineSortsByX(t *testing.T) {
	xys := fittedLine([]float64{3, 1, 2, 0}, []float64{30, 10, 20, 0})
	for i := range xys {
		assert.Equal(t, float64(i), xys[i].X)
		assert.Equal(t, float64(10*i), xys[i].Y)
	}
}

func TestPanel(t *testing.T) {
	r, _ := newTestRenderer()
	d := sampleDiagnostics()[1]

	p, err := r.Panel(d)
	require.NoError(t, err)
	assert.Equal(t, "Smooth + Periodic (Fold 1)", p.Title.Text)

	d.Predicted = d.Predicted[:2]
	_, err = r.Panel(d)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestGridLayout(t *testing.T) {
	r, _ := newTestRenderer()
	diags := sampleDiagnostics()[:3] // fold 2 lacks "periodic"

	plots, err := r.Grid(diags)
	require.NoError(t, err)
	require.Len(t, plots, 2)
	require.Len(t, plots[0], 2)
	assert.Equal(t, "Smooth (Fold 2)", plots[1][0].Title.Text)
	assert.Empty(t, plots[1][1].Title.Text)

	_, err = r.Grid(nil)
	assert.Error(t, err)
}

func TestRenderFormats(t *testing.T) {
	r, logger := newTestRenderer()
	diags := sampleDiagnostics()

	var png bytes.Buffer
	require.NoError(t, r.Render(diags, &png, "png"))
	assert.True(t, bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")))
	assert.True(t, logger.ContainsField(log.OperationKey, log.OperationRender))

	var svg bytes.Buffer
	require.NoError(t, r.Render(diags, &svg, "SVG"))
	assert.Contains(t, svg.String(), "<svg")
	assert.Contains(t, svg.String(), "Smooth (Fold 2)")

	assert.Error(t, r.Render(diags, &bytes.Buffer{}, "bmp"))
}

func TestRenderFile(t *testing.T) {
	r, _ := newTestRenderer()
	dir := t.TempDir()

	path := filepath.Join(dir, "folds.svg")
	require.NoError(t, r.RenderFile(sampleDiagnostics(), path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "<svg"))

	err = r.RenderFile(sampleDiagnostics(), filepath.Join(dir, "folds.gif"))
	var cfgErr *errors.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}
