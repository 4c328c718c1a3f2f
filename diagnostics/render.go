// Package diagnostics draws per-fold diagnostic panels with gonum/plot.
//
// Panels are laid out in a grid with one row per fold and one column per
// variant. Each panel shows the scored observations as points and the model
// predictions as a line through them, titled "<Title> (Fold i)".
package diagnostics

import (
	"image/color"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/YuminosukeSato/unifit/evaluation"
	"github.com/YuminosukeSato/unifit/pkg/errors"
	"github.com/YuminosukeSato/unifit/pkg/log"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Formats supported by Render, keyed by file extension.
var Formats = []string{"png", "svg", "pdf", "jpg", "tif", "eps"}

// Renderer draws Diagnostics.
type Renderer struct {
	PanelWidth  vg.Length
	PanelHeight vg.Length
	PointRadius vg.Length
	LineColor   color.Color

	logger log.Logger
}

// Option configures a Renderer
type Option func(*Renderer)

// WithPanelSize sets the size of one panel.
func WithPanelSize(w, h vg.Length) Option {
	return func(r *Renderer) {
		r.PanelWidth = w
		r.PanelHeight = h
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(r *Renderer) {
		r.logger = l
	}
}

// NewRenderer returns a renderer with 4x3 inch panels.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		PanelWidth:  4 * vg.Inch,
		PanelHeight: 3 * vg.Inch,
		PointRadius: vg.Points(2),
		LineColor:   plotutil.Color(0),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.GetLogger()
	}
	return r
}

// Panel builds the plot for one diagnostic.
func (r *Renderer) Panel(d evaluation.Diagnostic) (*plot.Plot, error) {
	if len(d.X) != len(d.Y) || len(d.X) != len(d.Predicted) {
		return nil, errors.NewDimensionError("diagnostics.Panel", len(d.X), len(d.Predicted), 0)
	}
	p := plot.New()
	p.Title.Text = d.PanelTitle()
	p.Title.TextStyle.Font.Size = vg.Points(10)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	if len(d.X) == 0 {
		return p, nil
	}

	obs := make(plotter.XYs, len(d.X))
	for i := range d.X {
		obs[i].X = d.X[i]
		obs[i].Y = d.Y[i]
	}
	scatter, err := plotter.NewScatter(obs)
	if err != nil {
		return nil, errors.Wrap(err, "diagnostics: scatter")
	}
	scatter.GlyphStyle.Radius = r.PointRadius
	scatter.GlyphStyle.Color = color.Gray{Y: 90}

	line, err := plotter.NewLine(fittedLine(d.X, d.Predicted))
	if err != nil {
		return nil, errors.Wrap(err, "diagnostics: line")
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = r.LineColor

	p.Add(scatter, line)
	return p, nil
}

// fittedLine pairs x with the predictions, ordered by x.
func fittedLine(x, pred []float64) plotter.XYs {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })
	xys := make(plotter.XYs, len(idx))
	for i, j := range idx {
		xys[i].X = x[j]
		xys[i].Y = pred[j]
	}
	return xys
}

// Grid builds the panel grid: rows are folds, columns are variants, both in
// the order they appear in diags. Missing cells get an empty panel.
func (r *Renderer) Grid(diags evaluation.Diagnostics) ([][]*plot.Plot, error) {
	if len(diags) == 0 {
		return nil, errors.NewValueError("diagnostics.Grid", "no diagnostics to render")
	}
	folds := diags.Folds()
	variants := diags.Variants()

	plots := make([][]*plot.Plot, len(folds))
	for i, fold := range folds {
		plots[i] = make([]*plot.Plot, len(variants))
		for j, name := range variants {
			d, ok := diags.Get(fold, name)
			if !ok {
				plots[i][j] = plot.New()
				continue
			}
			p, err := r.Panel(d)
			if err != nil {
				return nil, errors.Wrapf(err, "panel %q fold %d", name, fold)
			}
			plots[i][j] = p
		}
	}
	return plots, nil
}

// Render draws the grid and writes it to w in the given format
// (one of Formats).
func (r *Renderer) Render(diags evaluation.Diagnostics, w io.Writer, format string) error {
	plots, err := r.Grid(diags)
	if err != nil {
		return err
	}
	rows, cols := len(plots), len(plots[0])

	c, err := draw.NewFormattedCanvas(vg.Length(cols)*r.PanelWidth, vg.Length(rows)*r.PanelHeight, strings.ToLower(format))
	if err != nil {
		return errors.NewValueError("diagnostics.Render", err.Error())
	}
	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter,
		PadTop:    vg.Points(2),
		PadBottom: vg.Points(2),
		PadLeft:   vg.Points(2),
		PadRight:  vg.Points(2),
	}
	canvases := plot.Align(plots, tiles, draw.New(c))
	for i := range plots {
		for j := range plots[i] {
			plots[i][j].Draw(canvases[i][j])
		}
	}

	if _, err := c.WriteTo(w); err != nil {
		return errors.Wrap(err, "diagnostics: write")
	}
	r.logger.Debug("diagnostics rendered",
		log.OperationKey, log.OperationRender,
		log.FoldsKey, rows,
		log.VariantsKey, cols,
	)
	return nil
}

// RenderFile renders to path, choosing the format from its extension.
func (r *Renderer) RenderFile(diags evaluation.Diagnostics, path string) (err error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if !supported(format) {
		return errors.NewConfigurationError("plot", "unsupported image format, use one of "+strings.Join(Formats, ", "), path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()
	return r.Render(diags, f, format)
}

func supported(format string) bool {
	if format == "jpeg" || format == "tiff" {
		return true
	}
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}
