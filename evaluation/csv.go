package evaluation

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/unifit/pkg/errors"
)

// CSVOptions selects the input and target columns of a CSV file.
type CSVOptions struct {
	// XColumn and YColumn name the columns when the file has a header row.
	// Without a header the first two columns are used.
	XColumn string
	YColumn string

	// Comma is the field delimiter; ',' when zero.
	Comma rune
}

// DefaultCSVOptions reads columns "x" and "y".
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{XColumn: "x", YColumn: "y", Comma: ','}
}

// ReadCSV reads a Dataset from r. A first row whose cells are not all numeric
// is treated as a header. Blank lines are skipped.
func ReadCSV(r io.Reader, opts CSVOptions) (Dataset, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	cr.Comment = '#'

	xi, yi := 0, 1
	var ds Dataset
	for record := 1; ; record++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Dataset{}, errors.Wrap(err, "read csv")
		}
		if record == 1 && !numericRow(rec) {
			xi, yi, err = headerColumns(rec, opts)
			if err != nil {
				return Dataset{}, err
			}
			continue
		}
		// physical line, counting comments and blank lines
		line, _ := cr.FieldPos(0)
		if len(rec) <= xi || len(rec) <= yi {
			return Dataset{}, errors.NewValueError("ReadCSV", fmt.Sprintf("line %d: expected at least %d fields, got %d", line, max(xi, yi)+1, len(rec)))
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(rec[xi]), 64)
		if err != nil {
			return Dataset{}, errors.NewValueError("ReadCSV", fmt.Sprintf("line %d: x: %v", line, err))
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(rec[yi]), 64)
		if err != nil {
			return Dataset{}, errors.NewValueError("ReadCSV", fmt.Sprintf("line %d: y: %v", line, err))
		}
		ds.X = append(ds.X, x)
		ds.Y = append(ds.Y, y)
	}
	return ds, nil
}

// LoadCSV reads a Dataset from a file.
func LoadCSV(path string, opts CSVOptions) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return ReadCSV(f, opts)
}

func numericRow(rec []string) bool {
	for _, cell := range rec {
		if _, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err != nil {
			return false
		}
	}
	return true
}

func headerColumns(header []string, opts CSVOptions) (int, int, error) {
	xName, yName := opts.XColumn, opts.YColumn
	if xName == "" {
		xName = "x"
	}
	if yName == "" {
		yName = "y"
	}
	xi, yi := -1, -1
	for i, h := range header {
		switch {
		case strings.EqualFold(strings.TrimSpace(h), xName):
			xi = i
		case strings.EqualFold(strings.TrimSpace(h), yName):
			yi = i
		}
	}
	if xi < 0 {
		return 0, 0, errors.NewConfigurationError("x_column", "column not found in header", xName)
	}
	if yi < 0 {
		return 0, 0, errors.NewConfigurationError("y_column", "column not found in header", yName)
	}
	return xi, yi, nil
}
