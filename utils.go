package dlfs

import (
	"image/color"
	"math/rand"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gorgonia.org/tensor"
)

// NormRandDense Return reference to tensor.Dense filled with normally distributed values
//
// rows - number of rows
// cols - number of elements in each row
// rng - source of randomness. Pass seeded one to reproduce results
//
func NormRandDense[T Float](rows, cols int, rng *rand.Rand) *tensor.Dense {
	data := make([]T, rows*cols)
	for i := range data {
		data[i] = T(rng.NormFloat64())
	}
	return tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(data))
}

// OneHotEncode Expands each label into a row of length 'classes' with 1 at label's index and 0 elsewhere.
// Resulting matrix has shape (len(labels), classes), so both must be positive.
func OneHotEncode[T Float](labels []uint8, classes int) (*tensor.Dense, error) {
	if len(labels) == 0 || classes <= 0 {
		return nil, errors.Wrapf(ErrShapeMismatch, "Can't encode %d labels into %d classes", len(labels), classes)
	}
	data := make([]T, len(labels)*classes)
	for i, l := range labels {
		if int(l) >= classes {
			return nil, errors.Wrapf(ErrInvalidLabel, "label #%d is %d, but there are only %d classes", i, l, classes)
		}
		data[i*classes+int(l)] = 1
	}
	return NewMatrix(len(labels), classes, data)
}

// ClassCounts Counts how many rows of one-hot matrix belong to every class (column).
// Row's class is the index of its largest element.
func ClassCounts(labels *tensor.Dense) ([]int, error) {
	switch labels.Dtype() {
	case tensor.Float64:
		return classCounts[float64](labels)
	case tensor.Float32:
		return classCounts[float32](labels)
	default:
		return nil, errors.Wrapf(ErrUnsupportedDtype, "Can't count classes of %v", labels.Dtype())
	}
}

func classCounts[T Float](labels *tensor.Dense) ([]int, error) {
	rows, cols, err := matrixDims(labels)
	if err != nil {
		return nil, errors.Wrap(err, "Can't count classes")
	}
	data, err := values[T](labels)
	if err != nil {
		return nil, errors.Wrap(err, "Can't count classes")
	}
	counts := make([]int, cols)
	if cols == 0 {
		return counts, nil
	}
	for r := 0; r < rows; r++ {
		row := data[r*cols : (r+1)*cols]
		best := 0
		for c := 1; c < cols; c++ {
			if row[c] > row[best] {
				best = c
			}
		}
		counts[best]++
	}
	return counts, nil
}

// Rows Returns copy of rows [start; end) of matrix m. Range must hold at least one row.
func Rows(m *tensor.Dense, start, end int) (*tensor.Dense, error) {
	switch m.Dtype() {
	case tensor.Float64:
		return rowsCopy[float64](m, start, end)
	case tensor.Float32:
		return rowsCopy[float32](m, start, end)
	default:
		return nil, errors.Wrapf(ErrUnsupportedDtype, "Can't select rows of %v", m.Dtype())
	}
}

func rowsCopy[T Float](m *tensor.Dense, start, end int) (*tensor.Dense, error) {
	rows, cols, err := matrixDims(m)
	if err != nil {
		return nil, errors.Wrap(err, "Can't select rows")
	}
	if start < 0 || end > rows || start >= end {
		return nil, errors.Errorf("Can't select rows [%d; %d) of matrix with %d rows", start, end, rows)
	}
	data, err := values[T](m)
	if err != nil {
		return nil, errors.Wrap(err, "Can't select rows")
	}
	out := make([]T, (end-start)*cols)
	copy(out, data[start*cols:end*cols])
	return NewMatrix(end-start, cols, out)
}

// PlotLabelHistogram Plot bar chart of class distribution for one-hot label matrix
//
// labels - one-hot encoded labels, one row per sample
// fname - output file. Image format is picked by extension (.png, .svg, .pdf, ...)
//
func PlotLabelHistogram(labels *tensor.Dense, fname string) error {
	counts, err := ClassCounts(labels)
	if err != nil {
		return errors.Wrap(err, "Can't count classes")
	}
	vals := make(plotter.Values, len(counts))
	names := make([]string, len(counts))
	for i, c := range counts {
		vals[i] = float64(c)
		names[i] = strconv.Itoa(i)
	}
	bars, err := plotter.NewBarChart(vals, vg.Points(20))
	if err != nil {
		return errors.Wrap(err, "Can't init new bar chart")
	}
	bars.Color = color.RGBA{R: 255, B: 128, A: 255}
	p := plot.New()
	p.Title.Text = "Class distribution"
	p.X.Label.Text = "Class"
	p.Y.Label.Text = "Samples"
	p.Add(plotter.NewGrid())
	p.Add(bars)
	p.NominalX(names...)
	if err := p.Save(4*vg.Inch, 4*vg.Inch, fname); err != nil {
		return errors.Wrap(err, "Can't save plot")
	}
	return nil
}
