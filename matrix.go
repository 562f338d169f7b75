package dlfs

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Float Element types a matrix may hold. Matches the float dtypes gorgonia's tensor package
// can back a Dense with.
type Float interface {
	float32 | float64
}

var (
	ErrShapeMismatch    = errors.New("shape mismatch")
	ErrDtypeMismatch    = errors.New("dtype mismatch")
	ErrNotMatrix        = errors.New("matrix must have exactly two dimensions")
	ErrUnsupportedDtype = errors.New("unsupported dtype: only Float32 and Float64 are handled")
	ErrInvalidLabel     = errors.New("label is out of class range")
	ErrView             = errors.New("in-place operation is not supported on views")
)

// NewMatrix Builds rows x cols dense matrix on top of provided row-major buffer.
// Buffer is not copied. Both dimensions must be positive.
func NewMatrix[T Float](rows, cols int, data []T) (*tensor.Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.Wrapf(ErrShapeMismatch, "Can't build (%d, %d) matrix: dimensions must be positive", rows, cols)
	}
	if rows*cols != len(data) {
		return nil, errors.Wrapf(ErrShapeMismatch, "Can't build (%d, %d) matrix from %d elements", rows, cols, len(data))
	}
	return tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(data)), nil
}

// DtypeOf Returns tensor.Dtype matching T
func DtypeOf[T Float]() tensor.Dtype {
	var zero T
	if _, ok := any(zero).(float32); ok {
		return tensor.Float32
	}
	return tensor.Float64
}

// values Returns flat row-major elements of m. For contiguous non-view dense the slice aliases
// m's backing array, so writes are visible through m.
func values[T Float](m *tensor.Dense) ([]T, error) {
	if m.Dtype() != DtypeOf[T]() {
		return nil, errors.Wrapf(ErrUnsupportedDtype, "Can't read %v elements as %v", m.Dtype(), DtypeOf[T]())
	}
	if err := checkNonEmpty(m); err != nil {
		return nil, err
	}
	src := m
	if m.IsMaterializable() {
		materialized, ok := m.Materialize().(*tensor.Dense)
		if !ok {
			return nil, errors.New("Can't materialize view")
		}
		src = materialized
	}
	switch data := src.Data().(type) {
	case []T:
		return data, nil
	case T:
		return []T{data}, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedDtype, "Can't read backing of type %T", data)
	}
}

// matrixDims Returns (rows, cols) of non-empty 2D dense
func matrixDims(m *tensor.Dense) (int, int, error) {
	if m.Dims() != 2 {
		return 0, 0, errors.Wrapf(ErrNotMatrix, "got shape %v", m.Shape())
	}
	if err := checkNonEmpty(m); err != nil {
		return 0, 0, err
	}
	shp := m.Shape()
	return shp[0], shp[1], nil
}

// checkNonEmpty Dense without elements has no backing to operate on
func checkNonEmpty(m *tensor.Dense) error {
	if m.Size() == 0 {
		return errors.Wrapf(ErrShapeMismatch, "matrix of shape %v has no elements", m.Shape())
	}
	return nil
}

func exp[T Float](x T) T {
	if v, ok := any(x).(float32); ok {
		return T(math32.Exp(v))
	}
	return T(math.Exp(float64(x)))
}

func log[T Float](x T) T {
	if v, ok := any(x).(float32); ok {
		return T(math32.Log(v))
	}
	return T(math.Log(float64(x)))
}

func tanh[T Float](x T) T {
	if v, ok := any(x).(float32); ok {
		return T(math32.Tanh(v))
	}
	return T(math.Tanh(float64(x)))
}
