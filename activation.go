package dlfs

import (
	"strings"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// ActivationFunc Value-returning activation over a dense matrix. Input is never modified.
type ActivationFunc func(m *tensor.Dense) (*tensor.Dense, error)

// MutActivationFunc In-place activation over a dense matrix.
type MutActivationFunc func(m *tensor.Dense) error

var activations = map[string]struct {
	fn    ActivationFunc
	fnMut MutActivationFunc
}{
	"sigmoid": {Sigmoid, SigmoidMut},
	"relu":    {ReLU, ReLUMut},
	"tanh":    {Tanh, TanhMut},
	"softmax": {Softmax, SoftmaxMut},
}

// ActivationByName Returns value-returning and in-place forms of activation registered under name.
// Lookup is case-insensitive. Known names: sigmoid, relu, tanh, softmax.
func ActivationByName(name string) (ActivationFunc, MutActivationFunc, error) {
	a, ok := activations[strings.ToLower(name)]
	if !ok {
		return nil, nil, errors.Errorf("Activation '%s' is not handled", name)
	}
	return a.fn, a.fnMut, nil
}

// Sigmoid See ref. https://en.wikipedia.org/wiki/Sigmoid_function
// 1 / (1 + exp(-x)) applied to every element independently.
func Sigmoid(m *tensor.Dense) (*tensor.Dense, error) {
	return apply(m, false, sigmoid[float64], sigmoid[float32])
}

// SigmoidMut Same as Sigmoid, but overwrites m.
func SigmoidMut(m *tensor.Dense) error {
	_, err := apply(m, true, sigmoid[float64], sigmoid[float32])
	return err
}

// ReLU See ref. https://en.wikipedia.org/wiki/Rectifier_(neural_networks)
// max(x, 0) applied to every element independently.
func ReLU(m *tensor.Dense) (*tensor.Dense, error) {
	return apply(m, false, relu[float64], relu[float32])
}

// ReLUMut Same as ReLU, but overwrites m.
func ReLUMut(m *tensor.Dense) error {
	_, err := apply(m, true, relu[float64], relu[float32])
	return err
}

// Tanh Hyperbolic tangent applied to every element independently.
// Output is already bounded by (-1, 1), so no shifting is done.
func Tanh(m *tensor.Dense) (*tensor.Dense, error) {
	return apply(m, false, tanh[float64], tanh[float32])
}

// TanhMut Same as Tanh, but overwrites m.
func TanhMut(m *tensor.Dense) error {
	_, err := apply(m, true, tanh[float64], tanh[float32])
	return err
}

// Softmax See ref. https://en.wikipedia.org/wiki/Softmax_function
// Each row of m is treated as an independent distribution over its columns.
// Every row is shifted by its maximum before exponentiation, so large inputs do not overflow.
func Softmax(m *tensor.Dense) (*tensor.Dense, error) {
	switch m.Dtype() {
	case tensor.Float64:
		return softmax[float64](m)
	case tensor.Float32:
		return softmax[float32](m)
	default:
		return nil, errors.Wrapf(ErrUnsupportedDtype, "Can't do softmax over %v", m.Dtype())
	}
}

// SoftmaxMut Same as Softmax, but overwrites m. m must not be a view.
func SoftmaxMut(m *tensor.Dense) error {
	switch m.Dtype() {
	case tensor.Float64:
		return softmaxMut[float64](m)
	case tensor.Float32:
		return softmaxMut[float32](m)
	default:
		return errors.Wrapf(ErrUnsupportedDtype, "Can't do softmax over %v", m.Dtype())
	}
}

func sigmoid[T Float](x T) T {
	return 1 / (1 + exp(-x))
}

func relu[T Float](x T) T {
	if x > 0 {
		return x
	}
	return 0
}

// apply Runs elementwise fn over m picking the instantiation which matches m's dtype.
func apply(m *tensor.Dense, inPlace bool, f64 func(float64) float64, f32 func(float32) float32) (*tensor.Dense, error) {
	var fn interface{}
	switch m.Dtype() {
	case tensor.Float64:
		fn = f64
	case tensor.Float32:
		fn = f32
	default:
		return nil, errors.Wrapf(ErrUnsupportedDtype, "Can't map over %v", m.Dtype())
	}
	if err := checkNonEmpty(m); err != nil {
		return nil, errors.Wrap(err, "Can't apply elementwise function")
	}
	var opts []tensor.FuncOpt
	if inPlace {
		opts = append(opts, tensor.UseUnsafe())
	}
	res, err := m.Apply(fn, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "Can't apply elementwise function")
	}
	out, ok := res.(*tensor.Dense)
	if !ok {
		return nil, errors.Errorf("Can't cast result of type %T to *tensor.Dense", res)
	}
	return out, nil
}

func softmax[T Float](m *tensor.Dense) (*tensor.Dense, error) {
	rows, cols, err := matrixDims(m)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do softmax")
	}
	src, err := values[T](m)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do softmax")
	}
	dst := make([]T, len(src))
	softmaxRows(dst, src, rows, cols)
	return NewMatrix(rows, cols, dst)
}

func softmaxMut[T Float](m *tensor.Dense) error {
	rows, cols, err := matrixDims(m)
	if err != nil {
		return errors.Wrap(err, "Can't do softmax")
	}
	if m.IsMaterializable() {
		return errors.Wrap(ErrView, "Can't do softmax in-place")
	}
	data, err := values[T](m)
	if err != nil {
		return errors.Wrap(err, "Can't do softmax")
	}
	softmaxRows(data, data, rows, cols)
	if len(data) == 1 {
		// single element dense hands out a copy of its value instead of the backing slice
		m.Set(0, data[0])
	}
	return nil
}

// softmaxRows dst may alias src
func softmaxRows[T Float](dst, src []T, rows, cols int) {
	if cols == 0 {
		return
	}
	for r := 0; r < rows; r++ {
		in := src[r*cols : (r+1)*cols]
		out := dst[r*cols : (r+1)*cols]
		rowMax := in[0]
		for _, x := range in[1:] {
			if x > rowMax {
				rowMax = x
			}
		}
		var sum T
		for i, x := range in {
			e := exp(x - rowMax)
			out[i] = e
			sum += e
		}
		for i := range out {
			out[i] /= sum
		}
	}
}
