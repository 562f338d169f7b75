package dlfs

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// CrossEntropyZeroPenalty Contribution of a true-class entry whose predicted probability is exactly zero.
// Stands in for -ln(eps) so that a confident miss costs a large finite amount instead of +Inf.
const CrossEntropyZeroPenalty = 20

// SumSquaredError See ref. https://en.wikipedia.org/wiki/Residual_sum_of_squares
// Returns (Σ (p - l)^2) / 2 over every element of prediction and label.
// Both matrices must be non-empty with identical shape and dtype.
func SumSquaredError(prediction, label *tensor.Dense) (float64, error) {
	if err := checkPair(prediction, label); err != nil {
		return 0, errors.Wrap(err, "Can't do sum squared error")
	}
	switch prediction.Dtype() {
	case tensor.Float64:
		return sumSquaredError[float64](prediction, label)
	default:
		return sumSquaredError[float32](prediction, label)
	}
}

// CrossEntropyError See ref. https://en.wikipedia.org/wiki/Cross_entropy
// Only entries with nonzero label contribute: -ln(p), or CrossEntropyZeroPenalty when p == 0.
// Sum is averaged over rows, i.e. over samples of one-hot encoded label matrix.
// Both matrices must be non-empty 2D with identical shape and dtype.
func CrossEntropyError(prediction, label *tensor.Dense) (float64, error) {
	if err := checkPair(prediction, label); err != nil {
		return 0, errors.Wrap(err, "Can't do cross entropy error")
	}
	rows, _, err := matrixDims(prediction)
	if err != nil {
		return 0, errors.Wrap(err, "Can't do cross entropy error")
	}
	switch prediction.Dtype() {
	case tensor.Float64:
		return crossEntropyError[float64](prediction, label, rows)
	default:
		return crossEntropyError[float32](prediction, label, rows)
	}
}

func checkPair(prediction, label *tensor.Dense) error {
	if !prediction.Shape().Eq(label.Shape()) {
		return errors.Wrapf(ErrShapeMismatch, "prediction has shape %v, label has shape %v", prediction.Shape(), label.Shape())
	}
	if prediction.Dtype() != label.Dtype() {
		return errors.Wrapf(ErrDtypeMismatch, "prediction is %v, label is %v", prediction.Dtype(), label.Dtype())
	}
	if dt := prediction.Dtype(); dt != tensor.Float64 && dt != tensor.Float32 {
		return errors.Wrapf(ErrUnsupportedDtype, "got %v", dt)
	}
	return nil
}

func sumSquaredError[T Float](prediction, label *tensor.Dense) (float64, error) {
	p, l, err := pairValues[T](prediction, label)
	if err != nil {
		return 0, err
	}
	var acc T
	for i := range p {
		d := p[i] - l[i]
		acc += d * d
	}
	return float64(acc / 2), nil
}

func crossEntropyError[T Float](prediction, label *tensor.Dense, rows int) (float64, error) {
	p, l, err := pairValues[T](prediction, label)
	if err != nil {
		return 0, err
	}
	var acc T
	for i := range p {
		if l[i] == 0 {
			continue
		}
		if p[i] == 0 {
			acc += CrossEntropyZeroPenalty
			continue
		}
		acc += -log(p[i])
	}
	return float64(acc / T(rows)), nil
}

func pairValues[T Float](prediction, label *tensor.Dense) ([]T, []T, error) {
	p, err := values[T](prediction)
	if err != nil {
		return nil, nil, errors.Wrap(err, "Can't read prediction")
	}
	l, err := values[T](label)
	if err != nil {
		return nil, nil, errors.Wrap(err, "Can't read label")
	}
	return p, l, nil
}
