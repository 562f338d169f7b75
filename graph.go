package dlfs

import (
	"strings"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// NodeActivationFunc Symbolic counterpart of ActivationFunc for gorgonia's expression graph
type NodeActivationFunc func(a *gorgonia.Node) (*gorgonia.Node, error)

func SigmoidNode(a *gorgonia.Node) (*gorgonia.Node, error) { return gorgonia.Sigmoid(a) }
func ReLUNode(a *gorgonia.Node) (*gorgonia.Node, error)    { return gorgonia.Rectify(a) }
func TanhNode(a *gorgonia.Node) (*gorgonia.Node, error)    { return gorgonia.Tanh(a) }

// SoftmaxNode Softmax along the last axis, so rows of a matrix are normalized independently (same as Softmax)
func SoftmaxNode(a *gorgonia.Node) (*gorgonia.Node, error) {
	return gorgonia.SoftMax(a, a.Dims()-1)
}

var nodeActivations = map[string]NodeActivationFunc{
	"sigmoid": SigmoidNode,
	"relu":    ReLUNode,
	"tanh":    TanhNode,
	"softmax": SoftmaxNode,
}

// NodeActivationByName Same as ActivationByName, but for graph nodes
func NodeActivationByName(name string) (NodeActivationFunc, error) {
	fn, ok := nodeActivations[strings.ToLower(name)]
	if !ok {
		return nil, errors.Errorf("Activation '%s' is not handled", name)
	}
	return fn, nil
}

// SumSquaredErrorNode Symbolic form of SumSquaredError: Σ(a - b)^2 / 2
func SumSquaredErrorNode(a, b *gorgonia.Node) (*gorgonia.Node, error) {
	if !a.Shape().Eq(b.Shape()) {
		return nil, errors.Wrapf(ErrShapeMismatch, "a has shape %v, b has shape %v", a.Shape(), b.Shape())
	}
	sub, err := gorgonia.Sub(a, b)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (A-B)")
	}
	sqr, err := gorgonia.Square(sub)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (x^2)")
	}
	sum, err := gorgonia.Sum(sqr)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do Σx")
	}
	half, err := halfScalar(a)
	if err != nil {
		return nil, err
	}
	return gorgonia.Mul(sum, half)
}

func halfScalar(like *gorgonia.Node) (*gorgonia.Node, error) {
	switch like.Dtype() {
	case tensor.Float64:
		return gorgonia.NewScalar(like.Graph(), tensor.Float64, gorgonia.WithValue(0.5)), nil
	case tensor.Float32:
		return gorgonia.NewScalar(like.Graph(), tensor.Float32, gorgonia.WithValue(float32(0.5))), nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedDtype, "Can't build scalar of %v", like.Dtype())
	}
}
