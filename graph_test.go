package dlfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func TestNodeActivationsAgreeWithDense(t *testing.T) {
	for _, name := range []string{"sigmoid", "relu", "tanh", "softmax"} {
		t.Run(name, func(t *testing.T) {
			nodeFn, err := NodeActivationByName(name)
			require.NoError(t, err)
			denseFn, _, err := ActivationByName(name)
			require.NoError(t, err)

			g := gorgonia.NewGraph()
			x := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(2, 3), gorgonia.WithName("x"))
			y, err := nodeFn(x)
			require.NoError(t, err)

			input := sampleMatrix(t)
			require.NoError(t, gorgonia.Let(x, input))
			tm := gorgonia.NewTapeMachine(g)
			defer tm.Close()
			require.NoError(t, tm.RunAll())

			expected, err := denseFn(sampleMatrix(t))
			require.NoError(t, err)
			assert.InDeltaSlice(t, expected.Data(), y.Value().Data(), 1e-9)
		})
	}
}

func TestNodeActivationByNameUnknown(t *testing.T) {
	_, err := NodeActivationByName("gelu")
	assert.Error(t, err)
}

func TestSumSquaredErrorNode(t *testing.T) {
	g := gorgonia.NewGraph()
	a := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(2, 10), gorgonia.WithName("prediction"))
	b := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(2, 10), gorgonia.WithName("label"))
	cost, err := SumSquaredErrorNode(a, b)
	require.NoError(t, err)

	prediction, label := lossPair(t)
	require.NoError(t, gorgonia.Let(a, prediction))
	require.NoError(t, gorgonia.Let(b, label))
	tm := gorgonia.NewTapeMachine(g)
	defer tm.Close()
	require.NoError(t, tm.RunAll())

	assert.InDelta(t, 0.695, cost.Value().Data(), 1e-9)
}

func TestSumSquaredErrorNodeShapeMismatch(t *testing.T) {
	g := gorgonia.NewGraph()
	a := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(2, 10), gorgonia.WithName("a"))
	b := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(10, 2), gorgonia.WithName("b"))
	_, err := SumSquaredErrorNode(a, b)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
