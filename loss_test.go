package dlfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

var (
	labelF64 = []float64{
		0.0, 0.0, 1.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0,
		0.0, 0.0, 1.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0,
	}
	predictionF64 = []float64{
		0.1, 0.05, 0.6, 0.0, 0.05, 0.1, 0.0, 0.1, 0.0, 0.0,
		0.1, 0.05, 0.1, 0.0, 0.05, 0.1, 0.0, 0.6, 0.0, 0.0,
	}
)

func lossPair(t *testing.T) (*tensor.Dense, *tensor.Dense) {
	t.Helper()
	prediction, err := NewMatrix(2, 10, append([]float64(nil), predictionF64...))
	require.NoError(t, err)
	label, err := NewMatrix(2, 10, append([]float64(nil), labelF64...))
	require.NoError(t, err)
	return prediction, label
}

func TestSumSquaredError(t *testing.T) {
	prediction, label := lossPair(t)
	loss, err := SumSquaredError(prediction, label)
	require.NoError(t, err)
	assert.InDelta(t, 0.6950000000000001, loss, 1e-12)

	// inputs stay untouched
	assert.Equal(t, predictionF64, prediction.Data())
	assert.Equal(t, labelF64, label.Data())
}

func TestCrossEntropyError(t *testing.T) {
	prediction, label := lossPair(t)
	loss, err := CrossEntropyError(prediction, label)
	require.NoError(t, err)
	assert.InDelta(t, 1.4067053583800182, loss, 1e-12)
}

func TestLossFloat32(t *testing.T) {
	p32 := make([]float32, len(predictionF64))
	l32 := make([]float32, len(labelF64))
	for i := range p32 {
		p32[i] = float32(predictionF64[i])
		l32[i] = float32(labelF64[i])
	}
	prediction, err := NewMatrix(2, 10, p32)
	require.NoError(t, err)
	label, err := NewMatrix(2, 10, l32)
	require.NoError(t, err)

	sse, err := SumSquaredError(prediction, label)
	require.NoError(t, err)
	assert.InDelta(t, 0.695, sse, 1e-6)

	ce, err := CrossEntropyError(prediction, label)
	require.NoError(t, err)
	assert.InDelta(t, 1.40670536, ce, 1e-6)
}

func TestSumSquaredErrorOfIdentical(t *testing.T) {
	prediction, _ := lossPair(t)
	loss, err := SumSquaredError(prediction, prediction)
	require.NoError(t, err)
	assert.Zero(t, loss)
}

func TestCrossEntropyErrorOfPerfectPrediction(t *testing.T) {
	_, label := lossPair(t)
	loss, err := CrossEntropyError(label, label)
	require.NoError(t, err)
	assert.Zero(t, loss)
}

func TestCrossEntropyErrorZeroProbability(t *testing.T) {
	label, err := NewMatrix(1, 3, []float64{0, 1, 0})
	require.NoError(t, err)
	prediction, err := NewMatrix(1, 3, []float64{0.5, 0, 0.5})
	require.NoError(t, err)
	loss, err := CrossEntropyError(prediction, label)
	require.NoError(t, err)
	assert.Equal(t, float64(CrossEntropyZeroPenalty), loss)

	// second row is perfect, so the penalty is averaged over two samples
	label, err = NewMatrix(2, 3, []float64{0, 1, 0, 1, 0, 0})
	require.NoError(t, err)
	prediction, err = NewMatrix(2, 3, []float64{0.5, 0, 0.5, 1, 0, 0})
	require.NoError(t, err)
	loss, err = CrossEntropyError(prediction, label)
	require.NoError(t, err)
	assert.Equal(t, float64(CrossEntropyZeroPenalty)/2, loss)
}

func TestLossShapeMismatch(t *testing.T) {
	prediction, _ := lossPair(t)
	label, err := NewMatrix(10, 2, append([]float64(nil), labelF64...))
	require.NoError(t, err)

	_, err = SumSquaredError(prediction, label)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = CrossEntropyError(prediction, label)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestLossDtypeMismatch(t *testing.T) {
	prediction, _ := lossPair(t)
	label, err := NewMatrix(2, 10, make([]float32, 20))
	require.NoError(t, err)

	_, err = SumSquaredError(prediction, label)
	assert.ErrorIs(t, err, ErrDtypeMismatch)
	_, err = CrossEntropyError(prediction, label)
	assert.ErrorIs(t, err, ErrDtypeMismatch)
}

func TestLossRejectsEmptyMatrix(t *testing.T) {
	_, err := SumSquaredError(emptyMatrix(), emptyMatrix())
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = CrossEntropyError(emptyMatrix(), emptyMatrix())
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
