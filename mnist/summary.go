package mnist

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
	"gorgonia.org/tensor"

	dlfs "github.com/LdDl/dlfs-go"
)

// SplitSummary Descriptive statistics of one split
type SplitSummary struct {
	Samples     int
	PixelMean   float64
	PixelStdDev float64
	ClassCounts []int
}

func (s SplitSummary) String() string {
	return fmt.Sprintf("samples=%d pixel_mean=%.4f pixel_std=%.4f classes=%v", s.Samples, s.PixelMean, s.PixelStdDev, s.ClassCounts)
}

// Summary Descriptive statistics of both splits
type Summary struct {
	Train SplitSummary
	Test  SplitSummary
}

// Summarize Computes pixel mean, population standard deviation and class distribution for both splits
func Summarize[T dlfs.Float](ds *Dataset[T]) (Summary, error) {
	train, err := summarizeSplit[T](ds.trainImages, ds.trainLabels)
	if err != nil {
		return Summary{}, errors.Wrap(err, "Can't summarize train split")
	}
	test, err := summarizeSplit[T](ds.testImages, ds.testLabels)
	if err != nil {
		return Summary{}, errors.Wrap(err, "Can't summarize test split")
	}
	return Summary{Train: train, Test: test}, nil
}

func summarizeSplit[T dlfs.Float](images, labels *tensor.Dense) (SplitSummary, error) {
	counts, err := dlfs.ClassCounts(labels)
	if err != nil {
		return SplitSummary{}, err
	}
	pixels, ok := images.Data().([]T)
	if !ok {
		return SplitSummary{}, errors.Errorf("Can't read images backing of type %T", images.Data())
	}
	samples := images.Shape()[0]
	// Images have equal size, so split statistics follow from per-image ones:
	// mean = E[mean_i], variance = E[var_i + mean_i^2] - mean^2
	means := make([]float64, samples)
	squares := make([]float64, samples)
	row := make([]float64, ImageSize)
	for i := 0; i < samples; i++ {
		for j, p := range pixels[i*ImageSize : (i+1)*ImageSize] {
			row[j] = float64(p)
		}
		mean, variance := stat.PopMeanVariance(row, nil)
		means[i] = mean
		squares[i] = variance + mean*mean
	}
	mean := stat.Mean(means, nil)
	variance := stat.Mean(squares, nil) - mean*mean
	return SplitSummary{
		Samples:     samples,
		PixelMean:   mean,
		PixelStdDev: math.Sqrt(math.Max(variance, 0)),
		ClassCounts: counts,
	}, nil
}
