package mnist

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	dlfs "github.com/LdDl/dlfs-go"
)

// Dataset MNIST split into train and test parts.
//
// Images are (samples, 784) matrices of pixel intensities, labels are (samples, 10) one-hot matrices.
// Dataset owns its matrices and never changes them after creation: callers must not modify matrices
// returned by accessors either. Normalize produces a new Dataset.
type Dataset[T dlfs.Float] struct {
	trainImages *tensor.Dense
	trainLabels *tensor.Dense
	testImages  *tensor.Dense
	testLabels  *tensor.Dense
}

// NewDataset Assembles dataset from already built matrices, checking their shapes agree.
// Every split must hold at least one sample.
func NewDataset[T dlfs.Float](trainImages, trainLabels, testImages, testLabels *tensor.Dense) (*Dataset[T], error) {
	if err := checkSplit[T](TrainImages, TrainLabels, trainImages, trainLabels); err != nil {
		return nil, err
	}
	if err := checkSplit[T](TestImages, TestLabels, testImages, testLabels); err != nil {
		return nil, err
	}
	return &Dataset[T]{
		trainImages: trainImages,
		trainLabels: trainLabels,
		testImages:  testImages,
		testLabels:  testLabels,
	}, nil
}

func checkSplit[T dlfs.Float](imagesRes, labelsRes Resource, images, labels *tensor.Dense) error {
	if images != nil && images.Dtype() != dlfs.DtypeOf[T]() {
		return resourceErr(imagesRes, ErrFormat, errors.Errorf("images are %v, want %v", images.Dtype(), dlfs.DtypeOf[T]()))
	}
	if labels != nil && labels.Dtype() != dlfs.DtypeOf[T]() {
		return resourceErr(labelsRes, ErrFormat, errors.Errorf("labels are %v, want %v", labels.Dtype(), dlfs.DtypeOf[T]()))
	}
	if images == nil || images.Dims() != 2 || images.Shape()[1] != ImageSize {
		return resourceErr(imagesRes, ErrFormat, errors.Errorf("images must be (N, %d) matrix", ImageSize))
	}
	if labels == nil || labels.Dims() != 2 || labels.Shape()[1] != NumClasses {
		return resourceErr(labelsRes, ErrFormat, errors.Errorf("labels must be (N, %d) matrix", NumClasses))
	}
	if images.Shape()[0] == 0 {
		return resourceErr(imagesRes, ErrFormat, errors.New("split holds no images"))
	}
	if images.Shape()[0] != labels.Shape()[0] {
		return resourceErr(labelsRes, ErrFormat, errors.Errorf("%d labels for %d images", labels.Shape()[0], images.Shape()[0]))
	}
	return nil
}

func (d *Dataset[T]) TrainImages() *tensor.Dense { return d.trainImages }
func (d *Dataset[T]) TrainLabels() *tensor.Dense { return d.trainLabels }
func (d *Dataset[T]) TestImages() *tensor.Dense  { return d.testImages }
func (d *Dataset[T]) TestLabels() *tensor.Dense  { return d.testLabels }

// Normalize Returns new Dataset with pixel intensities mapped from [0; 255] to [0; 1].
// Labels are copied unchanged. d itself is left untouched.
func (d *Dataset[T]) Normalize() (*Dataset[T], error) {
	trainImages, err := d.trainImages.DivScalar(T(255), true)
	if err != nil {
		return nil, errors.Wrap(err, "Can't normalize train images")
	}
	testImages, err := d.testImages.DivScalar(T(255), true)
	if err != nil {
		return nil, errors.Wrap(err, "Can't normalize test images")
	}
	return &Dataset[T]{
		trainImages: trainImages,
		trainLabels: d.trainLabels.Clone().(*tensor.Dense),
		testImages:  testImages,
		testLabels:  d.testLabels.Clone().(*tensor.Dense),
	}, nil
}
