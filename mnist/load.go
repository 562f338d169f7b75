package mnist

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gorgonia.org/tensor"

	dlfs "github.com/LdDl/dlfs-go"
)

// Load Fetches missing resources and parses all four of them into Dataset with elements of type T.
// Pixels keep their raw [0; 255] range, see Dataset.Normalize.
//
// Failures are never retried. Error matches ErrDatasetUnavailable when a resource could not be
// cached; otherwise it is a *ResourceError of kind ErrFilesystem, ErrDecompression or ErrFormat.
func Load[T dlfs.Float](ctx context.Context, l *Loader) (*Dataset[T], error) {
	if err := l.Fetch(ctx); err != nil {
		return nil, err
	}
	var parsed [len(Resources)]*tensor.Dense
	var g errgroup.Group
	for i, r := range Resources {
		i, r := i, r
		g.Go(func() error {
			m, err := readResource[T](l.Path(r), r, l.cfg.Strict)
			if err != nil {
				return err
			}
			parsed[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewDataset[T](parsed[TrainImages], parsed[TrainLabels], parsed[TestImages], parsed[TestLabels])
}

// LoadDefault Same as Load with DefaultConfig
func LoadDefault[T dlfs.Float](ctx context.Context) (*Dataset[T], error) {
	l, err := NewLoader(DefaultConfig())
	if err != nil {
		return nil, err
	}
	return Load[T](ctx, l)
}

// readResource Decompresses and parses single cached file into matrix
func readResource[T dlfs.Float](path string, r Resource, strict bool) (*tensor.Dense, error) {
	payload, err := decompress(path, r)
	if err != nil {
		return nil, err
	}
	if r.isImages() {
		return imagesMatrix[T](payload, r, strict)
	}
	return labelsMatrix[T](payload, r, strict)
}

func imagesMatrix[T dlfs.Float](payload []byte, r Resource, strict bool) (*tensor.Dense, error) {
	pixels, n, err := parseImages(payload)
	if err != nil {
		return nil, resourceErr(r, ErrFormat, err)
	}
	if err := checkRecords(r, n, strict); err != nil {
		return nil, err
	}
	data := make([]T, len(pixels))
	for i, p := range pixels {
		data[i] = T(p)
	}
	m, err := dlfs.NewMatrix(n, ImageSize, data)
	if err != nil {
		return nil, resourceErr(r, ErrFormat, err)
	}
	return m, nil
}

func labelsMatrix[T dlfs.Float](payload []byte, r Resource, strict bool) (*tensor.Dense, error) {
	labels, err := parseLabels(payload)
	if err != nil {
		return nil, resourceErr(r, ErrFormat, err)
	}
	if err := checkRecords(r, len(labels), strict); err != nil {
		return nil, err
	}
	m, err := dlfs.OneHotEncode[T](labels, NumClasses)
	if err != nil {
		return nil, resourceErr(r, ErrFormat, err)
	}
	return m, nil
}

func checkRecords(r Resource, n int, strict bool) error {
	if strict && n != r.expectedRecords() {
		return resourceErr(r, ErrFormat, errors.Errorf("got %d records, want %d", n, r.expectedRecords()))
	}
	return nil
}
