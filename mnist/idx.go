package mnist

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

// IDX file layout. All header fields are big-endian uint32.
//
// images: magic (2051), number of images, number of rows (28), number of cols (28), pixels
// labels: magic (2049), number of labels, labels
const (
	imagesMagic     = 0x00000803
	labelsMagic     = 0x00000801
	imagesHeaderLen = 16
	labelsHeaderLen = 8

	ImageRows  = 28
	ImageCols  = 28
	ImageSize  = ImageRows * ImageCols
	NumClasses = 10
)

// decompress Reads whole gzip stream of file at path into memory. File must hold exactly one gzip member.
func decompress(path string, r Resource) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, resourceErr(r, ErrFilesystem, errors.Wrap(err, "Can't open cached file"))
	}
	defer f.Close()
	br := bufio.NewReader(f)
	gz, err := gzip.NewReader(br)
	if err != nil {
		return nil, resourceErr(r, ErrDecompression, errors.Wrap(err, "Can't read gzip header"))
	}
	defer gz.Close()
	gz.Multistream(false)
	payload, err := io.ReadAll(gz)
	if err != nil {
		return nil, resourceErr(r, ErrDecompression, errors.Wrap(err, "Can't decompress"))
	}
	// bufio.Reader is a ByteReader, so gzip has not read past the end of its member
	switch _, err := br.Peek(1); err {
	case io.EOF:
	case nil:
		return nil, resourceErr(r, ErrDecompression, errors.New("unexpected data after gzip stream"))
	default:
		return nil, resourceErr(r, ErrFilesystem, errors.Wrap(err, "Can't read cached file"))
	}
	return payload, nil
}

// parseImages Validates IDX image payload and returns raw pixels with number of images.
// Number of images is derived from payload length, must agree with the header and be positive.
func parseImages(payload []byte) ([]byte, int, error) {
	if len(payload) < imagesHeaderLen {
		return nil, 0, errors.Errorf("payload of %d bytes is shorter than %d bytes header", len(payload), imagesHeaderLen)
	}
	if magic := binary.BigEndian.Uint32(payload[0:4]); magic != imagesMagic {
		return nil, 0, errors.Errorf("invalid magic number: got %d, want %d", magic, imagesMagic)
	}
	declared := int(binary.BigEndian.Uint32(payload[4:8]))
	rows := binary.BigEndian.Uint32(payload[8:12])
	cols := binary.BigEndian.Uint32(payload[12:16])
	if rows != ImageRows || cols != ImageCols {
		return nil, 0, errors.Errorf("images must be %dx%d, got %dx%d", ImageRows, ImageCols, rows, cols)
	}
	pixels := payload[imagesHeaderLen:]
	if len(pixels)%ImageSize != 0 {
		return nil, 0, errors.Errorf("%d bytes of pixels is not a whole number of %d bytes images", len(pixels), ImageSize)
	}
	n := len(pixels) / ImageSize
	if n == 0 {
		return nil, 0, errors.New("payload holds no images")
	}
	if n != declared {
		return nil, 0, errors.Errorf("header declares %d images, payload holds %d", declared, n)
	}
	return pixels, n, nil
}

// parseLabels Validates IDX label payload and returns labels. There must be at least one label and every label must be a digit.
func parseLabels(payload []byte) ([]byte, error) {
	if len(payload) < labelsHeaderLen {
		return nil, errors.Errorf("payload of %d bytes is shorter than %d bytes header", len(payload), labelsHeaderLen)
	}
	if magic := binary.BigEndian.Uint32(payload[0:4]); magic != labelsMagic {
		return nil, errors.Errorf("invalid magic number: got %d, want %d", magic, labelsMagic)
	}
	declared := int(binary.BigEndian.Uint32(payload[4:8]))
	labels := payload[labelsHeaderLen:]
	if len(labels) != declared {
		return nil, errors.Errorf("header declares %d labels, payload holds %d", declared, len(labels))
	}
	if len(labels) == 0 {
		return nil, errors.New("payload holds no labels")
	}
	for i, l := range labels {
		if l >= NumClasses {
			return nil, errors.Errorf("label #%d is %d, want [0; %d]", i, l, NumClasses-1)
		}
	}
	return labels, nil
}
