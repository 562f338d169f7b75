package mnist

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func idxImages(n int, fill func(img, px int) byte) []byte {
	buf := make([]byte, imagesHeaderLen+n*ImageSize)
	binary.BigEndian.PutUint32(buf[0:4], imagesMagic)
	binary.BigEndian.PutUint32(buf[4:8], uint32(n))
	binary.BigEndian.PutUint32(buf[8:12], ImageRows)
	binary.BigEndian.PutUint32(buf[12:16], ImageCols)
	for i := 0; i < n; i++ {
		for p := 0; p < ImageSize; p++ {
			buf[imagesHeaderLen+i*ImageSize+p] = fill(i, p)
		}
	}
	return buf
}

func idxLabels(labels ...byte) []byte {
	buf := make([]byte, labelsHeaderLen+len(labels))
	binary.BigEndian.PutUint32(buf[0:4], labelsMagic)
	binary.BigEndian.PutUint32(buf[4:8], uint32(len(labels)))
	copy(buf[labelsHeaderLen:], labels)
	return buf
}

func gzipped(t *testing.T, payload []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write(payload)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

// pixelPattern gives every image a distinct, deterministic content with both 0 and 255 present
func pixelPattern(img, px int) byte {
	switch px {
	case 0:
		return 0
	case 1:
		return 255
	}
	return byte((img*31 + px) % 256)
}

var (
	fixtureTrainLabels = []byte{5, 0, 4, 1, 9}
	fixtureTestLabels  = []byte{7, 2, 1}
)

// fixtureFiles Small but well formed dataset: 5 train and 3 test samples
func fixtureFiles(t *testing.T) map[string][]byte {
	t.Helper()
	return map[string][]byte{
		TrainImages.Filename(): gzipped(t, idxImages(len(fixtureTrainLabels), pixelPattern)),
		TrainLabels.Filename(): gzipped(t, idxLabels(fixtureTrainLabels...)),
		TestImages.Filename():  gzipped(t, idxImages(len(fixtureTestLabels), pixelPattern)),
		TestLabels.Filename():  gzipped(t, idxLabels(fixtureTestLabels...)),
	}
}

// origin In-process stand-in for the remote dataset location
type origin struct {
	*httptest.Server
	hits atomic.Int64

	mu     sync.Mutex
	files  map[string][]byte
	broken map[string]int
}

func newOrigin(t *testing.T, files map[string][]byte) *origin {
	t.Helper()
	o := &origin{files: files, broken: map[string]int{}}
	o.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		o.hits.Add(1)
		name := strings.TrimPrefix(r.URL.Path, "/mnist/")
		o.mu.Lock()
		status, isBroken := o.broken[name]
		body, ok := o.files[name]
		o.mu.Unlock()
		if isBroken {
			w.WriteHeader(status)
			return
		}
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(o.Close)
	return o
}

func (o *origin) breakFile(name string, status int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.broken[name] = status
}

func (o *origin) repairFile(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.broken, name)
}

func (o *origin) config(cacheDir string) Config {
	return Config{BaseURL: o.URL + "/mnist", CacheDir: cacheDir}
}

func newTestLoader(t *testing.T, cfg Config) *Loader {
	t.Helper()
	l, err := NewLoader(cfg)
	require.NoError(t, err)
	return l
}

// seedCache Puts files straight into cache directory so no download happens
func seedCache(t *testing.T, dir string, files map[string][]byte) {
	t.Helper()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), body, 0o644))
	}
}
