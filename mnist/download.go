package mnist

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Loader Downloads MNIST into local cache (once) and parses it
type Loader struct {
	cfg    Config
	client *http.Client
}

// NewLoader Validates cfg and returns loader using it
func NewLoader(cfg Config) (*Loader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "Can't create loader")
	}
	return &Loader{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Config Returns (validated) configuration of loader
func (l *Loader) Config() Config {
	return l.cfg
}

// Path Local cache path of r
func (l *Loader) Path(r Resource) string {
	return filepath.Join(l.cfg.CacheDir, r.Filename())
}

// State Reports whether r is already in local cache
func (l *Loader) State(r Resource) State {
	info, err := os.Stat(l.Path(r))
	if err != nil || !info.Mode().IsRegular() {
		return Missing
	}
	return Cached
}

// Fetch Makes sure every resource is cached, downloading missing ones concurrently.
// It waits for all started downloads to finish. Resources downloaded successfully stay cached
// even when another one fails, so calling Fetch again only retries what is still missing.
// Returned error matches ErrDatasetUnavailable and the kind of the first failure. Failure to create
// the cache directory is not tied to any resource, so it matches ErrFilesystem without a *ResourceError.
func (l *Loader) Fetch(ctx context.Context) error {
	var missing []Resource
	for _, r := range Resources {
		if l.State(r) == Missing {
			missing = append(missing, r)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	if err := os.MkdirAll(l.cfg.CacheDir, 0o755); err != nil {
		return fmt.Errorf("%w: %w: Can't create cache directory: %w", ErrDatasetUnavailable, ErrFilesystem, err)
	}
	var g errgroup.Group
	for _, r := range missing {
		r := r
		g.Go(func() error {
			return l.ensureCached(ctx, r)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %w", ErrDatasetUnavailable, err)
	}
	return nil
}

// ensureCached Moves r from Missing to Cached. Body is written to temporary file first and renamed
// into place after it has been fully received, so partially downloaded file is never seen as cached.
func (l *Loader) ensureCached(ctx context.Context, r Resource) error {
	if l.State(r) == Cached {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.cfg.url(r), nil)
	if err != nil {
		return resourceErr(r, ErrRetrieval, errors.Wrap(err, "Can't prepare request"))
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return resourceErr(r, ErrRetrieval, errors.Wrap(err, "Can't do request"))
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resourceErr(r, ErrRetrieval, errors.Errorf("GET %s: unexpected status '%s'", l.cfg.url(r), resp.Status))
	}

	tmp, err := os.CreateTemp(l.cfg.CacheDir, r.Filename()+".*.part")
	if err != nil {
		return resourceErr(r, ErrFilesystem, errors.Wrap(err, "Can't create temporary file"))
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after successful rename

	body := &trackedReader{r: resp.Body}
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		if body.err != nil {
			return resourceErr(r, ErrRetrieval, errors.Wrap(err, "Can't receive body"))
		}
		return resourceErr(r, ErrFilesystem, errors.Wrap(err, "Can't write body"))
	}
	if err := tmp.Close(); err != nil {
		return resourceErr(r, ErrFilesystem, errors.Wrap(err, "Can't flush temporary file"))
	}
	if err := os.Rename(tmpName, l.Path(r)); err != nil {
		return resourceErr(r, ErrFilesystem, errors.Wrap(err, "Can't move downloaded file into cache"))
	}
	return nil
}

// trackedReader remembers read error so copy failures can be told apart from write failures
type trackedReader struct {
	r   io.Reader
	err error
}

func (t *trackedReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		t.err = err
	}
	return n, err
}
