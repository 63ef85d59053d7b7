package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentx-labs/extbuild/internal/branding"
	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Archive formats served by the GitHub archive endpoint.
const (
	FormatZip = "zip"
	FormatTar = "tar"
)

// Location describes where the extension's source comes from.
type Location struct {
	Organization string
	Repository   string
	Ref          string
	Token        string
	Format       string

	// Local selects the mounted checkout at LocalPath instead of the
	// network. It is never autodetected.
	Local     bool
	LocalPath string

	// Flat copies a local checkout straight into the working directory
	// instead of a <Repository> subdirectory.
	Flat bool
}

// Fetcher materializes source trees.
type Fetcher struct {
	httpClient *http.Client
	apiBase    string
	logger     *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = c
	}
}

// WithAPIBase points the fetcher at a different archive host.
func WithAPIBase(base string) Option {
	return func(f *Fetcher) {
		if base != "" {
			f.apiBase = strings.TrimRight(base, "/")
		}
	}
}

// WithLogger sets the logger used for progress messages.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		apiBase:    branding.DefaultAPIBase(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ArchiveURL returns the archive endpoint for loc.
func (f *Fetcher) ArchiveURL(loc Location) string {
	kind := "zipball"
	if loc.Format == FormatTar {
		kind = "tarball"
	}
	return fmt.Sprintf("%s/repos/%s/%s/%s/%s", f.apiBase, loc.Organization, loc.Repository, kind, loc.Ref)
}

// Fetch materializes loc under workDir.
func (f *Fetcher) Fetch(ctx context.Context, loc Location, workDir string) error {
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return &FetchError{URL: workDir, Err: fmt.Errorf("creating working directory: %w", err)}
	}

	if loc.Local {
		dst, replace := filepath.Join(workDir, loc.Repository), true
		if loc.Flat {
			dst, replace = workDir, false
		}
		f.logger.Info("copying local source", "from", loc.LocalPath, "to", dst)
		if err := copyLocal(f.logger, loc.LocalPath, dst, replace); err != nil {
			return &FetchError{URL: loc.LocalPath, Err: err}
		}
		return nil
	}

	url := f.ArchiveURL(loc)
	archive := filepath.Join(workDir, archiveName(loc.Format))

	f.logger.Info("downloading source archive", "url", url, "to", archive)
	n, err := f.download(ctx, url, loc.Token, archive)
	if err != nil {
		return err
	}
	f.logger.Info("downloaded source archive", "size", humanize.Bytes(uint64(n)))

	if err := Extract(archive, workDir); err != nil {
		return err
	}
	return nil
}

func archiveName(format string) string {
	if format == FormatTar {
		return "archive.tar.gz"
	}
	return "archive.zip"
}
