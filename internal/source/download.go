package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/agentx-labs/extbuild/internal/branding"
)

// download streams url into dest and returns the number of bytes written.
func (f *Fetcher) download(ctx context.Context, url, token, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, &FetchError{URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", branding.UserAgent())
	if token != "" {
		req.Header.Set("Authorization", "token "+token)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &FetchError{URL: url, Status: resp.Status}
	}

	out, err := os.Create(dest)
	if err != nil {
		return 0, &FetchError{URL: url, Err: fmt.Errorf("creating archive file: %w", err)}
	}

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		out.Close()
		return n, &FetchError{URL: url, Err: fmt.Errorf("reading archive stream: %w", err)}
	}
	if err := out.Close(); err != nil {
		return n, &FetchError{URL: url, Err: fmt.Errorf("writing archive file: %w", err)}
	}
	return n, nil
}
