package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AngelCh415/adreport/internal/models"
	"github.com/AngelCh415/adreport/internal/utils"
)

// maxDocumentBytes caps the size of a fetched or uploaded document.
const maxDocumentBytes = 32 << 20

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}

// fetchWithRetry downloads url. 404/410 map to ErrSourceNotFound; other 4xx are
// not retried; transport errors and 5xx are retried with bo.
func fetchWithRetry(ctx context.Context, c HTTPClient, bo utils.Backoff, url string) ([]byte, error) {
	if url == "" {
		return nil, errors.New("empty url")
	}
	var body []byte
	err := bo.Do(ctx, func(i int) error {
		b, err := fetch(ctx, c, url)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	return body, err
}

func fetch(ctx context.Context, c HTTPClient, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, utils.Permanent(err)
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, utils.Permanent(fmt.Errorf("%w: %s", models.ErrSourceNotFound, url))
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("non-2xx: %d", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, utils.Permanent(fmt.Errorf("non-2xx: %d body=%s", resp.StatusCode, string(b)))
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
	if err != nil {
		return nil, err
	}
	if len(b) > maxDocumentBytes {
		return nil, utils.Permanent(fmt.Errorf("document exceeds %d bytes", maxDocumentBytes))
	}
	return b, nil
}
