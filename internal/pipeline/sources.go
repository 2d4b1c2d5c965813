package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dunamismax/skinflow/internal/domain"
)

// MaxSourceBytes bounds how much of a remote or inline source is accepted.
// The largest atlas the service is expected to see is a few megabytes.
const MaxSourceBytes = 16 << 20

// SourceRouter dispatches a request to the fetcher registered for its
// source type.
type SourceRouter map[string]Fetcher

func (r SourceRouter) Fetch(ctx context.Context, req Request) ([]byte, error) {
	fetcher, ok := r[strings.ToLower(strings.TrimSpace(req.SourceType))]
	if !ok || fetcher == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidInputType, req.SourceType)
	}
	return fetcher.Fetch(ctx, req)
}

// NewSourceRouter wires the fetchers for every supported source type. store
// may be nil when object storage is not configured.
func NewSourceRouter(store ObjectStore, client *http.Client) SourceRouter {
	r := SourceRouter{
		domain.SourceTypeLocalFile: LocalFileFetcher{},
		domain.SourceTypeHTTPURL:   HTTPFetcher{Client: client},
		domain.SourceTypeInline:    InlineFetcher{},
	}
	if store != nil {
		r[domain.SourceTypeS3Presigned] = ObjectStoreFetcher{Storage: store}
	}
	return r
}

type InlineFetcher struct{}

func (InlineFetcher) Fetch(_ context.Context, req Request) ([]byte, error) {
	if len(req.SourceData) == 0 {
		return nil, fmt.Errorf("%w: inline source is empty", ErrInvalidInputType)
	}
	if len(req.SourceData) > MaxSourceBytes {
		return nil, fmt.Errorf("inline source exceeds %d bytes", MaxSourceBytes)
	}
	return req.SourceData, nil
}

type HTTPFetcher struct {
	Client *http.Client
}

func (f HTTPFetcher) Fetch(ctx context.Context, req Request) ([]byte, error) {
	if strings.TrimSpace(req.SourceURL) == "" {
		return nil, fmt.Errorf("%w: source url is empty", ErrInvalidInputType)
	}

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.SourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInputType, err)
	}
	httpReq.Header.Set("Accept", "image/png, image/webp, image/*;q=0.8")

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("download source %s: %w", req.SourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download source %s: status=%d", req.SourceURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxSourceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read source body: %w", err)
	}
	if len(data) > MaxSourceBytes {
		return nil, errors.New("source body exceeds size limit")
	}
	return data, nil
}
