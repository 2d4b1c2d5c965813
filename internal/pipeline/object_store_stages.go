package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/dunamismax/skinflow/internal/codec"
	"github.com/dunamismax/skinflow/internal/domain"
)

const (
	SourceTypeS3Presigned = domain.SourceTypeS3Presigned
)

type ObjectStore interface {
	ReadObject(ctx context.Context, objectKey string) ([]byte, error)
	WriteObject(ctx context.Context, objectKey string, data []byte, contentType string) error
}

type ObjectStoreFetcher struct {
	Storage ObjectStore
}

func (f ObjectStoreFetcher) Fetch(ctx context.Context, req Request) ([]byte, error) {
	if f.Storage == nil {
		return nil, errors.New("storage client is required")
	}
	if !strings.EqualFold(req.SourceType, SourceTypeS3Presigned) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInputType, req.SourceType)
	}
	if strings.TrimSpace(req.ObjectKey) == "" {
		return nil, fmt.Errorf("%w: object key is empty", ErrInvalidInputType)
	}
	return f.Storage.ReadObject(ctx, req.ObjectKey)
}

type ObjectStoreEmitter struct {
	Storage      ObjectStore
	OutputPrefix string
}

func (e ObjectStoreEmitter) Emit(ctx context.Context, req Request, step domain.PipelineStep, r Rendition) (Output, error) {
	if e.Storage == nil {
		return Output{}, errors.New("storage client is required")
	}
	if strings.TrimSpace(step.ID) == "" {
		return Output{}, errors.New("pipeline step id is required")
	}

	objectKey := path.Join(
		defaultOutputPrefix(e.OutputPrefix),
		sanitizePathToken(req.JobID),
		outputFilename(step.ID, r),
	)

	if err := e.Storage.WriteObject(ctx, objectKey, r.Data, contentTypeFor(r)); err != nil {
		return Output{}, err
	}

	return r.output(step, objectKey), nil
}

func defaultOutputPrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "outputs"
	}
	return prefix
}

func contentTypeFor(r Rendition) string {
	if r.Encoding == codec.EncodingDataURI {
		return "text/plain; charset=utf-8"
	}
	return codec.ContentType(r.Format)
}
