package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	JobStatusCreated    = "created"
	JobStatusQueued     = "queued"
	JobStatusProcessing = "processing"
	JobStatusSucceeded  = "succeeded"
	JobStatusFailed     = "failed"

	SourceTypeLocalFile   = "local_file"
	SourceTypeS3Presigned = "s3_presigned"
	SourceTypeHTTPURL     = "http_url"
	SourceTypeInline      = "inline"

	ActionConvert = "convert"
	ActionHead    = "head"

	MinHeadSize = 8
	MaxHeadSize = 4096
)

// ErrInvalidInputType is returned when a job's source reference is neither
// inline bytes nor a resolvable path, URL or object key.
var ErrInvalidInputType = errors.New("invalid input type")

type CreateJobRequest struct {
	UserID     string         `json:"user_id,omitempty"`
	SourceType string         `json:"source_type"`
	WebhookURL string         `json:"webhook_url,omitempty"`
	ObjectKey  string         `json:"object_key,omitempty"`
	SourceURL  string         `json:"source_url,omitempty"`
	SourceData []byte         `json:"source_data,omitempty"`
	Pipeline   []PipelineStep `json:"pipeline"`
}

type PipelineStep struct {
	ID       string `json:"id"`
	Action   string `json:"action"`
	Size     int    `json:"size,omitempty"`
	Format   string `json:"format,omitempty"`
	Encoding string `json:"encoding,omitempty"`
}

type Job struct {
	ID         string
	UserID     string
	Status     string
	SourceType string
	WebhookURL string
	Pipeline   []PipelineStep
	ObjectKey  string
	SourceURL  string
	SourceData []byte
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (r CreateJobRequest) Validate() error {
	sourceType := strings.ToLower(strings.TrimSpace(r.SourceType))
	if sourceType == "" {
		return errors.New("source_type is required")
	}

	switch sourceType {
	case SourceTypeS3Presigned:
	case SourceTypeLocalFile:
		if strings.TrimSpace(r.ObjectKey) == "" {
			return errors.New("object_key is required for source_type=local_file")
		}
	case SourceTypeHTTPURL:
		if err := validateSourceURL(r.SourceURL); err != nil {
			return err
		}
	case SourceTypeInline:
		if len(r.SourceData) == 0 {
			return errors.New("source_data is required for source_type=inline")
		}
	default:
		return fmt.Errorf("%w: unsupported source_type %s", ErrInvalidInputType, r.SourceType)
	}

	if len(r.Pipeline) == 0 {
		return errors.New("pipeline must contain at least one step")
	}
	seen := make(map[string]struct{}, len(r.Pipeline))
	for i, step := range r.Pipeline {
		if strings.TrimSpace(step.ID) == "" {
			return fmt.Errorf("pipeline[%d].id is required", i)
		}
		if _, dup := seen[step.ID]; dup {
			return fmt.Errorf("pipeline[%d].id %q is duplicated", i, step.ID)
		}
		seen[step.ID] = struct{}{}

		if err := step.Validate(); err != nil {
			return fmt.Errorf("pipeline[%d]: %w", i, err)
		}
	}
	return nil
}

func (s PipelineStep) Validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Action)) {
	case "":
		return errors.New("action is required")
	case ActionConvert:
		if s.Size != 0 {
			return errors.New("size is only valid for action=head")
		}
	case ActionHead:
		if s.Size != 0 && (s.Size < MinHeadSize || s.Size > MaxHeadSize) {
			return fmt.Errorf("size must be between %d and %d, got %d", MinHeadSize, MaxHeadSize, s.Size)
		}
	default:
		return fmt.Errorf("unsupported action: %s", s.Action)
	}

	switch strings.ToLower(strings.TrimSpace(s.Format)) {
	case "", "png", "webp":
	default:
		return fmt.Errorf("unsupported format: %s", s.Format)
	}

	switch strings.ToLower(strings.TrimSpace(s.Encoding)) {
	case "", "binary", "data_uri", "base64":
	default:
		return fmt.Errorf("unsupported encoding: %s", s.Encoding)
	}
	return nil
}

func validateSourceURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.New("source_url is required for source_type=http_url")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: source_url must be an absolute http(s) URL", ErrInvalidInputType)
	}
	return nil
}
