package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dunamismax/skinflow/internal/codec"
	"github.com/dunamismax/skinflow/internal/domain"
)

const SourceTypeLocalFile = domain.SourceTypeLocalFile

var (
	ErrInvalidInputType  = domain.ErrInvalidInputType
	ErrInvalidStepAction = errors.New("invalid pipeline action")
)

type Request struct {
	JobID      string
	SourceType string
	ObjectKey  string
	SourceURL  string
	SourceData []byte
	Pipeline   []domain.PipelineStep
}

type Output struct {
	StepID         string `json:"step_id"`
	Action         string `json:"action"`
	Format         string `json:"format"`
	Encoding       string `json:"encoding"`
	Path           string `json:"path"`
	Bytes          int    `json:"bytes"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Size           int    `json:"size,omitempty"`
	Variant        string `json:"variant,omitempty"`
	HighDefinition bool   `json:"hd"`
	Success        bool   `json:"success"`
}

type Result struct {
	SourceBytes int
	Outputs     []Output
}

type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]byte, error)
}

type Emitter interface {
	Emit(ctx context.Context, req Request, step domain.PipelineStep, r Rendition) (Output, error)
}

type Processor struct {
	fetcher     Fetcher
	transformer Transformer
	emitter     Emitter
}

func NewLocalProcessor(outputDir string, fetcher Fetcher) (*Processor, error) {
	if fetcher == nil {
		fetcher = LocalFileFetcher{}
	}
	return NewProcessor(fetcher, LocalFileEmitter{OutputDir: outputDir})
}

func NewProcessor(fetcher Fetcher, emitter Emitter) (*Processor, error) {
	transformer, err := NewTransformer()
	if err != nil {
		return nil, fmt.Errorf("build transformer: %w", err)
	}

	return &Processor{
		fetcher:     fetcher,
		transformer: transformer,
		emitter:     emitter,
	}, nil
}

func (p *Processor) Process(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.JobID) == "" {
		return Result{}, errors.New("job_id is required")
	}
	if len(req.Pipeline) == 0 {
		return Result{}, errors.New("pipeline must contain at least one step")
	}

	sourceBytes, err := p.fetcher.Fetch(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("fetch stage: %w", err)
	}

	out := Result{
		SourceBytes: len(sourceBytes),
		Outputs:     make([]Output, 0, len(req.Pipeline)),
	}
	for _, step := range req.Pipeline {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		rendition, err := p.transformer.Transform(ctx, sourceBytes, step)
		if err != nil {
			return Result{}, fmt.Errorf("transform stage step=%s action=%s: %w", step.ID, step.Action, err)
		}

		written, err := p.emitter.Emit(ctx, req, step, rendition)
		if err != nil {
			return Result{}, fmt.Errorf("emit stage step=%s action=%s: %w", step.ID, step.Action, err)
		}
		out.Outputs = append(out.Outputs, written)
	}

	return out, nil
}

type LocalFileFetcher struct{}

func (LocalFileFetcher) Fetch(ctx context.Context, req Request) ([]byte, error) {
	if !strings.EqualFold(req.SourceType, SourceTypeLocalFile) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInputType, req.SourceType)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := os.ReadFile(req.ObjectKey)
	if err != nil {
		return nil, fmt.Errorf("read input file %s: %w", req.ObjectKey, err)
	}
	return data, nil
}

type LocalFileEmitter struct {
	OutputDir string
}

func (e LocalFileEmitter) Emit(_ context.Context, req Request, step domain.PipelineStep, r Rendition) (Output, error) {
	if strings.TrimSpace(e.OutputDir) == "" {
		return Output{}, errors.New("output directory is required")
	}
	if strings.TrimSpace(step.ID) == "" {
		return Output{}, errors.New("pipeline step id is required")
	}

	jobDir := filepath.Join(e.OutputDir, sanitizePathToken(req.JobID))
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		return Output{}, fmt.Errorf("create output dir: %w", err)
	}

	fullPath := filepath.Join(jobDir, outputFilename(step.ID, r))
	if err := os.WriteFile(fullPath, r.Data, 0o644); err != nil {
		return Output{}, fmt.Errorf("write output file: %w", err)
	}

	return r.output(step, fullPath), nil
}

func outputFilename(stepID string, r Rendition) string {
	name := fmt.Sprintf("%s.%s", sanitizePathToken(stepID), r.Format)
	if r.Encoding == codec.EncodingDataURI {
		name += ".txt"
	}
	return name
}

func sanitizePathToken(in string) string {
	in = strings.TrimSpace(in)
	if in == "" {
		return "unknown"
	}

	var b strings.Builder
	b.Grow(len(in))
	for _, r := range in {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
