package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dunamismax/skinflow/internal/atlas"
	"github.com/dunamismax/skinflow/internal/codec"
	"github.com/dunamismax/skinflow/internal/domain"
	"github.com/dunamismax/skinflow/internal/inspect"
	"github.com/dunamismax/skinflow/internal/pipeline"
)

const (
	HeaderSkinVariant = "X-Skin-Variant"
	HeaderSkinHD      = "X-Skin-HD"
	HeaderSkinSize    = "X-Skin-Size"
)

// handleConvert normalizes a skin posted as the raw request body.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	s.renderSync(w, r, domain.PipelineStep{
		ID:     "convert",
		Action: domain.ActionConvert,
	})
}

// handleHead renders the face thumbnail of a skin posted as the raw body.
func (s *Server) handleHead(w http.ResponseWriter, r *http.Request) {
	size := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("size")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "size must be an integer"})
			return
		}
		size = parsed
	}

	s.renderSync(w, r, domain.PipelineStep{
		ID:     "head",
		Action: domain.ActionHead,
		Size:   size,
	})
}

func (s *Server) renderSync(w http.ResponseWriter, r *http.Request, step domain.PipelineStep) {
	query := r.URL.Query()
	step.Format = query.Get("format")
	if step.Format == "" {
		step.Format = s.defaultFormat
	}
	step.Encoding = query.Get("encoding")

	if err := step.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	data, err := readSkinBody(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rendition, err := s.renderer.Transform(r.Context(), data, step)
	if err != nil {
		status := statusForRenderError(err)
		if status == http.StatusInternalServerError {
			s.logger.Printf("render failed action=%s err=%v", step.Action, err)
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	s.metrics.skinsRendered.WithLabelValues(step.Action, variantLabel(rendition.Variant)).Inc()

	if rendition.Encoding == codec.EncodingDataURI {
		writeJSON(w, http.StatusOK, map[string]any{
			"action":  step.Action,
			"format":  rendition.Format,
			"variant": rendition.Variant,
			"hd":      rendition.HighDefinition,
			"size":    rendition.Size,
			"width":   rendition.Width,
			"height":  rendition.Height,
			"data":    string(rendition.Data),
		})
		return
	}

	if rendition.Variant != "" {
		w.Header().Set(HeaderSkinVariant, rendition.Variant)
		w.Header().Set(HeaderSkinHD, strconv.FormatBool(rendition.HighDefinition))
	}
	if rendition.Size > 0 {
		w.Header().Set(HeaderSkinSize, strconv.Itoa(rendition.Size))
	}
	w.Header().Set("Content-Type", codec.ContentType(rendition.Format))
	w.Header().Set("Content-Length", strconv.Itoa(len(rendition.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rendition.Data)
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	n := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("palette")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 16 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "palette must be between 1 and 16"})
			return
		}
		n = parsed
	}

	data, err := readSkinBody(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	report, err := inspect.Inspect(data, n)
	if err != nil {
		writeJSON(w, statusForRenderError(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func readSkinBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, pipeline.MaxSourceBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("skin exceeds %d bytes", pipeline.MaxSourceBytes)
		}
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("request body must contain an image")
	}
	return data, nil
}

func statusForRenderError(err error) int {
	switch {
	case errors.Is(err, codec.ErrDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, atlas.ErrDimensionMismatch),
		errors.Is(err, atlas.ErrInvalidDimensions),
		errors.Is(err, atlas.ErrSizeTooSmall),
		errors.Is(err, pipeline.ErrInvalidStepAction),
		errors.Is(err, pipeline.ErrInvalidInputType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func variantLabel(v string) string {
	if v == "" {
		return "none"
	}
	return v
}
