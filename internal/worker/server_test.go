package worker

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dunamismax/skinflow/internal/atlas"
	"github.com/dunamismax/skinflow/internal/domain"
	"github.com/dunamismax/skinflow/internal/pipeline"
	"github.com/dunamismax/skinflow/internal/queue"
	"github.com/dunamismax/skinflow/internal/store"
	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel"
)

func TestRecordUsageWritesUsageLog(t *testing.T) {
	jobStore := store.NewMemoryJobStore()
	if err := jobStore.Create(context.Background(), domain.Job{
		ID:         "job-1",
		UserID:     "user-1",
		Status:     domain.JobStatusProcessing,
		SourceType: domain.SourceTypeLocalFile,
		ObjectKey:  "input.png",
		Pipeline:   []domain.PipelineStep{{ID: "avatar", Action: domain.ActionHead, Size: 16}},
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed job: %v", err)
	}

	usageStore := &captureUsageStore{}
	s := &Server{
		logger:     log.New(io.Discard, "", 0),
		jobStore:   jobStore,
		usageStore: usageStore,
		metrics:    newMetrics(),
	}

	s.recordUsage(context.Background(), queue.ProcessSkinPayload{JobID: "job-1"}, pipeline.Result{
		SourceBytes: 1_000,
		Outputs: []pipeline.Output{
			{Width: 10, Height: 10, Bytes: 300},
			{Width: 20, Height: 20, Bytes: 400},
		},
	}, 250*time.Millisecond)

	if !usageStore.called {
		t.Fatal("expected usage log to be written")
	}
	if usageStore.log.UserID != "user-1" {
		t.Fatalf("expected user_id=user-1, got %s", usageStore.log.UserID)
	}
	if usageStore.log.PixelsProcessed != 500 {
		t.Fatalf("expected pixels_processed=500, got %d", usageStore.log.PixelsProcessed)
	}
	if usageStore.log.OutputBytes != 700 {
		t.Fatalf("expected output_bytes=700, got %d", usageStore.log.OutputBytes)
	}
	if usageStore.log.ComputeTimeMS != 250 {
		t.Fatalf("expected compute_time_ms=250, got %d", usageStore.log.ComputeTimeMS)
	}
}

func TestRecordUsagePrefersPayloadUserAndClampsCompute(t *testing.T) {
	usageStore := &captureUsageStore{}
	s := &Server{
		logger:     log.New(io.Discard, "", 0),
		usageStore: usageStore,
		metrics:    newMetrics(),
	}

	s.recordUsage(context.Background(), queue.ProcessSkinPayload{JobID: "job-2", UserID: "payload-user"}, pipeline.Result{
		Outputs: []pipeline.Output{{Width: 5, Height: 5, Bytes: 200}},
	}, 0)

	if usageStore.log.UserID != "payload-user" {
		t.Fatalf("expected payload user, got %s", usageStore.log.UserID)
	}
	if usageStore.log.ComputeTimeMS < 1 {
		t.Fatalf("expected compute_time_ms to be at least 1, got %d", usageStore.log.ComputeTimeMS)
	}
}

func TestHandleProcessSkinSucceeds(t *testing.T) {
	s, jobs, hooks := newTestServer(t)
	seedJob(t, jobs, "job-ok")

	task := newTask(t, queue.ProcessSkinPayload{
		JobID:      "job-ok",
		UserID:     "user-1",
		SourceType: domain.SourceTypeInline,
		SourceData: skinPNG(t, 64, 32),
		WebhookURL: "https://hooks.test/skins",
		Pipeline: []domain.PipelineStep{
			{ID: "atlas", Action: domain.ActionConvert},
			{ID: "avatar", Action: domain.ActionHead, Size: 16},
		},
	})

	if err := s.handleProcessSkin(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}

	job, _, _ := jobs.Get(context.Background(), "job-ok")
	if job.Status != domain.JobStatusSucceeded {
		t.Fatalf("expected succeeded status, got %s", job.Status)
	}
	if len(hooks.events) != 1 || hooks.events[0] != "job.completed" {
		t.Fatalf("expected one job.completed webhook, got %v", hooks.events)
	}
	if logs := jobs.UsageLogs("user-1"); len(logs) != 1 || logs[0].PixelsProcessed != 64*64+16*16 {
		t.Fatalf("unexpected usage logs %+v", logs)
	}

	if _, err := os.Stat(filepath.Join(s.outputDirForTest, "job-ok", "atlas.png")); err != nil {
		t.Fatalf("expected atlas output on disk: %v", err)
	}
}

func TestHandleProcessSkinPermanentFailureSkipsRetry(t *testing.T) {
	s, jobs, hooks := newTestServer(t)
	seedJob(t, jobs, "job-bad")

	task := newTask(t, queue.ProcessSkinPayload{
		JobID:      "job-bad",
		SourceType: domain.SourceTypeInline,
		SourceData: skinPNG(t, 60, 30),
		WebhookURL: "https://hooks.test/skins",
		Pipeline:   []domain.PipelineStep{{ID: "atlas", Action: domain.ActionConvert}},
	})

	err := s.handleProcessSkin(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
	if !errors.Is(err, atlas.ErrInvalidDimensions) {
		t.Fatalf("expected the pipeline error to stay wrapped, got %v", err)
	}

	job, _, _ := jobs.Get(context.Background(), "job-bad")
	if job.Status != domain.JobStatusFailed {
		t.Fatalf("expected failed status, got %s", job.Status)
	}
	if len(hooks.events) != 1 || hooks.events[0] != "job.failed" {
		t.Fatalf("expected one job.failed webhook, got %v", hooks.events)
	}
}

func TestHandleProcessSkinRejectsUnconfiguredObjectStore(t *testing.T) {
	s, jobs, _ := newTestServer(t)
	seedJob(t, jobs, "job-s3")

	task := newTask(t, queue.ProcessSkinPayload{
		JobID:      "job-s3",
		SourceType: domain.SourceTypeS3Presigned,
		ObjectKey:  "uploads/job-s3/source",
		Pipeline:   []domain.PipelineStep{{ID: "atlas", Action: domain.ActionConvert}},
	})

	if err := s.handleProcessSkin(context.Background(), task); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry for unsupported source, got %v", err)
	}
}

func TestHandleProcessSkinBadPayload(t *testing.T) {
	s, _, _ := newTestServer(t)
	err := s.handleProcessSkin(context.Background(), asynq.NewTask(queue.TypeProcessSkin, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

type testServer struct {
	*Server
	outputDirForTest string
}

func newTestServer(t *testing.T) (*testServer, *store.MemoryJobStore, *captureWebhook) {
	t.Helper()

	outputDir := t.TempDir()
	processor, err := pipeline.NewLocalProcessor(outputDir, pipeline.NewSourceRouter(nil, nil))
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}

	jobs := store.NewMemoryJobStore()
	hooks := &captureWebhook{}
	s := &Server{
		logger:         log.New(io.Discard, "", 0),
		sem:            make(chan struct{}, 1),
		localProcessor: processor,
		webhookClient:  hooks,
		jobStore:       jobs,
		usageStore:     jobs,
		metrics:        newMetrics(),
		tracer:         otel.Tracer("test"),
	}
	return &testServer{Server: s, outputDirForTest: outputDir}, jobs, hooks
}

func seedJob(t *testing.T, jobs *store.MemoryJobStore, id string) {
	t.Helper()
	now := time.Now().UTC()
	if err := jobs.Create(context.Background(), domain.Job{ID: id, Status: domain.JobStatusQueued, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("seed job: %v", err)
	}
}

func newTask(t *testing.T, payload queue.ProcessSkinPayload) *asynq.Task {
	t.Helper()
	task, err := queue.NewProcessSkinTask(payload)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	return task
}

func skinPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 2), G: 90, B: uint8(y * 2), A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

type captureUsageStore struct {
	called bool
	log    domain.UsageLog
}

func (s *captureUsageStore) CreateUsageLog(_ context.Context, usage domain.UsageLog) error {
	s.called = true
	s.log = usage
	return nil
}

type captureWebhook struct {
	events []string
}

func (w *captureWebhook) Send(_ context.Context, _ string, event string, _ any) error {
	w.events = append(w.events, event)
	return nil
}
