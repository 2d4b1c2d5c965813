package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/dunamismax/skinflow/internal/atlas"
	"github.com/dunamismax/skinflow/internal/codec"
	"github.com/dunamismax/skinflow/internal/config"
	"github.com/dunamismax/skinflow/internal/domain"
	"github.com/dunamismax/skinflow/internal/pipeline"
	"github.com/dunamismax/skinflow/internal/queue"
	"github.com/dunamismax/skinflow/internal/store"
	"github.com/dunamismax/skinflow/internal/webhook"
	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Server struct {
	logger          *log.Logger
	server          *asynq.Server
	sem             chan struct{}
	localProcessor  *pipeline.Processor
	objectProcessor *pipeline.Processor
	webhookClient   webhookSender
	jobStore        store.JobStore
	usageStore      store.UsageStore
	metrics         *metrics
	tracer          trace.Tracer
}

type webhookSender interface {
	Send(ctx context.Context, endpoint, event string, payload any) error
}

// NewServer builds the asynq worker. objectStore may be nil, in which case
// every job writes its outputs under workerCfg.LocalOutputDir and
// s3_presigned sources are rejected.
func NewServer(
	logger *log.Logger,
	queueCfg config.QueueConfig,
	workerCfg config.WorkerConfig,
	objectStore pipeline.ObjectStore,
	webhookClient webhookSender,
	jobStore store.JobStore,
	usageStore store.UsageStore,
) (*Server, error) {
	sources := pipeline.NewSourceRouter(objectStore, &http.Client{Timeout: 15 * time.Second})

	localProcessor, err := pipeline.NewLocalProcessor(workerCfg.LocalOutputDir, sources)
	if err != nil {
		return nil, fmt.Errorf("initialize pipeline processor: %w", err)
	}

	var objectProcessor *pipeline.Processor
	if objectStore != nil {
		objectProcessor, err = pipeline.NewProcessor(
			sources,
			pipeline.ObjectStoreEmitter{Storage: objectStore, OutputPrefix: workerCfg.OutputPrefix},
		)
		if err != nil {
			return nil, fmt.Errorf("initialize object-store processor: %w", err)
		}
	}

	if usageStore == nil {
		if jobAndUsageStore, ok := jobStore.(store.UsageStore); ok {
			usageStore = jobAndUsageStore
		}
	}

	s := &Server{
		logger: logger,
		server: asynq.NewServer(
			queueCfg.RedisClientOpt(),
			asynq.Config{
				Concurrency: workerCfg.Concurrency,
				Queues: map[string]int{
					queueCfg.Name: 1,
				},
				LogLevel: asynq.InfoLevel,
				IsFailure: func(err error) bool {
					return !errors.Is(err, context.Canceled)
				},
				ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
					retried, _ := asynq.GetRetryCount(ctx)
					maxRetry, _ := asynq.GetMaxRetry(ctx)
					logger.Printf("task failed type=%s retry=%d/%d err=%v", task.Type(), retried, maxRetry, err)
				}),
			},
		),
		sem:             make(chan struct{}, max(1, workerCfg.MaxActiveJobs)),
		localProcessor:  localProcessor,
		objectProcessor: objectProcessor,
		webhookClient:   webhookClient,
		jobStore:        jobStore,
		usageStore:      usageStore,
		metrics:         newMetrics(),
		tracer:          otel.Tracer("skinflow/worker"),
	}
	return s, nil
}

func (s *Server) Run() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeProcessSkin, s.handleProcessSkin)
	return s.server.Run(mux)
}

func (s *Server) Shutdown() {
	s.server.Shutdown()
}

func (s *Server) MetricsHandler() http.Handler {
	return s.metrics.Handler()
}

func (s *Server) handleProcessSkin(ctx context.Context, task *asynq.Task) error {
	startedAt := time.Now()
	outcome := domain.JobStatusFailed

	payload, err := queue.ParseProcessSkinPayload(task)
	if err != nil {
		return fmt.Errorf("parse payload: %w: %w", err, asynq.SkipRetry)
	}

	ctx, span := s.tracer.Start(ctx, "worker.process_skin", trace.WithSpanKind(trace.SpanKindConsumer))
	span.SetAttributes(
		attribute.String("job.id", payload.JobID),
		attribute.String("job.source_type", payload.SourceType),
		attribute.Int("job.pipeline_steps", len(payload.Pipeline)),
	)
	defer span.End()
	defer func() {
		s.metrics.jobDuration.WithLabelValues(payload.SourceType, outcome).Observe(time.Since(startedAt).Seconds())
		s.metrics.jobsTotal.WithLabelValues(payload.SourceType, outcome).Inc()
	}()

	s.sem <- struct{}{}
	s.metrics.activeJobs.Inc()
	defer func() {
		<-s.sem
		s.metrics.activeJobs.Dec()
	}()

	s.logger.Printf(
		"Working... job_id=%s source_type=%s steps=%d",
		payload.JobID,
		payload.SourceType,
		len(payload.Pipeline),
	)

	s.updateJobStatus(ctx, payload.JobID, domain.JobStatusProcessing)

	request := pipeline.Request{
		JobID:      payload.JobID,
		SourceType: payload.SourceType,
		ObjectKey:  payload.ObjectKey,
		SourceURL:  payload.SourceURL,
		SourceData: payload.SourceData,
		Pipeline:   payload.Pipeline,
	}

	result, err := s.processorFor(payload.SourceType).Process(ctx, request)
	if err != nil {
		permanent := isPermanent(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "pipeline failed")

		if !permanent && !finalAttempt(ctx) {
			s.updateJobStatus(ctx, payload.JobID, domain.JobStatusQueued)
			return fmt.Errorf("run pipeline: %w", err)
		}

		s.updateJobStatus(ctx, payload.JobID, domain.JobStatusFailed)
		_ = s.dispatchWebhook(ctx, payload, webhook.EventJobFailed, map[string]any{
			"job_id":       payload.JobID,
			"status":       domain.JobStatusFailed,
			"source_type":  payload.SourceType,
			"requested_at": payload.RequestedAt,
			"failed_at":    time.Now().UTC(),
			"error":        err.Error(),
		})
		if permanent {
			return fmt.Errorf("run pipeline: %w: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("run pipeline: %w", err)
	}

	s.logger.Printf("Processed job_id=%s outputs=%d", payload.JobID, len(result.Outputs))
	s.updateJobStatus(ctx, payload.JobID, domain.JobStatusSucceeded)
	s.metrics.pipelineOutputsTotal.Add(float64(len(result.Outputs)))
	for _, out := range result.Outputs {
		if out.Variant != "" {
			s.metrics.variantsTotal.WithLabelValues(out.Variant).Inc()
		}
	}
	s.recordUsage(ctx, payload, result, time.Since(startedAt))

	if err := s.dispatchWebhook(ctx, payload, webhook.EventJobCompleted, map[string]any{
		"job_id":       payload.JobID,
		"status":       domain.JobStatusSucceeded,
		"source_type":  payload.SourceType,
		"requested_at": payload.RequestedAt,
		"completed_at": time.Now().UTC(),
		"outputs":      result.Outputs,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "webhook dispatch failed")
		return err
	}

	outcome = domain.JobStatusSucceeded
	span.SetStatus(codes.Ok, "processed")
	return nil
}

func (s *Server) processorFor(sourceType string) *pipeline.Processor {
	if s.objectProcessor == nil || strings.EqualFold(sourceType, domain.SourceTypeLocalFile) {
		return s.localProcessor
	}
	return s.objectProcessor
}

// isPermanent reports whether err comes from the job's input rather than the
// environment. Retrying such jobs produces the same failure.
func isPermanent(err error) bool {
	for _, target := range []error{
		pipeline.ErrInvalidInputType,
		pipeline.ErrInvalidStepAction,
		codec.ErrDecode,
		atlas.ErrDimensionMismatch,
		atlas.ErrInvalidDimensions,
		atlas.ErrSizeTooSmall,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func finalAttempt(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return true
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	if !ok {
		return true
	}
	return retried >= maxRetry
}

func (s *Server) updateJobStatus(ctx context.Context, jobID, status string) {
	if s.jobStore == nil {
		return
	}
	if _, err := s.jobStore.UpdateStatus(ctx, jobID, status); err != nil {
		s.logger.Printf("job status update failed job_id=%s status=%s err=%v", jobID, status, err)
	}
}

func (s *Server) dispatchWebhook(ctx context.Context, payload queue.ProcessSkinPayload, event string, body map[string]any) error {
	if payload.WebhookURL == "" || s.webhookClient == nil {
		return nil
	}

	if err := s.webhookClient.Send(ctx, payload.WebhookURL, event, body); err != nil {
		s.logger.Printf("webhook delivery failed job_id=%s event=%s err=%v", payload.JobID, event, err)
		return fmt.Errorf("dispatch webhook: %w", err)
	}

	return nil
}

func (s *Server) recordUsage(ctx context.Context, payload queue.ProcessSkinPayload, result pipeline.Result, computeDuration time.Duration) {
	if s.usageStore == nil {
		return
	}

	userID := strings.TrimSpace(payload.UserID)
	if userID == "" && s.jobStore != nil {
		job, ok, err := s.jobStore.Get(ctx, payload.JobID)
		if err != nil {
			s.logger.Printf("usage lookup failed job_id=%s err=%v", payload.JobID, err)
		} else if ok {
			userID = strings.TrimSpace(job.UserID)
		}
	}
	if userID == "" {
		userID = "anonymous"
	}

	var (
		pixelsProcessed int64
		outputBytes     int64
	)
	for _, output := range result.Outputs {
		pixelsProcessed += int64(output.Width * output.Height)
		outputBytes += int64(output.Bytes)
	}

	computeTimeMS := computeDuration.Milliseconds()
	if computeTimeMS < 1 {
		computeTimeMS = 1
	}

	usage := domain.UsageLog{
		UserID:          userID,
		JobID:           payload.JobID,
		PixelsProcessed: pixelsProcessed,
		OutputBytes:     outputBytes,
		ComputeTimeMS:   computeTimeMS,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.usageStore.CreateUsageLog(ctx, usage); err != nil {
		s.logger.Printf("usage log write failed job_id=%s err=%v", payload.JobID, err)
		return
	}

	s.metrics.pixelsProcessedTotal.Add(float64(pixelsProcessed))
	s.metrics.outputBytesTotal.Add(float64(outputBytes))
	s.metrics.computeTimeMSTotal.Add(float64(computeTimeMS))
}
