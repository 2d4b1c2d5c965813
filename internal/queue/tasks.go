package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dunamismax/skinflow/internal/domain"
	"github.com/hibiken/asynq"
)

const TypeProcessSkin = "skin:process"

type ProcessSkinPayload struct {
	JobID       string                `json:"job_id"`
	UserID      string                `json:"user_id,omitempty"`
	SourceType  string                `json:"source_type"`
	WebhookURL  string                `json:"webhook_url,omitempty"`
	ObjectKey   string                `json:"object_key,omitempty"`
	SourceURL   string                `json:"source_url,omitempty"`
	SourceData  []byte                `json:"source_data,omitempty"`
	Pipeline    []domain.PipelineStep `json:"pipeline"`
	RequestedAt time.Time             `json:"requested_at"`
}

// PayloadFromJob copies everything the worker needs out of a stored job.
func PayloadFromJob(job domain.Job, requestedAt time.Time) ProcessSkinPayload {
	return ProcessSkinPayload{
		JobID:       job.ID,
		UserID:      job.UserID,
		SourceType:  job.SourceType,
		WebhookURL:  job.WebhookURL,
		ObjectKey:   job.ObjectKey,
		SourceURL:   job.SourceURL,
		SourceData:  job.SourceData,
		Pipeline:    job.Pipeline,
		RequestedAt: requestedAt,
	}
}

func NewProcessSkinTask(payload ProcessSkinPayload) (*asynq.Task, error) {
	if payload.JobID == "" {
		return nil, errors.New("job_id is required")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal process payload: %w", err)
	}
	return asynq.NewTask(TypeProcessSkin, body), nil
}

func ParseProcessSkinPayload(task *asynq.Task) (ProcessSkinPayload, error) {
	var payload ProcessSkinPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ProcessSkinPayload{}, fmt.Errorf("unmarshal process payload: %w", err)
	}
	return payload, nil
}
