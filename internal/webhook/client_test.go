package webhook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestSendAddsSigningHeaders(t *testing.T) {
	var (
		gotSig string
		gotTS  string
		gotEvt string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(HeaderSignature)
		gotTS = r.Header.Get(HeaderTimestamp)
		gotEvt = r.Header.Get(HeaderEvent)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(Config{
		SigningSecret:  "test-secret",
		Timeout:        2 * time.Second,
		MaxAttempts:    1,
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     20 * time.Millisecond,
	})

	err := client.Send(context.Background(), srv.URL, "job.completed", map[string]any{"job_id": "job-1"})
	if err != nil {
		t.Fatalf("send returned error: %v", err)
	}

	if gotSig == "" {
		t.Fatal("expected signature header")
	}
	if gotTS == "" {
		t.Fatal("expected timestamp header")
	}
	if gotEvt != "job.completed" {
		t.Fatalf("expected event header job.completed, got %q", gotEvt)
	}
}

func TestSendSignatureVerifies(t *testing.T) {
	const secret = "s3cret"
	verified := make(chan bool, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		verified <- Verify(secret, r.Header.Get(HeaderTimestamp), r.Header.Get(HeaderSignature), body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(Config{SigningSecret: secret, MaxAttempts: 1})
	if err := client.Send(context.Background(), srv.URL, EventJobCompleted, map[string]any{"job_id": "job-1", "variant": "slim"}); err != nil {
		t.Fatalf("send returned error: %v", err)
	}
	if !<-verified {
		t.Fatal("expected receiver to verify the signature")
	}
}

func TestSendRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(Config{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	})
	if err := client.Send(context.Background(), srv.URL, EventJobFailed, map[string]any{}); err != nil {
		t.Fatalf("send returned error: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	client := NewClient(Config{
		MaxAttempts:    4,
		InitialBackoff: time.Millisecond,
	})
	err := client.Send(context.Background(), srv.URL, EventJobFailed, map[string]any{})
	if err == nil || !strings.Contains(err.Error(), "status=410") {
		t.Fatalf("expected status=410 error, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestSendEmptyEndpointIsNoop(t *testing.T) {
	if err := NewClient(Config{}).Send(context.Background(), "  ", EventJobCompleted, nil); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestRetryableStatus(t *testing.T) {
	cases := map[int]bool{
		http.StatusBadRequest:          false,
		http.StatusGone:                false,
		http.StatusRequestTimeout:      true,
		http.StatusTooManyRequests:     true,
		http.StatusInternalServerError: true,
		http.StatusBadGateway:          true,
	}
	for status, want := range cases {
		if got := retryable(status); got != want {
			t.Fatalf("retryable(%d) = %v, want %v", status, got, want)
		}
	}
}
