package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/valpere/hablo/internal/completion"
)

type mockService struct {
	nameVal      string
	completeFunc func(ctx context.Context, req completion.Request) (*completion.Result, error)
	callCount    atomic.Int32
}

func (m *mockService) Name() string { return m.nameVal }

func (m *mockService) Complete(ctx context.Context, req completion.Request) (*completion.Result, error) {
	m.callCount.Add(1)
	if m.completeFunc != nil {
		return m.completeFunc(ctx, req)
	}
	return &completion.Result{Service: m.nameVal, Content: req.Messages[len(req.Messages)-1].Content}, nil
}

func TestOrchestrator_New_Defaults(t *testing.T) {
	o := New(&mockService{nameVal: "mock"}, OrchestratorConfig{}, nil)

	if o.config.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("expected MaxAttempts=%d, got %d", DefaultMaxAttempts, o.config.MaxAttempts)
	}
	if o.config.RetryDelay <= 0 {
		t.Error("expected positive RetryDelay")
	}
	if o.logger == nil {
		t.Error("expected a default logger")
	}
	if o.ServiceName() != "mock" {
		t.Errorf("expected service name 'mock', got %q", o.ServiceName())
	}
}

func TestOrchestrator_Complete_Success(t *testing.T) {
	svc := &mockService{nameVal: "mock"}
	o := New(svc, OrchestratorConfig{
		Timeout:     5 * time.Second,
		MaxAttempts: 3,
		RetryDelay:  10 * time.Millisecond,
	}, zap.NewNop())

	res, err := o.Complete(context.Background(), completion.UserPrompt("Hola", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Content != "Hola" {
		t.Errorf("unexpected content %q", res.Content)
	}
	if svc.callCount.Load() != 1 {
		t.Errorf("expected 1 call, got %d", svc.callCount.Load())
	}
}

func TestOrchestrator_Complete_WithRetry(t *testing.T) {
	callCount := atomic.Int32{}
	svc := &mockService{
		nameVal: "retryable",
		completeFunc: func(ctx context.Context, req completion.Request) (*completion.Result, error) {
			if callCount.Add(1) < 3 {
				return nil, errors.New("temporary failure")
			}
			return &completion.Result{Service: "retryable", Content: "success on 3rd attempt"}, nil
		},
	}

	o := New(svc, OrchestratorConfig{
		Timeout:     5 * time.Second,
		MaxAttempts: 3,
		RetryDelay:  10 * time.Millisecond,
	}, nil)

	res, err := o.Complete(context.Background(), completion.UserPrompt("Hola", nil))
	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if res.Content != "success on 3rd attempt" {
		t.Errorf("unexpected content %q", res.Content)
	}
	if svc.callCount.Load() != 3 {
		t.Errorf("expected 3 calls (1 initial + 2 retries), got %d", svc.callCount.Load())
	}
}

func TestOrchestrator_Complete_AttemptsExhausted(t *testing.T) {
	svc := &mockService{
		nameVal: "failing",
		completeFunc: func(ctx context.Context, req completion.Request) (*completion.Result, error) {
			return nil, errors.New("always fails")
		},
	}

	o := New(svc, OrchestratorConfig{
		Timeout:     5 * time.Second,
		MaxAttempts: 2,
		RetryDelay:  10 * time.Millisecond,
	}, nil)

	_, err := o.Complete(context.Background(), completion.UserPrompt("Hola", nil))
	if err == nil {
		t.Fatal("expected error when all attempts fail")
	}
	if !strings.Contains(err.Error(), "always fails") {
		t.Errorf("expected wrapped cause, got %v", err)
	}
	if svc.callCount.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", svc.callCount.Load())
	}
}

func TestOrchestrator_Complete_PerCallTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc := &mockService{
		nameVal: "slow",
		completeFunc: func(ctx context.Context, req completion.Request) (*completion.Result, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	o := New(svc, OrchestratorConfig{
		Timeout:     20 * time.Millisecond,
		MaxAttempts: 2,
		RetryDelay:  10 * time.Millisecond,
	}, nil)

	_, err := o.Complete(context.Background(), completion.UserPrompt("Hola", nil))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if svc.callCount.Load() != 2 {
		t.Errorf("expected every attempt to time out separately, got %d calls", svc.callCount.Load())
	}
}

func TestOrchestrator_Complete_Cancellation(t *testing.T) {
	svc := &mockService{
		nameVal: "failing",
		completeFunc: func(ctx context.Context, req completion.Request) (*completion.Result, error) {
			return nil, errors.New("fails")
		},
	}

	o := New(svc, OrchestratorConfig{
		Timeout:     time.Second,
		MaxAttempts: 5,
		RetryDelay:  time.Second,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Complete(ctx, completion.UserPrompt("Hola", nil))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if svc.callCount.Load() > 1 {
		t.Errorf("expected no retries after cancellation, got %d calls", svc.callCount.Load())
	}
}

func TestOrchestrator_CompleteAll_PreservesOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc := &mockService{
		nameVal: "mock",
		completeFunc: func(ctx context.Context, req completion.Request) (*completion.Result, error) {
			content := req.Messages[0].Content
			if content == "uno" {
				time.Sleep(20 * time.Millisecond)
			}
			return &completion.Result{Content: content}, nil
		},
	}

	o := New(svc, OrchestratorConfig{Timeout: time.Second, MaxAttempts: 1}, nil)

	reqs := []completion.Request{
		completion.UserPrompt("uno", nil),
		completion.UserPrompt("dos", nil),
		completion.UserPrompt("tres", nil),
	}

	results, err := o.CompleteAll(context.Background(), reqs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []string{"uno", "dos", "tres"} {
		if results[i].Content != want {
			t.Errorf("result %d: expected %q, got %q", i, want, results[i].Content)
		}
	}
}

func TestOrchestrator_CompleteAll_Empty(t *testing.T) {
	o := New(&mockService{nameVal: "mock"}, OrchestratorConfig{}, nil)

	results, err := o.CompleteAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestOrchestrator_CompleteAll_WithFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc := &mockService{
		nameVal: "mock",
		completeFunc: func(ctx context.Context, req completion.Request) (*completion.Result, error) {
			if req.Messages[0].Content == "dos" {
				return nil, errors.New("service unavailable")
			}
			return &completion.Result{Content: req.Messages[0].Content}, nil
		},
	}

	o := New(svc, OrchestratorConfig{Timeout: time.Second, MaxAttempts: 1}, nil)

	_, err := o.CompleteAll(context.Background(), []completion.Request{
		completion.UserPrompt("uno", nil),
		completion.UserPrompt("dos", nil),
	})
	if err == nil {
		t.Fatal("expected error when one request fails")
	}
	if !strings.Contains(err.Error(), "service unavailable") {
		t.Errorf("unexpected error %v", err)
	}
}
