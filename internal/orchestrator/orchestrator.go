// Package orchestrator runs completion requests against one service with a
// per-call timeout and bounded retries, alone or as a concurrent batch.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/valpere/hablo/internal/completion"
)

const (
	DefaultMaxAttempts = 2
	DefaultRetryDelay  = 500 * time.Millisecond
)

type OrchestratorConfig struct {
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
}

type Orchestrator struct {
	service completion.Service
	config  OrchestratorConfig
	logger  *zap.Logger
}

func New(service completion.Service, config OrchestratorConfig, logger *zap.Logger) *Orchestrator {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = DefaultRetryDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		service: service,
		config:  config,
		logger:  logger,
	}
}

func (o *Orchestrator) ServiceName() string {
	return o.service.Name()
}

// Complete sends req, retrying failed attempts after RetryDelay. Each attempt
// gets its own Timeout. Cancellation of ctx stops retrying.
func (o *Orchestrator) Complete(ctx context.Context, req completion.Request) (*completion.Result, error) {
	var lastErr error

	for attempt := 1; attempt <= o.config.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(o.config.RetryDelay):
			}
		}

		res, err := o.attempt(ctx, req)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		o.logger.Warn("Completion attempt failed",
			zap.String("service", o.service.Name()),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", o.config.MaxAttempts),
			zap.Error(err))
	}

	return nil, fmt.Errorf("%s failed after %d attempts: %w", o.service.Name(), o.config.MaxAttempts, lastErr)
}

func (o *Orchestrator) attempt(ctx context.Context, req completion.Request) (*completion.Result, error) {
	if o.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.config.Timeout)
		defer cancel()
	}
	return o.service.Complete(ctx, req)
}

// CompleteAll sends every request concurrently. Results are in request order.
// The first failure cancels the rest and is returned.
func (o *Orchestrator) CompleteAll(ctx context.Context, reqs []completion.Request) ([]*completion.Result, error) {
	results := make([]*completion.Result, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			res, err := o.Complete(gctx, req)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
