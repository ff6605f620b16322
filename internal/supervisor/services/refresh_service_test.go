// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/resonate/internal/cache"
	"github.com/tomtom215/resonate/internal/civic"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) Refresh(ctx context.Context) (*civic.Snapshot, error) {
	c.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("refresh called without a deadline")
	}
	return &civic.Snapshot{Cycle: fmt.Sprintf("c%d", c.calls.Load())}, c.err
}

func TestNewRefreshService_Defaults(t *testing.T) {
	svc := NewRefreshService(&countingRefresher{}, RefreshServiceConfig{}, zerolog.Nop())
	if svc.config.Interval != time.Hour || svc.config.Timeout != 5*time.Minute {
		t.Errorf("expected 1h/5m defaults, got %v/%v", svc.config.Interval, svc.config.Timeout)
	}
}

func TestRefreshService_Serve(t *testing.T) {
	tests := []struct {
		name      string
		onStartup bool
		err       error
		minCalls  int32
	}{
		{"startup and ticks", true, nil, 2},
		{"ticks only", false, nil, 1},
		{"failed cycles keep looping", true, fmt.Errorf("%w: safety", civic.ErrRefreshFailed), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &countingRefresher{err: tt.err}
			svc := NewRefreshService(r, RefreshServiceConfig{
				OnStartup: tt.onStartup,
				Interval:  20 * time.Millisecond,
				Timeout:   time.Second,
			}, zerolog.Nop())

			ctx, cancel := context.WithTimeout(context.Background(), 70*time.Millisecond)
			defer cancel()
			err := svc.Serve(ctx)

			if !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("expected context error on shutdown, got %v", err)
			}
			if r.calls.Load() < tt.minCalls {
				t.Errorf("expected at least %d refreshes, got %d", tt.minCalls, r.calls.Load())
			}
		})
	}
}

func TestCacheJanitorService_Sweep(t *testing.T) {
	clock := cache.NewManualClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	odata := cache.New(time.Minute, cache.WithClock(clock))
	matches := cache.New(time.Hour, cache.WithClock(clock))
	odata.Set("a", 1)
	odata.Set("b", 2)
	matches.Set("m", 3)

	svc := NewCacheJanitorService(map[string]cache.Sweeper{"opendata": odata, "match": matches}, 0, zerolog.Nop())
	if svc.interval != 5*time.Minute {
		t.Errorf("expected default interval 5m, got %v", svc.interval)
	}

	if n := svc.Sweep(); n != 0 {
		t.Errorf("expected nothing expired yet, swept %d", n)
	}
	clock.Advance(2 * time.Minute)
	if n := svc.Sweep(); n != 2 {
		t.Errorf("expected 2 expired opendata entries, swept %d", n)
	}
	if matches.Len() != 1 {
		t.Errorf("match cache entry should survive, len = %d", matches.Len())
	}
}
