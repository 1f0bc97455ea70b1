package core

import (
	"context"
	"errors"
	"fmt"
	"qrlink/entity"
	"qrlink/lib/clock"
	"qrlink/lib/sl"
	"time"
)

const scanLogTimeout = 10 * time.Second

// Scan returns the redirect target of an active code and counts the scan.
// The scan log is written in the background, the redirect never waits for it
// until Wait has been called.
func (c *Core) Scan(ctx context.Context, code string, meta entity.ScanMeta) (string, error) {
	target, err := c.target(ctx, code)
	if err != nil {
		return "", err
	}
	if !target.IsActive {
		return "", entity.ErrForbidden
	}
	if target.TargetURL == "" {
		c.log.With(sl.Code(code)).Error("active qr code without target url")
		return "", entity.ErrTargetMissing
	}

	if err = c.db.IncrementScanCount(ctx, code, 1); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			c.invalidate(ctx, code)
		}
		return "", err
	}

	c.logScan(meta.Event(code, clock.Now()))
	return target.TargetURL, nil
}

func (c *Core) target(ctx context.Context, code string) (*entity.ScanTarget, error) {
	if c.cache != nil {
		target, ok, err := c.cache.Target(ctx, code)
		if err != nil {
			c.log.With(sl.Code(code), sl.Err(err)).Warn("cache read")
		}
		if ok {
			return target, nil
		}
	}

	qr, err := c.db.GetQRCode(ctx, code)
	if err != nil {
		return nil, err
	}
	target := qr.Target()

	if c.cache != nil {
		if err = c.cache.SetTarget(ctx, code, target); err != nil {
			c.log.With(sl.Code(code), sl.Err(err)).Warn("cache write")
		}
	}
	return &target, nil
}

func (c *Core) logScan(event *entity.ScanEvent) {
	c.mu.Lock()
	if c.stopping {
		c.mu.Unlock()
		c.appendScan(event)
		return
	}
	c.pending.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.pending.Done()
		c.appendScan(event)
	}()
}

func (c *Core) appendScan(event *entity.ScanEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), scanLogTimeout)
	defer cancel()

	if _, err := c.db.AppendScan(ctx, event); err != nil {
		c.log.With(sl.Code(event.Code), sl.Err(err)).Error("scan log append")
	}
}

func (c *Core) Stats(ctx context.Context, code string) (*entity.QRCode, error) {
	return c.db.GetQRCode(ctx, code)
}

// GlobalStats sums over a full pass of qr_codes, there is no precomputed counter
func (c *Core) GlobalStats(ctx context.Context) (*entity.Stats, error) {
	stats := &entity.Stats{}
	for qr, err := range c.db.QRCodes(ctx) {
		if err != nil {
			return nil, fmt.Errorf("global stats: %w", err)
		}
		stats.TotalCodes++
		stats.TotalScans += qr.ScanCount
	}
	return stats, nil
}
