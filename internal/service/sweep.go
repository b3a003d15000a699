package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/templui/sfss/internal/logger"
	"github.com/templui/sfss/internal/repository"
)

const sweepBatchSize = 100

// SweepService retires shares whose window has closed
type SweepService struct {
	repo   repository.ShareRepository
	shares *ShareService
	now    func() time.Time
	log    *slog.Logger
}

func NewSweepService(repo repository.ShareRepository, shares *ShareService) *SweepService {
	return &SweepService{
		repo:   repo,
		shares: shares,
		now:    time.Now,
		log:    logger.Component("sweep"),
	}
}

// Sweep retires every expired, non-deleted share and returns how many it retired
func (s *SweepService) Sweep(ctx context.Context) (int, error) {
	now := s.now().UTC()
	total := 0
	var errs []error

	for {
		expired, err := s.repo.Expired(ctx, now, sweepBatchSize)
		if err != nil {
			return total, fmt.Errorf("failed to list expired shares: %w", err)
		}

		retired := 0
		for _, share := range expired {
			_, err := s.shares.Retire(ctx, share.ID)
			if err != nil {
				errs = append(errs, fmt.Errorf("share %s: %w", share.ID, err))
				continue
			}
			retired++
		}

		total += retired
		sweptShares.Add(float64(retired))

		// A short batch is the last one; a batch with no progress would repeat forever
		if len(expired) < sweepBatchSize || retired == 0 {
			break
		}
	}

	if total > 0 {
		s.log.Info("expired shares retired", "count", total)
	}

	return total, errors.Join(errs...)
}

// Run sweeps every interval until ctx is cancelled
func (s *SweepService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, err := s.Sweep(ctx)
			if err != nil {
				s.log.Error("sweep failed", "error", err)
			}
		}
	}
}
