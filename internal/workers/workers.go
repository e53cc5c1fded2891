package workers

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type LinkExpirer interface {
	ExpireDue(now int64) (int64, error)
}

type DayRoller interface {
	RollupDay(date string) (int, error)
}

// ExpireLinks flips active links whose expiry has passed to expired.
func ExpireLinks(repo LinkExpirer, now time.Time) (int64, error) {
	n, err := repo.ExpireDue(now.Unix())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info().Int64("count", n).Msg("expired payment links")
	}
	return n, nil
}

// AggregateDailyStats rolls up the previous UTC day's scans.
func AggregateDailyStats(roller DayRoller, now time.Time) (int, error) {
	day := now.UTC().AddDate(0, 0, -1).Format("2006-01-02")
	n, err := roller.RollupDay(day)
	if err != nil {
		return 0, err
	}
	log.Info().Str("date", day).Int("links", n).Msg("daily stats aggregated")
	return n, nil
}

// nextRollup returns the next 01:00 UTC after now.
func nextRollup(now time.Time) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), 1, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

type Runner struct {
	Links          LinkExpirer
	Stats          DayRoller
	ExpiryInterval time.Duration
	now            func() time.Time
}

func NewRunner(links LinkExpirer, stats DayRoller, expiryInterval time.Duration) *Runner {
	if expiryInterval <= 0 {
		expiryInterval = time.Hour
	}
	return &Runner{Links: links, Stats: stats, ExpiryInterval: expiryInterval, now: time.Now}
}

// Run sweeps expired links every ExpiryInterval and aggregates stats daily at
// 01:00 UTC until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	log.Info().Dur("expiry_interval", r.ExpiryInterval).Msg("workers started")

	r.expire()

	ticker := time.NewTicker(r.ExpiryInterval)
	defer ticker.Stop()

	rollup := time.NewTimer(nextRollup(r.now()).Sub(r.now()))
	defer rollup.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("workers stopped")
			return
		case <-ticker.C:
			r.expire()
		case <-rollup.C:
			if _, err := AggregateDailyStats(r.Stats, r.now()); err != nil {
				log.Error().Err(err).Msg("daily stats aggregation failed")
			}
			rollup.Reset(nextRollup(r.now()).Sub(r.now()))
		}
	}
}

func (r *Runner) expire() {
	if _, err := ExpireLinks(r.Links, r.now()); err != nil {
		log.Error().Err(err).Msg("link expiry sweep failed")
	}
}
