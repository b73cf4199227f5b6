package crawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/whyando/tft-stat/internal/api"
	"github.com/whyando/tft-stat/internal/constants"
)

// LadderSource is the slice of the Riot client the enumerator consumes.
type LadderSource interface {
	GetApexLeague(ctx context.Context, region, apexTier string) (*api.LeagueList, error)
	GetLeagueEntries(ctx context.Context, region, tier, division string, page int) ([]api.LeagueEntry, error)
}

// Enumerator walks the configured ladder table for one region and produces the
// candidate player-id pool for a crawl cycle. Each (tier, division) pair is
// fetched independently and retried whole on transient errors; running out of
// retries is fatal for the cycle, since crawl quality depends on complete
// coverage.
type Enumerator struct {
	riot     LadderSource
	region   string
	logger   zerolog.Logger
	attempts uint64
	delay    time.Duration
}

func NewEnumerator(riot LadderSource, region string, logger zerolog.Logger) *Enumerator {
	return &Enumerator{
		riot:     riot,
		region:   region,
		logger:   logger,
		attempts: constants.LeagueFetchAttempts,
		delay:    constants.LeagueRetryDelay,
	}
}

// PlayerIDs returns a flat, order-preserving id list across all targets.
// Duplicates are permitted; dedup happens later at the document level.
func (e *Enumerator) PlayerIDs(ctx context.Context, targets []Target) ([]string, error) {
	var ids []string
	for _, target := range targets {
		backoff := retry.WithMaxRetries(e.attempts-1, retry.NewConstant(e.delay))

		var entries []string
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			var err error
			entries, err = e.fetchTarget(ctx, target)
			if err != nil {
				e.logger.Error().
					Err(err).
					Str("region", e.region).
					Str("tier", string(target.Tier)).
					Str("division", string(target.Division)).
					Msg("league entries fetch failed")
				return retry.RetryableError(err)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("enumerating %s %s %s: %w", e.region, target.Tier, target.Division, err)
		}

		e.logger.Info().
			Str("region", e.region).
			Str("tier", string(target.Tier)).
			Str("division", string(target.Division)).
			Int("count", len(entries)).
			Msg("league entries fetched")
		ids = append(ids, entries...)
	}
	return ids, nil
}

// fetchTarget restarts from page 1 on every attempt; no partial pagination
// state survives a retry.
func (e *Enumerator) fetchTarget(ctx context.Context, target Target) ([]string, error) {
	if target.Tier.Apex() {
		league, err := e.riot.GetApexLeague(ctx, e.region, strings.ToLower(string(target.Tier)))
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(league.Entries))
		for _, entry := range league.Entries {
			ids = append(ids, entry.SummonerID)
		}
		return ids, nil
	}

	var ids []string
	for page := 1; ; page++ {
		entries, err := e.riot.GetLeagueEntries(ctx, e.region, string(target.Tier), string(target.Division), page)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return ids, nil
		}
		for _, entry := range entries {
			ids = append(ids, entry.SummonerID)
		}
	}
}
