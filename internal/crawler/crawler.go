// Package crawler composes the enumerator, the cache-aside repositories and
// the bounded scheduler into one forever-running harvest loop per region.
package crawler

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/whyando/tft-stat/internal/api"
	"github.com/whyando/tft-stat/internal/config"
	"github.com/whyando/tft-stat/internal/constants"
	"github.com/whyando/tft-stat/internal/repository"
	"github.com/whyando/tft-stat/internal/scheduler"
)

// Upstream is everything a runner needs from the Riot client.
type Upstream interface {
	repository.Upstream
	LadderSource
	GetSummonerByID(ctx context.Context, region, summonerID string) (*api.Summoner, error)
	GetMatchIDs(ctx context.Context, regionGroup, puuid string, count int) ([]string, error)
}

// Runner crawls one region. Regions are independent: no coordination, no
// shared state beyond the API client and the document store.
type Runner struct {
	region      config.Region
	riot        Upstream
	enumerator  *Enumerator
	matches     *repository.MatchRepository
	concurrency int
	logger      zerolog.Logger
}

func NewRunner(region config.Region, riot Upstream, st repository.Store, cfg *config.Config, logger zerolog.Logger) *Runner {
	identities := repository.NewIdentityRepository(st, riot, region.Name, logger)
	standings := repository.NewStandingRepository(st, riot, region.Name, logger)
	matches := repository.NewMatchRepository(st, riot, identities, standings, region.Group, logger)

	return &Runner{
		region:      region,
		riot:        riot,
		enumerator:  NewEnumerator(riot, region.Name, logger),
		matches:     matches,
		concurrency: cfg.PlayerConcurrency,
		logger:      logger.With().Str("region", region.Name).Logger(),
	}
}

// Run loops forever, one full crawl cycle at a time. A failed cycle never
// terminates the runner; the next cycle simply starts over. Cancellation is
// only honored between cycles, so an in-flight cycle always finishes.
func (r *Runner) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			r.logger.Info().Msg("crawl stopped")
			return
		}
		r.runCycle(ctx)
	}
}

type playerReport struct {
	matches int
	newer   int
	repeat  int
	failed  int
}

type cycleStats struct {
	playersFailed int
	matches       int
	newer         int
	repeat        int
	failed        int
}

func (r *Runner) runCycle(ctx context.Context) {
	log := r.logger.With().Str("cycle_id", uuid.New().String()).Logger()
	log.Info().Msg("cycle started")

	ids, err := r.enumerator.PlayerIDs(ctx, Targets)
	if err != nil {
		log.Error().Err(err).Msg("ladder enumeration failed, aborting cycle")
		return
	}
	log.Info().Int("players", len(ids)).Msg("ladder enumerated")

	tasks := make([]scheduler.Task[playerReport], len(ids))
	for i, id := range ids {
		i, id := i, id
		tasks[i] = func(ctx context.Context) (playerReport, error) {
			return r.processPlayer(ctx, log, i, id)
		}
	}

	var stats cycleStats
	scheduler.Run(ctx, tasks, r.concurrency, func(res scheduler.Result[playerReport]) {
		if res.Err != nil {
			log.Error().Err(res.Err).Int("index", res.Index).Msg("player processing failed")
			stats.playersFailed++
			return
		}
		stats.matches += res.Value.matches
		stats.newer += res.Value.newer
		stats.repeat += res.Value.repeat
		stats.failed += res.Value.failed
	})

	log.Info().
		Int("players", len(ids)).
		Int("players_failed", stats.playersFailed).
		Int("matches", stats.matches).
		Int("matches_new", stats.newer).
		Int("matches_repeat", stats.repeat).
		Int("matches_failed", stats.failed).
		Msg("cycle complete")
}

// processPlayer fetches the player's identity and recent match ids, then
// resolves every match in list order. Matches run through the scheduler with a
// ceiling of one so they stay sequential within a player; concurrency comes
// from the player pool above.
func (r *Runner) processPlayer(ctx context.Context, log zerolog.Logger, index int, summonerID string) (playerReport, error) {
	summoner, err := r.riot.GetSummonerByID(ctx, r.region.Name, summonerID)
	if err != nil {
		return playerReport{}, err
	}

	matchIDs, err := r.riot.GetMatchIDs(ctx, r.region.Group, summoner.PUUID, constants.MatchHistoryLimit)
	if err != nil {
		return playerReport{}, err
	}

	report := playerReport{matches: len(matchIDs)}
	tasks := make([]scheduler.Task[repository.MatchOutcome], len(matchIDs))
	for i, matchID := range matchIDs {
		matchID := matchID
		tasks[i] = func(ctx context.Context) (repository.MatchOutcome, error) {
			return r.matches.Resolve(ctx, matchID)
		}
	}
	scheduler.Run(ctx, tasks, constants.MatchConcurrency, func(res scheduler.Result[repository.MatchOutcome]) {
		if res.Err != nil {
			log.Error().Err(res.Err).Str("match_id", matchIDs[res.Index]).Msg("match processing abandoned")
			return
		}
		switch res.Value {
		case repository.MatchNew:
			report.newer++
		case repository.MatchRepeat:
			report.repeat++
		case repository.MatchFailed:
			report.failed++
		}
	})

	log.Debug().
		Int("index", index).
		Str("name", summoner.Name).
		Int("matches", report.matches).
		Int("new", report.newer).
		Int("repeat", report.repeat).
		Int("failed", report.failed).
		Msg("player processed")
	return report, nil
}
