package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/whyando/tft-stat/internal/constants"
	"github.com/whyando/tft-stat/internal/domain"
	"github.com/whyando/tft-stat/internal/rank"
	"github.com/whyando/tft-stat/internal/scheduler"
	"github.com/whyando/tft-stat/internal/store"
)

// MatchOutcome classifies one match resolution for the cycle counters.
type MatchOutcome int

const (
	// MatchRepeat means a non-expired document already existed.
	MatchRepeat MatchOutcome = iota
	// MatchNew means the match was fetched, enriched and stored.
	MatchNew
	// MatchFailed means the upstream fetch failed and a tombstone was stored
	// so the id is not retried within its TTL window.
	MatchFailed
)

// MatchRepository resolves match records by match id. A cache miss fans out
// into up to eight participant resolutions (identity, then standing keyed by
// the summoner id the identity yields) before the enriched document is
// assembled and inserted.
type MatchRepository struct {
	store       Store
	riot        Upstream
	identities  *IdentityRepository
	standings   *StandingRepository
	regionGroup string
	logger      zerolog.Logger
	now         func() time.Time
}

func NewMatchRepository(st Store, riot Upstream, identities *IdentityRepository, standings *StandingRepository, regionGroup string, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{
		store:       st,
		riot:        riot,
		identities:  identities,
		standings:   standings,
		regionGroup: regionGroup,
		logger:      logger,
		now:         time.Now,
	}
}

func (r *MatchRepository) Resolve(ctx context.Context, matchID string) (MatchOutcome, error) {
	count, err := r.store.CountByID(ctx, constants.MatchesCollection, matchID)
	if err != nil {
		return 0, err
	}
	if count != 0 {
		var cached domain.MatchRecord
		if err := r.store.FindOneByID(ctx, constants.MatchesCollection, matchID, &cached); err != nil {
			return 0, err
		}
		if cached.DocumentExpire.After(r.now()) {
			return MatchRepeat, nil
		}
		// Expired but not yet reaped by the store; fall through to re-fetch.
	}

	created := r.now()
	game, err := r.riot.GetMatch(ctx, r.regionGroup, matchID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("match_id", matchID).
			Str("region_group", r.regionGroup).
			Msg("match fetch failed, storing tombstone")

		tombstone := &domain.MatchRecord{
			ID:              matchID,
			DocumentCreated: created,
			DocumentExpire:  created.Add(constants.TombstoneTTL),
			AverageRank:     domain.AverageRankUnknown,
			AverageRankText: domain.AverageRankUnknownText,
		}
		if err := r.store.InsertOne(ctx, constants.MatchesCollection, tombstone); err != nil && !errors.Is(err, store.ErrDuplicate) {
			return 0, err
		}
		return MatchFailed, nil
	}

	participants, err := r.enrichParticipants(ctx, game.Metadata.Participants)
	if err != nil {
		return 0, err
	}

	matchTimestamp := time.UnixMilli(game.Info.GameDatetime)
	doc := &domain.MatchRecord{
		ID:              matchID,
		DocumentCreated: created,
		MatchTimestamp:  matchTimestamp,
		DocumentExpire:  matchExpiry(created, matchTimestamp),
		Detail:          game,
		Participants:    participants,
	}
	doc.AverageRank, doc.AverageRankText, err = averageRank(participants)
	if err != nil {
		return 0, err
	}

	if err := r.store.InsertOne(ctx, constants.MatchesCollection, doc); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// The expired document holds the id until the reaper runs; a
			// later cycle stores the refreshed record.
			return MatchRepeat, nil
		}
		return 0, err
	}
	return MatchNew, nil
}

// enrichParticipants resolves identity then standing for every participant,
// fanning out through the bounded scheduler. Any single failure abandons the
// whole match; it will be tried again on a later cycle.
func (r *MatchRepository) enrichParticipants(ctx context.Context, puuids []string) ([]domain.Participant, error) {
	tasks := make([]scheduler.Task[domain.Participant], len(puuids))
	for i, puuid := range puuids {
		puuid := puuid
		tasks[i] = func(ctx context.Context) (domain.Participant, error) {
			identity, err := r.identities.Resolve(ctx, puuid)
			if err != nil {
				return domain.Participant{}, err
			}
			standing, err := r.standings.Resolve(ctx, identity.SummonerID)
			if err != nil {
				return domain.Participant{}, err
			}
			return domain.Participant{
				PUUID:        identity.PUUID,
				SummonerID:   identity.SummonerID,
				Name:         identity.Name,
				Status:       standing.Status,
				Tier:         standing.Tier,
				Division:     standing.Division,
				LeaguePoints: standing.LeaguePoints,
			}, nil
		}
	}

	enriched := make([]domain.Participant, len(tasks))
	var firstErr error
	scheduler.Run(ctx, tasks, constants.ParticipantConcurrency, func(res scheduler.Result[domain.Participant]) {
		if res.Err != nil {
			if firstErr == nil {
				firstErr = res.Err
			}
			return
		}
		enriched[res.Index] = res.Value
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return enriched, nil
}

// matchExpiry keeps a match until 7 days past its game time, but never lets a
// document expire within 24 hours of creation.
func matchExpiry(created, matchTimestamp time.Time) time.Time {
	expire := matchTimestamp.Add(constants.MatchRetentionAfterPlay)
	if floor := created.Add(constants.MatchMinRetention); floor.After(expire) {
		return floor
	}
	return expire
}

// averageRank computes the team mean only when exactly eight participants are
// ranked; otherwise the unknown sentinel is stored.
func averageRank(participants []domain.Participant) (int, string, error) {
	if len(participants) != constants.TeamSize {
		return domain.AverageRankUnknown, domain.AverageRankUnknownText, nil
	}
	entries := make([]rank.Entry, 0, len(participants))
	for _, p := range participants {
		if p.Status != domain.StatusRanked {
			return domain.AverageRankUnknown, domain.AverageRankUnknownText, nil
		}
		entries = append(entries, rank.Entry{
			Tier:     rank.Tier(p.Tier),
			Division: rank.Division(p.Division),
			Points:   p.LeaguePoints,
		})
	}
	return rank.TeamAverage(entries)
}
