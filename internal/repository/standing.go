package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/whyando/tft-stat/internal/constants"
	"github.com/whyando/tft-stat/internal/domain"
	"github.com/whyando/tft-stat/internal/rank"
	"github.com/whyando/tft-stat/internal/store"
)

// StandingRepository resolves ranked-ladder standings by summoner id with a
// 1-day TTL. A summoner with no ranked-queue entry is cached as unranked for
// the same TTL rather than re-fetched every cycle.
type StandingRepository struct {
	store  Store
	riot   Upstream
	region string
	logger zerolog.Logger
	group  singleflight.Group
	now    func() time.Time
}

func NewStandingRepository(st Store, riot Upstream, region string, logger zerolog.Logger) *StandingRepository {
	return &StandingRepository{
		store:  st,
		riot:   riot,
		region: region,
		logger: logger,
		now:    time.Now,
	}
}

func (r *StandingRepository) Resolve(ctx context.Context, summonerID string) (*domain.SkillStanding, error) {
	v, err, _ := r.group.Do(summonerID, func() (any, error) {
		return r.resolve(ctx, summonerID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.SkillStanding), nil
}

func (r *StandingRepository) resolve(ctx context.Context, summonerID string) (*domain.SkillStanding, error) {
	var cached domain.SkillStanding
	err := r.store.FindOneByID(ctx, constants.LeaguesCollection, summonerID, &cached)
	switch {
	case err == nil && cached.DocumentExpire.After(r.now()):
		return &cached, nil
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	entries, err := r.riot.GetLeagueBySummoner(ctx, r.region, summonerID)
	if err != nil {
		return nil, err
	}

	created := r.now()
	doc := &domain.SkillStanding{
		SummonerID:      summonerID,
		Status:          domain.StatusUnranked,
		DocumentCreated: created,
		DocumentExpire:  created.Add(constants.StandingTTL),
	}
	for _, entry := range entries {
		if entry.QueueType != rankedQueue {
			continue
		}
		tier, err := rank.ParseTier(entry.Tier)
		if err != nil {
			return nil, err
		}
		if !tier.Apex() {
			if _, err := rank.ParseDivision(entry.Rank); err != nil {
				return nil, err
			}
		}
		doc.Status = domain.StatusRanked
		doc.Tier = entry.Tier
		doc.Division = entry.Rank
		doc.LeaguePoints = entry.LeaguePoints
		break
	}

	if err := r.store.InsertOne(ctx, constants.LeaguesCollection, doc); err != nil {
		// An expired document can hold the id until the reaper runs; the
		// fresh fetch is still the answer.
		if !errors.Is(err, store.ErrDuplicate) {
			return nil, err
		}
	}

	r.logger.Debug().
		Str("summoner_id", summonerID).
		Str("region", r.region).
		Str("status", string(doc.Status)).
		Msg("standing cached")
	return doc, nil
}
