package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/whyando/tft-stat/internal/constants"
	"github.com/whyando/tft-stat/internal/domain"
	"github.com/whyando/tft-stat/internal/store"
)

// IdentityRepository resolves player identities by puuid with a 30-day TTL.
// An upstream failure propagates to the caller: identity is a required input
// and processing of the enclosing player or match is abandoned without it.
type IdentityRepository struct {
	store  Store
	riot   Upstream
	region string
	logger zerolog.Logger
	group  singleflight.Group
	now    func() time.Time
}

func NewIdentityRepository(st Store, riot Upstream, region string, logger zerolog.Logger) *IdentityRepository {
	return &IdentityRepository{
		store:  st,
		riot:   riot,
		region: region,
		logger: logger,
		now:    time.Now,
	}
}

func (r *IdentityRepository) Resolve(ctx context.Context, puuid string) (*domain.PlayerIdentity, error) {
	// Concurrent resolutions of one puuid collapse to a single fetch+insert.
	v, err, _ := r.group.Do(puuid, func() (any, error) {
		return r.resolve(ctx, puuid)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.PlayerIdentity), nil
}

func (r *IdentityRepository) resolve(ctx context.Context, puuid string) (*domain.PlayerIdentity, error) {
	var cached domain.PlayerIdentity
	err := r.store.FindOneByID(ctx, constants.SummonersCollection, puuid, &cached)
	switch {
	case err == nil && cached.DocumentExpire.After(r.now()):
		return &cached, nil
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	summoner, err := r.riot.GetSummonerByPUUID(ctx, r.region, puuid)
	if err != nil {
		return nil, err
	}

	created := r.now()
	doc := &domain.PlayerIdentity{
		PUUID:           summoner.PUUID,
		SummonerID:      summoner.ID,
		AccountID:       summoner.AccountID,
		Name:            summoner.Name,
		DocumentCreated: created,
		DocumentExpire:  created.Add(constants.IdentityTTL),
	}
	if err := r.store.InsertOne(ctx, constants.SummonersCollection, doc); err != nil {
		// An expired document can hold the id until the reaper runs; the
		// fresh fetch is still the answer.
		if !errors.Is(err, store.ErrDuplicate) {
			return nil, err
		}
	}

	r.logger.Debug().Str("puuid", puuid).Str("region", r.region).Msg("identity cached")
	return doc, nil
}
