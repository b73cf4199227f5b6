// Package repository implements the read-through, cache-aside stores for the
// three entity kinds: player identity, skill standing, match record. A lookup
// first checks the document store; only on a miss (or an expired document the
// store's TTL monitor has not yet removed) is the upstream API called, and the
// result is stamped with an entity-specific expiry and inserted before being
// returned. Documents are never updated after insert.
package repository

import (
	"context"

	"github.com/whyando/tft-stat/internal/api"
)

// Store is the document-store surface the repositories consume.
type Store interface {
	CountByID(ctx context.Context, collection, id string) (int64, error)
	FindOneByID(ctx context.Context, collection, id string, out any) error
	InsertOne(ctx context.Context, collection string, doc any) error
}

// Upstream is the slice of the Riot client the repositories consume.
type Upstream interface {
	GetSummonerByPUUID(ctx context.Context, region, puuid string) (*api.Summoner, error)
	GetLeagueBySummoner(ctx context.Context, region, summonerID string) ([]api.LeagueEntry, error)
	GetMatch(ctx context.Context, regionGroup, matchID string) (*api.Match, error)
}

const rankedQueue = "RANKED_TFT"
