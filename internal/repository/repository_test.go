package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/whyando/tft-stat/internal/api"
	"github.com/whyando/tft-stat/internal/domain"
	"github.com/whyando/tft-stat/internal/store"
)

// fakeStore is an in-memory document store. Like the real one it rejects
// duplicate ids and leaves expiry reaping to an external mechanism (tests call
// remove to simulate the reaper).
type fakeStore struct {
	mu      sync.Mutex
	docs    map[string]map[string]any
	inserts map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs:    make(map[string]map[string]any),
		inserts: make(map[string]int),
	}
}

func (s *fakeStore) CountByID(ctx context.Context, collection, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[collection][id]; ok {
		return 1, nil
	}
	return 0, nil
}

func (s *fakeStore) FindOneByID(ctx context.Context, collection, id string, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[collection][id]
	if !ok {
		return store.ErrNotFound
	}
	switch o := out.(type) {
	case *domain.PlayerIdentity:
		*o = *doc.(*domain.PlayerIdentity)
	case *domain.SkillStanding:
		*o = *doc.(*domain.SkillStanding)
	case *domain.MatchRecord:
		*o = *doc.(*domain.MatchRecord)
	default:
		return fmt.Errorf("unsupported type %T", out)
	}
	return nil
}

func (s *fakeStore) InsertOne(ctx context.Context, collection string, doc any) error {
	var id string
	switch d := doc.(type) {
	case *domain.PlayerIdentity:
		id = d.PUUID
	case *domain.SkillStanding:
		id = d.SummonerID
	case *domain.MatchRecord:
		id = d.ID
	default:
		return fmt.Errorf("unsupported type %T", doc)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs[collection] == nil {
		s.docs[collection] = make(map[string]any)
	}
	if _, ok := s.docs[collection][id]; ok {
		return fmt.Errorf("%w: %s", store.ErrDuplicate, id)
	}
	s.docs[collection][id] = doc
	s.inserts[collection]++
	return nil
}

func (s *fakeStore) remove(collection, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs[collection], id)
}

func (s *fakeStore) get(collection, id string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[collection][id]
	return doc, ok
}

var errUpstream = errors.New("upstream unavailable")

// fakeUpstream counts every call per id so tests can assert exactly how many
// upstream fetches a resolution performed.
type fakeUpstream struct {
	mu            sync.Mutex
	summoners     map[string]*api.Summoner
	leagues       map[string][]api.LeagueEntry
	matches       map[string]*api.Match
	failSummoners map[string]bool
	failMatches   map[string]bool
	summonerCalls map[string]int
	leagueCalls   map[string]int
	matchCalls    map[string]int
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		summoners:     make(map[string]*api.Summoner),
		leagues:       make(map[string][]api.LeagueEntry),
		matches:       make(map[string]*api.Match),
		failSummoners: make(map[string]bool),
		failMatches:   make(map[string]bool),
		summonerCalls: make(map[string]int),
		leagueCalls:   make(map[string]int),
		matchCalls:    make(map[string]int),
	}
}

func (u *fakeUpstream) GetSummonerByPUUID(ctx context.Context, region, puuid string) (*api.Summoner, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.summonerCalls[puuid]++
	if u.failSummoners[puuid] {
		return nil, errUpstream
	}
	summoner, ok := u.summoners[puuid]
	if !ok {
		return nil, errUpstream
	}
	return summoner, nil
}

func (u *fakeUpstream) GetLeagueBySummoner(ctx context.Context, region, summonerID string) ([]api.LeagueEntry, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.leagueCalls[summonerID]++
	return u.leagues[summonerID], nil
}

func (u *fakeUpstream) GetMatch(ctx context.Context, regionGroup, matchID string) (*api.Match, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.matchCalls[matchID]++
	if u.failMatches[matchID] {
		return nil, errUpstream
	}
	match, ok := u.matches[matchID]
	if !ok {
		return nil, errUpstream
	}
	return match, nil
}

func (u *fakeUpstream) addPlayer(puuid, summonerID, name string, entries ...api.LeagueEntry) {
	u.summoners[puuid] = &api.Summoner{
		ID:        summonerID,
		AccountID: "acct-" + summonerID,
		PUUID:     puuid,
		Name:      name,
	}
	u.leagues[summonerID] = entries
}

func rankedEntry(tier, division string, points int) api.LeagueEntry {
	return api.LeagueEntry{
		QueueType:    rankedQueue,
		Tier:         tier,
		Rank:         division,
		LeaguePoints: points,
	}
}

func testMatch(id string, gameTime time.Time, puuids []string) *api.Match {
	return &api.Match{
		Metadata: api.MatchMetadata{
			DataVersion:  "5",
			MatchID:      id,
			Participants: puuids,
		},
		Info: api.MatchInfo{
			GameDatetime: gameTime.UnixMilli(),
			QueueID:      1100,
		},
	}
}
