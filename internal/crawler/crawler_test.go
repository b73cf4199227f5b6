package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/whyando/tft-stat/internal/api"
	"github.com/whyando/tft-stat/internal/config"
	"github.com/whyando/tft-stat/internal/constants"
	"github.com/whyando/tft-stat/internal/domain"
	"github.com/whyando/tft-stat/internal/store"
)

type memStore struct {
	mu   sync.Mutex
	docs map[string]map[string]any
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string]map[string]any)}
}

func (s *memStore) CountByID(ctx context.Context, collection, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[collection][id]; ok {
		return 1, nil
	}
	return 0, nil
}

func (s *memStore) FindOneByID(ctx context.Context, collection, id string, out any) error {
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

func (s *memStore) InsertOne(ctx context.Context, collection string, doc any) error {
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
		return fmt.Errorf("duplicate key: %s", id)
	}
	s.docs[collection][id] = doc
	return nil
}

func (s *memStore) size(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs[collection])
}

func (s *memStore) record(collection, id string) (*domain.MatchRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[collection][id]
	if !ok {
		return nil, false
	}
	return doc.(*domain.MatchRecord), true
}

var errFake = errors.New("fake upstream error")

// fakeRiot implements the full Upstream surface a runner consumes.
type fakeRiot struct {
	*fakeLadder
	mu           sync.Mutex
	summonersByI map[string]*api.Summoner
	summonersByP map[string]*api.Summoner
	leagues      map[string][]api.LeagueEntry
	matchIDs     map[string][]string
	matches      map[string]*api.Match
	failMatches  map[string]bool
	matchCalls   map[string]int
}

func newFakeRiot() *fakeRiot {
	return &fakeRiot{
		fakeLadder:   newFakeLadder(),
		summonersByI: make(map[string]*api.Summoner),
		summonersByP: make(map[string]*api.Summoner),
		leagues:      make(map[string][]api.LeagueEntry),
		matchIDs:     make(map[string][]string),
		matches:      make(map[string]*api.Match),
		failMatches:  make(map[string]bool),
		matchCalls:   make(map[string]int),
	}
}

func (f *fakeRiot) addSummoner(summonerID, puuid, name string, entries ...api.LeagueEntry) {
	s := &api.Summoner{ID: summonerID, AccountID: "acct-" + summonerID, PUUID: puuid, Name: name}
	f.summonersByI[summonerID] = s
	f.summonersByP[puuid] = s
	f.leagues[summonerID] = entries
}

func (f *fakeRiot) GetSummonerByID(ctx context.Context, region, summonerID string) (*api.Summoner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.summonersByI[summonerID]; ok {
		return s, nil
	}
	return nil, errFake
}

func (f *fakeRiot) GetSummonerByPUUID(ctx context.Context, region, puuid string) (*api.Summoner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.summonersByP[puuid]; ok {
		return s, nil
	}
	return nil, errFake
}

func (f *fakeRiot) GetLeagueBySummoner(ctx context.Context, region, summonerID string) ([]api.LeagueEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.leagues[summonerID], nil
}

func (f *fakeRiot) GetMatchIDs(ctx context.Context, regionGroup, puuid string, count int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := f.matchIDs[puuid]
	if len(ids) > count {
		ids = ids[:count]
	}
	return ids, nil
}

func (f *fakeRiot) GetMatch(ctx context.Context, regionGroup, matchID string) (*api.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matchCalls[matchID]++
	if f.failMatches[matchID] {
		return nil, errFake
	}
	if m, ok := f.matches[matchID]; ok {
		return m, nil
	}
	return nil, errFake
}

func ranked(tier, division string, points int) api.LeagueEntry {
	return api.LeagueEntry{QueueType: "RANKED_TFT", Tier: tier, Rank: division, LeaguePoints: points}
}

func TestRunnerCycleHarvestsMatches(t *testing.T) {
	riot := newFakeRiot()
	st := newMemStore()

	// Two crawl candidates on the GOLD III ladder; every other ladder slice is
	// empty this cycle.
	riot.setPages("GOLD", "III", []string{"sA", "sB"})
	riot.addSummoner("sA", "pA", "Alice", ranked("GOLD", "III", 10))
	riot.addSummoner("sB", "pB", "Bob", ranked("GOLD", "III", 20))

	// Eight match participants, all ranked.
	participants := make([]string, 8)
	for i := range participants {
		puuid := fmt.Sprintf("pp%d", i+1)
		participants[i] = puuid
		riot.addSummoner(fmt.Sprintf("ss%d", i+1), puuid, fmt.Sprintf("Part%d", i+1), ranked("PLATINUM", "II", 40))
	}

	shared := &api.Match{
		Metadata: api.MatchMetadata{MatchID: "m-shared", Participants: participants},
		Info:     api.MatchInfo{GameDatetime: time.Now().UnixMilli()},
	}
	riot.matches["m-shared"] = shared
	riot.failMatches["m-broken"] = true

	// Both players played the shared match; only Alice has the broken one.
	riot.matchIDs["pA"] = []string{"m-shared", "m-broken"}
	riot.matchIDs["pB"] = []string{"m-shared"}

	cfg := &config.Config{PlayerConcurrency: 1}
	runner := NewRunner(config.Region{Name: "na1", Group: "americas"}, riot, st, cfg, zerolog.Nop())

	runner.runCycle(context.Background())

	record, ok := st.record(constants.MatchesCollection, "m-shared")
	if !ok {
		t.Fatal("shared match not stored")
	}
	if record.Tombstone() {
		t.Fatal("shared match stored as tombstone")
	}
	if len(record.Participants) != 8 {
		t.Errorf("participants = %d, want 8", len(record.Participants))
	}
	if record.AverageRank != 1840 {
		t.Errorf("average rank = %d, want 1840", record.AverageRank)
	}
	if record.AverageRankText != "PLATINUM II 40LP" {
		t.Errorf("average text = %q", record.AverageRankText)
	}

	broken, ok := st.record(constants.MatchesCollection, "m-broken")
	if !ok {
		t.Fatal("tombstone for broken match not stored")
	}
	if !broken.Tombstone() {
		t.Error("broken match is not a tombstone")
	}

	// The shared match was fetched once; Bob's pass was a pure cache hit.
	if calls := riot.matchCalls["m-shared"]; calls != 1 {
		t.Errorf("shared match fetched %d times, want 1", calls)
	}
	if n := st.size(constants.SummonersCollection); n != 8 {
		t.Errorf("identities stored = %d, want 8", n)
	}
	if n := st.size(constants.LeaguesCollection); n != 8 {
		t.Errorf("standings stored = %d, want 8", n)
	}
}

func TestRunnerStopsBetweenCycles(t *testing.T) {
	riot := newFakeRiot()
	st := newMemStore()
	cfg := &config.Config{PlayerConcurrency: 1}
	runner := NewRunner(config.Region{Name: "na1", Group: "americas"}, riot, st, cfg, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after cancellation")
	}
}
