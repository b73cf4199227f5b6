package domain

import (
	"time"

	"github.com/whyando/tft-stat/internal/api"
)

type StandingStatus string

const (
	StatusRanked   StandingStatus = "ranked"
	StatusUnranked StandingStatus = "unranked"
)

// AverageRankUnknown is stored when not all eight participants resolve to a
// ranked standing.
const AverageRankUnknown = -1

const AverageRankUnknownText = "UNRANKED"

// PlayerIdentity is keyed by puuid and never updated after insert; once the
// store expires it, the next lookup re-fetches.
type PlayerIdentity struct {
	PUUID           string    `bson:"_id"`
	SummonerID      string    `bson:"summonerId"`
	AccountID       string    `bson:"accountId"`
	Name            string    `bson:"name"`
	DocumentCreated time.Time `bson:"_documentCreated"`
	DocumentExpire  time.Time `bson:"_documentExpire"`
}

// SkillStanding is keyed by summoner id. Division is meaningless above MASTER.
type SkillStanding struct {
	SummonerID      string         `bson:"_id"`
	Status          StandingStatus `bson:"status"`
	Tier            string         `bson:"tier,omitempty"`
	Division        string         `bson:"division,omitempty"`
	LeaguePoints    int            `bson:"leaguePoints"`
	DocumentCreated time.Time      `bson:"_documentCreated"`
	DocumentExpire  time.Time      `bson:"_documentExpire"`
}

// Participant is the enrichment snapshot embedded in a match document: the
// participant's identity joined with their standing at harvest time.
type Participant struct {
	PUUID        string         `bson:"puuid"`
	SummonerID   string         `bson:"summonerId"`
	Name         string         `bson:"name"`
	Status       StandingStatus `bson:"status"`
	Tier         string         `bson:"tier,omitempty"`
	Division     string         `bson:"division,omitempty"`
	LeaguePoints int            `bson:"leaguePoints"`
}

// MatchRecord is keyed by match id. A tombstone is the minimal form written
// when the upstream fetch failed: only id, created and a 24h expiry, so the id
// is not retried within that window.
type MatchRecord struct {
	ID              string        `bson:"_id"`
	DocumentCreated time.Time     `bson:"_documentCreated"`
	MatchTimestamp  time.Time     `bson:"_matchTimestamp,omitempty"`
	DocumentExpire  time.Time     `bson:"_documentExpire"`
	Detail          *api.Match    `bson:"detail,omitempty"`
	Participants    []Participant `bson:"participants,omitempty"`
	AverageRank     int           `bson:"averageRank"`
	AverageRankText string        `bson:"averageRankText"`
}

// Tombstone reports whether the record marks a failed fetch rather than a
// stored match.
func (m *MatchRecord) Tombstone() bool {
	return m.Detail == nil
}
