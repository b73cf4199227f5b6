package constants

import "time"

// Entity TTLs. Identities are effectively immutable so they live long;
// standings change every game, hence the short TTL.
const (
	IdentityTTL = 30 * 24 * time.Hour
	StandingTTL = 24 * time.Hour

	// MatchMinRetention is the floor below which no match document expires.
	MatchMinRetention = 24 * time.Hour
	// MatchRetentionAfterPlay keeps a match until 7 days past its own game
	// time, whichever of the two rules is later.
	MatchRetentionAfterPlay = 7 * 24 * time.Hour
	// TombstoneTTL suppresses re-fetching a match id that failed upstream.
	TombstoneTTL = 24 * time.Hour
)

const (
	LeagueFetchAttempts = 5
	LeagueRetryDelay    = 20 * time.Second
)

const (
	PlayerConcurrency      = 3
	MatchConcurrency       = 1
	ParticipantConcurrency = 8
)

const (
	MatchHistoryLimit = 10
	TeamSize          = 8
)

const (
	MatchesCollection   = "matches_v3"
	SummonersCollection = "summoners_v1"
	LeaguesCollection   = "leagues_v1"
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	ConnectTimeout     = 10 * time.Second
)

const (
	ShutdownTimeout = 5 * time.Second
)
