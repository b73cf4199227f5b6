package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/whyando/tft-stat/internal/config"
	"github.com/whyando/tft-stat/internal/constants"
)

type RiotClient struct {
	apiKey      string
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
	client      *fasthttp.Client
}

type RateLimitInfo struct {
	AppLimit   string `json:"app_limit"`
	AppCount   string `json:"app_count"`
	RetryAfter int    `json:"retry_after"`

	UpdatedAt time.Time `json:"updated_at"`
}

// APIError is any non-200 upstream response. All of them are treated as
// transient by callers; a 404 on a match simply becomes a tombstone.
type APIError struct {
	StatusCode int
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.URL)
}

func NewRiotClient(cfg *config.Config) *RiotClient {
	return &RiotClient{
		apiKey: cfg.RiotAPIKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

func (c *RiotClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *RiotClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if limit := string(resp.Header.Peek("X-App-Rate-Limit")); limit != "" {
		c.rateLimit.AppLimit = limit
	}
	if count := string(resp.Header.Peek("X-App-Rate-Limit-Count")); count != "" {
		c.rateLimit.AppCount = count
	}
	if retry := string(resp.Header.Peek("Retry-After")); retry != "" {
		if val, err := strconv.Atoi(retry); err == nil {
			c.rateLimit.RetryAfter = val
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

// GetApexLeague returns the single unpaginated list for one of the apex tiers
// (challenger, grandmaster, master).
func (c *RiotClient) GetApexLeague(ctx context.Context, region, apexTier string) (*LeagueList, error) {
	u := fmt.Sprintf("https://%s.api.riotgames.com/tft/league/v1/%s", region, apexTier)
	return doRequest[LeagueList](ctx, c, u)
}

// GetLeagueEntries returns one page of standings for a non-apex tier/division.
// Pages are 1-based; an empty page marks the end.
func (c *RiotClient) GetLeagueEntries(ctx context.Context, region, tier, division string, page int) ([]LeagueEntry, error) {
	u := fmt.Sprintf("https://%s.api.riotgames.com/tft/league/v1/entries/%s/%s?page=%d", region, tier, division, page)
	entries, err := doRequest[[]LeagueEntry](ctx, c, u)
	if err != nil {
		return nil, err
	}
	return *entries, nil
}

func (c *RiotClient) GetSummonerByID(ctx context.Context, region, summonerID string) (*Summoner, error) {
	u := fmt.Sprintf("https://%s.api.riotgames.com/tft/summoner/v1/summoners/%s", region, url.PathEscape(summonerID))
	return doRequest[Summoner](ctx, c, u)
}

func (c *RiotClient) GetSummonerByPUUID(ctx context.Context, region, puuid string) (*Summoner, error) {
	u := fmt.Sprintf("https://%s.api.riotgames.com/tft/summoner/v1/summoners/by-puuid/%s", region, url.PathEscape(puuid))
	return doRequest[Summoner](ctx, c, u)
}

// GetLeagueBySummoner returns the summoner's league entries across queues; an
// empty slice means the summoner is currently unranked.
func (c *RiotClient) GetLeagueBySummoner(ctx context.Context, region, summonerID string) ([]LeagueEntry, error) {
	u := fmt.Sprintf("https://%s.api.riotgames.com/tft/league/v1/entries/by-summoner/%s", region, url.PathEscape(summonerID))
	entries, err := doRequest[[]LeagueEntry](ctx, c, u)
	if err != nil {
		return nil, err
	}
	return *entries, nil
}

// GetMatchIDs lists the player's most recent match ids, newest first. Match
// endpoints are served per region group (americas, europe, asia), not per
// region.
func (c *RiotClient) GetMatchIDs(ctx context.Context, regionGroup, puuid string, count int) ([]string, error) {
	u := fmt.Sprintf("https://%s.api.riotgames.com/tft/match/v1/matches/by-puuid/%s/ids?count=%d", regionGroup, url.PathEscape(puuid), count)
	ids, err := doRequest[[]string](ctx, c, u)
	if err != nil {
		return nil, err
	}
	return *ids, nil
}

func (c *RiotClient) GetMatch(ctx context.Context, regionGroup, matchID string) (*Match, error) {
	u := fmt.Sprintf("https://%s.api.riotgames.com/tft/match/v1/matches/%s", regionGroup, url.PathEscape(matchID))
	return doRequest[Match](ctx, c, u)
}

func doRequest[T any](ctx context.Context, client *RiotClient, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("X-Riot-Token", client.apiKey)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	client.updateRateLimit(resp)

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode(), URL: url}
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type LeagueList struct {
	LeagueID string       `json:"leagueId"`
	Tier     string       `json:"tier"`
	Name     string       `json:"name"`
	Queue    string       `json:"queue"`
	Entries  []LeagueItem `json:"entries"`
}

type LeagueItem struct {
	SummonerID   string `json:"summonerId"`
	SummonerName string `json:"summonerName"`
	LeaguePoints int    `json:"leaguePoints"`
	Rank         string `json:"rank"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

type LeagueEntry struct {
	SummonerID   string `json:"summonerId"`
	SummonerName string `json:"summonerName"`
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

type Summoner struct {
	ID        string `json:"id"`
	AccountID string `json:"accountId"`
	PUUID     string `json:"puuid"`
	Name      string `json:"name"`
	Level     int    `json:"summonerLevel"`
}

type Match struct {
	Metadata MatchMetadata `json:"metadata" bson:"metadata"`
	Info     MatchInfo     `json:"info" bson:"info"`
}

type MatchMetadata struct {
	DataVersion  string   `json:"data_version" bson:"dataVersion"`
	MatchID      string   `json:"match_id" bson:"matchId"`
	Participants []string `json:"participants" bson:"participants"`
}

type MatchInfo struct {
	// GameDatetime is the game start in Unix milliseconds.
	GameDatetime int64              `json:"game_datetime" bson:"gameDatetime"`
	GameLength   float64            `json:"game_length" bson:"gameLength"`
	GameVersion  string             `json:"game_version" bson:"gameVersion"`
	QueueID      int                `json:"queue_id" bson:"queueId"`
	TFTSetNumber int                `json:"tft_set_number" bson:"tftSetNumber"`
	Participants []MatchParticipant `json:"participants" bson:"participants"`
}

type MatchParticipant struct {
	PUUID                string  `json:"puuid" bson:"puuid"`
	Placement            int     `json:"placement" bson:"placement"`
	Level                int     `json:"level" bson:"level"`
	LastRound            int     `json:"last_round" bson:"lastRound"`
	GoldLeft             int     `json:"gold_left" bson:"goldLeft"`
	PlayersEliminated    int     `json:"players_eliminated" bson:"playersEliminated"`
	TotalDamageToPlayers int     `json:"total_damage_to_players" bson:"totalDamageToPlayers"`
	TimeEliminated       float64 `json:"time_eliminated" bson:"timeEliminated"`
}
