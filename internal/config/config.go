package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/whyando/tft-stat/internal/constants"
)

// Region pairs a platform region (na1, euw1, ...) with the regional routing
// group its match endpoints are served from.
type Region struct {
	Name  string
	Group string
}

type Config struct {
	RiotAPIKey         string
	DBConnectionString string
	DBName             string
	LogLevel           string
	Regions            []Region
	PlayerConcurrency  int
}

const defaultRegions = "na1:americas,euw1:europe,kr:asia,jp1:asia,br1:americas"

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		RiotAPIKey:         getEnv("RGAPI_KEY", ""),
		DBConnectionString: getEnv("DB_CONNECTION_STRING", ""),
		DBName:             getEnv("DB_NAME", "tft"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		PlayerConcurrency:  getEnvInt("PLAYER_CONCURRENCY", constants.PlayerConcurrency),
	}

	if cfg.RiotAPIKey == "" {
		return nil, fmt.Errorf("RGAPI_KEY is required")
	}
	if cfg.DBConnectionString == "" {
		return nil, fmt.Errorf("DB_CONNECTION_STRING is required")
	}

	regions, err := parseRegions(getEnv("REGIONS", defaultRegions))
	if err != nil {
		return nil, err
	}
	cfg.Regions = regions

	logger.Info().
		Str("db_name", cfg.DBName).
		Str("log_level", cfg.LogLevel).
		Int("regions", len(cfg.Regions)).
		Int("player_concurrency", cfg.PlayerConcurrency).
		Msg("configuration loaded")

	return cfg, nil
}

// parseRegions reads "name:group" pairs, e.g. "na1:americas,kr:asia".
func parseRegions(s string) ([]Region, error) {
	var regions []Region
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, group, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("invalid REGIONS entry %q, want name:group", pair)
		}
		regions = append(regions, Region{Name: name, Group: group})
	}
	if len(regions) == 0 {
		return nil, fmt.Errorf("REGIONS must name at least one region")
	}
	return regions, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

var Module = fx.Provide(Load)
