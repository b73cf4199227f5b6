package fx

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/whyando/tft-stat/internal/api"
	"github.com/whyando/tft-stat/internal/config"
	"github.com/whyando/tft-stat/internal/crawler"
	"github.com/whyando/tft-stat/internal/logger"
	"github.com/whyando/tft-stat/internal/store"
)

func ProvideRunners(cfg *config.Config, client *api.RiotClient, st *store.Mongo, log zerolog.Logger) []*crawler.Runner {
	runners := make([]*crawler.Runner, 0, len(cfg.Regions))
	for _, region := range cfg.Regions {
		runners = append(runners, crawler.NewRunner(region, client, st, cfg, log))
	}
	return runners
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(store.New),
	// api client
	fx.Provide(api.NewRiotClient),
	// one runner per region
	fx.Provide(ProvideRunners),
)
