package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"

	"github.com/whyando/tft-stat/internal/constants"
	"github.com/whyando/tft-stat/internal/crawler"
	fxmodules "github.com/whyando/tft-stat/internal/fx"
	"github.com/whyando/tft-stat/internal/store"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runCrawler),
	).Run()
}

func runCrawler(
	lc fx.Lifecycle,
	runners []*crawler.Runner,
	db *store.Mongo,
	logger zerolog.Logger,
) {
	ctx, cancel := context.WithCancel(context.Background())
	g := new(errgroup.Group)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			for _, runner := range runners {
				runner := runner
				g.Go(func() error {
					runner.Run(ctx)
					return nil
				})
			}
			logger.Info().Int("regions", len(runners)).Msg("crawler started")
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			logger.Info().Msg("shutting down crawler")
			cancel()

			// Runners only observe cancellation between cycles; don't hold
			// shutdown hostage to a cycle in flight.
			done := make(chan struct{})
			go func() {
				_ = g.Wait()
				close(done)
			}()
			select {
			case <-done:
				logger.Info().Msg("all runners stopped")
			case <-time.After(constants.ShutdownTimeout):
				logger.Warn().Msg("runners still mid-cycle, abandoning wait")
			}

			if err := db.Close(stopCtx); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			return nil
		},
	})
}
