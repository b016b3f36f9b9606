package fx

import (
	"context"

	"league-tracker/internal/api"
	"league-tracker/internal/browser"
	"league-tracker/internal/config"
	"league-tracker/internal/logger"
	"league-tracker/internal/scraper"
	"league-tracker/internal/server"
	"league-tracker/internal/service"
	"league-tracker/internal/staticdata"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideRiotAPI(client *api.RiotClient) service.RiotAPI {
	return client
}

func ProvideLauncher(cfg *config.Config, logger zerolog.Logger) browser.Launcher {
	return browser.NewChromeLauncher(cfg, logger)
}

func ProvideRankScraper(cfg *config.Config, launcher browser.Launcher, logger zerolog.Logger) service.RankScraper {
	return scraper.NewRankScraper(cfg, launcher, logger.With().Str("component", "rank_scraper").Logger())
}

func ProvideBuildScraper(cfg *config.Config, launcher browser.Launcher, icons *staticdata.IconIndex, logger zerolog.Logger) service.BuildScraper {
	return scraper.NewBuildScraper(cfg, launcher, icons, logger.With().Str("component", "build_scraper").Logger())
}

// LoadIcons fills the icon index in the background so a slow static data
// host does not hold up startup; until then only stat shards and numeric
// filenames resolve.
func LoadIcons(lc fx.Lifecycle, icons *staticdata.IconIndex, logger zerolog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := icons.Load(ctx); err != nil {
					logger.Warn().Err(err).Msg("icon map load failed, using fallback resolution")
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	// api client
	fx.Provide(api.NewRiotClient),
	fx.Provide(ProvideRiotAPI),
	// static data
	fx.Provide(staticdata.NewIconIndex),
	fx.Invoke(LoadIcons),
	// browser + scrapers
	fx.Provide(ProvideLauncher),
	fx.Provide(ProvideRankScraper),
	fx.Provide(ProvideBuildScraper),
	// svc
	fx.Provide(service.NewMatchService),
	fx.Provide(service.NewIdentityService),
	fx.Provide(service.NewRankService),
	fx.Provide(service.NewBuildService),
	fx.Provide(service.NewProfileService),
	// server
	fx.Provide(server.NewTrackerServer),
)
