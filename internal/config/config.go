package config

import (
	"os"
	"strconv"
	"time"

	"league-tracker/internal/constants"
	"league-tracker/internal/domain"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	RiotAPIKey            string
	RiotBaseURL           string
	RiotRequestsPerSecond float64
	DDragonBaseURL        string
	ProfileSiteURL        string
	BuildSiteURL          string
	ChromePath            string
	ServerPort            string
	LogLevel              string
	MatchCount            int
	MatchFetchDelay       time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		RiotAPIKey:            getEnv("RIOT_API_KEY", ""),
		RiotBaseURL:           getEnv("RIOT_BASE_URL", "https://{host}.api.riotgames.com"),
		RiotRequestsPerSecond: getEnvFloat("RIOT_REQUESTS_PER_SECOND", 20),
		DDragonBaseURL:        getEnv("DDRAGON_BASE_URL", "https://ddragon.leagueoflegends.com"),
		ProfileSiteURL:        getEnv("PROFILE_SITE_URL", "https://www.op.gg"),
		BuildSiteURL:          getEnv("BUILD_SITE_URL", "https://u.gg"),
		ChromePath:            getEnv("CHROME_PATH", ""),
		ServerPort:            getEnv("SERVER_PORT", "8080"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		MatchCount:            getEnvInt("MATCH_COUNT", constants.DefaultMatchCount),
		MatchFetchDelay:       getEnvDuration("MATCH_FETCH_DELAY", constants.MatchFetchDelay),
	}

	if cfg.RiotAPIKey == "" {
		return nil, &domain.ConfigurationError{Key: "RIOT_API_KEY"}
	}

	logger.Info().
		Str("riot_base_url", cfg.RiotBaseURL).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Int("match_count", cfg.MatchCount).
		Dur("match_fetch_delay", cfg.MatchFetchDelay).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && v > 0 {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v >= 0 {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
