package service

import (
	"context"

	"league-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type BuildScraper interface {
	Scrape(ctx context.Context, champion, role string) domain.BuildRecommendation
}

type BuildService struct {
	scraper BuildScraper
	logger  zerolog.Logger
}

func NewBuildService(scraper BuildScraper, logger zerolog.Logger) *BuildService {
	return &BuildService{scraper: scraper, logger: logger}
}

// Recommend always answers; an unavailable build is the empty one.
func (s *BuildService) Recommend(ctx context.Context, champion, role string) domain.BuildRecommendation {
	s.logger.Info().Str("champion", champion).Str("role", role).Msg("getting build")
	rec := s.scraper.Scrape(ctx, champion, role)
	if rec.IsEmpty() {
		s.logger.Warn().Str("champion", champion).Str("role", role).Msg("no build recommendation found")
	}
	return rec
}
