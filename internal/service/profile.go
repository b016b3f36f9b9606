package service

import (
	"context"
	"time"

	"league-tracker/internal/constants"
	"league-tracker/internal/domain"
	"league-tracker/internal/region"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type ProfileService struct {
	identity *IdentityService
	ranks    *RankService
	matches  *MatchService
	logger   zerolog.Logger
}

func NewProfileService(identity *IdentityService, ranks *RankService, matches *MatchService, logger zerolog.Logger) *ProfileService {
	return &ProfileService{identity: identity, ranks: ranks, matches: matches, logger: logger}
}

// GetProfile resolves account then summoner in order; ranks and match
// history only depend on the summoner and are fetched side by side.
func (s *ProfileService) GetProfile(ctx context.Context, gameName, tagLine string, matchCount int) (*domain.PlayerProfile, error) {
	start := time.Now()

	account, err := s.identity.ResolveAccount(ctx, gameName, tagLine)
	if err != nil {
		return nil, err
	}

	route := region.FromTag(account.TagLine)
	summoner, err := s.identity.ResolveSummoner(ctx, account.Puuid, route.PlatformCode)
	if err != nil {
		return nil, err
	}

	profile := &domain.PlayerProfile{
		Account:  *account,
		Route:    route,
		Summoner: *summoner,
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout+constants.ScrapeTimeout)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile.Ranks = s.ranks.Resolve(gCtx, RankQuery{
			Platform:   route.PlatformCode,
			SummonerID: summoner.SummonerID,
			Puuid:      summoner.Puuid,
			Level:      summoner.Level,
			GameName:   account.GameName,
			TagLine:    account.TagLine,
		})
		return nil
	})
	g.Go(func() error {
		profile.Matches = s.matches.RecentMatches(gCtx, summoner.Puuid, route.PlatformCode, matchCount)
		return nil
	})
	_ = g.Wait()

	s.logger.Info().
		Str("puuid", account.Puuid).
		Int("ranks", len(profile.Ranks)).
		Int("matches", len(profile.Matches)).
		Dur("duration", time.Since(start)).
		Msg("profile resolved")
	return profile, nil
}
