package service

import (
	"context"
	"fmt"

	"league-tracker/internal/constants"
	"league-tracker/internal/domain"
	"league-tracker/internal/region"

	"github.com/rs/zerolog"
)

type IdentityService struct {
	riot    RiotAPI
	matches *MatchService
	logger  zerolog.Logger
}

func NewIdentityService(riot RiotAPI, matches *MatchService, logger zerolog.Logger) *IdentityService {
	return &IdentityService{riot: riot, matches: matches, logger: logger}
}

// ResolveAccount looks up a Riot id on the cluster derived from the tag.
// gameName and tagLine are already decoded.
// Upstream errors are returned unchanged in the chain so callers can read
// the status.
func (s *IdentityService) ResolveAccount(ctx context.Context, gameName, tagLine string) (*domain.AccountIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	cluster := region.ClusterForTag(tagLine)
	s.logger.Info().Str("game_name", gameName).Str("tag_line", tagLine).Str("cluster", string(cluster)).Msg("resolving account")

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	acc, err := s.riot.GetAccount(apiCtx, cluster, gameName, tagLine)
	if err != nil {
		s.logger.Error().Err(err).Str("game_name", gameName).Str("tag_line", tagLine).Msg("failed to fetch account")
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}

	return &domain.AccountIdentity{Puuid: acc.Puuid, GameName: acc.GameName, TagLine: acc.TagLine}, nil
}

// ResolveSummoner fetches the profile on the given platform. When the
// provider leaves out the summoner id, the most recent match is searched
// for the player's participant record and any missing fields are copied
// from it. Recovery never fails the call.
func (s *IdentityService) ResolveSummoner(ctx context.Context, puuid, platform string) (*domain.SummonerProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	route := region.FromPlatform(platform)

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	dto, err := s.riot.GetSummonerByPuuid(apiCtx, route.PlatformCode, puuid)
	apiCancel()
	if err != nil {
		s.logger.Error().Err(err).Str("puuid", puuid).Str("platform", route.PlatformCode).Msg("failed to fetch summoner")
		return nil, fmt.Errorf("failed to fetch summoner: %w", err)
	}

	profile := &domain.SummonerProfile{
		SummonerID:    dto.ID,
		Puuid:         dto.Puuid,
		ProfileIconID: dto.ProfileIconID,
		Level:         dto.SummonerLevel,
	}
	if profile.Puuid == "" {
		profile.Puuid = puuid
	}

	if profile.SummonerID == "" {
		s.recoverFromMatch(ctx, profile, route.PlatformCode)
	}
	return profile, nil
}

func (s *IdentityService) recoverFromMatch(ctx context.Context, profile *domain.SummonerProfile, platform string) {
	log := s.logger.With().Str("puuid", profile.Puuid).Str("platform", platform).Logger()

	ids := s.matches.ResolveMatchIDs(ctx, profile.Puuid, platform, constants.RecentMatchCount)
	if len(ids) == 0 {
		log.Warn().Msg("summoner id missing and no recent match to recover from")
		return
	}

	p, err := s.matches.FindParticipant(ctx, platform, ids[0], profile.Puuid)
	if err != nil {
		log.Warn().Err(err).Str("match_id", ids[0]).Msg("summoner id recovery failed")
		return
	}

	if profile.SummonerID == "" && p.SummonerID != "" {
		profile.SummonerID = p.SummonerID
	}
	if profile.Level == 0 && p.SummonerLevel > 0 {
		profile.Level = p.SummonerLevel
	}
	if profile.ProfileIconID == 0 && p.ProfileIcon > 0 {
		profile.ProfileIconID = p.ProfileIcon
	}
	log.Debug().Bool("recovered_id", profile.SummonerID != "").Str("match_id", ids[0]).Msg("summoner fields recovered from match")
}
