package service

import (
	"context"

	"league-tracker/internal/api"
	"league-tracker/internal/constants"
	"league-tracker/internal/domain"
	"league-tracker/internal/region"

	"github.com/rs/zerolog"
)

type RankScraper interface {
	Scrape(ctx context.Context, route domain.RegionRoute, gameName, tagLine string) []domain.RankEntry
}

// RankQuery carries what the rank chain may need. SummonerID may be empty
// when the profile could not recover it.
type RankQuery struct {
	Platform   string
	SummonerID string
	Puuid      string
	Level      int
	GameName   string
	TagLine    string
}

type RankService struct {
	riot    RiotAPI
	scraper RankScraper
	logger  zerolog.Logger
}

func NewRankService(riot RiotAPI, scraper RankScraper, logger zerolog.Logger) *RankService {
	return &RankService{riot: riot, scraper: scraper, logger: logger}
}

// ResolveRanks never fails: a missing id or any upstream error means
// unranked, reported as an empty non-nil slice.
func (s *RankService) ResolveRanks(ctx context.Context, summonerID, platform string) []domain.RankEntry {
	if summonerID == "" {
		return []domain.RankEntry{}
	}
	code := region.FromPlatform(platform).PlatformCode

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	entries, err := s.riot.GetLeagueEntries(apiCtx, code, summonerID)
	if err != nil {
		s.logger.Warn().Err(err).Str("summoner_id", summonerID).Str("platform", code).Msg("failed to fetch league entries, treating as unranked")
		return []domain.RankEntry{}
	}
	return toRankEntries(entries)
}

// ResolveRanksByPuuid is the same lookup keyed by PUUID, for profiles
// whose summoner id could not be recovered.
func (s *RankService) ResolveRanksByPuuid(ctx context.Context, puuid, platform string) []domain.RankEntry {
	if puuid == "" {
		return []domain.RankEntry{}
	}
	code := region.FromPlatform(platform).PlatformCode

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	entries, err := s.riot.GetLeagueEntriesByPuuid(apiCtx, code, puuid)
	if err != nil {
		s.logger.Warn().Err(err).Str("puuid", puuid).Str("platform", code).Msg("failed to fetch league entries, treating as unranked")
		return []domain.RankEntry{}
	}
	return toRankEntries(entries)
}

// Resolve runs the API lookup and falls back to the profile page scrape
// when a leveled account shows no solo queue entry.
func (s *RankService) Resolve(ctx context.Context, q RankQuery) []domain.RankEntry {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout+constants.ScrapeTimeout)
	defer cancel()

	var entries []domain.RankEntry
	if q.SummonerID != "" {
		entries = s.ResolveRanks(ctx, q.SummonerID, q.Platform)
	} else {
		entries = s.ResolveRanksByPuuid(ctx, q.Puuid, q.Platform)
	}

	if HasSoloQueue(entries) || q.Level < constants.RankedLevelThreshold || q.GameName == "" || q.TagLine == "" {
		return entries
	}

	route := region.FromPlatform(q.Platform)
	s.logger.Info().Str("game_name", q.GameName).Str("tag_line", q.TagLine).Str("slug", route.ScrapeSiteSlug).Msg("no solo queue entry, trying profile scrape")
	return append(entries, s.scraper.Scrape(ctx, route, q.GameName, q.TagLine)...)
}

func HasSoloQueue(entries []domain.RankEntry) bool {
	for _, e := range entries {
		if e.QueueType == domain.QueueRankedSolo {
			return true
		}
	}
	return false
}

func toRankEntries(dtos []api.LeagueEntryDTO) []domain.RankEntry {
	entries := make([]domain.RankEntry, 0, len(dtos))
	for _, e := range dtos {
		entries = append(entries, domain.RankEntry{
			QueueType:    e.QueueType,
			Tier:         e.Tier,
			Division:     e.Rank,
			LeaguePoints: e.LeaguePoints,
			Wins:         e.Wins,
			Losses:       e.Losses,
		})
	}
	return entries
}
