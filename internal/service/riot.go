package service

import (
	"context"

	"league-tracker/internal/api"
	"league-tracker/internal/domain"
)

// RiotAPI is the slice of *api.RiotClient the resolvers use.
type RiotAPI interface {
	GetAccount(ctx context.Context, cluster domain.Cluster, gameName, tagLine string) (*api.AccountDTO, error)
	GetSummonerByPuuid(ctx context.Context, platform, puuid string) (*api.SummonerDTO, error)
	GetLeagueEntries(ctx context.Context, platform, summonerID string) ([]api.LeagueEntryDTO, error)
	GetLeagueEntriesByPuuid(ctx context.Context, platform, puuid string) ([]api.LeagueEntryDTO, error)
	GetMatchIDs(ctx context.Context, cluster domain.Cluster, puuid string, count int) ([]string, error)
	GetMatch(ctx context.Context, cluster domain.Cluster, matchID string) (*api.MatchDTO, error)
}

var _ RiotAPI = (*api.RiotClient)(nil)
