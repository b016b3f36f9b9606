package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"league-tracker/internal/api"
	"league-tracker/internal/config"
	"league-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type fakeRiot struct {
	account     *api.AccountDTO
	accountErr  error
	summoner    *api.SummonerDTO
	summonerErr error

	entries        []api.LeagueEntryDTO
	entriesErr     error
	entriesByPuuid []api.LeagueEntryDTO

	matchIDs    []string
	matchIDsErr error
	matches     map[string]*api.MatchDTO
	matchDelay  time.Duration

	mu          sync.Mutex
	accountIDs  []string
	calls       []string
	clusters    []domain.Cluster
	lastCount   int
	inFlight    int
	maxInFlight int
	matchOrder  []string
}

func (f *fakeRiot) record(call string, cluster domain.Cluster) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if cluster != "" {
		f.clusters = append(f.clusters, cluster)
	}
}

func (f *fakeRiot) callCount(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeRiot) GetAccount(ctx context.Context, cluster domain.Cluster, gameName, tagLine string) (*api.AccountDTO, error) {
	f.record("account", cluster)
	f.mu.Lock()
	f.accountIDs = append(f.accountIDs, gameName+"#"+tagLine)
	f.mu.Unlock()
	return f.account, f.accountErr
}

func (f *fakeRiot) GetSummonerByPuuid(ctx context.Context, platform, puuid string) (*api.SummonerDTO, error) {
	f.record("summoner", "")
	return f.summoner, f.summonerErr
}

func (f *fakeRiot) GetLeagueEntries(ctx context.Context, platform, summonerID string) ([]api.LeagueEntryDTO, error) {
	f.record("entries", "")
	return f.entries, f.entriesErr
}

func (f *fakeRiot) GetLeagueEntriesByPuuid(ctx context.Context, platform, puuid string) ([]api.LeagueEntryDTO, error) {
	f.record("entries_by_puuid", "")
	return f.entriesByPuuid, f.entriesErr
}

func (f *fakeRiot) GetMatchIDs(ctx context.Context, cluster domain.Cluster, puuid string, count int) ([]string, error) {
	f.record("match_ids", cluster)
	f.mu.Lock()
	f.lastCount = count
	f.mu.Unlock()
	return f.matchIDs, f.matchIDsErr
}

func (f *fakeRiot) GetMatch(ctx context.Context, cluster domain.Cluster, matchID string) (*api.MatchDTO, error) {
	f.record("match", cluster)

	f.mu.Lock()
	f.inFlight++
	f.maxInFlight = max(f.maxInFlight, f.inFlight)
	f.matchOrder = append(f.matchOrder, matchID)
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.matchDelay > 0 {
		time.Sleep(f.matchDelay)
	}
	m, ok := f.matches[matchID]
	if !ok {
		return nil, &domain.UpstreamError{Status: http.StatusNotFound, URL: matchID}
	}
	return m, nil
}

type fakeRankScraper struct {
	entries []domain.RankEntry

	mu    sync.Mutex
	calls int
	route domain.RegionRoute
}

func (f *fakeRankScraper) Scrape(ctx context.Context, route domain.RegionRoute, gameName, tagLine string) []domain.RankEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.route = route
	return append([]domain.RankEntry{}, f.entries...)
}

func testConfig() *config.Config {
	return &config.Config{MatchCount: 10, MatchFetchDelay: time.Millisecond}
}

func newMatchService(riot *fakeRiot) *MatchService {
	return NewMatchService(riot, testConfig(), zerolog.Nop())
}

func matchWith(id string, participants ...api.ParticipantDTO) *api.MatchDTO {
	m := &api.MatchDTO{}
	m.Metadata.MatchID = id
	m.Info.GameMode = "CLASSIC"
	m.Info.QueueID = 420
	m.Info.GameDuration = 1800
	m.Info.Participants = participants
	return m
}

func matchIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("EUW1_%d", 7000000000+i)
	}
	return ids
}
