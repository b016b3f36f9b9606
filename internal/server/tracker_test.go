package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"league-tracker/internal/api"
	"league-tracker/internal/config"
	"league-tracker/internal/domain"
	"league-tracker/internal/service"
	"league-tracker/internal/staticdata"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const riotMatch = `{
  "metadata": {"matchId": "EUW1_1", "participants": ["p-1"]},
  "info": {"gameDuration": 1500, "gameMode": "CLASSIC", "gameStartTimestamp": 1700000000000, "queueId": 420,
    "participants": [{"puuid": "p-1", "summonerId": "sid", "summonerLevel": 45, "profileIcon": 7,
      "riotIdGameName": "Caps", "riotIdTagline": "EUW", "championName": "Ahri", "teamPosition": "MIDDLE",
      "teamId": 100, "win": true, "kills": 5, "deaths": 1, "assists": 8, "totalMinionsKilled": 200,
      "neutralMinionsKilled": 4, "item0": 3285, "item1": 3020}]}
}`

type fakeRankScraper struct{ calls int }

func (f *fakeRankScraper) Scrape(ctx context.Context, route domain.RegionRoute, gameName, tagLine string) []domain.RankEntry {
	f.calls++
	return []domain.RankEntry{{QueueType: domain.QueueRankedSolo, Tier: "MASTER", Division: "I", LeaguePoints: 120}}
}

type fakeBuildScraper struct{}

func (fakeBuildScraper) Scrape(ctx context.Context, champion, role string) domain.BuildRecommendation {
	if champion != "Ahri" {
		return domain.EmptyBuild(champion, role)
	}
	rec := domain.EmptyBuild("ahri", role)
	rec.Items.Core = []int{3285}
	rec.Items.Boots = []int{3020}
	return rec
}

func riotHandler(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/riot/account/v1/accounts/by-riot-id/Caps/EUW":
		w.Write([]byte(`{"puuid":"p-1","gameName":"Caps","tagLine":"EUW"}`))
	case "/riot/account/v1/accounts/by-riot-id/100%Tilt/EUW":
		w.Write([]byte(`{"puuid":"p-2","gameName":"100%Tilt","tagLine":"EUW"}`))
	case "/riot/account/v1/accounts/by-riot-id/Locked/EUW":
		w.WriteHeader(http.StatusForbidden)
	case "/lol/summoner/v4/summoners/by-puuid/p-1":
		// no id, forcing recovery from the latest match
		w.Write([]byte(`{"puuid":"p-1","profileIconId":7,"summonerLevel":45}`))
	case "/lol/match/v5/matches/by-puuid/p-1/ids":
		w.Write([]byte(`["EUW1_1"]`))
	case "/lol/match/v5/matches/EUW1_1":
		w.Write([]byte(riotMatch))
	case "/lol/league/v4/entries/by-summoner/sid":
		w.Write([]byte(`[{"queueType":"RANKED_FLEX_SR","tier":"GOLD","rank":"I","leaguePoints":10,"wins":5,"losses":4}]`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestMux(t *testing.T) (*http.ServeMux, *fakeRankScraper) {
	upstream := httptest.NewServer(http.HandlerFunc(riotHandler))
	t.Cleanup(upstream.Close)

	cfg := &config.Config{
		RiotAPIKey:            "RGAPI-test",
		RiotBaseURL:           upstream.URL,
		RiotRequestsPerSecond: 1000,
		MatchCount:            5,
		MatchFetchDelay:       time.Millisecond,
	}
	logger := zerolog.Nop()
	riot := api.NewRiotClient(cfg, logger)
	scraper := &fakeRankScraper{}

	matches := service.NewMatchService(riot, cfg, logger)
	identity := service.NewIdentityService(riot, matches, logger)
	ranks := service.NewRankService(riot, scraper, logger)
	srv := NewTrackerServer(
		service.NewProfileService(identity, ranks, matches, logger),
		identity,
		ranks,
		matches,
		service.NewBuildService(fakeBuildScraper{}, logger),
		staticdata.NewIconIndex(cfg, logger),
		riot,
	)

	mux := http.NewServeMux()
	srv.Register(mux)
	return mux, scraper
}

func get(t *testing.T, mux *http.ServeMux, path string, out any) int {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func TestGetAccount(t *testing.T) {
	mux, _ := newTestMux(t)

	var acc domain.AccountIdentity
	assert.Equal(t, http.StatusOK, get(t, mux, "/api/account/Caps/EUW", &acc))
	assert.Equal(t, "p-1", acc.Puuid)

	var errBody errorResponse
	assert.Equal(t, http.StatusNotFound, get(t, mux, "/api/account/Nobody/EUW", &errBody))
	assert.Equal(t, http.StatusNotFound, errBody.Status)

	assert.Equal(t, http.StatusBadGateway, get(t, mux, "/api/account/Locked/EUW", &errBody))

	// path values arrive decoded; a literal percent must survive
	assert.Equal(t, http.StatusOK, get(t, mux, "/api/account/100%25Tilt/EUW", &acc))
	assert.Equal(t, "p-2", acc.Puuid)
}

func TestGetSummoner_RecoversID(t *testing.T) {
	mux, _ := newTestMux(t)

	var profile domain.SummonerProfile
	assert.Equal(t, http.StatusOK, get(t, mux, "/api/summoner/euw1/p-1", &profile))
	assert.Equal(t, domain.SummonerProfile{SummonerID: "sid", Puuid: "p-1", ProfileIconID: 7, Level: 45}, profile)
}

func TestGetRanks(t *testing.T) {
	mux, scraper := newTestMux(t)

	var entries []domain.RankEntry
	assert.Equal(t, http.StatusOK, get(t, mux, "/api/ranks/euw1/sid?level=45&gameName=Caps&tagLine=EUW", &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "RANKED_FLEX_SR", entries[0].QueueType)
	assert.Equal(t, domain.QueueRankedSolo, entries[1].QueueType)
	assert.Equal(t, 1, scraper.calls)

	// unknown id and no riot id: unranked, still 200 with []
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ranks/euw1/-", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetMatches(t *testing.T) {
	mux, _ := newTestMux(t)

	var summaries []domain.MatchSummary
	assert.Equal(t, http.StatusOK, get(t, mux, "/api/matches/euw1/p-1?count=3", &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "EUW1_1", summaries[0].MatchID)
	assert.Equal(t, 204, summaries[0].ParticipantStats[0].TotalCS)
}

func TestGetProfile(t *testing.T) {
	mux, _ := newTestMux(t)

	var profile domain.PlayerProfile
	assert.Equal(t, http.StatusOK, get(t, mux, "/api/profile/Caps/EUW", &profile))
	assert.Equal(t, "euw1", profile.Route.PlatformCode)
	assert.Equal(t, "sid", profile.Summoner.SummonerID)
	assert.Len(t, profile.Ranks, 2)
	assert.Len(t, profile.Matches, 1)
}

func TestGetBuild(t *testing.T) {
	mux, _ := newTestMux(t)

	var rec domain.BuildRecommendation
	assert.Equal(t, http.StatusOK, get(t, mux, "/api/build/Ahri/mid", &rec))
	assert.Equal(t, []int{3285}, rec.Items.Core)

	raw := httptest.NewRecorder()
	mux.ServeHTTP(raw, httptest.NewRequest(http.MethodGet, "/api/build/Zyra", nil))
	assert.Equal(t, http.StatusOK, raw.Code)
	assert.JSONEq(t, `{"champion":"Zyra","role":"","items":{"core":[],"boots":[],"situational":[]},"runeIds":[],"winrate":0}`, raw.Body.String())
}

func TestHealth(t *testing.T) {
	mux, _ := newTestMux(t)

	var body healthResponse
	assert.Equal(t, http.StatusOK, get(t, mux, "/healthz", &body))
	assert.Equal(t, "ok", body.Status)
	assert.Positive(t, body.IconCount)
}
