package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"league-tracker/internal/config"
	"league-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *RiotClient {
	return newTestClientWithRate(t, 1000, handler)
}

func newTestClientWithRate(t *testing.T, rps float64, handler http.HandlerFunc) *RiotClient {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRiotClient(&config.Config{
		RiotAPIKey:            "RGAPI-test",
		RiotBaseURL:           srv.URL,
		RiotRequestsPerSecond: rps,
	}, zerolog.Nop())
}

func TestGetAccount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "RGAPI-test", r.Header.Get("X-Riot-Token"))
		assert.Equal(t, "/riot/account/v1/accounts/by-riot-id/Faker/KR1", r.URL.Path)
		w.Header().Set("X-App-Rate-Limit", "20:1,100:120")
		w.Header().Set("X-App-Rate-Limit-Count", "1:1,1:120")
		w.Write([]byte(`{"puuid":"p-1","gameName":"Faker","tagLine":"KR1"}`))
	})

	acc, err := client.GetAccount(context.Background(), domain.ClusterAsia, "Faker", "KR1")
	require.NoError(t, err)
	assert.Equal(t, "p-1", acc.Puuid)
	assert.Equal(t, "Faker", acc.GameName)

	info := client.GetRateLimitInfo()
	assert.Equal(t, "20:1,100:120", info.AppLimit)
	assert.Equal(t, "1:1,1:120", info.AppCount)
}

func TestGetAccount_NotFoundIsUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetAccount(context.Background(), domain.ClusterAmericas, "nobody", "NA1")
	require.Error(t, err)
	status, ok := domain.UpstreamStatus(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRetryOnTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`["NA1_1","NA1_2"]`))
	})

	ids, err := client.GetMatchIDs(context.Background(), domain.ClusterAmericas, "p-1", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"NA1_1", "NA1_2"}, ids)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 1, client.GetRateLimitInfo().Throttled)
}

func TestRetryGivesUpAfterBound(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.GetMatch(context.Background(), domain.ClusterEurope, "EUW1_1")
	require.Error(t, err)
	status, ok := domain.UpstreamStatus(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHostPlaceholder(t *testing.T) {
	client := NewRiotClient(&config.Config{RiotAPIKey: "k", RiotBaseURL: "https://{host}.api.riotgames.com/"}, zerolog.Nop())
	assert.Equal(t, "https://euw1.api.riotgames.com/lol/x", client.hostURL("euw1", "/lol/x"))
}

func TestParticipantItemIDs(t *testing.T) {
	p := ParticipantDTO{Item0: 3285, Item2: 3020, Item6: 3340}
	assert.Equal(t, []int{3285, 3020, 3340}, p.ItemIDs())
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, "0s", parseRetryAfter("0").String())
	assert.Equal(t, "3s", parseRetryAfter("3").String())
	assert.Equal(t, "10s", parseRetryAfter("600").String())
	assert.Equal(t, "1s", parseRetryAfter("").String())
}

func TestFractionalRateStillServes(t *testing.T) {
	client := newTestClientWithRate(t, 0.8, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"puuid":"p-1","gameName":"Caps","tagLine":"EUW"}`))
	})

	acc, err := client.GetAccount(context.Background(), domain.ClusterEurope, "Caps", "EUW")
	require.NoError(t, err)
	assert.Equal(t, "p-1", acc.Puuid)
}

func TestLimiterBurst(t *testing.T) {
	tests := []struct {
		rps  float64
		want int
	}{
		{0.01, 1},
		{0.8, 1},
		{1, 1},
		{1.5, 2},
		{20, 20},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, limiterBurst(tt.rps), "rps %v", tt.rps)
	}
}
