package service

import (
	"context"
	"net/http"
	"testing"

	"league-tracker/internal/api"
	"league-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdentityService(riot *fakeRiot) *IdentityService {
	return NewIdentityService(riot, newMatchService(riot), zerolog.Nop())
}

func TestResolveAccount(t *testing.T) {
	riot := &fakeRiot{account: &api.AccountDTO{Puuid: "p-1", GameName: "Hide on bush", TagLine: "KR1"}}
	s := newIdentityService(riot)

	acc, err := s.ResolveAccount(context.Background(), "Hide on bush", "KR1")
	require.NoError(t, err)
	assert.Equal(t, &domain.AccountIdentity{Puuid: "p-1", GameName: "Hide on bush", TagLine: "KR1"}, acc)
	assert.Equal(t, []domain.Cluster{domain.ClusterAsia}, riot.clusters)
}

func TestResolveAccount_NamesAreNotDecodedAgain(t *testing.T) {
	riot := &fakeRiot{account: &api.AccountDTO{Puuid: "p-2", GameName: "100%Tilt", TagLine: "EUW"}}
	s := newIdentityService(riot)

	for _, name := range []string{"100%Tilt", "a%20b"} {
		_, err := s.ResolveAccount(context.Background(), name, "EUW")
		require.NoError(t, err, name)
	}
	assert.Equal(t, []string{"100%Tilt#EUW", "a%20b#EUW"}, riot.accountIDs)
}

func TestResolveAccount_PropagatesUpstreamStatus(t *testing.T) {
	riot := &fakeRiot{accountErr: &domain.UpstreamError{Status: http.StatusNotFound}}
	s := newIdentityService(riot)

	_, err := s.ResolveAccount(context.Background(), "nobody", "EUW")
	require.Error(t, err)

	status, ok := domain.UpstreamStatus(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, []domain.Cluster{domain.ClusterEurope}, riot.clusters)
}

func TestResolveSummoner_WithID(t *testing.T) {
	riot := &fakeRiot{summoner: &api.SummonerDTO{ID: "sid", Puuid: "p-1", ProfileIconID: 29, SummonerLevel: 312}}
	s := newIdentityService(riot)

	profile, err := s.ResolveSummoner(context.Background(), "p-1", "euw1")
	require.NoError(t, err)
	assert.Equal(t, &domain.SummonerProfile{SummonerID: "sid", Puuid: "p-1", ProfileIconID: 29, Level: 312}, profile)
	assert.Zero(t, riot.callCount("match_ids"))
}

func TestResolveSummoner_RecoversMissingFieldsFromMatch(t *testing.T) {
	riot := &fakeRiot{
		summoner: &api.SummonerDTO{Puuid: "p-1", SummonerLevel: 350},
		matchIDs: []string{"EUW1_1"},
		matches: map[string]*api.MatchDTO{
			"EUW1_1": matchWith("EUW1_1",
				api.ParticipantDTO{Puuid: "p-2", SummonerID: "other", SummonerLevel: 12, ProfileIcon: 1},
				api.ParticipantDTO{Puuid: "p-1", SummonerID: "recovered", SummonerLevel: 400, ProfileIcon: 4568},
			),
		},
	}
	s := newIdentityService(riot)

	profile, err := s.ResolveSummoner(context.Background(), "p-1", "euw1")
	require.NoError(t, err)

	assert.Equal(t, "recovered", profile.SummonerID)
	// fields the provider did send are kept
	assert.Equal(t, 350, profile.Level)
	assert.Equal(t, 4568, profile.ProfileIconID)
	assert.Equal(t, 1, riot.lastCount)
}

func TestResolveSummoner_RecoveryFailureIsSoft(t *testing.T) {
	testCases := []struct {
		name string
		riot *fakeRiot
	}{
		{
			name: "no recent matches",
			riot: &fakeRiot{summoner: &api.SummonerDTO{Puuid: "p-1", SummonerLevel: 30}, matchIDs: []string{}},
		},
		{
			name: "match fetch fails",
			riot: &fakeRiot{summoner: &api.SummonerDTO{Puuid: "p-1", SummonerLevel: 30}, matchIDs: []string{"missing"}},
		},
		{
			name: "player not in match",
			riot: &fakeRiot{
				summoner: &api.SummonerDTO{Puuid: "p-1", SummonerLevel: 30},
				matchIDs: []string{"EUW1_1"},
				matches:  map[string]*api.MatchDTO{"EUW1_1": matchWith("EUW1_1", api.ParticipantDTO{Puuid: "p-9"})},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			profile, err := newIdentityService(tc.riot).ResolveSummoner(context.Background(), "p-1", "euw1")
			require.NoError(t, err)
			assert.Empty(t, profile.SummonerID)
			assert.Equal(t, 30, profile.Level)
		})
	}
}

func TestResolveSummoner_PropagatesUpstreamError(t *testing.T) {
	riot := &fakeRiot{summonerErr: &domain.UpstreamError{Status: http.StatusForbidden}}

	_, err := newIdentityService(riot).ResolveSummoner(context.Background(), "p-1", "na1")
	status, ok := domain.UpstreamStatus(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, status)
}
