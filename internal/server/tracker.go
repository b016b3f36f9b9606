package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"league-tracker/internal/api"
	"league-tracker/internal/domain"
	"league-tracker/internal/service"
	"league-tracker/internal/staticdata"

	"github.com/rs/zerolog"
)

// unknownSummonerID lets clients call the ranks route without an id.
const unknownSummonerID = "-"

type TrackerServer struct {
	profiles *service.ProfileService
	identity *service.IdentityService
	ranks    *service.RankService
	matches  *service.MatchService
	builds   *service.BuildService
	icons    *staticdata.IconIndex
	riot     *api.RiotClient
	started  time.Time
}

func NewTrackerServer(
	profiles *service.ProfileService,
	identity *service.IdentityService,
	ranks *service.RankService,
	matches *service.MatchService,
	builds *service.BuildService,
	icons *staticdata.IconIndex,
	riot *api.RiotClient,
) *TrackerServer {
	return &TrackerServer{
		profiles: profiles,
		identity: identity,
		ranks:    ranks,
		matches:  matches,
		builds:   builds,
		icons:    icons,
		riot:     riot,
		started:  time.Now(),
	}
}

func (s *TrackerServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/profile/{gameName}/{tagLine}", s.GetProfile)
	mux.HandleFunc("GET /api/account/{gameName}/{tagLine}", s.GetAccount)
	mux.HandleFunc("GET /api/summoner/{platform}/{puuid}", s.GetSummoner)
	mux.HandleFunc("GET /api/ranks/{platform}/{summonerId}", s.GetRanks)
	mux.HandleFunc("GET /api/matches/{platform}/{puuid}", s.GetMatches)
	mux.HandleFunc("GET /api/build/{champion}/{role}", s.GetBuild)
	mux.HandleFunc("GET /api/build/{champion}", s.GetBuild)
	mux.HandleFunc("GET /healthz", s.Health)
}

func (s *TrackerServer) GetProfile(w http.ResponseWriter, r *http.Request) {
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))
	profile, err := s.profiles.GetProfile(r.Context(), r.PathValue("gameName"), r.PathValue("tagLine"), count)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, profile)
}

func (s *TrackerServer) GetAccount(w http.ResponseWriter, r *http.Request) {
	acc, err := s.identity.ResolveAccount(r.Context(), r.PathValue("gameName"), r.PathValue("tagLine"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, acc)
}

func (s *TrackerServer) GetSummoner(w http.ResponseWriter, r *http.Request) {
	profile, err := s.identity.ResolveSummoner(r.Context(), r.PathValue("puuid"), r.PathValue("platform"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, profile)
}

func (s *TrackerServer) GetRanks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	summonerID := r.PathValue("summonerId")
	if summonerID == unknownSummonerID {
		summonerID = ""
	}
	level, _ := strconv.Atoi(q.Get("level"))

	entries := s.ranks.Resolve(r.Context(), service.RankQuery{
		Platform:   r.PathValue("platform"),
		SummonerID: summonerID,
		Puuid:      q.Get("puuid"),
		Level:      level,
		GameName:   q.Get("gameName"),
		TagLine:    q.Get("tagLine"),
	})
	writeJSON(w, r, http.StatusOK, entries)
}

func (s *TrackerServer) GetMatches(w http.ResponseWriter, r *http.Request) {
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))
	summaries := s.matches.RecentMatches(r.Context(), r.PathValue("puuid"), r.PathValue("platform"), count)
	writeJSON(w, r, http.StatusOK, summaries)
}

func (s *TrackerServer) GetBuild(w http.ResponseWriter, r *http.Request) {
	rec := s.builds.Recommend(r.Context(), r.PathValue("champion"), r.PathValue("role"))
	writeJSON(w, r, http.StatusOK, rec)
}

type healthResponse struct {
	Status     string            `json:"status"`
	Uptime     string            `json:"uptime"`
	IconCount  int               `json:"icon_count"`
	IconPatch  string            `json:"icon_patch,omitempty"`
	RateLimits api.RateLimitInfo `json:"rate_limits"`
}

func (s *TrackerServer) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{
		Status:     "ok",
		Uptime:     time.Since(s.started).Round(time.Second).String(),
		IconCount:  s.icons.Size(),
		IconPatch:  s.icons.Version(),
		RateLimits: s.riot.GetRateLimitInfo(),
	})
}

type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// writeError maps upstream statuses: a missing account stays 404, any
// other provider failure is a bad gateway.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if upstream, ok := domain.UpstreamStatus(err); ok {
		status = http.StatusBadGateway
		if upstream == http.StatusNotFound {
			status = http.StatusNotFound
		}
	}

	zerolog.Ctx(r.Context()).Warn().Err(err).Int("status", status).Str("path", r.URL.Path).Msg("request failed")
	writeJSON(w, r, status, errorResponse{Error: err.Error(), Status: status})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}
