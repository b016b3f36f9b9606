package service

import (
	"context"
	"fmt"
	"time"

	"league-tracker/internal/api"
	"league-tracker/internal/config"
	"league-tracker/internal/constants"
	"league-tracker/internal/domain"
	"league-tracker/internal/region"

	"github.com/rs/zerolog"
)

type MatchService struct {
	riot         RiotAPI
	defaultCount int
	delay        time.Duration
	logger       zerolog.Logger
}

func NewMatchService(riot RiotAPI, cfg *config.Config, logger zerolog.Logger) *MatchService {
	count := cfg.MatchCount
	if count <= 0 {
		count = constants.DefaultMatchCount
	}
	return &MatchService{riot: riot, defaultCount: count, delay: cfg.MatchFetchDelay, logger: logger}
}

// ResolveMatchIDs returns at most count recent match ids, newest first.
// Upstream failures yield an empty list.
func (s *MatchService) ResolveMatchIDs(ctx context.Context, puuid, platform string, count int) []string {
	if puuid == "" {
		return []string{}
	}
	count = s.boundCount(count)
	cluster := region.ClusterForPlatform(platform)

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	ids, err := s.riot.GetMatchIDs(apiCtx, cluster, puuid, count)
	if err != nil {
		s.logger.Warn().Err(err).Str("puuid", puuid).Str("cluster", string(cluster)).Msg("failed to fetch match ids")
		return []string{}
	}
	if len(ids) > count {
		ids = ids[:count]
	}
	return ids
}

// ResolveMatches fetches each match one after another with a pause between
// calls, so a long history never bursts the rate limit. Failed
// matches are skipped; the rest keep their input order.
func (s *MatchService) ResolveMatches(ctx context.Context, ids []string, platform string) []domain.MatchSummary {
	cluster := region.ClusterForPlatform(platform)
	summaries := make([]domain.MatchSummary, 0, len(ids))

	for i, id := range ids {
		match, err := s.fetchMatch(ctx, cluster, id)
		if err != nil {
			s.logger.Warn().Err(err).Str("match_id", id).Msg("skipping match")
		} else {
			summaries = append(summaries, toMatchSummary(match))
		}

		if i == len(ids)-1 {
			break
		}
		if err := pause(ctx, s.delay); err != nil {
			s.logger.Debug().Int("fetched", len(summaries)).Msg("match fetch cancelled")
			break
		}
	}

	s.logger.Debug().Int("requested", len(ids)).Int("resolved", len(summaries)).Msg("matches resolved")
	return summaries
}

// RecentMatches composes ResolveMatchIDs and ResolveMatches.
func (s *MatchService) RecentMatches(ctx context.Context, puuid, platform string, count int) []domain.MatchSummary {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	ids := s.ResolveMatchIDs(ctx, puuid, platform, count)
	return s.ResolveMatches(ctx, ids, platform)
}

// FindParticipant returns the participant record for puuid in one match.
func (s *MatchService) FindParticipant(ctx context.Context, platform, matchID, puuid string) (*api.ParticipantDTO, error) {
	match, err := s.fetchMatch(ctx, region.ClusterForPlatform(platform), matchID)
	if err != nil {
		return nil, err
	}
	for i := range match.Info.Participants {
		if match.Info.Participants[i].Puuid == puuid {
			return &match.Info.Participants[i], nil
		}
	}
	return nil, fmt.Errorf("participant %s not in match %s", puuid, matchID)
}

func (s *MatchService) fetchMatch(ctx context.Context, cluster domain.Cluster, matchID string) (*api.MatchDTO, error) {
	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	match, err := s.riot.GetMatch(apiCtx, cluster, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch match %s: %w", matchID, err)
	}
	return match, nil
}

func (s *MatchService) boundCount(count int) int {
	if count <= 0 {
		count = s.defaultCount
	}
	return min(count, constants.MaxMatchCount)
}

func toMatchSummary(m *api.MatchDTO) domain.MatchSummary {
	matchID := m.Metadata.MatchID
	participants := make([]domain.ParticipantStats, 0, len(m.Info.Participants))
	for _, p := range m.Info.Participants {
		participants = append(participants, domain.ParticipantStats{
			Puuid:        p.Puuid,
			SummonerID:   p.SummonerID,
			GameName:     p.RiotIDGameName,
			TagLine:      p.RiotIDTagline,
			ChampionName: p.ChampionName,
			TeamPosition: p.TeamPosition,
			TeamID:       p.TeamID,
			Win:          p.Win,
			Kills:        p.Kills,
			Deaths:       p.Deaths,
			Assists:      p.Assists,
			TotalCS:      p.TotalMinionsKilled + p.NeutralMinionsKilled,
			GoldEarned:   p.GoldEarned,
			VisionScore:  p.VisionScore,
			ChampLevel:   p.ChampLevel,
			Items:        p.ItemIDs(),
		})
	}
	return domain.MatchSummary{
		MatchID:          matchID,
		GameMode:         m.Info.GameMode,
		QueueID:          m.Info.QueueID,
		GameDuration:     m.Info.GameDuration,
		GameStart:        m.Info.GameStartTimestamp,
		ParticipantStats: participants,
	}
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
