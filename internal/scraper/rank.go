package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"league-tracker/internal/browser"
	"league-tracker/internal/config"
	"league-tracker/internal/constants"
	"league-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

var errRankedSectionMissing = errors.New("ranked section not found")

// rankScript returns null when the ranked block is not rendered yet.
// Leaf filters (no children, short text) keep container text that merges
// several fields from matching.
const rankScript = `(() => {
	const leaf = (root, test) => Array.from(root.querySelectorAll('*')).find(el => {
		if (el.children.length !== 0) return false;
		const text = (el.textContent || '').trim();
		return text.length > 0 && text.length <= 32 && test(text);
	});
	const levelEl = document.querySelector('[class*="level"]');
	const sections = Array.from(document.querySelectorAll('section, div, li'))
		.filter(el => /ranked solo/i.test(el.textContent || '') && el.querySelectorAll('*').length > 3);
	if (sections.length === 0) return null;
	sections.sort((a, b) => a.textContent.length - b.textContent.length);
	const ranked = sections[0];
	const tierEl = leaf(ranked, t => /^(iron|bronze|silver|gold|platinum|emerald|diamond|master|grandmaster|challenger)\b/i.test(t));
	const lpEl = leaf(ranked, t => /\d[\d,]*\s*LP/i.test(t));
	const recordEl = leaf(ranked, t => /\d+\s*W\s*\d+\s*L/i.test(t));
	const text = el => el ? el.textContent.trim() : '';
	return { level: text(levelEl), tier: text(tierEl), lp: text(lpEl), record: text(recordEl) };
})()`

var (
	lpPattern     = regexp.MustCompile(`(?i)(\d[\d,]*)\s*LP`)
	recordPattern = regexp.MustCompile(`(?i)(\d+)\s*W\D*?(\d+)\s*L`)
)

var validTiers = map[string]bool{
	"IRON": true, "BRONZE": true, "SILVER": true, "GOLD": true, "PLATINUM": true,
	"EMERALD": true, "DIAMOND": true, "MASTER": true, "GRANDMASTER": true, "CHALLENGER": true,
}

var apexTiers = map[string]bool{"MASTER": true, "GRANDMASTER": true, "CHALLENGER": true}

var divisions = map[string]string{
	"1": "I", "2": "II", "3": "III", "4": "IV",
	"I": "I", "II": "II", "III": "III", "IV": "IV",
}

type scrapedRank struct {
	Level  string `json:"level"`
	Tier   string `json:"tier"`
	LP     string `json:"lp"`
	Record string `json:"record"`
}

type RankScraper struct {
	launcher browser.Launcher
	baseURL  string
	timing   Timing
	logger   zerolog.Logger
}

func NewRankScraper(cfg *config.Config, launcher browser.Launcher, logger zerolog.Logger) *RankScraper {
	return &RankScraper{
		launcher: launcher,
		baseURL:  strings.TrimRight(cfg.ProfileSiteURL, "/"),
		timing:   DefaultTiming(),
		logger:   logger,
	}
}

func (s *RankScraper) WithTiming(t Timing) *RankScraper {
	s.timing = t
	return s
}

// ProfileURL uses the site's region slug, which differs from the API
// platform code (euw vs euw1).
func (s *RankScraper) ProfileURL(route domain.RegionRoute, gameName, tagLine string) string {
	return fmt.Sprintf("%s/lol/summoners/%s/%s-%s",
		s.baseURL, route.ScrapeSiteSlug, url.PathEscape(gameName), url.PathEscape(tagLine))
}

// Scrape returns the solo queue entry read from the public profile page, or
// an empty slice. It never fails and always closes the browser.
func (s *RankScraper) Scrape(ctx context.Context, route domain.RegionRoute, gameName, tagLine string) (entries []domain.RankEntry) {
	entries = []domain.RankEntry{}
	if gameName == "" || tagLine == "" {
		return entries
	}

	target := s.ProfileURL(route, gameName, tagLine)
	log := s.logger.With().Str("url", target).Logger()
	ctx, cancel := context.WithTimeout(ctx, constants.ScrapeTimeout)
	defer cancel()

	page, err := s.launcher.Launch(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to launch browser")
		return entries
	}
	defer closePage(page, log)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("rank scrape panicked")
			entries = []domain.RankEntry{}
		}
	}()

	navCtx, navCancel := stage(ctx, s.timing.Navigation)
	err = page.Navigate(navCtx, target)
	navCancel()
	if err != nil {
		log.Warn().Err(err).Msg("profile navigation failed")
		return entries
	}

	readyCtx, readyCancel := stage(ctx, s.timing.Ready)
	err = page.WaitReady(readyCtx, "body")
	readyCancel()
	if err != nil {
		log.Warn().Err(err).Msg("profile page never became ready")
		return entries
	}
	if err := sleep(ctx, s.timing.ProfileSettle); err != nil {
		return entries
	}

	raw, err := s.evaluate(ctx, page, log)
	if err != nil {
		log.Warn().Err(err).Msg("rank evaluation exhausted")
		return entries
	}

	entry, ok := parseScrapedRank(raw)
	if !ok {
		log.Warn().Str("tier", raw.Tier).Msg("scraped rank could not be parsed")
		return entries
	}
	log.Info().Str("tier", entry.Tier).Str("division", entry.Division).Str("level", raw.Level).Msg("rank scraped")
	return append(entries, entry)
}

// evaluate retries only to absorb hydration races; a page whose markup no
// longer has the section fails the same way every attempt.
func (s *RankScraper) evaluate(ctx context.Context, page browser.Page, log zerolog.Logger) (*scrapedRank, error) {
	backoff := s.timing.EvaluateBackoff
	if backoff <= 0 {
		backoff = time.Millisecond
	}
	attempts := s.timing.EvaluateAttempts
	if attempts < 1 {
		attempts = 1
	}
	b := retry.WithMaxRetries(uint64(attempts-1), retry.NewConstant(backoff))

	var result *scrapedRank
	attempt := 0
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		evalCtx, cancel := stage(ctx, s.timing.Evaluate)
		defer cancel()

		var raw *scrapedRank
		if err := page.Evaluate(evalCtx, rankScript, &raw); err != nil {
			log.Debug().Err(err).Int("attempt", attempt).Msg("rank evaluation failed")
			return retry.RetryableError(err)
		}
		if raw == nil {
			log.Debug().Int("attempt", attempt).Msg("ranked section not rendered")
			return retry.RetryableError(errRankedSectionMissing)
		}
		result = raw
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func parseScrapedRank(raw *scrapedRank) (domain.RankEntry, bool) {
	fields := strings.Fields(strings.ToUpper(raw.Tier))
	if len(fields) == 0 || !validTiers[fields[0]] {
		return domain.RankEntry{}, false
	}

	entry := domain.RankEntry{QueueType: domain.QueueRankedSolo, Tier: fields[0]}
	switch {
	case apexTiers[entry.Tier]:
		entry.Division = "I"
	case len(fields) > 1 && divisions[fields[1]] != "":
		entry.Division = divisions[fields[1]]
	default:
		return domain.RankEntry{}, false
	}

	// Apex tiers often print LP next to the tier name.
	for _, text := range []string{raw.LP, raw.Tier} {
		if m := lpPattern.FindStringSubmatch(text); m != nil {
			entry.LeaguePoints, _ = strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
			break
		}
	}
	if m := recordPattern.FindStringSubmatch(raw.Record); m != nil {
		entry.Wins, _ = strconv.Atoi(m[1])
		entry.Losses, _ = strconv.Atoi(m[2])
	}
	return entry, true
}
