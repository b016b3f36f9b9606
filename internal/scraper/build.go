package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"league-tracker/internal/browser"
	"league-tracker/internal/config"
	"league-tracker/internal/constants"
	"league-tracker/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// IconResolver turns rune icon filenames into canonical perk ids.
type IconResolver interface {
	ResolveAll(filenames []string) []int
}

var errSignalTimeout = errors.New("build content did not appear")

var buildSignalScript = fmt.Sprintf(`(() => {
	if (window.__SSR_DATA__ && Object.keys(window.__SSR_DATA__).length > 0) return true;
	const icons = document.querySelectorAll('img[src*="perk"], img[src*="rune"], img[src*="item"], img[src*="StatMods"]');
	return icons.length > %d;
})()`, constants.BuildSignalMinIcons)

var scrollScript = fmt.Sprintf(`(() => { window.scrollBy(0, %d); return true; })()`, constants.ScrollStepPixels)

type BuildScraper struct {
	launcher browser.Launcher
	icons    IconResolver
	baseURL  string
	timing   Timing
	logger   zerolog.Logger
}

func NewBuildScraper(cfg *config.Config, launcher browser.Launcher, icons IconResolver, logger zerolog.Logger) *BuildScraper {
	return &BuildScraper{
		launcher: launcher,
		icons:    icons,
		baseURL:  strings.TrimRight(cfg.BuildSiteURL, "/"),
		timing:   DefaultTiming(),
		logger:   logger,
	}
}

func (s *BuildScraper) WithTiming(t Timing) *BuildScraper {
	s.timing = t
	return s
}

func (s *BuildScraper) BuildURL(champion, role string) string {
	u := fmt.Sprintf("%s/lol/champions/%s/build", s.baseURL, url.PathEscape(champion))
	if role != "" {
		u += "/" + url.PathEscape(role)
	}
	return u
}

// Scrape never fails: any stage failure yields the empty recommendation.
// The browser is closed on every path, including panics and cancellation.
func (s *BuildScraper) Scrape(ctx context.Context, champion, role string) (rec domain.BuildRecommendation) {
	champ := ChampionSlug(champion)
	roleSlug := RoleSlug(role)
	rec = domain.EmptyBuild(champ, roleSlug)
	if champ == "" {
		return rec
	}

	log := s.logger.With().Str("champion", champ).Str("role", roleSlug).Logger()
	ctx, cancel := context.WithTimeout(ctx, constants.ScrapeTimeout)
	defer cancel()

	start := time.Now()
	page, err := s.launcher.Launch(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to launch browser")
		return rec
	}
	defer closePage(page, log)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("build scrape panicked")
			rec = domain.EmptyBuild(champ, roleSlug)
		}
	}()

	build, err := s.collect(ctx, page, s.BuildURL(champ, roleSlug), roleSlug, log)
	if err != nil {
		log.Warn().Err(err).Msg("build scrape failed")
		return rec
	}

	rec.Items.Core = build.Core
	rec.Items.Boots = build.Boots
	rec.Items.Situational = build.Situational
	rec.RuneIDs = s.icons.ResolveAll(build.RuneIcons)
	rec.Winrate = build.Winrate

	log.Info().
		Int("core", len(rec.Items.Core)).
		Int("runes", len(rec.RuneIDs)).
		Dur("duration", time.Since(start)).
		Msg("build scraped")
	return rec
}

func (s *BuildScraper) collect(ctx context.Context, page browser.Page, target, role string, log zerolog.Logger) (scrapedBuild, error) {
	navCtx, navCancel := stage(ctx, s.timing.Navigation)
	err := page.Navigate(navCtx, target)
	navCancel()
	if err != nil {
		return scrapedBuild{}, fmt.Errorf("navigation failed: %w", err)
	}

	if err := s.waitForBuildSignal(ctx, page); err != nil {
		return scrapedBuild{}, err
	}
	if err := s.autoScroll(ctx, page); err != nil {
		return scrapedBuild{}, err
	}
	if err := sleep(ctx, s.timing.BuildSettle); err != nil {
		return scrapedBuild{}, err
	}

	htmlCtx, htmlCancel := stage(ctx, s.timing.Evaluate)
	html, err := page.OuterHTML(htmlCtx)
	htmlCancel()
	if err != nil {
		return scrapedBuild{}, fmt.Errorf("failed to read page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return scrapedBuild{}, fmt.Errorf("failed to parse page: %w", err)
	}

	build, err := extractEmbeddedBuild(doc, role)
	if err == nil {
		log.Debug().Msg("build read from embedded data")
		return build, nil
	}
	log.Debug().Err(err).Msg("embedded data unavailable, falling back to DOM")

	return extractDOMBuild(doc)
}

// waitForBuildSignal polls until icons or the state object show up.
// Evaluation errors while the page hydrates are not fatal.
func (s *BuildScraper) waitForBuildSignal(ctx context.Context, page browser.Page) error {
	ctx, cancel := context.WithTimeout(ctx, s.timing.BuildSignal)
	defer cancel()

	for {
		var ready bool
		evalCtx, evalCancel := stage(ctx, s.timing.Evaluate)
		err := page.Evaluate(evalCtx, buildSignalScript, &ready)
		evalCancel()
		if err == nil && ready {
			return nil
		}
		if err := sleep(ctx, s.timing.BuildSignalPoll); err != nil {
			return errSignalTimeout
		}
	}
}

func (s *BuildScraper) autoScroll(ctx context.Context, page browser.Page) error {
	for i := 0; i < s.timing.ScrollSteps; i++ {
		var ok bool
		evalCtx, cancel := stage(ctx, s.timing.Evaluate)
		err := page.Evaluate(evalCtx, scrollScript, &ok)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		if err := sleep(ctx, s.timing.ScrollStepDelay); err != nil {
			return err
		}
	}
	return nil
}

func closePage(page browser.Page, log zerolog.Logger) {
	if err := page.Close(); err != nil {
		log.Debug().Err(err).Str("session", page.ID()).Msg("browser close returned error")
	}
}
