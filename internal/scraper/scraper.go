// Package scraper drives disposable headless browsers against third-party
// stats sites to recover rank and build data the official API lacks.
package scraper

import (
	"context"
	"strings"
	"time"
	"unicode"

	"league-tracker/internal/constants"
)

// Timing holds every wait a scrape performs. Tests shrink these.
type Timing struct {
	Navigation       time.Duration
	Ready            time.Duration
	Evaluate         time.Duration
	BuildSignal      time.Duration
	BuildSignalPoll  time.Duration
	ScrollSteps      int
	ScrollStepDelay  time.Duration
	BuildSettle      time.Duration
	ProfileSettle    time.Duration
	EvaluateAttempts int
	EvaluateBackoff  time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		Navigation:       constants.NavigationTimeout,
		Ready:            constants.ReadyTimeout,
		Evaluate:         constants.EvaluateTimeout,
		BuildSignal:      constants.BuildSignalTimeout,
		BuildSignalPoll:  constants.BuildSignalPoll,
		ScrollSteps:      constants.ScrollSteps,
		ScrollStepDelay:  constants.ScrollStepDelay,
		BuildSettle:      constants.BuildSettleDelay,
		ProfileSettle:    constants.ProfileSettleDelay,
		EvaluateAttempts: constants.EvaluateAttempts,
		EvaluateBackoff:  constants.EvaluateBackoff,
	}
}

// stage bounds a single browser call. Zero leaves only the caller's deadline.
func stage(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
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

var championAliases = map[string]string{
	"monkeyking":  "wukong",
	"nunuwillump": "nunu",
	"renataglasc": "renata",
}

// ChampionSlug lowercases a display or API champion name and strips
// everything but letters and digits, e.g. "Kai'Sa" -> "kaisa".
func ChampionSlug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	slug := b.String()
	if alias, ok := championAliases[slug]; ok {
		return alias
	}
	return slug
}

var roleAliases = map[string]string{
	"top":     "top",
	"jungle":  "jungle",
	"jg":      "jungle",
	"jng":     "jungle",
	"mid":     "mid",
	"middle":  "mid",
	"adc":     "adc",
	"bot":     "adc",
	"bottom":  "adc",
	"carry":   "adc",
	"support": "support",
	"supp":    "support",
	"sup":     "support",
	"utility": "support",
}

// RoleSlug maps lane spellings (including Riot's teamPosition values) to
// the build site's path segment. Unknown roles map to "".
func RoleSlug(role string) string {
	return roleAliases[strings.ToLower(strings.TrimSpace(role))]
}
