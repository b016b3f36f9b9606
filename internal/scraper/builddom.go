package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"league-tracker/internal/constants"

	"github.com/PuerkitoBio/goquery"
)

var (
	itemPathPattern = regexp.MustCompile(`(?i)/items?/(\d+)\.(?:png|webp|jpe?g)`)
	cssURLPattern   = regexp.MustCompile(`url\(\s*['"]?([^'")]+)['"]?\s*\)`)
	percentPattern  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
)

var excludedSectionWords = []string{"starting", "starter", "trinket", "consumable", "potion"}

const (
	runeActiveDepth  = 3
	shardActiveDepth = 1
	headingDepth     = 4
)

// extractDOMBuild scrapes the rendered markup when no embedded state is
// available. Items are not bucketed here, so boots come from the id set.
func extractDOMBuild(doc *goquery.Document) (scrapedBuild, error) {
	items := domItems(doc)
	runes := domRunes(doc)
	if len(items) == 0 && len(runes) == 0 {
		return scrapedBuild{}, errEmptyBuild
	}

	core, boots := splitBoots(items, nil)
	return scrapedBuild{
		Core:        core,
		Boots:       boots,
		Situational: []int{},
		RuneIcons:   runes,
		Winrate:     domWinrate(doc),
	}, nil
}

func domRunes(doc *goquery.Document) []string {
	var icons []string
	seen := make(map[string]bool)

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := imageSource(img)
		if !looksLikeRune(src) {
			return
		}
		// Shard rows mark the active choice on the image or its wrapper only;
		// looking further up would hit the row and select every shard.
		depth := runeActiveDepth
		if img.Closest("[class*='shard']").Length() > 0 {
			depth = shardActiveDepth
		}
		if !hasActiveMarker(img, depth) {
			return
		}
		key := iconName(src)
		if seen[key] {
			return
		}
		seen[key] = true
		icons = append(icons, src)
	})
	return icons
}

func domItems(doc *goquery.Document) []int {
	items := make([]int, 0)
	seen := make(map[int]bool)

	add := func(sel *goquery.Selection, url string) {
		m := itemPathPattern.FindStringSubmatch(url)
		if m == nil {
			return
		}
		id, err := strconv.Atoi(m[1])
		if err != nil || id < constants.MinItemID || seen[id] || excludedItemIDs[id] {
			return
		}
		if inExcludedSection(sel) {
			return
		}
		seen[id] = true
		items = append(items, id)
	}

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		add(img, imageSource(img))
	})
	doc.Find("[style*='url(']").Each(func(_ int, el *goquery.Selection) {
		style, _ := el.Attr("style")
		for _, m := range cssURLPattern.FindAllStringSubmatch(style, -1) {
			add(el, m[1])
		}
	})
	return items
}

func domWinrate(doc *goquery.Document) float64 {
	var winrate float64
	doc.Find("[class*='win-rate'], [class*='winrate'], [class*='win_rate']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		m := percentPattern.FindStringSubmatch(s.Text())
		if m == nil {
			return true
		}
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			winrate = v
			return false
		}
		return true
	})
	return winrate
}

func imageSource(img *goquery.Selection) string {
	if src, ok := img.Attr("src"); ok && src != "" && !strings.HasPrefix(src, "data:") {
		return src
	}
	src, _ := img.Attr("data-src")
	return src
}

func looksLikeRune(src string) bool {
	lower := strings.ToLower(src)
	return strings.Contains(lower, "perk") || strings.Contains(lower, "rune") || strings.Contains(lower, "statmod")
}

func iconName(src string) string {
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	if i := strings.LastIndexByte(src, '/'); i >= 0 {
		src = src[i+1:]
	}
	return strings.ToLower(src)
}

// hasActiveMarker checks the element and up to depth ancestors.
func hasActiveMarker(sel *goquery.Selection, depth int) bool {
	for i := 0; i <= depth && sel.Length() > 0; i++ {
		if isActiveClass(sel.AttrOr("class", "")) {
			return true
		}
		sel = sel.Parent()
	}
	return false
}

func isActiveClass(class string) bool {
	for _, c := range strings.Fields(strings.ToLower(class)) {
		if strings.Contains(c, "inactive") {
			continue
		}
		if c == "active" || strings.HasPrefix(c, "active") || strings.HasSuffix(c, "-active") || strings.HasSuffix(c, "_active") {
			return true
		}
	}
	return false
}

// inExcludedSection reports whether the nearest section heading above sel
// names an excluded section.
func inExcludedSection(sel *goquery.Selection) bool {
	anc := sel.Parent()
	for i := 0; i < headingDepth && anc.Length() > 0; i++ {
		heading := anc.ChildrenFiltered("h1, h2, h3, h4, h5, h6, [class*='title'], [class*='header']").First()
		if heading.Length() > 0 {
			text := strings.ToLower(heading.Text())
			for _, w := range excludedSectionWords {
				if strings.Contains(text, w) {
					return true
				}
			}
			return false
		}
		anc = anc.Parent()
	}
	return false
}
