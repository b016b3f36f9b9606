package scraper

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const ssrMarker = "window.__SSR_DATA__"

var (
	errNoEmbeddedData = errors.New("embedded build data not found")
	errEmptyBuild     = errors.New("build data has no items or runes")
)

// "ap-overview", "tank-overview" and similar are alternate damage profiles.
var altDamageOverview = regexp.MustCompile(`[a-z]+-overview`)

var preferredRegions = []string{"world_emerald_plus", "world_platinum_plus", "world_overall"}

// scrapedBuild is what either extraction path yields before rune icons
// are resolved to ids.
type scrapedBuild struct {
	Core        []int
	Boots       []int
	Situational []int
	RuneIcons   []string
	Winrate     float64
}

// intList decodes arrays of numbers, numeric strings or {"id": n} objects.
type intList []int

func (l *intList) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make([]int, 0, len(raw))
	for _, r := range raw {
		if n, ok := flexInt(r); ok {
			out = append(out, n)
		}
	}
	*l = out
	return nil
}

func flexInt(raw json.RawMessage) (int, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	case map[string]any:
		if id, ok := t["id"]; ok {
			b, err := json.Marshal(id)
			if err != nil {
				return 0, false
			}
			return flexInt(b)
		}
	}
	return 0, false
}

type itemBucket struct {
	IDs     intList `json:"ids"`
	Wins    float64 `json:"wins"`
	Matches float64 `json:"matches"`
}

type buildVariant struct {
	Core        itemBucket `json:"rec_core_items"`
	Boots       itemBucket `json:"rec_boots"`
	Options1    intList    `json:"item_options_1"`
	Options2    intList    `json:"item_options_2"`
	Options3    intList    `json:"item_options_3"`
	Situational itemBucket `json:"rec_situational_items"`
	Runes       struct {
		ActivePerks  intList `json:"active_perks"`
		PrimaryStyle int     `json:"primary_style"`
		SubStyle     int     `json:"sub_style"`
	} `json:"rec_runes"`
	Shards struct {
		ActiveShards intList `json:"active_shards"`
	} `json:"stat_shards"`
}

// extractEmbeddedBuild reads the build from the page's server-rendered
// state object.
func extractEmbeddedBuild(doc *goquery.Document, role string) (scrapedBuild, error) {
	var script string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if text := s.Text(); strings.Contains(text, ssrMarker) {
			script = text
			return false
		}
		return true
	})
	if script == "" {
		return scrapedBuild{}, errNoEmbeddedData
	}

	var root map[string]json.RawMessage
	if err := DecodeAssignedObject(script, ssrMarker, &root); err != nil {
		return scrapedBuild{}, err
	}

	key, ok := overviewKey(root)
	if !ok {
		return scrapedBuild{}, fmt.Errorf("%w: no ranked overview entry", errNoEmbeddedData)
	}

	var entry struct {
		Data map[string]map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(root[key], &entry); err != nil {
		return scrapedBuild{}, fmt.Errorf("failed to parse overview entry: %w", err)
	}

	raw, ok := selectVariant(entry.Data, role)
	if !ok {
		return scrapedBuild{}, fmt.Errorf("%w: no region variant", errNoEmbeddedData)
	}

	var v buildVariant
	if err := json.Unmarshal(raw, &v); err != nil {
		return scrapedBuild{}, fmt.Errorf("failed to parse build variant: %w", err)
	}

	build := v.toBuild()
	if len(build.Core) == 0 && len(build.Boots) == 0 && len(build.RuneIcons) == 0 {
		return scrapedBuild{}, errEmptyBuild
	}
	return build, nil
}

func (v buildVariant) toBuild() scrapedBuild {
	merged := mergeItems(v.Core.IDs, v.Boots.IDs, v.Options1, v.Options2, v.Options3, v.Situational.IDs)
	core, boots := splitBoots(merged, v.Boots.IDs)

	situational := make([]int, 0)
	for _, id := range mergeItems(v.Situational.IDs) {
		if !IsBoots(id) {
			situational = append(situational, id)
		}
	}

	// Perk ids go through the same icon resolution as scraped filenames.
	runes := make([]string, 0, len(v.Runes.ActivePerks)+len(v.Shards.ActiveShards))
	for _, id := range append(append([]int{}, v.Runes.ActivePerks...), v.Shards.ActiveShards...) {
		runes = append(runes, strconv.Itoa(id))
	}

	var winrate float64
	if v.Core.Matches > 0 {
		winrate = math.Round(v.Core.Wins/v.Core.Matches*10000) / 100
	}

	return scrapedBuild{
		Core:        core,
		Boots:       boots,
		Situational: situational,
		RuneIcons:   runes,
		Winrate:     winrate,
	}
}

func overviewKey(root map[string]json.RawMessage) (string, bool) {
	keys := make([]string, 0, len(root))
	for k := range root {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		lower := strings.ToLower(k)
		if !strings.Contains(lower, "overview") || !strings.Contains(lower, "ranked_solo_5x5") {
			continue
		}
		if altDamageOverview.MatchString(lower) {
			continue
		}
		return k, true
	}
	return "", false
}

// selectVariant picks a region bucket (broadest high-elo sample first),
// then the requested role inside it.
func selectVariant(data map[string]map[string]json.RawMessage, role string) (json.RawMessage, bool) {
	if len(data) == 0 {
		return nil, false
	}

	regions := make([]string, 0, len(data))
	for k := range data {
		regions = append(regions, k)
	}
	sort.Strings(regions)

	region := ""
	for _, p := range preferredRegions {
		if _, ok := data[p]; ok {
			region = p
			break
		}
	}
	if region == "" {
		for _, r := range regions {
			if strings.HasPrefix(r, "world") {
				region = r
				break
			}
		}
	}
	if region == "" {
		region = regions[0]
	}

	roles := data[region]
	if len(roles) == 0 {
		return nil, false
	}
	if raw, ok := roles[role]; ok && role != "" {
		return raw, true
	}

	keys := make([]string, 0, len(roles))
	for k := range roles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if role != "" {
		for _, k := range keys {
			if RoleSlug(k) == role {
				return roles[k], true
			}
		}
	}
	return roles[keys[0]], true
}
