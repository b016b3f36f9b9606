// Package staticdata builds the process-wide icon filename lookup used to
// turn scraped rune images into canonical perk ids.
package staticdata

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"league-tracker/internal/config"
	"league-tracker/internal/constants"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// Stat shards are absent from runesReforged.json.
var statShardIcons = map[string]int{
	"StatModsAdaptiveForceIcon":            5008,
	"StatModsAttackSpeedIcon":              5005,
	"StatModsCDRScalingIcon":               5007,
	"StatModsArmorIcon":                    5002,
	"StatModsMagicResIcon.MagicResist_Fix": 5003,
	"StatModsMagicResIcon":                 5003,
	"StatModsHealthScalingIcon":            5001,
	"StatModsHealthPlusIcon":               5011,
	"StatModsMovementSpeedIcon":            5010,
	"StatModsTenacityIcon":                 5013,
}

var imageExtensions = []string{".png", ".webp"}

var leadingNumber = regexp.MustCompile(`^(\d+)`)

type RuneTree struct {
	ID    int    `json:"id"`
	Key   string `json:"key"`
	Icon  string `json:"icon"`
	Name  string `json:"name"`
	Slots []struct {
		Runes []struct {
			ID   int    `json:"id"`
			Key  string `json:"key"`
			Icon string `json:"icon"`
			Name string `json:"name"`
		} `json:"runes"`
	} `json:"slots"`
}

// IconIndex is built once and only read afterwards.
type IconIndex struct {
	baseURL string
	client  *fasthttp.Client
	logger  zerolog.Logger
	icons   atomic.Pointer[map[string]int]
	version atomic.Value
	once    sync.Once
	loadErr error
}

func NewIconIndex(cfg *config.Config, logger zerolog.Logger) *IconIndex {
	idx := &IconIndex{
		baseURL: strings.TrimRight(cfg.DDragonBaseURL, "/"),
		client: &fasthttp.Client{
			ReadTimeout:  constants.StaticDataTimeout,
			WriteTimeout: constants.StaticDataTimeout,
		},
		logger: logger,
	}
	idx.install(BuildIconMap(nil))
	return idx
}

// Load fetches the rune catalogue once per process. A failed fetch leaves
// the stat-shard table and numeric fallback in place.
func (idx *IconIndex) Load(ctx context.Context) error {
	idx.once.Do(func() {
		idx.loadErr = idx.load(ctx)
	})
	return idx.loadErr
}

func (idx *IconIndex) load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.StaticDataTimeout)
	defer cancel()

	var versions []string
	if err := idx.getJSON(ctx, idx.baseURL+"/api/versions.json", &versions); err != nil {
		return fmt.Errorf("failed to fetch versions: %w", err)
	}
	if len(versions) == 0 {
		return fmt.Errorf("no versions available")
	}
	version := versions[0]

	var trees []RuneTree
	u := fmt.Sprintf("%s/cdn/%s/data/en_US/runesReforged.json", idx.baseURL, version)
	if err := idx.getJSON(ctx, u, &trees); err != nil {
		return fmt.Errorf("failed to fetch rune catalogue: %w", err)
	}
	if len(trees) == 0 {
		return fmt.Errorf("rune catalogue empty for %s", version)
	}

	icons := BuildIconMap(trees)
	idx.install(icons)
	idx.version.Store(version)
	idx.logger.Info().Str("version", version).Int("icons", len(icons)).Msg("icon map loaded")
	return nil
}

func (idx *IconIndex) install(icons map[string]int) {
	idx.icons.Store(&icons)
}

func (idx *IconIndex) Size() int {
	return len(*idx.icons.Load())
}

func (idx *IconIndex) Version() string {
	v, _ := idx.version.Load().(string)
	return v
}

// Resolve maps an icon filename (or URL) to a canonical id. Exact filename
// lookup wins; otherwise a leading numeric token above the plausibility
// floor is accepted.
func (idx *IconIndex) Resolve(filename string) (int, bool) {
	key := iconKey(filename)
	if key == "" {
		return 0, false
	}
	if id, ok := (*idx.icons.Load())[key]; ok {
		return id, true
	}
	m := leadingNumber.FindStringSubmatch(key)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil || id <= constants.MinFallbackIconID {
		return 0, false
	}
	return id, true
}

// ResolveAll drops entries that cannot be resolved and duplicates.
func (idx *IconIndex) ResolveAll(filenames []string) []int {
	ids := make([]int, 0, len(filenames))
	seen := make(map[int]bool, len(filenames))
	for _, f := range filenames {
		id, ok := idx.Resolve(f)
		if !ok {
			idx.logger.Debug().Str("icon", f).Msg("unresolved icon")
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// BuildIconMap flattens the rune trees and merges the stat-shard table.
func BuildIconMap(trees []RuneTree) map[string]int {
	icons := make(map[string]int)
	register := func(icon string, id int) {
		base := strings.TrimSuffix(iconKey(icon), path.Ext(iconKey(icon)))
		if base == "" {
			return
		}
		for _, ext := range imageExtensions {
			icons[base+ext] = id
		}
	}

	for _, tree := range trees {
		for _, slot := range tree.Slots {
			for _, r := range slot.Runes {
				register(r.Icon, r.ID)
			}
		}
	}
	for name, id := range statShardIcons {
		for _, ext := range imageExtensions {
			icons[strings.ToLower(name+ext)] = id
		}
	}
	return icons
}

// iconKey reduces a path or URL to its lower-cased terminal filename.
func iconKey(icon string) string {
	icon = strings.TrimSpace(icon)
	if i := strings.IndexAny(icon, "?#"); i >= 0 {
		icon = icon[:i]
	}
	if icon == "" {
		return ""
	}
	return strings.ToLower(path.Base(icon))
}

func (idx *IconIndex) getJSON(ctx context.Context, url string, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(constants.StaticDataTimeout)
	}
	if err := idx.client.DoDeadline(req, resp, deadline); err != nil {
		return err
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("static data error: %d", resp.StatusCode())
	}
	return json.Unmarshal(resp.Body(), out)
}
