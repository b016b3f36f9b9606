package scraper

import (
	"slices"

	"league-tracker/internal/constants"
)

var bootsIDs = map[int]bool{
	1001: true, // Boots
	2422: true, // Slightly Magical Footwear
	3006: true, // Berserker's Greaves
	3009: true, // Boots of Swiftness
	3020: true, // Sorcerer's Shoes
	3047: true, // Plated Steelcaps
	3111: true, // Mercury's Treads
	3117: true, // Mobility Boots
	3158: true, // Ionian Boots of Lucidity
	3170: true,
	3171: true,
	3172: true,
	3173: true,
	3174: true,
	3175: true,
}

// Ids never counted as build items (starters, wards, potions).
var excludedItemIDs = map[int]bool{
	1054: true, // Doran's Shield
	1055: true, // Doran's Blade
	1056: true, // Doran's Ring
	1082: true, // Dark Seal
	1083: true, // Cull
	1101: true, // jungle companions
	1102: true,
	1103: true,
	2003: true, // Health Potion
	2010: true,
	2031: true, // Refillable Potion
	2033: true, // Corrupting Potion
	2055: true, // Control Ward
	2138: true,
	2139: true,
	2140: true,
	3340: true, // Stealth Ward
	3363: true, // Farsight Alteration
	3364: true, // Oracle Lens
	3865: true, // World Atlas
	3866: true,
	3867: true,
}

func IsBoots(id int) bool { return bootsIDs[id] }

// mergeItems concatenates lists, keeping first occurrence order, and drops
// ids below the plausibility floor.
func mergeItems(lists ...[]int) []int {
	out := make([]int, 0)
	seen := make(map[int]bool)
	for _, list := range lists {
		for _, id := range list {
			if id < constants.MinItemID || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// splitBoots returns core without boots. When dedicated is empty the boots
// are picked out of merged by id.
func splitBoots(merged, dedicated []int) (core, boots []int) {
	boots = mergeItems(dedicated)
	if len(boots) == 0 {
		for _, id := range merged {
			if IsBoots(id) {
				boots = append(boots, id)
			}
		}
	}
	core = make([]int, 0, len(merged))
	for _, id := range merged {
		if !slices.Contains(boots, id) {
			core = append(core, id)
		}
	}
	return core, boots
}
