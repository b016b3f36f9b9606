// Package region maps Riot tags and platform codes to API routing clusters
// and to the profile site's region slugs.
package region

import (
	"strings"

	"league-tracker/internal/domain"
)

const DefaultPlatform = "na1"

type tagRoute struct {
	token    string
	platform string
	slug     string
}

// Longer tokens come first so "EUNE" is not swallowed by "EU".
var tagRoutes = []tagRoute{
	{"EUNE", "eun1", "eune"},
	{"EUW", "euw1", "euw"},
	{"OCE", "oc1", "oce"},
	{"LAN", "la1", "lan"},
	{"LAS", "la2", "las"},
	{"EU", "euw1", "euw"},
	{"TR", "tr1", "tr"},
	{"RU", "ru", "ru"},
	{"ME", "me1", "me"},
	{"KR", "kr", "kr"},
	{"JP", "jp1", "jp"},
	{"VN", "vn2", "vn"},
	{"TW", "tw2", "tw"},
	{"TH", "th2", "th"},
	{"SG", "sg2", "sg"},
	{"PH", "ph2", "ph"},
	{"BR", "br1", "br"},
	{"NA", "na1", "na"},
}

var platformClusters = map[string]domain.Cluster{
	"na1":  domain.ClusterAmericas,
	"br1":  domain.ClusterAmericas,
	"la1":  domain.ClusterAmericas,
	"la2":  domain.ClusterAmericas,
	"euw1": domain.ClusterEurope,
	"eun1": domain.ClusterEurope,
	"tr1":  domain.ClusterEurope,
	"ru":   domain.ClusterEurope,
	"me1":  domain.ClusterEurope,
	"kr":   domain.ClusterAsia,
	"jp1":  domain.ClusterAsia,
	"oc1":  domain.ClusterAsia,
	"ph2":  domain.ClusterAsia,
	"sg2":  domain.ClusterAsia,
	"th2":  domain.ClusterAsia,
	"tw2":  domain.ClusterAsia,
	"vn2":  domain.ClusterAsia,
}

// The profile site names regions differently from the API platform codes.
var platformSlugs = map[string]string{
	"na1":  "na",
	"br1":  "br",
	"la1":  "lan",
	"la2":  "las",
	"euw1": "euw",
	"eun1": "eune",
	"tr1":  "tr",
	"ru":   "ru",
	"me1":  "me",
	"kr":   "kr",
	"jp1":  "jp",
	"oc1":  "oce",
	"ph2":  "ph",
	"sg2":  "sg",
	"th2":  "th",
	"tw2":  "tw",
	"vn2":  "vn",
}

// FromTag routes a tag line such as "EUW" or "KR1". Unknown tags fall back
// to the americas cluster.
func FromTag(tagLine string) domain.RegionRoute {
	upper := strings.ToUpper(strings.TrimSpace(tagLine))
	for _, r := range tagRoutes {
		if strings.Contains(upper, r.token) {
			return domain.RegionRoute{
				PlatformCode:   r.platform,
				RoutingCluster: platformClusters[r.platform],
				ScrapeSiteSlug: r.slug,
			}
		}
	}
	return FromPlatform(DefaultPlatform)
}

// FromPlatform routes an explicit platform code such as "euw1".
func FromPlatform(platform string) domain.RegionRoute {
	code := strings.ToLower(strings.TrimSpace(platform))
	cluster, ok := platformClusters[code]
	if !ok {
		code = DefaultPlatform
		cluster = domain.ClusterAmericas
	}
	return domain.RegionRoute{
		PlatformCode:   code,
		RoutingCluster: cluster,
		ScrapeSiteSlug: platformSlugs[code],
	}
}

func ClusterForTag(tagLine string) domain.Cluster {
	return FromTag(tagLine).RoutingCluster
}

func ClusterForPlatform(platform string) domain.Cluster {
	return FromPlatform(platform).RoutingCluster
}
