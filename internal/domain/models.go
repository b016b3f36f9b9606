package domain

type Cluster string

const (
	ClusterAmericas Cluster = "americas"
	ClusterEurope   Cluster = "europe"
	ClusterAsia     Cluster = "asia"
)

const QueueRankedSolo = "RANKED_SOLO_5x5"

type RegionRoute struct {
	PlatformCode   string  `json:"platformCode"`
	RoutingCluster Cluster `json:"routingCluster"`
	ScrapeSiteSlug string  `json:"scrapeSiteSlug"`
}

type AccountIdentity struct {
	Puuid    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// SummonerProfile.SummonerID is empty when the provider omitted it and
// recovery from match data did not find one.
type SummonerProfile struct {
	SummonerID    string `json:"summonerId,omitempty"`
	Puuid         string `json:"puuid"`
	ProfileIconID int    `json:"profileIconId"`
	Level         int    `json:"level"`
}

type RankEntry struct {
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Division     string `json:"division"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

type ParticipantStats struct {
	Puuid        string `json:"puuid"`
	SummonerID   string `json:"summonerId,omitempty"`
	GameName     string `json:"gameName"`
	TagLine      string `json:"tagLine"`
	ChampionName string `json:"championName"`
	TeamPosition string `json:"teamPosition"`
	TeamID       int    `json:"teamId"`
	Win          bool   `json:"win"`
	Kills        int    `json:"kills"`
	Deaths       int    `json:"deaths"`
	Assists      int    `json:"assists"`
	TotalCS      int    `json:"totalCs"`
	GoldEarned   int    `json:"goldEarned"`
	VisionScore  int    `json:"visionScore"`
	ChampLevel   int    `json:"champLevel"`
	Items        []int  `json:"items"`
}

type MatchSummary struct {
	MatchID          string             `json:"matchId"`
	GameMode         string             `json:"gameMode"`
	QueueID          int                `json:"queueId"`
	GameDuration     int64              `json:"gameDuration"`
	GameStart        int64              `json:"gameStartTimestamp"`
	ParticipantStats []ParticipantStats `json:"participantStats"`
}

type BuildItems struct {
	Core        []int `json:"core"`
	Boots       []int `json:"boots"`
	Situational []int `json:"situational"`
}

type BuildRecommendation struct {
	Champion string     `json:"champion"`
	Role     string     `json:"role"`
	Items    BuildItems `json:"items"`
	RuneIDs  []int      `json:"runeIds"`
	Winrate  float64    `json:"winrate"`
}

// EmptyBuild is the neutral "no recommendation found" answer. Slices are
// non-nil so they encode as [] rather than null.
func EmptyBuild(champion, role string) BuildRecommendation {
	return BuildRecommendation{
		Champion: champion,
		Role:     role,
		Items: BuildItems{
			Core:        []int{},
			Boots:       []int{},
			Situational: []int{},
		},
		RuneIDs: []int{},
	}
}

func (b BuildRecommendation) IsEmpty() bool {
	return len(b.Items.Core) == 0 && len(b.Items.Boots) == 0 && len(b.Items.Situational) == 0 && len(b.RuneIDs) == 0
}

// PlayerProfile is the aggregate served for a Riot id lookup.
type PlayerProfile struct {
	Account  AccountIdentity `json:"account"`
	Route    RegionRoute     `json:"route"`
	Summoner SummonerProfile `json:"summoner"`
	Ranks    []RankEntry     `json:"ranks"`
	Matches  []MatchSummary  `json:"matches"`
}
