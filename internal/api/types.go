package api

type AccountDTO struct {
	Puuid    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// SummonerDTO.ID is sometimes missing from the live endpoint.
type SummonerDTO struct {
	ID            string `json:"id"`
	AccountID     string `json:"accountId"`
	Puuid         string `json:"puuid"`
	ProfileIconID int    `json:"profileIconId"`
	SummonerLevel int    `json:"summonerLevel"`
}

type LeagueEntryDTO struct {
	LeagueID     string `json:"leagueId"`
	SummonerID   string `json:"summonerId"`
	Puuid        string `json:"puuid"`
	QueueType    string `json:"queueType"` // RANKED_SOLO_5x5, RANKED_FLEX_SR
	Tier         string `json:"tier"`
	Rank         string `json:"rank"` // I, II, III, IV
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	HotStreak    bool   `json:"hotStreak"`
	Inactive     bool   `json:"inactive"`
}

type MatchDTO struct {
	Metadata struct {
		MatchID      string   `json:"matchId"`
		Participants []string `json:"participants"`
	} `json:"metadata"`
	Info MatchInfoDTO `json:"info"`
}

type MatchInfoDTO struct {
	GameDuration       int64            `json:"gameDuration"`
	GameMode           string           `json:"gameMode"`
	GameStartTimestamp int64            `json:"gameStartTimestamp"`
	QueueID            int              `json:"queueId"`
	Participants       []ParticipantDTO `json:"participants"`
}

type ParticipantDTO struct {
	Puuid                string `json:"puuid"`
	SummonerID           string `json:"summonerId"`
	SummonerLevel        int    `json:"summonerLevel"`
	ProfileIcon          int    `json:"profileIcon"`
	RiotIDGameName       string `json:"riotIdGameName"`
	RiotIDTagline        string `json:"riotIdTagline"`
	ChampionName         string `json:"championName"`
	TeamID               int    `json:"teamId"`
	TeamPosition         string `json:"teamPosition"`
	Win                  bool   `json:"win"`
	Kills                int    `json:"kills"`
	Deaths               int    `json:"deaths"`
	Assists              int    `json:"assists"`
	ChampLevel           int    `json:"champLevel"`
	TotalMinionsKilled   int    `json:"totalMinionsKilled"`
	NeutralMinionsKilled int    `json:"neutralMinionsKilled"`
	GoldEarned           int    `json:"goldEarned"`
	VisionScore          int    `json:"visionScore"`
	Item0                int    `json:"item0"`
	Item1                int    `json:"item1"`
	Item2                int    `json:"item2"`
	Item3                int    `json:"item3"`
	Item4                int    `json:"item4"`
	Item5                int    `json:"item5"`
	Item6                int    `json:"item6"`
}

func (p ParticipantDTO) ItemIDs() []int {
	items := make([]int, 0, 7)
	for _, id := range []int{p.Item0, p.Item1, p.Item2, p.Item3, p.Item4, p.Item5, p.Item6} {
		if id != 0 {
			items = append(items, id)
		}
	}
	return items
}
