package api

// Raw payload shapes for the chess.com public API and the internal web
// callback API. Only the fields the pipeline reads are declared.

type clubInfoResponse struct {
	ClubID       int64  `json:"club_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Country      string `json:"country"`
	URL          string `json:"url"`
	MembersCount int    `json:"members_count"`
	Created      int64  `json:"created"`
	Location     string `json:"location"`
}

type rawMember struct {
	Username string `json:"username"`
	Joined   int64  `json:"joined"`
}

// The members endpoint groups usernames by activity tier.
type clubMembersResponse struct {
	Weekly  []rawMember `json:"weekly"`
	Monthly []rawMember `json:"monthly"`
	AllTime []rawMember `json:"all_time"`
}

type playerProfileResponse struct {
	Username   string `json:"username"`
	Name       string `json:"name"`
	Title      string `json:"title"`
	Country    string `json:"country"`
	Status     string `json:"status"`
	Joined     int64  `json:"joined"`
	LastOnline int64  `json:"last_online"`
}

type rawTournamentWinner struct {
	Username string   `json:"username"`
	Score    *float64 `json:"score"`
}

type rawTournament struct {
	ID                  int64                `json:"id"`
	Name                string               `json:"name"`
	StartTime           int64                `json:"start_time"`
	EndTime             int64                `json:"end_time"`
	RegisteredUserCount int                  `json:"registered_user_count"`
	Winner              *rawTournamentWinner `json:"winner"`
}

type rawStanding struct {
	Username string   `json:"username"`
	Rank     int      `json:"rank"`
	Score    *float64 `json:"score"`
	Rating   *int     `json:"rating"`
}

type leaderboardResponse struct {
	Players []rawStanding `json:"players"`
}

type rawGameSide struct {
	Username string `json:"username"`
	Result   string `json:"result"`
	Rating   int    `json:"rating"`
}

type rawAccuracies struct {
	White float64 `json:"white"`
	Black float64 `json:"black"`
}

type rawGame struct {
	URL        string         `json:"url"`
	PGN        string         `json:"pgn"`
	ECO        string         `json:"eco"`
	EndTime    int64          `json:"end_time"`
	White      rawGameSide    `json:"white"`
	Black      rawGameSide    `json:"black"`
	Accuracies *rawAccuracies `json:"accuracies"`
}

type archiveResponse struct {
	Games []rawGame `json:"games"`
}
