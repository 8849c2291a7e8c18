package model

type GetLeaderboardRequest struct {
	OrderedBy string `form:"ordered_by"`
	Period    string `form:"period"`
	Offset    int    `form:"offset"`
	Limit     int    `form:"limit"`
}

type GetLeaderboardResponse struct {
	Leaderboard []UserStatistic `json:"leaderboard"`
}
