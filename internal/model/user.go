package model

type GetMyProgressRequest struct{}

type GetMyProgressResponse struct {
	User        User   `json:"user"`
	NextLevelXP int64  `json:"next_level_xp"`
	XPRank      uint64 `json:"xp_rank"`
}
