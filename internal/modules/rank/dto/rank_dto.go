package dto

import (
	"time"

	tierDto "anoa.com/practiceforum/internal/modules/tier/dto"
	commonDto "anoa.com/practiceforum/pkg/dto"
	"github.com/google/uuid"
)

type RankResponse struct {
	Kind         string               `json:"kind"`
	BoardName    string               `json:"board_name"`
	MajorTier    tierDto.TierResponse `json:"major_tier"`
	SubMajorTier tierDto.TierResponse `json:"sub_major_tier"`
	MinorTier    tierDto.TierResponse `json:"minor_tier"`
	RankDisplay  string               `json:"rank_display"` // "major sub minor"
	RankColor    string               `json:"rank_color"`
	DaysCount    int                  `json:"days_count"`
	Highest      HighestRankResponse  `json:"highest"`
	Position     *int64               `json:"position,omitempty"` // 1-based, nil when unranked
	LastUpdate   *time.Time           `json:"last_update,omitempty"`
}

type HighestRankResponse struct {
	MajorTier    tierDto.TierResponse `json:"major_tier"`
	SubMajorTier tierDto.TierResponse `json:"sub_major_tier"`
	MinorTier    tierDto.TierResponse `json:"minor_tier"`
	RankDisplay  string               `json:"rank_display"`
	DaysCount    int                  `json:"days_count"`
}

type UserRanksResponse struct {
	UserID      uuid.UUID    `json:"user_id"`
	Translation RankResponse `json:"translation"`
	Writing     RankResponse `json:"writing"`
}

type LeaderboardEntry struct {
	Position    int       `json:"position"`
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	RankDisplay string    `json:"rank_display"`
	RankColor   string    `json:"rank_color"`
	DaysCount   int       `json:"days_count"`
	LastUpdate  time.Time `json:"last_update"`
}

type LeaderboardResponse struct {
	BoardName string                   `json:"board_name"`
	Kind      string                   `json:"kind"`
	Data      []LeaderboardEntry       `json:"data"`
	Meta      commonDto.PaginationMeta `json:"meta"`
}

type LeaderboardFilter struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

type RankHistoryResponse struct {
	ID           uuid.UUID            `json:"id"`
	MajorTier    tierDto.TierResponse `json:"major_tier"`
	SubMajorTier tierDto.TierResponse `json:"sub_major_tier"`
	MinorTier    tierDto.TierResponse `json:"minor_tier"`
	RankDisplay  string               `json:"rank_display"`
	DaysCount    int                  `json:"days_count"`
	ChangeType   string               `json:"change_type"`
	ChangeDate   time.Time            `json:"change_date"`
}

type DaysToRankRequest struct {
	Kind     string `form:"kind" binding:"required"`
	Major    int    `form:"major" binding:"required,min=1"`
	SubMajor int    `form:"sub_major" binding:"required,min=1"`
	Minor    int    `form:"minor" binding:"required,min=1"`
}

type DaysToRankResponse struct {
	Kind        string  `json:"kind"`
	Constant    float64 `json:"constant"`
	RankDisplay string  `json:"rank_display"`
	Days        int     `json:"days"`
}
