package dto

import (
	"time"

	"github.com/google/uuid"
)

// UpsertScheduleRequest is validated after defaults are applied, so the
// word-limit rules always see concrete values.
type UpsertScheduleRequest struct {
	Time         string `json:"time" validate:"required,hhmm"`
	Timezone     string `json:"timezone" validate:"required,timezone"`
	Period       string `json:"period" validate:"required,oneof=daily weekly monthly"`
	AutoGenTitle bool   `json:"auto_gen_title"`
	TitlePrompt  string `json:"title_prompt" validate:"required_if=AutoGenTitle true,max=2000"`
	AutoGenPost  bool   `json:"auto_gen_post"`
	PostPrompt   string `json:"post_prompt" validate:"required_if=AutoGenPost true,max=4000"`
	WordLimitMin int    `json:"word_limit_min" validate:"min=50,max=1000"`
	WordLimitMax int    `json:"word_limit_max" validate:"min=50,max=1000,gtefield=WordLimitMin"`
	IsActive     *bool  `json:"is_active"`
}

type ScheduleResponse struct {
	ID            uuid.UUID  `json:"id"`
	CommunityID   uuid.UUID  `json:"community_id"`
	Time          string     `json:"time"`
	Timezone      string     `json:"timezone"`
	Period        string     `json:"period"`
	AutoGenTitle  bool       `json:"auto_gen_title"`
	TitlePrompt   string     `json:"title_prompt"`
	AutoGenPost   bool       `json:"auto_gen_post"`
	PostPrompt    string     `json:"post_prompt"`
	WordLimitMin  int        `json:"word_limit_min"`
	WordLimitMax  int        `json:"word_limit_max"`
	IsActive      bool       `json:"is_active"`
	LastExecution *time.Time `json:"last_execution"`
	NextRunAt     *time.Time `json:"next_run_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ExecutionResponse describes one run of a schedule's job.
type ExecutionResponse struct {
	BlockID   uuid.UUID  `json:"block_id"`
	BucketKey string     `json:"bucket_key"`
	Title     string     `json:"title"`
	PostID    *uuid.UUID `json:"post_id,omitempty"`
	// PostError is set when content generation failed and the block has no post.
	PostError string `json:"post_error,omitempty"`
}
