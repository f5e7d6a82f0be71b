package dto

import (
	streakDto "anoa.com/practiceforum/internal/modules/streak/dto"
	commonDto "anoa.com/practiceforum/pkg/dto"
	"github.com/google/uuid"
)

type CreatePostRequest struct {
	Title   string `json:"title" binding:"required,max=255"`
	Content string `json:"content" binding:"required,max=20000"`
}

type PostResponse struct {
	ID              uuid.UUID                `json:"id"`
	BlockID         uuid.UUID                `json:"block_id"`
	Title           string                   `json:"title"`
	Content         string                   `json:"content"`
	WordCount       int                      `json:"word_count"`
	IsAutoGenerated bool                     `json:"is_auto_generated"`
	Author          commonDto.AuthorResponse `json:"author"`
	CreatedAt       string                   `json:"created_at"`
	UpdatedAt       string                   `json:"updated_at"`
}

// CreatePostResponse carries the writing streak credited by the post, if any.
type CreatePostResponse struct {
	Post   PostResponse                       `json:"post"`
	Streak *streakDto.RecordActivityResponse `json:"streak,omitempty"`
}

type PostFilter struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

type PaginatedPostResponse struct {
	Data []PostResponse          `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}
