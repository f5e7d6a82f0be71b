package post

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"anoa.com/practiceforum/internal/entity"
	blockRepo "anoa.com/practiceforum/internal/modules/block/repository"
	postDto "anoa.com/practiceforum/internal/modules/post/dto"
	postRepo "anoa.com/practiceforum/internal/modules/post/repository"
	streakDto "anoa.com/practiceforum/internal/modules/streak/dto"
	"anoa.com/practiceforum/pkg/apperror"
	commonDto "anoa.com/practiceforum/pkg/dto"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultPostLimit = 20
	maxPostLimit     = 100
)

// ActivityRecorder credits a user's practice day.
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, userID uuid.UUID, kind entity.ActivityKind, referenceID string) (*streakDto.RecordActivityResponse, error)
}

type PostService interface {
	// CreatePost stores a user's post and credits the writing streak for it.
	CreatePost(ctx context.Context, userID, blockID uuid.UUID, req postDto.CreatePostRequest) (*postDto.CreatePostResponse, error)
	// CreateAutoPost stores a generated post. It never credits activity.
	CreateAutoPost(ctx context.Context, authorID, blockID uuid.UUID, title, content string) (*entity.Post, error)
	GetPostsByBlockID(ctx context.Context, blockID uuid.UUID, filter postDto.PostFilter) (*postDto.PaginatedPostResponse, error)
	GetPostByID(ctx context.Context, postID uuid.UUID) (*postDto.PostResponse, error)
}

type postService struct {
	postRepo  postRepo.PostRepository
	blockRepo blockRepo.BlockRepository
	activity  ActivityRecorder
	// Posts are plain text; markup is stripped before storing.
	sanitizer *bluemonday.Policy
}

func NewPostService(postRepo postRepo.PostRepository, blockRepo blockRepo.BlockRepository, activity ActivityRecorder) PostService {
	return &postService{
		postRepo:  postRepo,
		blockRepo: blockRepo,
		activity:  activity,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *postService) clean(text string) string {
	// StrictPolicy entity-escapes what it keeps; store the plain characters.
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(text)))
}

func (s *postService) ensureBlock(ctx context.Context, blockID uuid.UUID) error {
	if _, err := s.blockRepo.FindByID(ctx, blockID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *postService) CreatePost(ctx context.Context, userID, blockID uuid.UUID, req postDto.CreatePostRequest) (*postDto.CreatePostResponse, error) {
	title := s.clean(req.Title)
	content := s.clean(req.Content)
	if title == "" {
		return nil, apperror.NewValidationError("title", "title is required")
	}
	if content == "" {
		return nil, apperror.NewValidationError("content", "content is required")
	}
	if err := s.ensureBlock(ctx, blockID); err != nil {
		return nil, err
	}

	post := &entity.Post{
		BlockID:   blockID,
		UserID:    userID,
		Title:     title,
		Content:   content,
		WordCount: CountWords(content),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	resp := &postDto.CreatePostResponse{Post: mapToResponse(post)}

	// The post is already stored; a streak failure is reported in the log only.
	if s.activity != nil {
		streak, err := s.activity.RecordActivity(ctx, userID, entity.ActivityWriting, post.ID.String())
		if err != nil {
			log.WithFields(log.Fields{
				"user_id": userID,
				"post_id": post.ID,
			}).WithError(err).Error("failed to record writing activity")
		} else {
			resp.Streak = streak
		}
	}

	return resp, nil
}

func (s *postService) CreateAutoPost(ctx context.Context, authorID, blockID uuid.UUID, title, content string) (*entity.Post, error) {
	content = s.clean(content)
	post := &entity.Post{
		BlockID:         blockID,
		UserID:          authorID,
		Title:           s.clean(title),
		Content:         content,
		WordCount:       CountWords(content),
		IsAutoGenerated: true,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create auto post: %w", err)
	}
	return post, nil
}

func (s *postService) GetPostsByBlockID(ctx context.Context, blockID uuid.UUID, filter postDto.PostFilter) (*postDto.PaginatedPostResponse, error) {
	if err := s.ensureBlock(ctx, blockID); err != nil {
		return nil, err
	}
	page, limit := commonDto.NormalizePage(filter.Page, filter.Limit, defaultPostLimit, maxPostLimit)

	posts, total, err := s.postRepo.FindByBlockID(ctx, blockID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	data := make([]postDto.PostResponse, 0, len(posts))
	for _, p := range posts {
		data = append(data, mapToResponse(p))
	}

	return &postDto.PaginatedPostResponse{
		Data: data,
		Meta: commonDto.NewPaginationMeta(page, limit, total),
	}, nil
}

func (s *postService) GetPostByID(ctx context.Context, postID uuid.UUID) (*postDto.PostResponse, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	resp := mapToResponse(post)
	return &resp, nil
}

// CountWords counts whitespace-separated words.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

func mapToResponse(post *entity.Post) postDto.PostResponse {
	author := commonDto.AuthorResponse{
		ID:       post.UserID.String(),
		Username: "Unknown",
	}
	if post.User != nil && post.User.Username != "" {
		author.Username = post.User.Username
		author.AvatarURL = post.User.AvatarURL
	}

	return postDto.PostResponse{
		ID:              post.ID,
		BlockID:         post.BlockID,
		Title:           post.Title,
		Content:         post.Content,
		WordCount:       post.WordCount,
		IsAutoGenerated: post.IsAutoGenerated,
		Author:          author,
		CreatedAt:       post.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:       post.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
