package repository

import (
	"context"

	"anoa.com/practiceforum/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error)
	FindByBlockID(ctx context.Context, blockID uuid.UUID, offset, limit int) ([]*entity.Post, int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error) {
	var post entity.Post
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) FindByBlockID(ctx context.Context, blockID uuid.UUID, offset, limit int) ([]*entity.Post, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.Post{}).
		Where("block_id = ?", blockID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*entity.Post
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("block_id = ?", blockID).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}
