package repository

import (
	"context"

	"anoa.com/practiceforum/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommunityRepository is the read side the scheduler and its endpoints need;
// community CRUD lives elsewhere.
type CommunityRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Community, error)
}

type communityRepository struct {
	db *gorm.DB
}

func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

func (r *communityRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Community, error) {
	var community entity.Community
	if err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("id = ?", id).
		First(&community).Error; err != nil {
		return nil, err
	}
	return &community, nil
}
