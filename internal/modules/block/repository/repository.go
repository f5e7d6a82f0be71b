package repository

import (
	"context"
	"errors"

	"anoa.com/practiceforum/internal/entity"
	"anoa.com/practiceforum/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BlockRepository interface {
	// CreateForBucket inserts the block unless its (community, bucket) pair
	// exists, in which case it returns apperror.ErrIdempotencyConflict.
	CreateForBucket(ctx context.Context, block *entity.Block) error
	// FindLatestAutoGenerated returns nil, nil when the community has none.
	FindLatestAutoGenerated(ctx context.Context, communityID uuid.UUID) (*entity.Block, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Block, error)
	ListByCommunity(ctx context.Context, communityID uuid.UUID, limit, offset int) ([]entity.Block, int64, error)
}

type blockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(db *gorm.DB) BlockRepository {
	return &blockRepository{db: db}
}

func (r *blockRepository) CreateForBucket(ctx context.Context, block *entity.Block) error {
	result := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "community_id"}, {Name: "bucket_key"}},
			DoNothing: true,
		}).
		Create(block)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.ErrIdempotencyConflict
	}
	return nil
}

func (r *blockRepository) FindLatestAutoGenerated(ctx context.Context, communityID uuid.UUID) (*entity.Block, error) {
	var block entity.Block
	err := r.db.WithContext(ctx).
		Where("community_id = ? AND is_auto_generated = ?", communityID, true).
		Order("created_at DESC").
		First(&block).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &block, nil
}

func (r *blockRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Block, error) {
	var block entity.Block
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&block).Error; err != nil {
		return nil, err
	}
	return &block, nil
}

func (r *blockRepository) ListByCommunity(ctx context.Context, communityID uuid.UUID, limit, offset int) ([]entity.Block, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.Block{}).
		Where("community_id = ?", communityID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var blocks []entity.Block
	err := r.db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("date DESC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&blocks).Error
	if err != nil {
		return nil, 0, err
	}
	return blocks, total, nil
}
