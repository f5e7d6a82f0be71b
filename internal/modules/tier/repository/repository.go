package repository

import (
	"context"
	"errors"

	"anoa.com/practiceforum/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TierRepository interface {
	ListMajor(ctx context.Context) ([]entity.MajorTier, error)
	ListSubMajor(ctx context.Context) ([]entity.SubMajorTier, error)
	ListMinor(ctx context.Context) ([]entity.MinorTier, error)
	ListConstants(ctx context.Context) ([]entity.RankConstant, error)
	// FindConstant returns nil, nil when no constant exists for kind.
	FindConstant(ctx context.Context, kind entity.ActivityKind) (*entity.RankConstant, error)
	UpsertConstant(ctx context.Context, constant *entity.RankConstant) error
}

type tierRepository struct {
	db *gorm.DB
}

func NewTierRepository(db *gorm.DB) TierRepository {
	return &tierRepository{db: db}
}

func (r *tierRepository) ListMajor(ctx context.Context) ([]entity.MajorTier, error) {
	var tiers []entity.MajorTier
	err := r.db.WithContext(ctx).Order("tier_order ASC").Find(&tiers).Error
	return tiers, err
}

func (r *tierRepository) ListSubMajor(ctx context.Context) ([]entity.SubMajorTier, error) {
	var tiers []entity.SubMajorTier
	err := r.db.WithContext(ctx).Order("tier_order ASC").Find(&tiers).Error
	return tiers, err
}

func (r *tierRepository) ListMinor(ctx context.Context) ([]entity.MinorTier, error) {
	var tiers []entity.MinorTier
	err := r.db.WithContext(ctx).Order("tier_order ASC").Find(&tiers).Error
	return tiers, err
}

func (r *tierRepository) ListConstants(ctx context.Context) ([]entity.RankConstant, error) {
	var constants []entity.RankConstant
	err := r.db.WithContext(ctx).Order("kind ASC").Find(&constants).Error
	return constants, err
}

func (r *tierRepository) FindConstant(ctx context.Context, kind entity.ActivityKind) (*entity.RankConstant, error) {
	var constant entity.RankConstant
	err := r.db.WithContext(ctx).Where("kind = ?", kind).First(&constant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &constant, nil
}

func (r *tierRepository) UpsertConstant(ctx context.Context, constant *entity.RankConstant) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kind"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "description", "updated_at"}),
	}).Create(constant).Error
}
