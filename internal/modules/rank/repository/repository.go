package repository

import (
	"context"
	"errors"
	"time"

	"anoa.com/practiceforum/internal/entity"
	"anoa.com/practiceforum/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SyncFunc inspects the locked rank row (zero tier ids when new) and
// returns whether to persist it and an optional history row to append.
type SyncFunc func(rank *entity.UserRank) (save bool, history *entity.RankHistory, err error)

type RankRepository interface {
	ApplySync(ctx context.Context, userID uuid.UUID, kind entity.ActivityKind, fn SyncFunc) error
	FindByUser(ctx context.Context, userID uuid.UUID) ([]entity.UserRank, error)
	ListLeaderboard(ctx context.Context, kind entity.ActivityKind, offset, limit int) ([]entity.UserRank, int64, error)
	// CountAhead counts ranks of the same kind that sort strictly before the given standing.
	CountAhead(ctx context.Context, kind entity.ActivityKind, standing Standing) (int64, error)
	ListHistory(ctx context.Context, userID uuid.UUID, kind entity.ActivityKind, limit int) ([]entity.RankHistory, error)
}

// Standing is the sort key of a rank row on the leaderboard.
type Standing struct {
	MajorOrder    int
	SubMajorOrder int
	MinorOrder    int
	DaysCount     int
	LastUpdate    time.Time
	UserID        uuid.UUID
}

// LeaderboardOrder: tier orders and days descending, then whoever reached the standing first.
const LeaderboardOrder = "mt.tier_order DESC, st.tier_order DESC, nt.tier_order DESC, user_ranks.days_count DESC, user_ranks.last_update ASC, user_ranks.user_id ASC"

type rankRepository struct {
	db *gorm.DB
}

func NewRankRepository(db *gorm.DB) RankRepository {
	return &rankRepository{db: db}
}

func (r *rankRepository) ApplySync(ctx context.Context, userID uuid.UUID, kind entity.ActivityKind, fn SyncFunc) error {
	err := r.applySync(ctx, userID, kind, fn)
	if database.IsUniqueViolation(err) {
		// Another writer created the row between our read and insert; the retry locks it.
		return r.applySync(ctx, userID, kind, fn)
	}
	return err
}

func (r *rankRepository) applySync(ctx context.Context, userID uuid.UUID, kind entity.ActivityKind, fn SyncFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rank entity.UserRank
		isNew := false

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND kind = ?", userID, kind).
			First(&rank).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			isNew = true
			rank = entity.UserRank{UserID: userID, Kind: kind}
		}

		save, history, err := fn(&rank)
		if err != nil {
			return err
		}

		if save {
			if isNew {
				err = tx.Omit(clause.Associations).Create(&rank).Error
			} else {
				err = tx.Omit(clause.Associations).Save(&rank).Error
			}
			if err != nil {
				return err
			}
		}

		if history != nil {
			if err := tx.Omit(clause.Associations).Create(history).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *rankRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]entity.UserRank, error) {
	var ranks []entity.UserRank
	err := r.withTiers(r.db.WithContext(ctx)).
		Preload("HighestMajorTier").
		Preload("HighestSubMajorTier").
		Preload("HighestMinorTier").
		Where("user_id = ?", userID).
		Order("kind ASC").
		Find(&ranks).Error
	return ranks, err
}

func (r *rankRepository) leaderboardQuery(ctx context.Context, kind entity.ActivityKind) *gorm.DB {
	return r.db.WithContext(ctx).Model(&entity.UserRank{}).
		Joins("JOIN major_tiers mt ON mt.id = user_ranks.major_tier_id").
		Joins("JOIN sub_major_tiers st ON st.id = user_ranks.sub_major_tier_id").
		Joins("JOIN minor_tiers nt ON nt.id = user_ranks.minor_tier_id").
		Where("user_ranks.kind = ?", kind)
}

func (r *rankRepository) ListLeaderboard(ctx context.Context, kind entity.ActivityKind, offset, limit int) ([]entity.UserRank, int64, error) {
	var total int64
	if err := r.leaderboardQuery(ctx, kind).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ranks []entity.UserRank
	err := r.withTiers(r.leaderboardQuery(ctx, kind)).
		Preload("User").
		Order(LeaderboardOrder).
		Offset(offset).
		Limit(limit).
		Find(&ranks).Error
	if err != nil {
		return nil, 0, err
	}

	return ranks, total, nil
}

func (r *rankRepository) CountAhead(ctx context.Context, kind entity.ActivityKind, s Standing) (int64, error) {
	var count int64
	err := r.leaderboardQuery(ctx, kind).
		Where(
			"((mt.tier_order, st.tier_order, nt.tier_order, user_ranks.days_count) > (?, ?, ?, ?) OR "+
				"((mt.tier_order, st.tier_order, nt.tier_order, user_ranks.days_count) = (?, ?, ?, ?) AND "+
				"(user_ranks.last_update, user_ranks.user_id) < (?, ?)))",
			s.MajorOrder, s.SubMajorOrder, s.MinorOrder, s.DaysCount,
			s.MajorOrder, s.SubMajorOrder, s.MinorOrder, s.DaysCount,
			s.LastUpdate, s.UserID,
		).
		Count(&count).Error
	return count, err
}

func (r *rankRepository) ListHistory(ctx context.Context, userID uuid.UUID, kind entity.ActivityKind, limit int) ([]entity.RankHistory, error) {
	var history []entity.RankHistory
	err := r.withTiers(r.db.WithContext(ctx)).
		Where("user_id = ? AND kind = ?", userID, kind).
		Order("change_date DESC").
		Limit(limit).
		Find(&history).Error
	return history, err
}

func (r *rankRepository) withTiers(db *gorm.DB) *gorm.DB {
	return db.Preload("MajorTier").Preload("SubMajorTier").Preload("MinorTier")
}
