package repository

import (
	"context"
	"errors"

	"anoa.com/practiceforum/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplyFunc mutates the locked streak for a newly credited day.
type ApplyFunc func(streak *entity.Streak) error

// ErrNoChange is returned by an ApplyFunc that leaves the streak as it was.
// The day's activity row is rolled back and the call is not credited.
var ErrNoChange = errors.New("streak unchanged")

type StreakRepository interface {
	// RecordActivity inserts the day-scoped activity and, only when that day
	// was not credited before, applies fn to the locked streak and saves it
	// with Version incremented. credited is false for a repeat on the same day
	// and when fn returns ErrNoChange.
	RecordActivity(ctx context.Context, activity *entity.UserActivity, fn ApplyFunc) (streak *entity.Streak, credited bool, err error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]entity.Streak, error)
	ListLeaderboard(ctx context.Context, kind entity.ActivityKind, offset, limit int) ([]entity.Streak, int64, error)
}

type streakRepository struct {
	db *gorm.DB
}

func NewStreakRepository(db *gorm.DB) StreakRepository {
	return &streakRepository{db: db}
}

func (r *streakRepository) RecordActivity(ctx context.Context, activity *entity.UserActivity, fn ApplyFunc) (*entity.Streak, bool, error) {
	var (
		streak   entity.Streak
		credited bool
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := entity.Streak{UserID: activity.UserID, Kind: activity.Kind}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "kind"}},
			DoNothing: true,
		}).Create(&seed).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND kind = ?", activity.UserID, activity.Kind).
			First(&streak).Error; err != nil {
			return err
		}

		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "kind"}, {Name: "activity_date"}},
			DoNothing: true,
		}).Create(activity)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		working := streak
		if err := fn(&working); err != nil {
			return err
		}
		working.Version++

		if err := tx.Omit(clause.Associations).Save(&working).Error; err != nil {
			return err
		}
		streak = working
		credited = true
		return nil
	})
	if errors.Is(err, ErrNoChange) {
		return &streak, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return &streak, credited, nil
}

func (r *streakRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]entity.Streak, error) {
	var streaks []entity.Streak
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("kind ASC").
		Find(&streaks).Error
	return streaks, err
}

func (r *streakRepository) ListLeaderboard(ctx context.Context, kind entity.ActivityKind, offset, limit int) ([]entity.Streak, int64, error) {
	var total int64
	if err := r.leaderboardQuery(ctx, kind).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var streaks []entity.Streak
	err := r.leaderboardQuery(ctx, kind).
		Preload("User").
		Order("current_count DESC, max_count DESC, updated_at ASC, user_id ASC").
		Offset(offset).
		Limit(limit).
		Find(&streaks).Error
	if err != nil {
		return nil, 0, err
	}

	return streaks, total, nil
}

func (r *streakRepository) leaderboardQuery(ctx context.Context, kind entity.ActivityKind) *gorm.DB {
	return r.db.WithContext(ctx).Model(&entity.Streak{}).
		Where("kind = ? AND current_count > 0", kind)
}
