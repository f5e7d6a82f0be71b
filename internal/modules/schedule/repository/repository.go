package repository

import (
	"context"
	"time"

	"anoa.com/practiceforum/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScheduleRepository interface {
	FindByCommunity(ctx context.Context, communityID uuid.UUID) (*entity.CommunitySchedule, error)
	// Upsert creates or replaces the community's schedule, reviving a soft-deleted row.
	Upsert(ctx context.Context, schedule *entity.CommunitySchedule) (*entity.CommunitySchedule, error)
	SoftDelete(ctx context.Context, communityID uuid.UUID) (int64, error)
	// ListActive returns active schedules of active, non-deleted communities.
	ListActive(ctx context.Context) ([]entity.CommunitySchedule, error)
	MarkExecuted(ctx context.Context, id uuid.UUID, at time.Time) error
}

type scheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) FindByCommunity(ctx context.Context, communityID uuid.UUID) (*entity.CommunitySchedule, error) {
	var schedule entity.CommunitySchedule
	if err := r.db.WithContext(ctx).
		Where("community_id = ?", communityID).
		First(&schedule).Error; err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepository) Upsert(ctx context.Context, schedule *entity.CommunitySchedule) (*entity.CommunitySchedule, error) {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "community_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"time", "timezone", "period",
				"auto_gen_title", "title_prompt",
				"auto_gen_post", "post_prompt",
				"word_limit_min", "word_limit_max",
				"is_active", "updated_at", "deleted_at",
			}),
		}).
		Create(schedule).Error
	if err != nil {
		return nil, err
	}
	return r.FindByCommunity(ctx, schedule.CommunityID)
}

func (r *scheduleRepository) SoftDelete(ctx context.Context, communityID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Delete(&entity.CommunitySchedule{})
	return result.RowsAffected, result.Error
}

func (r *scheduleRepository) ListActive(ctx context.Context) ([]entity.CommunitySchedule, error) {
	var schedules []entity.CommunitySchedule
	err := r.db.WithContext(ctx).
		Joins("JOIN communities c ON c.id = community_schedules.community_id AND c.deleted_at IS NULL AND c.is_active = ?", true).
		Where("community_schedules.is_active = ?", true).
		Preload("Community").
		Find(&schedules).Error
	return schedules, err
}

func (r *scheduleRepository) MarkExecuted(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entity.CommunitySchedule{}).
		Where("id = ?", id).
		UpdateColumn("last_execution", at).Error
}
