package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/practiceforum/internal/entity"
	communityRepo "anoa.com/practiceforum/internal/modules/community/repository"
	scheduleDto "anoa.com/practiceforum/internal/modules/schedule/dto"
	scheduleRepo "anoa.com/practiceforum/internal/modules/schedule/repository"
	userRepo "anoa.com/practiceforum/internal/modules/user/repository"
	"anoa.com/practiceforum/pkg/apperror"
	"anoa.com/practiceforum/pkg/clock"
	"anoa.com/practiceforum/pkg/validator"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Executor runs a schedule's job for the bucket containing the current instant.
type Executor interface {
	ExecuteNow(ctx context.Context, schedule *entity.CommunitySchedule) (*scheduleDto.ExecutionResponse, error)
}

type ScheduleService interface {
	GetSchedule(ctx context.Context, actorID, communityID uuid.UUID) (*scheduleDto.ScheduleResponse, error)
	UpsertSchedule(ctx context.Context, actorID, communityID uuid.UUID, req scheduleDto.UpsertScheduleRequest) (*scheduleDto.ScheduleResponse, error)
	DeleteSchedule(ctx context.Context, actorID, communityID uuid.UUID) error
	// ExecuteNow returns apperror.ErrIdempotencyConflict when the current bucket is already serviced.
	ExecuteNow(ctx context.Context, actorID, communityID uuid.UUID) (*scheduleDto.ExecutionResponse, error)
}

type scheduleService struct {
	repo        scheduleRepo.ScheduleRepository
	communities communityRepo.CommunityRepository
	users       userRepo.UserRepository
	executor    Executor
	clock       clock.Clock
}

func NewScheduleService(
	repo scheduleRepo.ScheduleRepository,
	communities communityRepo.CommunityRepository,
	users userRepo.UserRepository,
	executor Executor,
	clk clock.Clock,
) ScheduleService {
	if clk == nil {
		clk = clock.System()
	}
	return &scheduleService{
		repo:        repo,
		communities: communities,
		users:       users,
		executor:    executor,
		clock:       clk,
	}
}

// authorize allows the community owner and admins.
func (s *scheduleService) authorize(ctx context.Context, actorID, communityID uuid.UUID) (*entity.Community, error) {
	community, err := s.communities.FindByID(ctx, communityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	if community.OwnerID == actorID {
		return community, nil
	}

	actor, err := s.users.FindByID(ctx, actorID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, apperror.ErrForbidden
	}
	return community, nil
}

func (s *scheduleService) findSchedule(ctx context.Context, communityID uuid.UUID) (*entity.CommunitySchedule, error) {
	schedule, err := s.repo.FindByCommunity(ctx, communityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return schedule, nil
}

func (s *scheduleService) GetSchedule(ctx context.Context, actorID, communityID uuid.UUID) (*scheduleDto.ScheduleResponse, error) {
	if _, err := s.authorize(ctx, actorID, communityID); err != nil {
		return nil, err
	}
	schedule, err := s.findSchedule(ctx, communityID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(schedule), nil
}

// ApplyDefaults fills unset optional fields with their defaults.
func ApplyDefaults(req *scheduleDto.UpsertScheduleRequest) {
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}
	if req.Period == "" {
		req.Period = string(entity.PeriodDaily)
	}
	if req.WordLimitMin == 0 {
		req.WordLimitMin = entity.DefaultWordLimitMin
	}
	if req.WordLimitMax == 0 {
		req.WordLimitMax = entity.DefaultWordLimitMax
	}
}

func (s *scheduleService) UpsertSchedule(ctx context.Context, actorID, communityID uuid.UUID, req scheduleDto.UpsertScheduleRequest) (*scheduleDto.ScheduleResponse, error) {
	ApplyDefaults(&req)
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actorID, communityID); err != nil {
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	schedule := &entity.CommunitySchedule{
		CommunityID:  communityID,
		Time:         req.Time,
		Timezone:     req.Timezone,
		Period:       entity.SchedulePeriod(req.Period),
		AutoGenTitle: req.AutoGenTitle,
		TitlePrompt:  req.TitlePrompt,
		AutoGenPost:  req.AutoGenPost,
		PostPrompt:   req.PostPrompt,
		WordLimitMin: req.WordLimitMin,
		WordLimitMax: req.WordLimitMax,
		IsActive:     isActive,
	}

	saved, err := s.repo.Upsert(ctx, schedule)
	if err != nil {
		return nil, fmt.Errorf("failed to save schedule: %w", err)
	}

	log.WithFields(log.Fields{
		"community_id": communityID,
		"schedule_id":  saved.ID,
		"time":         saved.Time,
		"timezone":     saved.Timezone,
		"period":       saved.Period,
	}).Info("schedule saved")

	return s.toResponse(saved), nil
}

func (s *scheduleService) DeleteSchedule(ctx context.Context, actorID, communityID uuid.UUID) error {
	if _, err := s.authorize(ctx, actorID, communityID); err != nil {
		return err
	}

	affected, err := s.repo.SoftDelete(ctx, communityID)
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	if affected == 0 {
		return apperror.ErrNotFound
	}

	log.WithField("community_id", communityID).Info("schedule deleted")
	return nil
}

func (s *scheduleService) ExecuteNow(ctx context.Context, actorID, communityID uuid.UUID) (*scheduleDto.ExecutionResponse, error) {
	community, err := s.authorize(ctx, actorID, communityID)
	if err != nil {
		return nil, err
	}
	schedule, err := s.findSchedule(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if s.executor == nil {
		return nil, apperror.NewConfigurationError("scheduler", "no executor configured")
	}

	schedule.Community = community
	return s.executor.ExecuteNow(ctx, schedule)
}

func (s *scheduleService) toResponse(schedule *entity.CommunitySchedule) *scheduleDto.ScheduleResponse {
	resp := &scheduleDto.ScheduleResponse{
		ID:            schedule.ID,
		CommunityID:   schedule.CommunityID,
		Time:          schedule.Time,
		Timezone:      schedule.Timezone,
		Period:        string(schedule.Period),
		AutoGenTitle:  schedule.AutoGenTitle,
		TitlePrompt:   schedule.TitlePrompt,
		AutoGenPost:   schedule.AutoGenPost,
		PostPrompt:    schedule.PostPrompt,
		WordLimitMin:  schedule.WordLimitMin,
		WordLimitMax:  schedule.WordLimitMax,
		IsActive:      schedule.IsActive,
		LastExecution: schedule.LastExecution,
		UpdatedAt:     schedule.UpdatedAt,
	}
	if schedule.IsActive {
		if next, ok := NextFire(schedule, s.clock.Now()); ok {
			resp.NextRunAt = &next
		}
	}
	return resp
}
