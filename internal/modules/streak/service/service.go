package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/practiceforum/internal/entity"
	rankService "anoa.com/practiceforum/internal/modules/rank/service"
	streakDto "anoa.com/practiceforum/internal/modules/streak/dto"
	streakRepo "anoa.com/practiceforum/internal/modules/streak/repository"
	userRepo "anoa.com/practiceforum/internal/modules/user/repository"
	"anoa.com/practiceforum/pkg/apperror"
	"anoa.com/practiceforum/pkg/clock"
	commonDto "anoa.com/practiceforum/pkg/dto"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultLeaderboardLimit = 20
	maxLeaderboardLimit     = 100
)

// RankSyncer receives the streak length after every credited day.
type RankSyncer interface {
	SyncRankAsync(in rankService.SyncInput)
}

type StreakService interface {
	// RecordActivity credits today's activity in the user's timezone. A second
	// call on the same local day returns the unchanged streak.
	RecordActivity(ctx context.Context, userID uuid.UUID, kind entity.ActivityKind, referenceID string) (*streakDto.RecordActivityResponse, error)
	GetUserStreaks(ctx context.Context, userID uuid.UUID) (*streakDto.UserStreaksResponse, error)
	GetLeaderboard(ctx context.Context, kind entity.ActivityKind, page, limit int) (*streakDto.StreakLeaderboardResponse, error)
}

type streakService struct {
	repo  streakRepo.StreakRepository
	users userRepo.UserRepository
	ranks RankSyncer
	clock clock.Clock
}

func NewStreakService(repo streakRepo.StreakRepository, users userRepo.UserRepository, ranks RankSyncer, clk clock.Clock) StreakService {
	if clk == nil {
		clk = clock.System()
	}
	return &streakService{
		repo:  repo,
		users: users,
		ranks: ranks,
		clock: clk,
	}
}

func (s *streakService) RecordActivity(ctx context.Context, userID uuid.UUID, kind entity.ActivityKind, referenceID string) (*streakDto.RecordActivityResponse, error) {
	if !kind.Valid() {
		return nil, apperror.NewValidationError("activity_type", fmt.Sprintf("unknown activity kind %q", kind))
	}

	today, err := s.userToday(ctx, userID)
	if err != nil {
		return nil, err
	}

	activity := &entity.UserActivity{
		UserID:       userID,
		Kind:         kind,
		ActivityDate: clock.ToDBDate(today),
		ReferenceID:  referenceID,
	}

	outcome := OutcomeUnchanged
	streak, credited, err := s.repo.RecordActivity(ctx, activity, func(st *entity.Streak) error {
		next, out := Transition(stateOf(st), today)
		outcome = out
		if out == OutcomeUnchanged {
			return streakRepo.ErrNoChange
		}
		applyState(st, next)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}

	logger := log.WithFields(log.Fields{
		"user_id": userID,
		"kind":    kind,
		"date":    today.String(),
	})

	if credited {
		logger.WithFields(log.Fields{
			"outcome": outcome,
			"current": streak.CurrentCount,
			"max":     streak.MaxCount,
			"version": streak.Version,
		}).Info("activity credited")

		if s.ranks != nil {
			s.ranks.SyncRankAsync(rankService.SyncInput{
				UserID:        userID,
				Kind:          kind,
				Days:          streak.CurrentCount,
				StreakVersion: streak.Version,
			})
		}
	} else {
		logger.WithField("outcome", outcome).Debug("activity not credited")
	}

	return &streakDto.RecordActivityResponse{
		StreakResponse: toStreakResponse(kind, stateOf(streak), today),
		Credited:       credited,
		Outcome:        string(outcome),
	}, nil
}

// userToday is the user's current civil date; unknown zones fall back to UTC.
func (s *streakService) userToday(ctx context.Context, userID uuid.UUID) (civil.Date, error) {
	user, err := s.users.FindByID(ctx, userID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return civil.Date{}, apperror.ErrNotFound
		}
		return civil.Date{}, err
	}
	return clock.Today(s.clock, clock.Location(user.Timezone)), nil
}

func (s *streakService) GetUserStreaks(ctx context.Context, userID uuid.UUID) (*streakDto.UserStreaksResponse, error) {
	today, err := s.userToday(ctx, userID)
	if err != nil {
		return nil, err
	}

	streaks, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load streaks: %w", err)
	}

	byKind := make(map[entity.ActivityKind]entity.Streak, len(streaks))
	for _, st := range streaks {
		byKind[st.Kind] = st
	}

	translation := byKind[entity.ActivityTranslation]
	writing := byKind[entity.ActivityWriting]
	return &streakDto.UserStreaksResponse{
		UserID:      userID,
		Translation: toStreakResponse(entity.ActivityTranslation, stateOf(&translation), today),
		Writing:     toStreakResponse(entity.ActivityWriting, stateOf(&writing), today),
	}, nil
}

func (s *streakService) GetLeaderboard(ctx context.Context, kind entity.ActivityKind, page, limit int) (*streakDto.StreakLeaderboardResponse, error) {
	if !kind.Valid() {
		return nil, apperror.NewValidationError("kind", "invalid activity kind")
	}
	page, limit = commonDto.NormalizePage(page, limit, defaultLeaderboardLimit, maxLeaderboardLimit)
	offset := (page - 1) * limit

	streaks, total, err := s.repo.ListLeaderboard(ctx, kind, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load streak leaderboard: %w", err)
	}

	entries := make([]streakDto.StreakLeaderboardEntry, 0, len(streaks))
	for i, st := range streaks {
		entry := streakDto.StreakLeaderboardEntry{
			Position:     offset + i + 1,
			UserID:       st.UserID,
			CurrentCount: st.CurrentCount,
			MaxCount:     st.MaxCount,
			UpdatedAt:    st.UpdatedAt,
		}
		if st.User != nil {
			entry.Username = st.User.Username
			entry.AvatarURL = st.User.AvatarURL
		}
		entries = append(entries, entry)
	}

	return &streakDto.StreakLeaderboardResponse{
		Kind: string(kind),
		Data: entries,
		Meta: commonDto.NewPaginationMeta(page, limit, total),
	}, nil
}

func stateOf(st *entity.Streak) State {
	return State{
		CurrentCount:           st.CurrentCount,
		MaxCount:               st.MaxCount,
		LastDate:               clock.FromDBDatePtr(st.LastDate),
		FreezeUntil:            clock.FromDBDatePtr(st.FreezeUntil),
		RecoveryTasksCompleted: st.RecoveryTasksCompleted,
	}
}

func applyState(st *entity.Streak, s State) {
	st.CurrentCount = s.CurrentCount
	st.MaxCount = s.MaxCount
	st.LastDate = clock.ToDBDatePtr(s.LastDate)
	st.FreezeUntil = clock.ToDBDatePtr(s.FreezeUntil)
	st.RecoveryTasksCompleted = s.RecoveryTasksCompleted
}

func toStreakResponse(kind entity.ActivityKind, s State, today civil.Date) streakDto.StreakResponse {
	resp := streakDto.StreakResponse{
		Kind:         string(kind),
		CurrentCount: s.CurrentCount,
		MaxCount:     s.MaxCount,
	}
	if s.LastDate != nil {
		last := s.LastDate.String()
		resp.LastDate = &last
	}
	if s.FreezeActive() {
		resp.FreezeStatus = &streakDto.FreezeStatus{
			Active:                 !today.After(*s.FreezeUntil),
			Until:                  s.FreezeUntil.String(),
			RecoveryTasksCompleted: s.RecoveryTasksCompleted,
			RemainingTasks:         s.RemainingRecoveryTasks(),
		}
	}
	return resp
}
