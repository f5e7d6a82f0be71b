package service

import (
	"context"
	"fmt"

	"anoa.com/practiceforum/internal/entity"
	rankDto "anoa.com/practiceforum/internal/modules/rank/dto"
	rankRepo "anoa.com/practiceforum/internal/modules/rank/repository"
	tierService "anoa.com/practiceforum/internal/modules/tier/service"
	"anoa.com/practiceforum/pkg/apperror"
	"anoa.com/practiceforum/pkg/clock"
	commonDto "anoa.com/practiceforum/pkg/dto"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	defaultLeaderboardLimit = 20
	maxLeaderboardLimit     = 100
	defaultHistoryLimit     = 50
)

// Notifier delivers in-app notifications; rank increases are announced through it.
type Notifier interface {
	CreateNotification(ctx context.Context, notification *entity.Notification) error
}

type RankService interface {
	// SyncRank recomputes the rank for a streak length and persists any change.
	SyncRank(ctx context.Context, in SyncInput) (*RankChangeResult, error)
	// SyncRankAsync queues SyncRank behind earlier syncs for the same user and kind.
	SyncRankAsync(in SyncInput)
	// Wait drains queued syncs. Used on shutdown and in tests.
	Wait()
	GetUserRanks(ctx context.Context, userID uuid.UUID) (*rankDto.UserRanksResponse, error)
	GetLeaderboard(ctx context.Context, kind entity.ActivityKind, page, limit int) (*rankDto.LeaderboardResponse, error)
	GetHistory(ctx context.Context, userID uuid.UUID, kind entity.ActivityKind, limit int) ([]rankDto.RankHistoryResponse, error)
	DaysToRank(ctx context.Context, kind entity.ActivityKind, major, subMajor, minor int) (*rankDto.DaysToRankResponse, error)
}

type rankService struct {
	repo     rankRepo.RankRepository
	tiers    tierService.TierService
	notifier Notifier
	clock    clock.Clock
	queue    *KeyedQueue
}

func NewRankService(repo rankRepo.RankRepository, tiers tierService.TierService, notifier Notifier, clk clock.Clock) RankService {
	if clk == nil {
		clk = clock.System()
	}
	return &rankService{
		repo:     repo,
		tiers:    tiers,
		notifier: notifier,
		clock:    clk,
		queue:    NewKeyedQueue(),
	}
}

func (s *rankService) SyncRank(ctx context.Context, in SyncInput) (*RankChangeResult, error) {
	if !in.Kind.Valid() {
		return nil, apperror.NewValidationError("kind", "invalid activity kind")
	}

	catalog, err := s.tiers.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	constant, err := s.tiers.Constant(ctx, in.Kind)
	if err != nil {
		return nil, err
	}

	minorCount, subMajorCount, majorCount := catalog.Counts()
	idx, err := ResolveTier(in.Days, constant, minorCount, subMajorCount, majorCount)
	if err != nil {
		return nil, err
	}
	next := TripleAt(catalog, idx)
	now := s.clock.Now()

	var (
		result RankChangeResult
		saved  *entity.UserRank
	)
	err = s.repo.ApplySync(ctx, in.UserID, in.Kind, func(rank *entity.UserRank) (bool, *entity.RankHistory, error) {
		var history *entity.RankHistory
		result, history = applyRankChange(catalog, rank, next, in, now)
		saved = rank
		return result.Saved, history, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sync rank: %w", err)
	}

	logger := log.WithFields(log.Fields{
		"user_id": in.UserID,
		"kind":    in.Kind,
		"days":    in.Days,
		"version": in.StreakVersion,
	})
	if result.Stale {
		logger.Debug("skipping stale rank sync")
		return &result, nil
	}
	if result.Changed {
		logger.WithFields(log.Fields{
			"from":      result.Previous.Display(),
			"to":        result.Current.Display(),
			"direction": result.Direction,
		}).Info("rank changed")
	}

	if result.Direction == entity.RankChangeIncrease && s.notifier != nil {
		notification := &entity.Notification{
			UserID:     in.UserID,
			EntityType: "rank",
			EntityID:   saved.ID,
			Type:       entity.NotificationRankIncrease,
			Message:    fmt.Sprintf("🎉 Your %s rank rose to %s after %d days!", in.Kind, result.Current.Display(), in.Days),
		}
		if err := s.notifier.CreateNotification(ctx, notification); err != nil {
			logger.WithError(err).Warn("failed to send rank increase notification")
		}
	}

	return &result, nil
}

func (s *rankService) SyncRankAsync(in SyncInput) {
	key := in.UserID.String() + ":" + string(in.Kind)
	ok := s.queue.Submit(key, func() {
		if _, err := s.SyncRank(context.Background(), in); err != nil {
			log.WithFields(log.Fields{
				"user_id": in.UserID,
				"kind":    in.Kind,
			}).WithError(err).Error("async rank sync failed")
		}
	})
	if !ok {
		log.WithField("user_id", in.UserID).Warn("rank sync queue closed, dropping sync")
	}
}

func (s *rankService) Wait() {
	s.queue.Wait()
}

func (s *rankService) GetUserRanks(ctx context.Context, userID uuid.UUID) (*rankDto.UserRanksResponse, error) {
	catalog, err := s.tiers.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	ranks, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ranks: %w", err)
	}

	byKind := make(map[entity.ActivityKind]entity.UserRank, len(ranks))
	for _, r := range ranks {
		byKind[r.Kind] = r
	}

	resp := &rankDto.UserRanksResponse{UserID: userID}
	for _, kind := range entity.ActivityKinds {
		view, err := s.rankView(ctx, catalog, kind, byKind[kind])
		if err != nil {
			return nil, err
		}
		if kind == entity.ActivityTranslation {
			resp.Translation = view
		} else {
			resp.Writing = view
		}
	}
	return resp, nil
}

// rankView renders a stored rank; a zero-value row renders as the lowest rung without a position.
func (s *rankService) rankView(ctx context.Context, catalog *tierService.Catalog, kind entity.ActivityKind, r entity.UserRank) (rankDto.RankResponse, error) {
	current := lowestTriple(catalog)
	highest := current
	if isPlaced(&r) {
		current = tripleByIDs(catalog, r.MajorTierID, r.SubMajorTierID, r.MinorTierID)
		highest = tripleByIDs(catalog, r.HighestMajorTierID, r.HighestSubMajorTierID, r.HighestMinorTierID)
	}

	view := rankDto.RankResponse{
		Kind:         string(kind),
		BoardName:    BoardName(kind),
		MajorTier:    tierService.ToTierResponse(current.Major),
		SubMajorTier: tierService.ToTierResponse(current.SubMajor),
		MinorTier:    tierService.ToTierResponse(current.Minor),
		RankDisplay:  current.Display(),
		RankColor:    current.Major.ColorCode,
		DaysCount:    r.DaysCount,
		Highest: rankDto.HighestRankResponse{
			MajorTier:    tierService.ToTierResponse(highest.Major),
			SubMajorTier: tierService.ToTierResponse(highest.SubMajor),
			MinorTier:    tierService.ToTierResponse(highest.Minor),
			RankDisplay:  highest.Display(),
			DaysCount:    r.HighestDaysCount,
		},
	}
	if !isPlaced(&r) {
		return view, nil
	}

	lastUpdate := r.LastUpdate
	view.LastUpdate = &lastUpdate

	ahead, err := s.repo.CountAhead(ctx, kind, rankRepo.Standing{
		MajorOrder:    current.Major.Order,
		SubMajorOrder: current.SubMajor.Order,
		MinorOrder:    current.Minor.Order,
		DaysCount:     r.DaysCount,
		LastUpdate:    r.LastUpdate,
		UserID:        r.UserID,
	})
	if err != nil {
		return view, fmt.Errorf("failed to compute position: %w", err)
	}
	position := ahead + 1
	view.Position = &position
	return view, nil
}

func (s *rankService) GetLeaderboard(ctx context.Context, kind entity.ActivityKind, page, limit int) (*rankDto.LeaderboardResponse, error) {
	if !kind.Valid() {
		return nil, apperror.NewValidationError("kind", "invalid activity kind")
	}
	page, limit = commonDto.NormalizePage(page, limit, defaultLeaderboardLimit, maxLeaderboardLimit)
	offset := (page - 1) * limit

	ranks, total, err := s.repo.ListLeaderboard(ctx, kind, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	sortStandings(ranks)

	entries := make([]rankDto.LeaderboardEntry, 0, len(ranks))
	for i, r := range ranks {
		entry := rankDto.LeaderboardEntry{
			Position:    offset + i + 1,
			UserID:      r.UserID,
			RankDisplay: r.MajorTier.Name + " " + r.SubMajorTier.Name + " " + r.MinorTier.Name,
			RankColor:   r.MajorTier.ColorCode,
			DaysCount:   r.DaysCount,
			LastUpdate:  r.LastUpdate,
		}
		if r.User != nil {
			entry.Username = r.User.Username
			entry.AvatarURL = r.User.AvatarURL
		}
		entries = append(entries, entry)
	}

	return &rankDto.LeaderboardResponse{
		BoardName: BoardName(kind),
		Kind:      string(kind),
		Data:      entries,
		Meta:      commonDto.NewPaginationMeta(page, limit, total),
	}, nil
}

func (s *rankService) GetHistory(ctx context.Context, userID uuid.UUID, kind entity.ActivityKind, limit int) ([]rankDto.RankHistoryResponse, error) {
	if !kind.Valid() {
		return nil, apperror.NewValidationError("kind", "invalid activity kind")
	}
	if limit <= 0 || limit > maxLeaderboardLimit {
		limit = defaultHistoryLimit
	}

	history, err := s.repo.ListHistory(ctx, userID, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load rank history: %w", err)
	}

	resp := make([]rankDto.RankHistoryResponse, 0, len(history))
	for _, h := range history {
		triple := TierTriple{
			Major:    tierService.FromMajor(h.MajorTier),
			SubMajor: tierService.FromSubMajor(h.SubMajorTier),
			Minor:    tierService.FromMinor(h.MinorTier),
		}
		resp = append(resp, rankDto.RankHistoryResponse{
			ID:           h.ID,
			MajorTier:    tierService.ToTierResponse(triple.Major),
			SubMajorTier: tierService.ToTierResponse(triple.SubMajor),
			MinorTier:    tierService.ToTierResponse(triple.Minor),
			RankDisplay:  triple.Display(),
			DaysCount:    h.DaysCount,
			ChangeType:   h.ChangeType,
			ChangeDate:   h.ChangeDate,
		})
	}
	return resp, nil
}

func (s *rankService) DaysToRank(ctx context.Context, kind entity.ActivityKind, major, subMajor, minor int) (*rankDto.DaysToRankResponse, error) {
	if !kind.Valid() {
		return nil, apperror.NewValidationError("kind", "invalid activity kind")
	}
	catalog, err := s.tiers.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	constant, err := s.tiers.Constant(ctx, kind)
	if err != nil {
		return nil, err
	}

	minorCount, subMajorCount, majorCount := catalog.Counts()
	days, err := DaysToRank(major, subMajor, minor, constant, minorCount, subMajorCount, majorCount)
	if err != nil {
		return nil, err
	}

	target := TripleAt(catalog, TierIndex{Major: major - 1, SubMajor: subMajor - 1, Minor: minor - 1})
	return &rankDto.DaysToRankResponse{
		Kind:        string(kind),
		Constant:    constant,
		RankDisplay: target.Display(),
		Days:        days,
	}, nil
}
