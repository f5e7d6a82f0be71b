package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"anoa.com/practiceforum/internal/entity"
	rankService "anoa.com/practiceforum/internal/modules/rank/service"
	streakDto "anoa.com/practiceforum/internal/modules/streak/dto"
	streakRepo "anoa.com/practiceforum/internal/modules/streak/repository"
	"anoa.com/practiceforum/pkg/apperror"
	"anoa.com/practiceforum/pkg/clock"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeStreakRepo serializes RecordActivity with one mutex, standing in for the row lock.
type fakeStreakRepo struct {
	mu         sync.Mutex
	streaks    map[string]*entity.Streak
	activities map[string]bool
}

func newFakeStreakRepo() *fakeStreakRepo {
	return &fakeStreakRepo{streaks: map[string]*entity.Streak{}, activities: map[string]bool{}}
}

func (f *fakeStreakRepo) RecordActivity(ctx context.Context, activity *entity.UserActivity, fn streakRepo.ApplyFunc) (*entity.Streak, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := activity.UserID.String() + ":" + string(activity.Kind)
	st, ok := f.streaks[key]
	if !ok {
		st = &entity.Streak{ID: uuid.New(), UserID: activity.UserID, Kind: activity.Kind}
		f.streaks[key] = st
	}

	dayKey := key + ":" + time.Time(activity.ActivityDate).Format("2006-01-02")
	if f.activities[dayKey] {
		copied := *st
		return &copied, false, nil
	}

	working := *st
	if err := fn(&working); err != nil {
		if errors.Is(err, streakRepo.ErrNoChange) {
			copied := *st
			return &copied, false, nil
		}
		return nil, false, err
	}
	working.Version++
	f.activities[dayKey] = true
	*st = working

	copied := working
	return &copied, true, nil
}

func (f *fakeStreakRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]entity.Streak, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Streak
	for _, st := range f.streaks {
		if st.UserID == userID {
			out = append(out, *st)
		}
	}
	return out, nil
}

func (f *fakeStreakRepo) ListLeaderboard(ctx context.Context, kind entity.ActivityKind, offset, limit int) ([]entity.Streak, int64, error) {
	return nil, 0, nil
}

type fakeUsers struct {
	users map[string]*entity.User
}

func (f *fakeUsers) Create(ctx context.Context, user *entity.User) error { return nil }
func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUsers) FindRoleByName(ctx context.Context, name string) (*entity.Role, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUsers) UpdateTimezone(ctx context.Context, id string, timezone string) error {
	return nil
}
func (f *fakeUsers) Count(ctx context.Context) (int64, error) { return 0, nil }

func (f *fakeUsers) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type recordingSyncer struct {
	mu    sync.Mutex
	syncs []rankService.SyncInput
}

func (r *recordingSyncer) SyncRankAsync(in rankService.SyncInput) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.syncs = append(r.syncs, in)
}

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type fixture struct {
	svc    StreakService
	repo   *fakeStreakRepo
	syncer *recordingSyncer
	clock  *stepClock
	user   *entity.User
}

func newFixture(timezone string, now time.Time) *fixture {
	user := &entity.User{ID: uuid.New(), Username: "an", Timezone: timezone}
	f := &fixture{
		repo:   newFakeStreakRepo(),
		syncer: &recordingSyncer{},
		clock:  &stepClock{now: now},
		user:   user,
	}
	f.svc = NewStreakService(f.repo, &fakeUsers{users: map[string]*entity.User{user.ID.String(): user}}, f.syncer, f.clock)
	return f
}

func TestRecordActivityUsesUserTimezone(t *testing.T) {
	// 18:30 UTC on Jan 1 is already Jan 2 in Ho Chi Minh City.
	f := newFixture("Asia/Ho_Chi_Minh", time.Date(2024, 1, 1, 18, 30, 0, 0, time.UTC))

	resp, err := f.svc.RecordActivity(context.Background(), f.user.ID, entity.ActivityTranslation, "t-1")
	if err != nil {
		t.Fatalf("RecordActivity() error = %v", err)
	}
	if resp.LastDate == nil || *resp.LastDate != "2024-01-02" {
		t.Errorf("LastDate = %v, want 2024-01-02", resp.LastDate)
	}
	if !resp.Credited || resp.Outcome != string(OutcomeStarted) || resp.CurrentCount != 1 {
		t.Errorf("response = %+v", resp)
	}
}

func TestRecordActivityIsIdempotentPerDay(t *testing.T) {
	f := newFixture("UTC", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	first, err := f.svc.RecordActivity(ctx, f.user.ID, entity.ActivityWriting, "")
	if err != nil {
		t.Fatal(err)
	}
	f.clock.set(time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC))
	second, err := f.svc.RecordActivity(ctx, f.user.ID, entity.ActivityWriting, "")
	if err != nil {
		t.Fatal(err)
	}

	if second.Credited {
		t.Error("second activity on the same day should not be credited")
	}
	if first.CurrentCount != second.CurrentCount || first.MaxCount != second.MaxCount {
		t.Errorf("state changed: %+v -> %+v", first.StreakResponse, second.StreakResponse)
	}
	if len(f.syncer.syncs) != 1 {
		t.Errorf("rank syncs = %d, want 1", len(f.syncer.syncs))
	}
}

func TestRecordActivityEarlierLocalDayIsNotCredited(t *testing.T) {
	// 02:00 UTC on Jan 2 is Jan 2 in Tokyo but still Jan 1 in Los Angeles.
	f := newFixture("Asia/Tokyo", time.Date(2024, 1, 2, 2, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if _, err := f.svc.RecordActivity(ctx, f.user.ID, entity.ActivityTranslation, ""); err != nil {
		t.Fatal(err)
	}

	f.user.Timezone = "America/Los_Angeles"
	resp, err := f.svc.RecordActivity(ctx, f.user.ID, entity.ActivityTranslation, "")
	if err != nil {
		t.Fatalf("RecordActivity() error = %v", err)
	}

	if resp.Credited || resp.Outcome != string(OutcomeUnchanged) || resp.CurrentCount != 1 {
		t.Errorf("response = %+v, want uncredited unchanged streak", resp)
	}
	if resp.LastDate == nil || *resp.LastDate != "2024-01-02" {
		t.Errorf("LastDate = %v, want 2024-01-02", resp.LastDate)
	}
	if len(f.syncer.syncs) != 1 {
		t.Errorf("rank syncs = %d, want 1", len(f.syncer.syncs))
	}

	streaks, _ := f.repo.FindByUser(ctx, f.user.ID)
	if len(streaks) != 1 || streaks[0].Version != 1 {
		t.Fatalf("streaks = %+v, want version 1", streaks)
	}
	if len(f.repo.activities) != 1 {
		t.Errorf("activities = %d, want the uncredited day rolled back", len(f.repo.activities))
	}
}

func TestRecordActivityConcurrentSameDay(t *testing.T) {
	f := newFixture("UTC", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.RecordActivity(context.Background(), f.user.ID, entity.ActivityTranslation, ""); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	streaks, _ := f.repo.FindByUser(context.Background(), f.user.ID)
	if len(streaks) != 1 || streaks[0].CurrentCount != 1 || streaks[0].Version != 1 {
		t.Fatalf("streaks = %+v, want one streak at count 1, version 1", streaks)
	}
	if len(f.syncer.syncs) != 1 {
		t.Errorf("rank syncs = %d, want 1", len(f.syncer.syncs))
	}
}

func TestRecordActivityFreezeScenario(t *testing.T) {
	f := newFixture("UTC", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	record := func(date string) *fixtureResult {
		t.Helper()
		d, _ := time.Parse("2006-01-02", date)
		f.clock.set(d.Add(10 * time.Hour))
		resp, err := f.svc.RecordActivity(ctx, f.user.ID, entity.ActivityTranslation, "")
		if err != nil {
			t.Fatalf("RecordActivity(%s) error = %v", date, err)
		}
		return &fixtureResult{current: resp.CurrentCount, freeze: resp.FreezeStatus != nil, outcome: resp.Outcome, remaining: remaining(resp.FreezeStatus)}
	}

	record("2024-01-01")
	record("2024-01-02")
	if r := record("2024-01-04"); !r.freeze || r.current != 2 || r.remaining != 2 {
		t.Fatalf("after gap: %+v", r)
	}
	record("2024-01-05")
	if r := record("2024-01-06"); r.freeze || r.current != 2 || r.outcome != string(OutcomeRestored) {
		t.Fatalf("after recovery: %+v", r)
	}
	if r := record("2024-01-07"); r.current != 3 {
		t.Fatalf("continuing after recovery: %+v", r)
	}
	if r := record("2024-01-20"); r.current != 1 || r.outcome != string(OutcomeReset) {
		t.Fatalf("after long gap: %+v", r)
	}

	// Every credit carries a strictly newer version to the rank ledger.
	for i := 1; i < len(f.syncer.syncs); i++ {
		if f.syncer.syncs[i].StreakVersion <= f.syncer.syncs[i-1].StreakVersion {
			t.Fatalf("sync versions not increasing: %+v", f.syncer.syncs)
		}
	}
	last := f.syncer.syncs[len(f.syncer.syncs)-1]
	if last.Days != 1 || last.Kind != entity.ActivityTranslation {
		t.Errorf("last sync = %+v", last)
	}
}

type fixtureResult struct {
	current   int
	freeze    bool
	remaining int
	outcome   string
}

func remaining(fs *streakDto.FreezeStatus) int {
	if fs == nil {
		return 0
	}
	return fs.RemainingTasks
}

func TestRecordActivityRejectsBadInput(t *testing.T) {
	f := newFixture("UTC", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))

	if _, err := f.svc.RecordActivity(context.Background(), f.user.ID, entity.ActivityKind("reading"), ""); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("unknown kind error = %v", err)
	}
	if _, err := f.svc.RecordActivity(context.Background(), uuid.New(), entity.ActivityWriting, ""); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("unknown user error = %v", err)
	}
	if len(f.repo.streaks) != 0 {
		t.Error("rejected input must not touch state")
	}
}

func TestGetUserStreaksDefaults(t *testing.T) {
	f := newFixture("UTC", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	if _, err := f.svc.RecordActivity(context.Background(), f.user.ID, entity.ActivityTranslation, ""); err != nil {
		t.Fatal(err)
	}

	resp, err := f.svc.GetUserStreaks(context.Background(), f.user.ID)
	if err != nil {
		t.Fatalf("GetUserStreaks() error = %v", err)
	}
	if resp.Translation.CurrentCount != 1 || resp.Writing.CurrentCount != 0 || resp.Writing.LastDate != nil {
		t.Errorf("streaks = %+v", resp)
	}
}

var _ clock.Clock = (*stepClock)(nil)
