package agents

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"anoa.com/practiceforum/internal/entity"
	"anoa.com/practiceforum/pkg/apperror"
	"anoa.com/practiceforum/pkg/clock"
	"github.com/google/uuid"
)

type fakeScheduleRepo struct {
	mu       sync.Mutex
	active   []entity.CommunitySchedule
	executed map[uuid.UUID]time.Time
}

func (f *fakeScheduleRepo) FindByCommunity(ctx context.Context, communityID uuid.UUID) (*entity.CommunitySchedule, error) {
	return nil, errors.New("not used")
}
func (f *fakeScheduleRepo) Upsert(ctx context.Context, s *entity.CommunitySchedule) (*entity.CommunitySchedule, error) {
	return s, nil
}
func (f *fakeScheduleRepo) SoftDelete(ctx context.Context, communityID uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeScheduleRepo) ListActive(ctx context.Context) ([]entity.CommunitySchedule, error) {
	out := make([]entity.CommunitySchedule, len(f.active))
	copy(out, f.active)
	return out, nil
}

func (f *fakeScheduleRepo) MarkExecuted(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed[id] = at
	return nil
}

// fakeBlockRepo enforces the (community_id, bucket_key) uniqueness of the real table.
type fakeBlockRepo struct {
	mu     sync.Mutex
	blocks []entity.Block
}

func (f *fakeBlockRepo) CreateForBucket(ctx context.Context, block *entity.Block) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.blocks {
		if b.CommunityID == block.CommunityID && *b.BucketKey == *block.BucketKey {
			return apperror.ErrIdempotencyConflict
		}
	}
	block.ID = uuid.New()
	block.CreatedAt = time.Now()
	f.blocks = append(f.blocks, *block)
	return nil
}

func (f *fakeBlockRepo) FindLatestAutoGenerated(ctx context.Context, communityID uuid.UUID) (*entity.Block, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.blocks) - 1; i >= 0; i-- {
		if f.blocks[i].CommunityID == communityID && f.blocks[i].IsAutoGenerated {
			b := f.blocks[i]
			return &b, nil
		}
	}
	return nil, nil
}

func (f *fakeBlockRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Block, error) {
	return nil, errors.New("not used")
}

func (f *fakeBlockRepo) ListByCommunity(ctx context.Context, communityID uuid.UUID, limit, offset int) ([]entity.Block, int64, error) {
	return nil, 0, nil
}

func (f *fakeBlockRepo) count(communityID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.blocks {
		if b.CommunityID == communityID {
			n++
		}
	}
	return n
}

type fakePoster struct {
	mu    sync.Mutex
	posts []entity.Post
}

func (f *fakePoster) CreateAutoPost(ctx context.Context, authorID, blockID uuid.UUID, title, content string) (*entity.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := entity.Post{ID: uuid.New(), UserID: authorID, BlockID: blockID, Title: title, Content: content, IsAutoGenerated: true}
	f.posts = append(f.posts, p)
	return &p, nil
}

type fakeWriter struct {
	titleErr   error
	contentErr error
}

func (f *fakeWriter) Title(ctx context.Context, prompt string, date time.Time) (string, error) {
	if prompt == "panic" {
		panic("generator exploded")
	}
	if f.titleErr != nil {
		return "", f.titleErr
	}
	return "Generated " + prompt, nil
}

func (f *fakeWriter) Content(ctx context.Context, prompt string, minWords, maxWords int) (string, error) {
	if f.contentErr != nil {
		return "", f.contentErr
	}
	return "Once upon a time.", nil
}

type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func (l *memLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *memLocker) Unlock(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

type agentFixture struct {
	schedules *fakeScheduleRepo
	blocks    *fakeBlockRepo
	posts     *fakePoster
	writer    *fakeWriter
	locker    *memLocker
}

func newAgentFixture(schedules ...entity.CommunitySchedule) *agentFixture {
	return &agentFixture{
		schedules: &fakeScheduleRepo{active: schedules, executed: map[uuid.UUID]time.Time{}},
		blocks:    &fakeBlockRepo{},
		posts:     &fakePoster{},
		writer:    &fakeWriter{},
		locker:    &memLocker{held: map[string]bool{}},
	}
}

func (f *agentFixture) agent(now time.Time) *CommunityScheduleAgent {
	return NewCommunityScheduleAgent(f.schedules, f.blocks, f.posts, f.writer, f.locker, clock.Fixed(now), CommunityScheduleConfig{Concurrency: 4})
}

func vnSchedule() entity.CommunitySchedule {
	owner := uuid.New()
	communityID := uuid.New()
	return entity.CommunitySchedule{
		ID:           uuid.New(),
		CommunityID:  communityID,
		Community:    &entity.Community{ID: communityID, OwnerID: owner, IsActive: true},
		Time:         "06:00",
		Timezone:     "Asia/Ho_Chi_Minh",
		Period:       entity.PeriodDaily,
		AutoGenTitle: true,
		TitlePrompt:  "sea",
		AutoGenPost:  true,
		PostPrompt:   "a fable",
		WordLimitMin: 50,
		WordLimitMax: 300,
		IsActive:     true,
	}
}

// 06:00 in Ho Chi Minh City on 2024-01-15.
var vnSix = time.Date(2024, 1, 14, 23, 0, 0, 0, time.UTC)

func TestTwoTicksCreateOneBlock(t *testing.T) {
	s := vnSchedule()
	f := newAgentFixture(s)
	ctx := context.Background()

	if err := f.agent(vnSix).Execute(ctx); err != nil {
		t.Fatalf("first tick error = %v", err)
	}
	if err := f.agent(vnSix.Add(time.Minute)).Execute(ctx); err != nil {
		t.Fatalf("second tick error = %v", err)
	}

	if got := f.blocks.count(s.CommunityID); got != 1 {
		t.Fatalf("blocks = %d, want 1", got)
	}
	block := f.blocks.blocks[0]
	if *block.BucketKey != "2024-01-15" || block.Title != "Generated sea" || !block.IsAutoGenerated {
		t.Errorf("block = %+v", block)
	}
	if len(f.posts.posts) != 1 {
		t.Fatalf("posts = %d, want 1", len(f.posts.posts))
	}
	post := f.posts.posts[0]
	if post.UserID != s.Community.OwnerID || post.Title != "Auto-generated post for Generated sea" {
		t.Errorf("post = %+v", post)
	}
	if _, ok := f.schedules.executed[s.ID]; !ok {
		t.Error("last execution not recorded")
	}
}

func TestTickOutsideWindowDoesNothing(t *testing.T) {
	s := vnSchedule()
	f := newAgentFixture(s)

	if err := f.agent(vnSix.Add(5 * time.Minute)).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := f.blocks.count(s.CommunityID); got != 0 {
		t.Errorf("blocks = %d, want 0", got)
	}
}

func TestContentFailureKeepsBlock(t *testing.T) {
	s := vnSchedule()
	f := newAgentFixture(s)
	f.writer.contentErr = apperror.NewExternalServiceError("gemini", errors.New("timeout"))

	resp, err := f.agent(vnSix).RunSchedule(context.Background(), &s, vnSix, "2024-01-15")
	if err != nil {
		t.Fatalf("RunSchedule() error = %v", err)
	}
	if resp.PostID != nil || resp.PostError == "" {
		t.Errorf("resp = %+v, want post error and no post", resp)
	}
	if got := f.blocks.count(s.CommunityID); got != 1 {
		t.Errorf("blocks = %d, want 1", got)
	}
	if len(f.posts.posts) != 0 {
		t.Errorf("posts = %d, want 0", len(f.posts.posts))
	}
}

func TestTitleFallsBackToDate(t *testing.T) {
	s := vnSchedule()
	s.AutoGenPost = false
	f := newAgentFixture(s)
	f.writer.titleErr = errors.New("quota exceeded")

	resp, err := f.agent(vnSix).RunSchedule(context.Background(), &s, vnSix, "2024-01-15")
	if err != nil {
		t.Fatalf("RunSchedule() error = %v", err)
	}
	if resp.Title != "15-01-2024" {
		t.Errorf("Title = %q, want 15-01-2024", resp.Title)
	}
	if len(f.posts.posts) != 0 {
		t.Error("post created although auto_gen_post is off")
	}
}

func TestPanicIsIsolated(t *testing.T) {
	bad := vnSchedule()
	bad.TitlePrompt = "panic"
	good := vnSchedule()
	f := newAgentFixture(bad, good)

	if err := f.agent(vnSix).Execute(context.Background()); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := f.blocks.count(good.CommunityID); got != 1 {
		t.Errorf("healthy schedule blocks = %d, want 1", got)
	}
	if got := f.blocks.count(bad.CommunityID); got != 0 {
		t.Errorf("panicking schedule blocks = %d, want 0", got)
	}
}

func TestExecuteNowConflict(t *testing.T) {
	s := vnSchedule()
	f := newAgentFixture(s)
	// 09:30 local, outside the configured time.
	a := f.agent(vnSix.Add(3*time.Hour + 30*time.Minute))
	ctx := context.Background()

	resp, err := a.ExecuteNow(ctx, &s)
	if err != nil {
		t.Fatalf("ExecuteNow() error = %v", err)
	}
	if resp.BucketKey != "2024-01-15" {
		t.Errorf("BucketKey = %q", resp.BucketKey)
	}

	// Drop the lock so the database guard is what rejects the rerun.
	f.locker.held = map[string]bool{}
	if _, err := a.ExecuteNow(ctx, &s); !errors.Is(err, apperror.ErrIdempotencyConflict) {
		t.Errorf("second ExecuteNow() error = %v, want conflict", err)
	}
}

func TestConcurrentRunsShareOneBucket(t *testing.T) {
	s := vnSchedule()
	f := newAgentFixture(s)
	a := f.agent(vnSix)

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := a.RunSchedule(context.Background(), &s, vnSix, "2024-01-15"); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if created != 1 || f.blocks.count(s.CommunityID) != 1 {
		t.Errorf("created = %d, blocks = %d, want 1 and 1", created, f.blocks.count(s.CommunityID))
	}
}
