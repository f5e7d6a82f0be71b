package post

import (
	"context"
	"errors"
	"testing"

	"anoa.com/practiceforum/internal/entity"
	postDto "anoa.com/practiceforum/internal/modules/post/dto"
	streakDto "anoa.com/practiceforum/internal/modules/streak/dto"
	"anoa.com/practiceforum/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakePostRepo struct {
	posts []*entity.Post
}

func (f *fakePostRepo) Create(ctx context.Context, post *entity.Post) error {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	f.posts = append(f.posts, post)
	return nil
}

func (f *fakePostRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error) {
	for _, p := range f.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePostRepo) FindByBlockID(ctx context.Context, blockID uuid.UUID, offset, limit int) ([]*entity.Post, int64, error) {
	var matched []*entity.Post
	for _, p := range f.posts {
		if p.BlockID == blockID {
			matched = append(matched, p)
		}
	}
	return matched, int64(len(matched)), nil
}

type fakeBlockRepo struct {
	ids map[uuid.UUID]bool
}

func (f *fakeBlockRepo) CreateForBucket(ctx context.Context, block *entity.Block) error { return nil }
func (f *fakeBlockRepo) FindLatestAutoGenerated(ctx context.Context, communityID uuid.UUID) (*entity.Block, error) {
	return nil, nil
}
func (f *fakeBlockRepo) ListByCommunity(ctx context.Context, communityID uuid.UUID, limit, offset int) ([]entity.Block, int64, error) {
	return nil, 0, nil
}

func (f *fakeBlockRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Block, error) {
	if f.ids[id] {
		return &entity.Block{ID: id}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type recordedActivity struct {
	userID uuid.UUID
	kind   entity.ActivityKind
	ref    string
}

type fakeRecorder struct {
	calls []recordedActivity
	err   error
}

func (f *fakeRecorder) RecordActivity(ctx context.Context, userID uuid.UUID, kind entity.ActivityKind, referenceID string) (*streakDto.RecordActivityResponse, error) {
	f.calls = append(f.calls, recordedActivity{userID, kind, referenceID})
	if f.err != nil {
		return nil, f.err
	}
	return &streakDto.RecordActivityResponse{Credited: true, Outcome: "started"}, nil
}

func newPostFixture() (PostService, *fakePostRepo, *fakeRecorder, uuid.UUID) {
	blockID := uuid.New()
	posts := &fakePostRepo{}
	recorder := &fakeRecorder{}
	svc := NewPostService(posts, &fakeBlockRepo{ids: map[uuid.UUID]bool{blockID: true}}, recorder)
	return svc, posts, recorder, blockID
}

func TestCreatePostCreditsWriting(t *testing.T) {
	svc, posts, recorder, blockID := newPostFixture()
	userID := uuid.New()

	resp, err := svc.CreatePost(context.Background(), userID, blockID, postDto.CreatePostRequest{
		Title:   "Morning",
		Content: "  the quick brown fox  ",
	})
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	if resp.Post.WordCount != 4 {
		t.Errorf("WordCount = %d, want 4", resp.Post.WordCount)
	}
	if resp.Streak == nil || !resp.Streak.Credited {
		t.Error("expected credited streak in response")
	}
	if len(posts.posts) != 1 {
		t.Fatalf("stored posts = %d, want 1", len(posts.posts))
	}
	if len(recorder.calls) != 1 {
		t.Fatalf("RecordActivity calls = %d, want 1", len(recorder.calls))
	}
	call := recorder.calls[0]
	if call.userID != userID || call.kind != entity.ActivityWriting || call.ref != posts.posts[0].ID.String() {
		t.Errorf("RecordActivity called with %+v", call)
	}
}

func TestCreatePostKeepsPostWhenStreakFails(t *testing.T) {
	svc, posts, recorder, blockID := newPostFixture()
	recorder.err = errors.New("db down")

	resp, err := svc.CreatePost(context.Background(), uuid.New(), blockID, postDto.CreatePostRequest{Title: "t", Content: "c"})
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	if resp.Streak != nil {
		t.Error("streak must be omitted when recording fails")
	}
	if len(posts.posts) != 1 {
		t.Errorf("stored posts = %d, want 1", len(posts.posts))
	}
}

func TestCreatePostStripsMarkup(t *testing.T) {
	svc, posts, _, blockID := newPostFixture()

	resp, err := svc.CreatePost(context.Background(), uuid.New(), blockID, postDto.CreatePostRequest{
		Title:   "<b>Dawn</b>",
		Content: "<p>first light</p><script>alert(1)</script>",
	})
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	if posts.posts[0].Title != "Dawn" || posts.posts[0].Content != "first light" {
		t.Errorf("stored title/content = %q / %q", posts.posts[0].Title, posts.posts[0].Content)
	}
	if resp.Post.WordCount != 2 {
		t.Errorf("WordCount = %d, want 2", resp.Post.WordCount)
	}

	if _, err := svc.CreatePost(context.Background(), uuid.New(), blockID, postDto.CreatePostRequest{Title: "t", Content: "<img src=x>"}); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("markup-only content error = %v, want invalid input", err)
	}
}

func TestCreatePostRejects(t *testing.T) {
	svc, posts, recorder, blockID := newPostFixture()
	ctx := context.Background()

	if _, err := svc.CreatePost(ctx, uuid.New(), uuid.New(), postDto.CreatePostRequest{Title: "t", Content: "c"}); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("unknown block error = %v", err)
	}
	if _, err := svc.CreatePost(ctx, uuid.New(), blockID, postDto.CreatePostRequest{Title: " ", Content: "c"}); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("blank title error = %v", err)
	}
	if len(posts.posts) != 0 || len(recorder.calls) != 0 {
		t.Error("rejected posts must not be stored or credited")
	}
}

func TestCreateAutoPostDoesNotCredit(t *testing.T) {
	svc, posts, recorder, blockID := newPostFixture()

	post, err := svc.CreateAutoPost(context.Background(), uuid.New(), blockID, "Auto-generated post for Rain", "one two three.")
	if err != nil {
		t.Fatalf("CreateAutoPost() error = %v", err)
	}
	if !post.IsAutoGenerated || post.WordCount != 3 {
		t.Errorf("post = %+v", post)
	}
	if len(posts.posts) != 1 || len(recorder.calls) != 0 {
		t.Error("auto posts are stored without crediting activity")
	}
}

func TestGetPostsByBlockID(t *testing.T) {
	svc, _, _, blockID := newPostFixture()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := svc.CreateAutoPost(ctx, uuid.New(), blockID, "t", "c"); err != nil {
			t.Fatal(err)
		}
	}

	resp, err := svc.GetPostsByBlockID(ctx, blockID, postDto.PostFilter{})
	if err != nil {
		t.Fatalf("GetPostsByBlockID() error = %v", err)
	}
	if len(resp.Data) != 3 || resp.Meta.Limit != defaultPostLimit || resp.Data[0].Author.Username != "Unknown" {
		t.Errorf("resp = %+v", resp)
	}
}
