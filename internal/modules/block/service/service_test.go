package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/practiceforum/internal/entity"
	blockDto "anoa.com/practiceforum/internal/modules/block/dto"
	"anoa.com/practiceforum/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fakeBlockRepo struct {
	blocks []entity.Block
}

func (f *fakeBlockRepo) CreateForBucket(ctx context.Context, block *entity.Block) error {
	f.blocks = append(f.blocks, *block)
	return nil
}

func (f *fakeBlockRepo) FindLatestAutoGenerated(ctx context.Context, communityID uuid.UUID) (*entity.Block, error) {
	return nil, nil
}

func (f *fakeBlockRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Block, error) {
	for i := range f.blocks {
		if f.blocks[i].ID == id {
			return &f.blocks[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBlockRepo) ListByCommunity(ctx context.Context, communityID uuid.UUID, limit, offset int) ([]entity.Block, int64, error) {
	var matched []entity.Block
	for _, b := range f.blocks {
		if b.CommunityID == communityID {
			matched = append(matched, b)
		}
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func TestListByCommunity(t *testing.T) {
	communityID := uuid.New()
	repo := &fakeBlockRepo{}
	for i := 0; i < 5; i++ {
		key := time.Date(2024, 1, 10+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		repo.blocks = append(repo.blocks, entity.Block{
			ID:              uuid.New(),
			CommunityID:     communityID,
			Title:           key,
			Date:            datatypes.Date(time.Date(2024, 1, 10+i, 0, 0, 0, 0, time.UTC)),
			BucketKey:       &key,
			IsAutoGenerated: true,
		})
	}
	repo.blocks = append(repo.blocks, entity.Block{ID: uuid.New(), CommunityID: uuid.New()})

	svc := NewBlockService(repo)
	resp, err := svc.ListByCommunity(context.Background(), communityID, blockDto.BlockFilter{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("ListByCommunity() error = %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("len(Data) = %d, want 2", len(resp.Data))
	}
	if resp.Meta.TotalItems != 5 || resp.Meta.TotalPages != 3 || resp.Meta.CurrentPage != 2 {
		t.Errorf("Meta = %+v", resp.Meta)
	}
	if resp.Data[0].Date != "2024-01-12" {
		t.Errorf("Date = %q, want 2024-01-12", resp.Data[0].Date)
	}
}

func TestGetBlockNotFound(t *testing.T) {
	svc := NewBlockService(&fakeBlockRepo{})
	if _, err := svc.GetBlock(context.Background(), uuid.New()); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetBlock() error = %v, want not found", err)
	}
}
