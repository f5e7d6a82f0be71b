package service

import (
	"context"
	"errors"
	"time"

	"anoa.com/practiceforum/internal/entity"
	blockDto "anoa.com/practiceforum/internal/modules/block/dto"
	blockRepo "anoa.com/practiceforum/internal/modules/block/repository"
	"anoa.com/practiceforum/pkg/apperror"
	commonDto "anoa.com/practiceforum/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultBlockLimit = 20
	maxBlockLimit     = 100
)

type BlockService interface {
	ListByCommunity(ctx context.Context, communityID uuid.UUID, filter blockDto.BlockFilter) (*blockDto.PaginatedBlockResponse, error)
	GetBlock(ctx context.Context, id uuid.UUID) (*blockDto.BlockResponse, error)
}

type blockService struct {
	repo blockRepo.BlockRepository
}

func NewBlockService(repo blockRepo.BlockRepository) BlockService {
	return &blockService{repo: repo}
}

func (s *blockService) ListByCommunity(ctx context.Context, communityID uuid.UUID, filter blockDto.BlockFilter) (*blockDto.PaginatedBlockResponse, error) {
	page, limit := commonDto.NormalizePage(filter.Page, filter.Limit, defaultBlockLimit, maxBlockLimit)

	blocks, total, err := s.repo.ListByCommunity(ctx, communityID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	data := make([]blockDto.BlockResponse, 0, len(blocks))
	for i := range blocks {
		data = append(data, ToResponse(&blocks[i]))
	}

	return &blockDto.PaginatedBlockResponse{
		Data: data,
		Meta: commonDto.NewPaginationMeta(page, limit, total),
	}, nil
}

func (s *blockService) GetBlock(ctx context.Context, id uuid.UUID) (*blockDto.BlockResponse, error) {
	block, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	resp := ToResponse(block)
	return &resp, nil
}

func ToResponse(b *entity.Block) blockDto.BlockResponse {
	return blockDto.BlockResponse{
		ID:              b.ID,
		CommunityID:     b.CommunityID,
		Title:           b.Title,
		Date:            time.Time(b.Date).Format("2006-01-02"),
		BucketKey:       b.BucketKey,
		IsAutoGenerated: b.IsAutoGenerated,
		ScheduleID:      b.ScheduleID,
		CreatedAt:       b.CreatedAt,
	}
}
