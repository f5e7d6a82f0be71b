package service

import (
	"context"
	"fmt"
	"sync"

	"anoa.com/practiceforum/internal/entity"
	tierDto "anoa.com/practiceforum/internal/modules/tier/dto"
	tierRepo "anoa.com/practiceforum/internal/modules/tier/repository"
	"anoa.com/practiceforum/pkg/apperror"
	"anoa.com/practiceforum/pkg/validator"
	log "github.com/sirupsen/logrus"
)

type TierService interface {
	// Catalog is loaded once and cached; the ladders are fixed at runtime.
	Catalog(ctx context.Context) (*Catalog, error)
	Reload(ctx context.Context) (*Catalog, error)
	// Constant returns a ConfigurationError when no constant exists for kind.
	Constant(ctx context.Context, kind entity.ActivityKind) (float64, error)
	GetConstants(ctx context.Context) (*tierDto.ConstantsResponse, error)
	UpdateConstant(ctx context.Context, kind entity.ActivityKind, req tierDto.UpdateConstantRequest) (*tierDto.ConstantResponse, error)
}

type tierService struct {
	repo tierRepo.TierRepository

	mu      sync.RWMutex
	catalog *Catalog
}

func NewTierService(repo tierRepo.TierRepository) TierService {
	return &tierService{repo: repo}
}

func (s *tierService) Catalog(ctx context.Context) (*Catalog, error) {
	s.mu.RLock()
	catalog := s.catalog
	s.mu.RUnlock()
	if catalog != nil {
		return catalog, nil
	}
	return s.Reload(ctx)
}

func (s *tierService) Reload(ctx context.Context) (*Catalog, error) {
	major, err := s.repo.ListMajor(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load major tiers: %w", err)
	}
	subMajor, err := s.repo.ListSubMajor(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sub-major tiers: %w", err)
	}
	minor, err := s.repo.ListMinor(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load minor tiers: %w", err)
	}

	catalog := NewCatalog(major, subMajor, minor)
	if err := catalog.Validate(); err != nil {
		log.WithError(err).Error("tier catalog is not usable")
		return nil, err
	}

	s.mu.Lock()
	s.catalog = catalog
	s.mu.Unlock()

	log.WithFields(log.Fields{
		"major":     len(catalog.Major),
		"sub_major": len(catalog.SubMajor),
		"minor":     len(catalog.Minor),
	}).Info("tier catalog loaded")

	return catalog, nil
}

func (s *tierService) Constant(ctx context.Context, kind entity.ActivityKind) (float64, error) {
	constant, err := s.repo.FindConstant(ctx, kind)
	if err != nil {
		return 0, fmt.Errorf("failed to load rank constant: %w", err)
	}
	if constant == nil {
		err := apperror.NewConfigurationError("rank constant", fmt.Sprintf("rank constant not found for %s", kind))
		log.WithField("kind", kind).WithError(err).Error("rank constant missing")
		return 0, err
	}
	if constant.Value <= 0 {
		return 0, apperror.NewConfigurationError("rank constant", fmt.Sprintf("rank constant for %s must be positive", kind))
	}
	return constant.Value, nil
}

func (s *tierService) GetConstants(ctx context.Context) (*tierDto.ConstantsResponse, error) {
	constants, err := s.repo.ListConstants(ctx)
	if err != nil {
		return nil, err
	}
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	resp := &tierDto.ConstantsResponse{
		Constants:     make([]tierDto.ConstantResponse, 0, len(constants)),
		MajorTiers:    ToTierResponses(catalog.Major),
		SubMajorTiers: ToTierResponses(catalog.SubMajor),
		MinorTiers:    ToTierResponses(catalog.Minor),
	}
	for _, c := range constants {
		resp.Constants = append(resp.Constants, toConstantResponse(c))
	}
	return resp, nil
}

func (s *tierService) UpdateConstant(ctx context.Context, kind entity.ActivityKind, req tierDto.UpdateConstantRequest) (*tierDto.ConstantResponse, error) {
	if !kind.Valid() {
		return nil, apperror.NewValidationError("kind", "invalid constant type")
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	constant := &entity.RankConstant{
		Kind:        kind,
		Value:       req.Value,
		Description: req.Description,
	}
	if existing, err := s.repo.FindConstant(ctx, kind); err != nil {
		return nil, err
	} else if existing != nil && req.Description == "" {
		constant.Description = existing.Description
	}

	if err := s.repo.UpsertConstant(ctx, constant); err != nil {
		return nil, fmt.Errorf("failed to save rank constant: %w", err)
	}

	log.WithFields(log.Fields{"kind": kind, "value": req.Value}).Info("rank constant updated")

	saved, err := s.repo.FindConstant(ctx, kind)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		saved = constant
	}
	resp := toConstantResponse(*saved)
	return &resp, nil
}

func ToTierResponses(tiers []Tier) []tierDto.TierResponse {
	out := make([]tierDto.TierResponse, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, ToTierResponse(t))
	}
	return out
}

func ToTierResponse(t Tier) tierDto.TierResponse {
	return tierDto.TierResponse{
		ID:        t.ID,
		Name:      t.Name,
		Order:     t.Order,
		ColorCode: t.ColorCode,
		ColorName: t.ColorName,
	}
}

func toConstantResponse(c entity.RankConstant) tierDto.ConstantResponse {
	return tierDto.ConstantResponse{
		Kind:        string(c.Kind),
		Type:        ConstantType(c.Kind),
		Value:       c.Value,
		Description: c.Description,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ParseConstantKind accepts either a kind name or its constant letter.
func ParseConstantKind(s string) (entity.ActivityKind, error) {
	switch s {
	case "X", "x":
		return entity.ActivityTranslation, nil
	case "Y", "y":
		return entity.ActivityWriting, nil
	}
	return entity.ParseActivityKind(s)
}

// ConstantType is the historical letter for a kind's constant.
func ConstantType(kind entity.ActivityKind) string {
	if kind == entity.ActivityTranslation {
		return "X"
	}
	return "Y"
}
