package service

import (
	"context"
	"errors"
	"testing"

	"anoa.com/practiceforum/internal/entity"
	tierDto "anoa.com/practiceforum/internal/modules/tier/dto"
	"anoa.com/practiceforum/pkg/apperror"
)

type fakeTierRepo struct {
	major     []entity.MajorTier
	subMajor  []entity.SubMajorTier
	minor     []entity.MinorTier
	constants map[entity.ActivityKind]*entity.RankConstant
	listCalls int
}

func (f *fakeTierRepo) ListMajor(ctx context.Context) ([]entity.MajorTier, error) {
	f.listCalls++
	return f.major, nil
}

func (f *fakeTierRepo) ListSubMajor(ctx context.Context) ([]entity.SubMajorTier, error) {
	return f.subMajor, nil
}

func (f *fakeTierRepo) ListMinor(ctx context.Context) ([]entity.MinorTier, error) {
	return f.minor, nil
}

func (f *fakeTierRepo) ListConstants(ctx context.Context) ([]entity.RankConstant, error) {
	var out []entity.RankConstant
	for _, c := range f.constants {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeTierRepo) FindConstant(ctx context.Context, kind entity.ActivityKind) (*entity.RankConstant, error) {
	c, ok := f.constants[kind]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (f *fakeTierRepo) UpsertConstant(ctx context.Context, constant *entity.RankConstant) error {
	if f.constants == nil {
		f.constants = map[entity.ActivityKind]*entity.RankConstant{}
	}
	copied := *constant
	f.constants[constant.Kind] = &copied
	return nil
}

func seededRepo() *fakeTierRepo {
	return &fakeTierRepo{
		// Deliberately out of order; the catalog sorts by Order.
		major: []entity.MajorTier{
			{ID: 12, Name: "Vo Su", Order: 2, ColorCode: "#B0C4DE"},
			{ID: 11, Name: "Vo Si", Order: 1, ColorCode: "#C8A250"},
		},
		subMajor: []entity.SubMajorTier{{ID: 21, Name: "Nhat Tinh", Order: 1}},
		minor: []entity.MinorTier{
			{ID: 31, Name: "So Cap", Order: 1},
			{ID: 32, Name: "Trung Cap", Order: 2},
		},
		constants: map[entity.ActivityKind]*entity.RankConstant{
			entity.ActivityTranslation: {Kind: entity.ActivityTranslation, Value: 3},
		},
	}
}

func TestCatalogIsSortedAndCached(t *testing.T) {
	repo := seededRepo()
	svc := NewTierService(repo)

	catalog, err := svc.Catalog(context.Background())
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	if catalog.Major[0].ID != 11 || catalog.Major[1].ID != 12 {
		t.Errorf("major tiers not sorted by order: %+v", catalog.Major)
	}
	if _, err := svc.Catalog(context.Background()); err != nil {
		t.Fatalf("second Catalog() error = %v", err)
	}
	if repo.listCalls != 1 {
		t.Errorf("catalog loaded %d times, want 1", repo.listCalls)
	}
}

func TestCatalogEmptyIsConfigurationError(t *testing.T) {
	repo := seededRepo()
	repo.minor = nil
	svc := NewTierService(repo)

	_, err := svc.Catalog(context.Background())
	var cfgErr *apperror.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestConstant(t *testing.T) {
	svc := NewTierService(seededRepo())

	got, err := svc.Constant(context.Background(), entity.ActivityTranslation)
	if err != nil || got != 3 {
		t.Fatalf("Constant(translation) = %v, %v", got, err)
	}

	_, err = svc.Constant(context.Background(), entity.ActivityWriting)
	if !errors.Is(err, apperror.ErrConfiguration) {
		t.Fatalf("Constant(writing) error = %v, want configuration error", err)
	}
}

func TestUpdateConstant(t *testing.T) {
	tests := []struct {
		name    string
		kind    entity.ActivityKind
		req     tierDto.UpdateConstantRequest
		wantErr error
	}{
		{"creates missing constant", entity.ActivityWriting, tierDto.UpdateConstantRequest{Value: 4.5}, nil},
		{"rejects zero", entity.ActivityWriting, tierDto.UpdateConstantRequest{Value: 0}, apperror.ErrInvalidInput},
		{"rejects unknown kind", entity.ActivityKind("reading"), tierDto.UpdateConstantRequest{Value: 1}, apperror.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewTierService(seededRepo())
			resp, err := svc.UpdateConstant(context.Background(), tt.kind, tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateConstant() error = %v", err)
			}
			if resp.Value != tt.req.Value || resp.Type != "Y" {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}

func TestParseConstantKind(t *testing.T) {
	tests := map[string]entity.ActivityKind{
		"X":           entity.ActivityTranslation,
		"y":           entity.ActivityWriting,
		"translation": entity.ActivityTranslation,
		"Writing":     entity.ActivityWriting,
	}
	for in, want := range tests {
		got, err := ParseConstantKind(in)
		if err != nil || got != want {
			t.Errorf("ParseConstantKind(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseConstantKind("z"); err == nil {
		t.Error("expected error for unknown kind")
	}
}
