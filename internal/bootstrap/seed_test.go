package bootstrap

import (
	"testing"

	rankService "anoa.com/practiceforum/internal/modules/rank/service"
	tierService "anoa.com/practiceforum/internal/modules/tier/service"
)

func TestSeedCatalogShape(t *testing.T) {
	majors := MajorTierCatalog()
	subs := SubMajorTierCatalog()
	minors := MinorTierCatalog()

	if len(majors) != 9 || len(subs) != 9 || len(minors) != 3 {
		t.Fatalf("catalog sizes = %d/%d/%d, want 9/9/3", len(majors), len(subs), len(minors))
	}
	for i, m := range majors {
		if m.Order != i+1 || m.ColorCode == "" {
			t.Errorf("major %d = %+v", i, m)
		}
	}
	if subs[0].Name != "Nhất Tinh" || subs[8].Name != "Cửu Tinh" {
		t.Errorf("sub-major ends = %q, %q", subs[0].Name, subs[8].Name)
	}
	if minors[2].Name != "Đỉnh Cấp" {
		t.Errorf("top minor = %q", minors[2].Name)
	}
}

func TestSeedCatalogIsValid(t *testing.T) {
	majors := MajorTierCatalog()
	subs := SubMajorTierCatalog()
	minors := MinorTierCatalog()
	for i := range majors {
		majors[i].ID = uint(i + 1)
	}
	for i := range subs {
		subs[i].ID = uint(i + 1)
	}
	for i := range minors {
		minors[i].ID = uint(i + 1)
	}

	catalog := tierService.NewCatalog(majors, subs, minors)
	if err := catalog.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	minor, sub, major := catalog.Counts()
	// One full major rung with C=3 spans 3 * 9 * 9 days.
	idx, err := rankService.ResolveTier(243, defaultRankConstant, minor, sub, major)
	if err != nil {
		t.Fatalf("ResolveTier() error = %v", err)
	}
	if idx.Major != 1 {
		t.Errorf("day 243 major index = %d, want 1", idx.Major)
	}
}
