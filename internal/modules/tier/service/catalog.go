package service

import (
	"sort"

	"anoa.com/practiceforum/internal/entity"
	"anoa.com/practiceforum/pkg/apperror"
)

// Tier is a catalog rung flattened across the three ladders.
type Tier struct {
	ID        uint
	Name      string
	Order     int
	ColorCode string
	ColorName string
}

// Catalog holds the three ladders sorted by Order ascending, so a
// zero-based index from the rank formula addresses a rung directly.
type Catalog struct {
	Minor    []Tier
	SubMajor []Tier
	Major    []Tier

	byMinorID    map[uint]Tier
	bySubMajorID map[uint]Tier
	byMajorID    map[uint]Tier
}

func NewCatalog(major []entity.MajorTier, subMajor []entity.SubMajorTier, minor []entity.MinorTier) *Catalog {
	c := &Catalog{
		byMinorID:    make(map[uint]Tier, len(minor)),
		bySubMajorID: make(map[uint]Tier, len(subMajor)),
		byMajorID:    make(map[uint]Tier, len(major)),
	}

	for _, t := range major {
		tier := FromMajor(t)
		c.Major = append(c.Major, tier)
		c.byMajorID[t.ID] = tier
	}
	for _, t := range subMajor {
		tier := FromSubMajor(t)
		c.SubMajor = append(c.SubMajor, tier)
		c.bySubMajorID[t.ID] = tier
	}
	for _, t := range minor {
		tier := FromMinor(t)
		c.Minor = append(c.Minor, tier)
		c.byMinorID[t.ID] = tier
	}

	sortTiers(c.Major)
	sortTiers(c.SubMajor)
	sortTiers(c.Minor)
	return c
}

func FromMajor(t entity.MajorTier) Tier {
	return Tier{ID: t.ID, Name: t.Name, Order: t.Order, ColorCode: t.ColorCode, ColorName: t.ColorName}
}

func FromSubMajor(t entity.SubMajorTier) Tier {
	return Tier{ID: t.ID, Name: t.Name, Order: t.Order}
}

func FromMinor(t entity.MinorTier) Tier {
	return Tier{ID: t.ID, Name: t.Name, Order: t.Order}
}

func sortTiers(tiers []Tier) {
	sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].Order < tiers[j].Order })
}

// Validate fails when any ladder is empty; rank resolution is undefined without all three.
func (c *Catalog) Validate() error {
	switch {
	case len(c.Major) == 0:
		return apperror.NewConfigurationError("tier catalog", "major tier catalog is empty")
	case len(c.SubMajor) == 0:
		return apperror.NewConfigurationError("tier catalog", "sub-major tier catalog is empty")
	case len(c.Minor) == 0:
		return apperror.NewConfigurationError("tier catalog", "minor tier catalog is empty")
	}
	return nil
}

func (c *Catalog) Counts() (minor, subMajor, major int) {
	return len(c.Minor), len(c.SubMajor), len(c.Major)
}

func (c *Catalog) MajorByID(id uint) (Tier, bool) {
	t, ok := c.byMajorID[id]
	return t, ok
}

func (c *Catalog) SubMajorByID(id uint) (Tier, bool) {
	t, ok := c.bySubMajorID[id]
	return t, ok
}

func (c *Catalog) MinorByID(id uint) (Tier, bool) {
	t, ok := c.byMinorID[id]
	return t, ok
}

// FindByOrders returns the rungs carrying the given order values.
func (c *Catalog) FindByOrders(majorOrder, subMajorOrder, minorOrder int) (major, subMajor, minor Tier, ok bool) {
	major, okMajor := findOrder(c.Major, majorOrder)
	subMajor, okSub := findOrder(c.SubMajor, subMajorOrder)
	minor, okMinor := findOrder(c.Minor, minorOrder)
	return major, subMajor, minor, okMajor && okSub && okMinor
}

func findOrder(tiers []Tier, order int) (Tier, bool) {
	for _, t := range tiers {
		if t.Order == order {
			return t, true
		}
	}
	return Tier{}, false
}
