package service

import (
	"time"

	"anoa.com/practiceforum/internal/entity"
	tierService "anoa.com/practiceforum/internal/modules/tier/service"
	"github.com/google/uuid"
)

// TierTriple is one position on a rank ladder.
type TierTriple struct {
	Major    tierService.Tier
	SubMajor tierService.Tier
	Minor    tierService.Tier
}

// Compare orders triples lexicographically by (major, sub-major, minor) order.
func (t TierTriple) Compare(o TierTriple) int {
	switch {
	case t.Major.Order != o.Major.Order:
		return sign(t.Major.Order - o.Major.Order)
	case t.SubMajor.Order != o.SubMajor.Order:
		return sign(t.SubMajor.Order - o.SubMajor.Order)
	default:
		return sign(t.Minor.Order - o.Minor.Order)
	}
}

func (t TierTriple) Display() string {
	return t.Major.Name + " " + t.SubMajor.Name + " " + t.Minor.Name
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

type SyncInput struct {
	UserID        uuid.UUID
	Kind          entity.ActivityKind
	Days          int
	StreakVersion int64
}

type RankChangeResult struct {
	Previous      TierTriple
	Current       TierTriple
	DaysCount     int
	Changed       bool
	Direction     string // entity.RankChangeIncrease or entity.RankChangeDecrease when Changed
	HighestRaised bool
	// Stale is set when a newer streak version was already applied; nothing is written.
	Stale bool
	Saved bool
}

func lowestTriple(c *tierService.Catalog) TierTriple {
	return TierTriple{Major: c.Major[0], SubMajor: c.SubMajor[0], Minor: c.Minor[0]}
}

// TripleAt addresses the catalogs with a resolved index.
func TripleAt(c *tierService.Catalog, idx TierIndex) TierTriple {
	return TierTriple{Major: c.Major[idx.Major], SubMajor: c.SubMajor[idx.SubMajor], Minor: c.Minor[idx.Minor]}
}

// tripleByIDs resolves stored tier ids. Unknown ids keep their id with Order 0.
func tripleByIDs(c *tierService.Catalog, majorID, subMajorID, minorID uint) TierTriple {
	major, ok := c.MajorByID(majorID)
	if !ok {
		major = tierService.Tier{ID: majorID}
	}
	subMajor, ok := c.SubMajorByID(subMajorID)
	if !ok {
		subMajor = tierService.Tier{ID: subMajorID}
	}
	minor, ok := c.MinorByID(minorID)
	if !ok {
		minor = tierService.Tier{ID: minorID}
	}
	return TierTriple{Major: major, SubMajor: subMajor, Minor: minor}
}

func isPlaced(r *entity.UserRank) bool {
	return r.MajorTierID != 0 && r.SubMajorTierID != 0 && r.MinorTierID != 0
}

func setCurrent(r *entity.UserRank, t TierTriple) {
	r.MajorTierID = t.Major.ID
	r.SubMajorTierID = t.SubMajor.ID
	r.MinorTierID = t.Minor.ID
}

func setHighest(r *entity.UserRank, t TierTriple, days int) {
	r.HighestMajorTierID = t.Major.ID
	r.HighestSubMajorTierID = t.SubMajor.ID
	r.HighestMinorTierID = t.Minor.ID
	r.HighestDaysCount = days
}

// applyRankChange mutates rank in place toward next and returns what happened
// plus the history row to append, if any. A row that was never placed starts
// from the lowest triple.
func applyRankChange(c *tierService.Catalog, rank *entity.UserRank, next TierTriple, in SyncInput, now time.Time) (RankChangeResult, *entity.RankHistory) {
	placed := isPlaced(rank)

	previous := lowestTriple(c)
	if placed {
		previous = tripleByIDs(c, rank.MajorTierID, rank.SubMajorTierID, rank.MinorTierID)
	}

	res := RankChangeResult{Previous: previous, Current: previous, DaysCount: rank.DaysCount}

	if placed && in.StreakVersion < rank.SyncedVersion {
		res.Stale = true
		return res, nil
	}

	res.Saved = true
	res.Current = next
	res.DaysCount = in.Days

	if !placed || rank.DaysCount != in.Days {
		rank.LastUpdate = now
	}
	rank.DaysCount = in.Days
	rank.SyncedVersion = in.StreakVersion

	highest := previous
	if placed {
		highest = tripleByIDs(c, rank.HighestMajorTierID, rank.HighestSubMajorTierID, rank.HighestMinorTierID)
	} else {
		setCurrent(rank, previous)
		setHighest(rank, previous, 0)
	}

	switch cmp := next.Compare(highest); {
	case cmp > 0:
		setHighest(rank, next, in.Days)
		res.HighestRaised = true
	case cmp == 0 && in.Days > rank.HighestDaysCount:
		rank.HighestDaysCount = in.Days
	}

	cmp := next.Compare(previous)
	if cmp == 0 {
		return res, nil
	}

	setCurrent(rank, next)
	rank.LastUpdate = now

	res.Changed = true
	res.Direction = entity.RankChangeDecrease
	if cmp > 0 {
		res.Direction = entity.RankChangeIncrease
	}

	history := &entity.RankHistory{
		UserID:         in.UserID,
		Kind:           in.Kind,
		MajorTierID:    next.Major.ID,
		SubMajorTierID: next.SubMajor.ID,
		MinorTierID:    next.Minor.ID,
		DaysCount:      in.Days,
		ChangeType:     res.Direction,
		ChangeDate:     now,
	}
	return res, history
}
