package service

import (
	"sort"

	"anoa.com/practiceforum/internal/entity"
	rankRepo "anoa.com/practiceforum/internal/modules/rank/repository"
)

// CompareStanding returns -1 when a ranks above b on the leaderboard, 1 when
// below and 0 only for the same user in the same standing.
func CompareStanding(a, b rankRepo.Standing) int {
	keys := [][2]int{
		{b.MajorOrder, a.MajorOrder},
		{b.SubMajorOrder, a.SubMajorOrder},
		{b.MinorOrder, a.MinorOrder},
		{b.DaysCount, a.DaysCount},
	}
	for _, k := range keys {
		if k[0] != k[1] {
			return sign(k[0] - k[1])
		}
	}

	switch {
	case a.LastUpdate.Before(b.LastUpdate):
		return -1
	case a.LastUpdate.After(b.LastUpdate):
		return 1
	}
	return sign(compareBytes(a.UserID[:], b.UserID[:]))
}

func compareBytes(a, b []byte) int {
	for i := range a {
		if a[i] != b[i] {
			return int(a[i]) - int(b[i])
		}
	}
	return 0
}

func standingOf(r entity.UserRank) rankRepo.Standing {
	return rankRepo.Standing{
		MajorOrder:    r.MajorTier.Order,
		SubMajorOrder: r.SubMajorTier.Order,
		MinorOrder:    r.MinorTier.Order,
		DaysCount:     r.DaysCount,
		LastUpdate:    r.LastUpdate,
		UserID:        r.UserID,
	}
}

// sortStandings keeps a fetched page in leaderboard order regardless of how
// the database broke ties.
func sortStandings(ranks []entity.UserRank) {
	sort.SliceStable(ranks, func(i, j int) bool {
		return CompareStanding(standingOf(ranks[i]), standingOf(ranks[j])) < 0
	})
}

// BoardName is the display name of a kind's leaderboard.
func BoardName(kind entity.ActivityKind) string {
	switch kind {
	case entity.ActivityTranslation:
		return "Diệu Thuật Bảng"
	case entity.ActivityWriting:
		return "Phong Vân Bảng"
	}
	return string(kind)
}
