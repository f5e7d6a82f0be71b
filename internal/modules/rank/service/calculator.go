package service

import (
	"fmt"
	"math"

	"anoa.com/practiceforum/pkg/apperror"
)

// floorEpsilon absorbs float error when days land exactly on a step boundary
// for constants that are not exactly representable (e.g. 0.3).
const floorEpsilon = 1e-9

// TierIndex is a zero-based position in each catalog.
type TierIndex struct {
	Minor    int
	SubMajor int
	Major    int
}

// ResolveTier maps an accumulated day count to a tier position in each catalog.
//
//	step     = floor(days / (constant / minorCount))
//	minor    = step mod minorCount
//	subMajor = step mod subMajorCount
//	major    = floor(days / (constant * majorCount * subMajorCount)) mod majorCount
//
// The mapping is cyclic: indices wrap as days grow past each period.
func ResolveTier(days int, constant float64, minorCount, subMajorCount, majorCount int) (TierIndex, error) {
	if minorCount <= 0 || subMajorCount <= 0 || majorCount <= 0 {
		return TierIndex{}, apperror.NewConfigurationError("tier catalog",
			fmt.Sprintf("catalog sizes must be positive (minor=%d, sub-major=%d, major=%d)", minorCount, subMajorCount, majorCount))
	}
	if constant <= 0 || math.IsNaN(constant) || math.IsInf(constant, 0) {
		return TierIndex{}, apperror.NewConfigurationError("rank constant", fmt.Sprintf("rank constant must be positive, got %v", constant))
	}
	if days < 0 {
		return TierIndex{}, apperror.NewValidationError("days", "must not be negative")
	}

	d := float64(days)
	step := int64(math.Floor(d/(constant/float64(minorCount)) + floorEpsilon))
	majorStep := int64(math.Floor(d/(constant*float64(majorCount)*float64(subMajorCount)) + floorEpsilon))

	return TierIndex{
		Minor:    int(step % int64(minorCount)),
		SubMajor: int(step % int64(subMajorCount)),
		Major:    int(majorStep % int64(majorCount)),
	}, nil
}

// DaysToRank is the day threshold of a rank on the linear ladder, given
// 1-based positions in each catalog.
func DaysToRank(majorPos, subMajorPos, minorPos int, constant float64, minorCount, subMajorCount, majorCount int) (int, error) {
	if minorCount <= 0 || subMajorCount <= 0 || majorCount <= 0 {
		return 0, apperror.NewConfigurationError("tier catalog", "catalog sizes must be positive")
	}
	if constant <= 0 {
		return 0, apperror.NewConfigurationError("rank constant", "rank constant must be positive")
	}
	if majorPos < 1 || majorPos > majorCount {
		return 0, apperror.NewValidationError("major", fmt.Sprintf("must be between 1 and %d", majorCount))
	}
	if subMajorPos < 1 || subMajorPos > subMajorCount {
		return 0, apperror.NewValidationError("sub_major", fmt.Sprintf("must be between 1 and %d", subMajorCount))
	}
	if minorPos < 1 || minorPos > minorCount {
		return 0, apperror.NewValidationError("minor", fmt.Sprintf("must be between 1 and %d", minorCount))
	}

	minorBase := float64(minorPos-1) * (constant / float64(minorCount))
	subMajorBase := float64(subMajorPos-1) * constant * float64(subMajorCount)
	majorBase := float64(majorPos-1) * constant * float64(majorCount) * float64(subMajorCount)

	return int(math.Ceil(minorBase + subMajorBase + majorBase - floorEpsilon)), nil
}
