package service

import "cloud.google.com/go/civil"

const (
	// A freeze stays open for this many days after the day that opened it.
	freezeWindowDays = 2
	// Credits needed inside the freeze window to keep the streak.
	recoveryTasksRequired = 3
	// Largest gap that opens a freeze instead of resetting.
	maxGraceGap = 3
)

// State is the streak data the transition rules read and write.
type State struct {
	CurrentCount           int
	MaxCount               int
	LastDate               *civil.Date
	FreezeUntil            *civil.Date
	RecoveryTasksCompleted int
}

func (s State) FreezeActive() bool {
	return s.FreezeUntil != nil
}

type Outcome string

const (
	OutcomeStarted    Outcome = "started"
	OutcomeContinued  Outcome = "continued"
	OutcomeFrozen     Outcome = "frozen"
	OutcomeRecovering Outcome = "recovering"
	OutcomeRestored   Outcome = "restored"
	OutcomeReset      Outcome = "reset"
	OutcomeUnchanged  Outcome = "unchanged"
)

// Transition credits one activity on today. It is pure; callers are
// responsible for crediting a given day at most once.
//
// An open freeze is checked before the gap: credits that land on or before
// freeze_until count toward recovery even when they are one day apart.
func Transition(s State, today civil.Date) (State, Outcome) {
	next := s
	next.LastDate = &today

	if s.LastDate == nil {
		next.CurrentCount = 1
		next.MaxCount = max(s.MaxCount, 1)
		next.clearFreeze()
		return next, OutcomeStarted
	}

	gap := today.DaysSince(*s.LastDate)
	if gap <= 0 {
		return s, OutcomeUnchanged
	}

	if s.FreezeActive() {
		if today.After(*s.FreezeUntil) {
			next.reset()
			return next, OutcomeReset
		}

		next.RecoveryTasksCompleted = s.RecoveryTasksCompleted + 1
		if next.RecoveryTasksCompleted >= recoveryTasksRequired {
			next.clearFreeze()
			return next, OutcomeRestored
		}
		return next, OutcomeRecovering
	}

	switch {
	case gap == 1:
		next.CurrentCount = s.CurrentCount + 1
		next.MaxCount = max(s.MaxCount, next.CurrentCount)
		return next, OutcomeContinued
	case gap <= maxGraceGap:
		until := today.AddDays(freezeWindowDays)
		next.FreezeUntil = &until
		next.RecoveryTasksCompleted = 1
		return next, OutcomeFrozen
	default:
		next.reset()
		return next, OutcomeReset
	}
}

func (s *State) clearFreeze() {
	s.FreezeUntil = nil
	s.RecoveryTasksCompleted = 0
}

// reset restarts the streak at one; MaxCount is never lowered.
func (s *State) reset() {
	s.CurrentCount = 1
	s.MaxCount = max(s.MaxCount, 1)
	s.clearFreeze()
}

// RemainingRecoveryTasks is how many more credits an open freeze needs.
func (s State) RemainingRecoveryTasks() int {
	if !s.FreezeActive() {
		return 0
	}
	return max(recoveryTasksRequired-s.RecoveryTasksCompleted, 0)
}
