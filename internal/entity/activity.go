package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ActivityKind string

const (
	ActivityTranslation ActivityKind = "translation"
	ActivityWriting     ActivityKind = "writing"
)

var ActivityKinds = []ActivityKind{ActivityTranslation, ActivityWriting}

func (k ActivityKind) Valid() bool {
	return k == ActivityTranslation || k == ActivityWriting
}

// ParseActivityKind accepts the kind name case-insensitively.
func ParseActivityKind(s string) (ActivityKind, error) {
	kind := ActivityKind(strings.ToLower(strings.TrimSpace(s)))
	if !kind.Valid() {
		return "", fmt.Errorf("unknown activity kind %q", s)
	}
	return kind, nil
}

// UserActivity is the day-scoped record that makes activity crediting idempotent.
type UserActivity struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_user_activity_day,priority:1" json:"user_id"`
	Kind         ActivityKind   `gorm:"size:20;not null;uniqueIndex:idx_user_activity_day,priority:2" json:"kind"`
	ActivityDate datatypes.Date `gorm:"not null;uniqueIndex:idx_user_activity_day,priority:3" json:"activity_date"`
	ReferenceID  string         `gorm:"size:36" json:"reference_id"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
}
