package entity

import "time"

// MajorTier is a rung of the major ladder ("dai canh gioi"). Only this catalog carries a color.
type MajorTier struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:100;not null" json:"name"`
	Order     int    `gorm:"column:tier_order;not null;uniqueIndex" json:"order"`
	ColorCode string `gorm:"size:20" json:"color_code"`
	ColorName string `gorm:"size:50" json:"color_name"`
}

type SubMajorTier struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:100;not null" json:"name"`
	Order int    `gorm:"column:tier_order;not null;uniqueIndex" json:"order"`
}

type MinorTier struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:100;not null" json:"name"`
	Order int    `gorm:"column:tier_order;not null;uniqueIndex" json:"order"`
}

// RankConstant is the per-kind scalar fed to the rank formula (X for translation, Y for writing).
type RankConstant struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Kind        ActivityKind `gorm:"size:20;not null;uniqueIndex" json:"kind"`
	Value       float64      `gorm:"not null" json:"value"`
	Description string       `gorm:"type:text" json:"description"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}
