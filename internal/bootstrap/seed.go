package bootstrap

import (
	"fmt"

	"anoa.com/practiceforum/internal/entity"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultRankConstant = 3.00

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.MajorTier{},
		&entity.SubMajorTier{},
		&entity.MinorTier{},
		&entity.RankConstant{},
		&entity.UserActivity{},
		&entity.Streak{},
		&entity.UserRank{},
		&entity.RankHistory{},
		&entity.Community{},
		&entity.CommunitySchedule{},
		&entity.Block{},
		&entity.Post{},
		&entity.Notification{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []entity.Role{
		{Name: entity.RoleAdmin, Description: "Super administrator"},
		{Name: entity.RoleMember, Description: "Member"},
	}

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&defaultRoles).Error
}

// MajorTierCatalog is the seeded major ladder, lowest first.
func MajorTierCatalog() []entity.MajorTier {
	return []entity.MajorTier{
		{Name: "✥ Võ Sĩ", Order: 1, ColorCode: "#C8A250", ColorName: "Đồng"},
		{Name: "✯ Võ Sư", Order: 2, ColorCode: "#B0C4DE", ColorName: "Bạc"},
		{Name: "✯✯ Đại Võ Sư", Order: 3, ColorCode: "#FFA500", ColorName: "Cam"},
		{Name: "✪ Võ Quân", Order: 4, ColorCode: "#FFD700", ColorName: "Vàng"},
		{Name: "♕ Võ Vương", Order: 5, ColorCode: "#0000CD", ColorName: "Lam"},
		{Name: "❂ Võ Tông", Order: 6, ColorCode: "#800080", ColorName: "Tím"},
		{Name: "߷ Võ Hoàng", Order: 7, ColorCode: "#FF0000", ColorName: "Đỏ"},
		{Name: "༒ Võ Tôn", Order: 8, ColorCode: "#A52A2A", ColorName: "Nâu"},
		{Name: "☭ Võ Đế", Order: 9, ColorCode: "#008000", ColorName: "Lục"},
	}
}

func SubMajorTierCatalog() []entity.SubMajorTier {
	names := []string{"Nhất", "Nhị", "Tam", "Tứ", "Ngũ", "Lục", "Thất", "Bát", "Cửu"}
	tiers := make([]entity.SubMajorTier, len(names))
	for i, name := range names {
		tiers[i] = entity.SubMajorTier{Name: name + " Tinh", Order: i + 1}
	}
	return tiers
}

func MinorTierCatalog() []entity.MinorTier {
	return []entity.MinorTier{
		{Name: "Sơ Cấp", Order: 1},
		{Name: "Trung Cấp", Order: 2},
		{Name: "Đỉnh Cấp", Order: 3},
	}
}

// SeedTierCatalog inserts missing tiers; existing orders are left untouched.
func SeedTierCatalog(db *gorm.DB) error {
	onOrder := clause.OnConflict{
		Columns:   []clause.Column{{Name: "tier_order"}},
		DoNothing: true,
	}

	majors := MajorTierCatalog()
	if err := db.Clauses(onOrder).Create(&majors).Error; err != nil {
		return fmt.Errorf("seed major tiers: %w", err)
	}
	subs := SubMajorTierCatalog()
	if err := db.Clauses(onOrder).Create(&subs).Error; err != nil {
		return fmt.Errorf("seed sub-major tiers: %w", err)
	}
	minors := MinorTierCatalog()
	if err := db.Clauses(onOrder).Create(&minors).Error; err != nil {
		return fmt.Errorf("seed minor tiers: %w", err)
	}
	return nil
}

func SeedRankConstants(db *gorm.DB) error {
	constants := []entity.RankConstant{
		{Kind: entity.ActivityTranslation, Value: defaultRankConstant, Description: "X: translation rank constant"},
		{Kind: entity.ActivityWriting, Value: defaultRankConstant, Description: "Y: writing rank constant"},
	}

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kind"}},
		DoNothing: true,
	}).Create(&constants).Error
}

func SeedAdminUser(db *gorm.DB) error {
	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", "admin@practiceforum.local").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Debug("admin user already exists, skipping seed")
		return nil
	}

	password := "admin123"
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := entity.User{
		Username:     "admin",
		Email:        "admin@practiceforum.local",
		PasswordHash: string(hashedPasswordBytes),
		RoleID:       &adminRole.ID,
		Timezone:     "UTC",
	}

	if err := db.Omit(clause.Associations).Create(&adminUser).Error; err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"email":    adminUser.Email,
		"password": password,
	}).Info("admin user seeded")

	return nil
}

// Run migrates and seeds. The admin user is only seeded in development.
func Run(db *gorm.DB, development bool) error {
	steps := []struct {
		name string
		fn   func(*gorm.DB) error
	}{
		{"migrate", Migrate},
		{"roles", SeedRoles},
		{"tier catalog", SeedTierCatalog},
		{"rank constants", SeedRankConstants},
	}
	if development {
		steps = append(steps, struct {
			name string
			fn   func(*gorm.DB) error
		}{"admin user", SeedAdminUser})
	}

	for _, step := range steps {
		if err := step.fn(db); err != nil {
			return fmt.Errorf("bootstrap %s: %w", step.name, err)
		}
	}
	return nil
}
