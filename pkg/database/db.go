package database

import (
	"errors"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const uniqueViolation = "23505"

var (
	DB   *gorm.DB
	once sync.Once
)

func Connect(dsn string, debug bool) *gorm.DB {
	once.Do(func() {
		level := logger.Warn
		if debug {
			level = logger.Info
		}

		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(level),
		})
		if err != nil {
			log.WithError(err).Fatal("failed to connect database")
		}

		DB = db
	})

	return DB
}

// IsUniqueViolation reports whether err is a postgres unique constraint violation.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
