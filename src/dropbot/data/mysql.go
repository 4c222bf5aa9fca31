package data

import (
	"log"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/trackclub/dropbot/src/dropbot/types"
)

// MustMySQL opens the MySQL database and runs migrations, exiting on
// failure. AutoMigrate only ever adds missing columns, so pointing a
// new binary at an older installation does not fail startup.
func MustMySQL(dsn string) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	if err := Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	return db
}

// Migrate creates or extends the settings, rounds and submissions
// tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Setting{},
		&types.GuildSettings{},
		&types.Round{},
		&types.Submission{},
	)
}

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}
