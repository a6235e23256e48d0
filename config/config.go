package config

import (
	"log"
	"os"

	"restaurant-pos/models"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	DBSource string
	Port     string
}

// Load reads .env when present and falls back to defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBSource: getEnv("DB_SOURCE", "restaurant.db"),
		Port:     getEnv("PORT", "8080"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// OpenDB opens the sqlite store and migrates the schema. The handle is
// passed explicitly to every component; there is no package-level DB.
func OpenDB(cfg *Config) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(cfg.DBSource), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	log.Println("Database connected and migrated")
	return db
}

// Migrate applies the schema; shared with the test suites.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Category{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.ArchivedOrder{},
		&models.ArchivedOrderItem{},
		&models.Setting{},
	)
}
