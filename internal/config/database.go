package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"schoolbus_tracker/internal/models"
)

// InitDB opens the database connection using environment variables and runs
// migrations. The handle is returned to the caller and handed to every
// component explicitly; there is no package-level database state.
func InitDB() *gorm.DB {
	// 1) Load .env (if present)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found – relying on env vars")
	}

	// Load environment variables (with defaults)
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "password")
	dbname := getEnv("DB_NAME", "schoolbus")
	sslmode := getEnv("DB_SSLMODE", "disable")
	timezone := getEnv("DB_TIMEZONE", "UTC")

	// Build Data Source Name
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		host, user, password, dbname, port, sslmode, timezone,
	)

	// Open GORM connection
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Driver{},
		&models.School{},
		&models.Route{},
		&models.Vehicle{},
		&models.Rider{},
		&models.LivePosition{},
		&models.PositionHistory{},
		&models.AttendanceRecord{},
		&models.Notification{},
		&models.PushToken{},
		&models.Alert{},
	)
	if err != nil {
		log.Fatalf("auto-migration failed: %v", err)
	}

	return db
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}
