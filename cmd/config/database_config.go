package config

import (
	"fmt"
	"time"

	"Foodgram/internal/database"
	"Foodgram/internal/logging"
	"Foodgram/internal/utils"

	"gorm.io/gorm"
)

// ConnectDB opens the store selected by DB_DRIVER.
func ConnectDB() (*gorm.DB, error) {
	driver := utils.GetConfig("DB_DRIVER")

	switch driver {
	case database.DriverSQLite:
		path := utils.GetConfig("DB_PATH")
		db, err := database.OpenSQLite(path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", path, err)
		}
		logging.Info().Str("driver", driver).Str("path", path).Msg("database connected")
		return db, nil

	case database.DriverPostgres:
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			utils.GetConfig("DB_HOST"),
			utils.GetConfig("DB_USER"),
			utils.GetConfig("DB_PASSWORD"),
			utils.GetConfig("DB_NAME"),
			utils.GetConfig("DB_PORT"),
		)
		db, err := database.OpenPostgres(dsn)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		logging.Info().Str("driver", driver).Str("host", utils.GetConfig("DB_HOST")).Msg("database connected")
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}
