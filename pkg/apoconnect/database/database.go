package database

import (
	"fmt"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/config"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect initializes the database connection.
// SQLite is the default; DB_DRIVER=postgres selects PostgreSQL.
func Connect(cfg config.DBConfig) error {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.New(postgres.Config{
			DSN:                  cfg.PostgresDSN(),
			PreferSimpleProtocol: true,
		})
	case "sqlite", "":
		dialector = sqlite.Open(cfg.Path)
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(cfg.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	DB = db
	return nil
}

// GetDB returns the database instance.
func GetDB() *gorm.DB {
	return DB
}

// Close releases the underlying connection pool.
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DefaultCategories is the fixed category set every installation starts with
var DefaultCategories = []models.Category{
	{Name: "Recht & Vorschriften", Slug: "recht", Icon: "Scale", Color: "#6366f1", SortOrder: 1},
	{Name: "Finanzen & Steuern", Slug: "finanzen", Icon: "Wallet", Color: "#10b981", SortOrder: 2},
	{Name: "IT & Digitalisierung", Slug: "it", Icon: "Monitor", Color: "#8b5cf6", SortOrder: 3},
	{Name: "Personal & HR", Slug: "personal", Icon: "Users", Color: "#f59e0b", SortOrder: 4},
	{Name: "Marketing", Slug: "marketing", Icon: "Megaphone", Color: "#ec4899", SortOrder: 5},
	{Name: "Warenwirtschaft", Slug: "warenwirtschaft", Icon: "Package", Color: "#14b8a6", SortOrder: 6},
	{Name: "Rezeptur & Labor", Slug: "rezeptur", Icon: "FlaskConical", Color: "#f97316", SortOrder: 7},
	{Name: "Allgemein", Slug: "allgemein", Icon: "MessageSquare", Color: "#64748b", SortOrder: 8},
}

// EnsureCategories inserts any default category whose slug is missing.
// Returns the number of categories created.
func EnsureCategories(db *gorm.DB) (int, error) {
	created := 0
	for _, c := range DefaultCategories {
		var count int64
		if err := db.Model(&models.Category{}).Where("slug = ?", c.Slug).Count(&count).Error; err != nil {
			return created, err
		}
		if count > 0 {
			continue
		}
		category := c
		if err := db.Create(&category).Error; err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
