package database

import (
	"path/filepath"
	"testing"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/config"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/models"
	"gorm.io/gorm/logger"
)

func TestConnectSQLite(t *testing.T) {
	cfg := config.DBConfig{
		Driver:   "sqlite",
		Path:     filepath.Join(t.TempDir(), "test.db"),
		LogLevel: logger.Silent,
	}

	if err := Connect(cfg); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer Close()

	if GetDB() == nil {
		t.Fatal("Expected DB to be set")
	}
	if err := models.AutoMigrate(GetDB()); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}
}

func TestConnectUnsupportedDriver(t *testing.T) {
	if err := Connect(config.DBConfig{Driver: "mysql"}); err == nil {
		t.Error("Expected error for unsupported driver")
	}
}

func TestEnsureCategoriesIsIdempotent(t *testing.T) {
	cfg := config.DBConfig{Driver: "sqlite", Path: ":memory:", LogLevel: logger.Silent}
	if err := Connect(cfg); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer Close()
	db := GetDB()
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}

	created, err := EnsureCategories(db)
	if err != nil {
		t.Fatalf("EnsureCategories failed: %v", err)
	}
	if created != len(DefaultCategories) {
		t.Errorf("Expected %d categories created, got %d", len(DefaultCategories), created)
	}

	created, err = EnsureCategories(db)
	if err != nil {
		t.Fatalf("EnsureCategories failed: %v", err)
	}
	if created != 0 {
		t.Errorf("Expected no categories on second run, got %d", created)
	}

	var count int64
	db.Model(&models.Category{}).Count(&count)
	if count != int64(len(DefaultCategories)) {
		t.Errorf("Expected %d categories, got %d", len(DefaultCategories), count)
	}
}
