package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"sync-notes-be/internal/model"
	"sync-notes-be/pkg/database"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	// 3. AutoMigrate All Models
	models := []interface{}{
		&model.User{},
		&model.Notebook{},
		&model.Note{},
		&model.Task{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 4. Post-Migration: composite index backing windowed listings and the
	// ranked tombstone eviction ordering.
	postMigrationSQL := []string{
		`CREATE INDEX IF NOT EXISTS idx_notebooks_user_updated ON notebooks (user_id, updated, id);`,
		`CREATE INDEX IF NOT EXISTS idx_notes_notebook_updated ON notes (notebook_id, updated, id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_updated ON tasks (user_id, updated, id);`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("Success: Database migration completed via GORM.")
}
