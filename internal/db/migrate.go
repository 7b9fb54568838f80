package db

import (
	"fmt"

	"gorm.io/gorm"

	"coursehub/internal/model"
)

// Migrate creates or updates every table: one account table per role plus
// the content tables.
func Migrate(db *gorm.DB) error {
	for _, role := range model.Roles() {
		if err := db.Table(role.Table()).AutoMigrate(&model.Account{}); err != nil {
			return fmt.Errorf("migrate %s: %w", role.Table(), err)
		}
	}
	if err := db.AutoMigrate(&model.Course{}, &model.Assignment{}, &model.Quiz{}); err != nil {
		return fmt.Errorf("migrate content tables: %w", err)
	}
	return nil
}

// DropAll drops every table Migrate creates.
func DropAll(db *gorm.DB) error {
	tables := []string{"quizzes", "assignments", "courses"}
	for _, role := range model.Roles() {
		tables = append(tables, role.Table())
	}
	for _, table := range tables {
		if err := db.Migrator().DropTable(table); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}
