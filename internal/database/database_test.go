package database

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type uniqueRow struct {
	ID   uint   `gorm:"primaryKey"`
	Code string `gorm:"uniqueIndex"`
}

type childRow struct {
	ID       uint `gorm:"primaryKey"`
	ParentID uint
	Parent   uniqueRow `gorm:"constraint:OnDelete:CASCADE"`
}

func TestIsDuplicateKey(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, true},
		{"postgres fk", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite message", errors.New("constraint failed: UNIQUE constraint failed: favorites.user_id (2067)"), true},
		{"other", errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := IsDuplicateKey(tc.err); got != tc.want {
			t.Fatalf("%s: IsDuplicateKey = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestOpenSQLiteReportsDuplicates(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "dup.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&uniqueRow{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Create(&uniqueRow{Code: "a"}).Error; err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err = db.Create(&uniqueRow{Code: "a"}).Error
	if !IsDuplicateKey(err) {
		t.Fatalf("second insert error = %v, want duplicate key", err)
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", gorm.ErrForeignKeyViolated, true},
		{"postgres fk", &pgconn.PgError{Code: "23503"}, true},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, false},
		{"sqlite message", errors.New("constraint failed: FOREIGN KEY constraint failed (787)"), true},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: tags.name (2067)"), false},
	}
	for _, tc := range cases {
		if got := IsForeignKeyViolation(tc.err); got != tc.want {
			t.Fatalf("%s: IsForeignKeyViolation = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestOpenSQLiteReportsForeignKeyViolations(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "fk.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&uniqueRow{}, &childRow{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	err = db.Omit("Parent").Create(&childRow{ParentID: 42}).Error
	if !IsForeignKeyViolation(err) {
		t.Fatalf("orphan insert error = %v, want foreign key violation", err)
	}
}
