package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
)

//go:embed 0003_create_activity.sql
var createActivitySQL string

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, createActivitySQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS live_class_attendance; DROP TABLE IF EXISTS lesson_attendance; DROP TABLE IF EXISTS assignment_submissions`)
			return err
		},
	)
}
