package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
)

//go:embed 0002_create_quiz_results.sql
var createQuizResultsSQL string

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, createQuizResultsSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP VIEW IF EXISTS quiz_rankings; DROP TABLE IF EXISTS quiz_results; DROP TABLE IF EXISTS profile_links; DROP TABLE IF EXISTS profiles`)
			return err
		},
	)
}
