package cli

import (
	"fmt"
	"io"
	"os"

	"classroom-quiz-service/internal/app"
	"classroom-quiz-service/internal/config"
	"classroom-quiz-service/internal/domain"
	"classroom-quiz-service/internal/logging"
	"github.com/spf13/cobra"
)

// NewExportLeaderboardCmd writes the overall leaderboard as CSV.
func NewExportLeaderboardCmd(configPath *string) *cobra.Command {
	var (
		grade   string
		section string
		output  string
	)
	cmd := &cobra.Command{
		Use:   "export-leaderboard",
		Short: "Export the overall leaderboard as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logging.New(cfg.Log.Level, cfg.Log.Format)
			w, err := wire(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer w.close()

			board, err := w.services.Leaderboard.Get(cmd.Context(), domain.StudentFilter{Grade: grade, Section: section})
			if err != nil {
				return err
			}
			if len(board.PartialSources) > 0 {
				log.WithField("sources", board.PartialSources).Warn("leaderboard exported with missing sources")
			}

			var out io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				out = f
			}
			if err := app.WriteLeaderboardCSV(out, board.Entries); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
			log.WithField("rows", len(board.Entries)).Info("leaderboard exported")
			return nil
		},
	}
	cmd.Flags().StringVar(&grade, "grade", "", "only students of this grade")
	cmd.Flags().StringVar(&section, "section", "", "only students of this section")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	return cmd
}
