package app

import (
	"encoding/csv"
	"io"
	"strconv"

	"classroom-quiz-service/internal/domain"
)

var leaderboardCSVHeader = []string{
	"rank", "student_name", "grade", "section", "total_points", "quiz_points",
	"assignment_points", "attendance_points", "participation_points", "percentile",
}

// WriteLeaderboardCSV formats already-ranked entries; it does no ranking itself.
func WriteLeaderboardCSV(w io.Writer, entries []domain.LeaderboardEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(leaderboardCSVHeader); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{
			strconv.Itoa(e.Rank),
			e.StudentName,
			e.Grade,
			e.Section,
			formatPoints(e.TotalPoints),
			formatPoints(e.QuizPoints),
			formatPoints(e.AssignmentPoints),
			formatPoints(e.AttendancePoints),
			formatPoints(e.ParticipationPoints),
			strconv.Itoa(e.Percentile),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatPoints(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
