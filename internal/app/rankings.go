package app

import (
	"context"
	"sort"

	"classroom-quiz-service/internal/domain"
)

// Rankings computes per-quiz positions from stored attempts on every read.
type Rankings struct {
	attempts  AttemptRepository
	directory *Directory
	topK      int
}

func NewRankings(attempts AttemptRepository, directory *Directory, topK int) *Rankings {
	if topK <= 0 {
		topK = 10
	}
	return &Rankings{attempts: attempts, directory: directory, topK: topK}
}

// Get returns the top entries of a quiz plus the caller's own entry.
// Each student is ranked once, by their best attempt.
func (r *Rankings) Get(ctx context.Context, quizID, callerID string) (domain.Rankings, error) {
	attempts, err := r.attempts.AttemptsForQuiz(ctx, quizID)
	if err != nil {
		return domain.Rankings{}, err
	}

	best := bestAttempts(attempts)
	entries := rankAttempts(quizID, best)

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.StudentID)
	}
	names, err := r.directory.Names(ctx, ids)
	if err != nil {
		return domain.Rankings{}, err
	}

	out := domain.Rankings{QuizID: quizID, Total: len(entries), Top: []domain.RankingEntry{}}
	for i := range entries {
		entries[i].StudentName = names[entries[i].StudentID]
		if i < r.topK {
			out.Top = append(out.Top, entries[i])
		}
		if callerID != "" && entries[i].StudentID == callerID {
			mine := entries[i]
			out.Mine = &mine
		}
	}
	return out, nil
}

// bestAttempts keeps one completed attempt per student: highest percentage,
// then the earliest completion.
func bestAttempts(attempts []domain.Attempt) []domain.Attempt {
	byStudent := make(map[string]domain.Attempt, len(attempts))
	for _, at := range attempts {
		if !at.IsCompleted {
			continue
		}
		cur, ok := byStudent[at.StudentID]
		if !ok || rankedBefore(at, cur) {
			byStudent[at.StudentID] = at
		}
	}
	out := make([]domain.Attempt, 0, len(byStudent))
	for _, at := range byStudent {
		out = append(out, at)
	}
	return out
}

// rankedBefore orders by percentage desc, completed_at asc, student id, attempt id.
func rankedBefore(a, b domain.Attempt) bool {
	if a.Percentage != b.Percentage {
		return a.Percentage > b.Percentage
	}
	if !a.CompletedAt.Equal(b.CompletedAt) {
		return a.CompletedAt.Before(b.CompletedAt)
	}
	if a.StudentID != b.StudentID {
		return a.StudentID < b.StudentID
	}
	return a.ID < b.ID
}

// rankAttempts assigns sequential ranks; percentile = (N-rank+1)/N*100.
func rankAttempts(quizID string, attempts []domain.Attempt) []domain.RankingEntry {
	sort.Slice(attempts, func(i, j int) bool { return rankedBefore(attempts[i], attempts[j]) })

	n := len(attempts)
	entries := make([]domain.RankingEntry, 0, n)
	for i, at := range attempts {
		rank := i + 1
		entries = append(entries, domain.RankingEntry{
			QuizID:           quizID,
			StudentID:        at.StudentID,
			Rank:             rank,
			Percentage:       at.Percentage,
			Score:            at.Score,
			TimeTakenSeconds: at.TimeTakenSeconds,
			CompletedAt:      at.CompletedAt,
			Percentile:       float64(n-rank+1) / float64(n) * 100,
		})
	}
	return entries
}
