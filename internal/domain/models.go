package domain

import (
	"strings"
	"time"
)

// Role is the coarse account type resolved by the profile directory.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
	RoleMentor  Role = "mentor"
)

// Profile is a directory record for any user of the school.
type Profile struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
	Grade    string `json:"grade,omitempty"`
	Section  string `json:"section,omitempty"`
	// LinkedStudentIDs lists the children of a parent or the mentees of a mentor.
	LinkedStudentIDs []string `json:"linkedStudentIds,omitempty"`
}

// StudentFilter narrows the student population; empty fields match everything.
type StudentFilter struct {
	Grade   string `json:"grade,omitempty"`
	Section string `json:"section,omitempty"`
}

// Matches reports whether p is a student inside the filter.
func (f StudentFilter) Matches(p Profile) bool {
	if p.Role != RoleStudent {
		return false
	}
	if f.Grade != "" && !strings.EqualFold(f.Grade, p.Grade) {
		return false
	}
	if f.Section != "" && !strings.EqualFold(f.Section, p.Section) {
		return false
	}
	return true
}

// Option is one of the four multiple-choice letters.
type Option string

const (
	OptionA Option = "A"
	OptionB Option = "B"
	OptionC Option = "C"
	OptionD Option = "D"
)

// Options lists the letters in display order.
var Options = [4]Option{OptionA, OptionB, OptionC, OptionD}

// Valid reports whether o is one of A-D.
func (o Option) Valid() bool {
	switch o {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

// Question models a four-option MCQ with exactly one correct letter.
type Question struct {
	ID            string    `json:"id"`
	QuizID        string    `json:"quizId"`
	Text          string    `json:"text"`
	Options       [4]string `json:"options"`
	CorrectAnswer Option    `json:"correctAnswer"`
	Marks         int       `json:"marks"`
	Order         int       `json:"order"`
}

// View strips the answer key and the mark value.
func (q Question) View() QuestionView {
	return QuestionView{ID: q.ID, Text: q.Text, Options: q.Options, Order: q.Order}
}

// QuestionView is what a student sees while an attempt is in progress.
type QuestionView struct {
	ID      string    `json:"id"`
	Text    string    `json:"text"`
	Options [4]string `json:"options"`
	Order   int       `json:"order"`
}

// Quiz is a teacher-owned set of ordered questions.
type Quiz struct {
	ID              string     `json:"id"`
	TeacherID       string     `json:"teacherId"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Subject         string     `json:"subject"`
	Grade           string     `json:"grade"`
	Section         string     `json:"section"`
	TotalMarks      int        `json:"totalMarks"`
	DurationMinutes int        `json:"durationMinutes"`
	IsActive        bool       `json:"isActive"`
	CreatedAt       time.Time  `json:"createdAt"`
	Questions       []Question `json:"questions"`
}

// SumMarks adds up the marks of every question.
func (q Quiz) SumMarks() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Marks
	}
	return total
}

// Attempt is one completed submission of a quiz by a student. Never mutated after insert.
type Attempt struct {
	ID               string            `json:"id"`
	StudentID        string            `json:"studentId"`
	QuizID           string            `json:"quizId"`
	Score            int               `json:"score"`
	TotalMarks       int               `json:"totalMarks"`
	Percentage       float64           `json:"percentage"`
	TimeTakenSeconds int               `json:"timeTakenSeconds"`
	Answers          map[string]Option `json:"answers"`
	IsCompleted      bool              `json:"isCompleted"`
	CompletedAt      time.Time         `json:"completedAt"`
}

// RankingEntry is a derived per-quiz position; never stored.
type RankingEntry struct {
	QuizID           string    `json:"quizId"`
	StudentID        string    `json:"studentId"`
	StudentName      string    `json:"studentName"`
	Rank             int       `json:"rank"`
	Percentage       float64   `json:"percentage"`
	Score            int       `json:"score"`
	TimeTakenSeconds int       `json:"timeTakenSeconds"`
	CompletedAt      time.Time `json:"completedAt"`
	Percentile       float64   `json:"percentile"`
}

// Rankings is the read model returned for one quiz.
type Rankings struct {
	QuizID string         `json:"quizId"`
	Total  int            `json:"total"`
	Top    []RankingEntry `json:"top"`
	Mine   *RankingEntry  `json:"mine"`
}

// LeaderboardEntry aggregates a student's points across every activity source.
type LeaderboardEntry struct {
	StudentID           string  `json:"studentId"`
	StudentName         string  `json:"studentName"`
	Grade               string  `json:"grade"`
	Section             string  `json:"section"`
	TotalPoints         float64 `json:"totalPoints"`
	QuizPoints          float64 `json:"quizPoints"`
	AssignmentPoints    float64 `json:"assignmentPoints"`
	AttendancePoints    float64 `json:"attendancePoints"`
	ParticipationPoints float64 `json:"participationPoints"`
	Rank                int     `json:"rank"`
	Percentile          int     `json:"percentile"`
}

// Leaderboard is the ordered overall ranking.
type Leaderboard struct {
	Filter  StudentFilter      `json:"filter"`
	Entries []LeaderboardEntry `json:"entries"`
	// PartialSources names the point sources that failed and contributed zero.
	PartialSources []string  `json:"partialSources,omitempty"`
	GeneratedAt    time.Time `json:"generatedAt"`
}

// Ping is a time-boxed presence challenge in a live class.
type Ping struct {
	ID          string     `json:"id"`
	LiveClassID string     `json:"liveClassId"`
	TeacherID   string     `json:"teacherId"`
	SentAt      time.Time  `json:"sentAt"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	FinalizedAt *time.Time `json:"finalizedAt,omitempty"`
}

// Expired reports whether the response window is closed at now.
func (p Ping) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// PingResponse records one student's outcome for one ping.
type PingResponse struct {
	PingID              string     `json:"pingId"`
	StudentID           string     `json:"studentId"`
	RespondedAt         *time.Time `json:"respondedAt"`
	ResponseTimeSeconds int        `json:"responseTimeSeconds"`
	IsPresent           bool       `json:"isPresent"`
}

// PingState is a student's position in the ping state machine.
type PingState string

const (
	PingStateNone         PingState = "no_ping"
	PingStateActive       PingState = "active"
	PingStateAcknowledged PingState = "acknowledged"
	PingStateExpired      PingState = "expired"
)

// PingStatus summarizes a ping for the teacher.
type PingStatus struct {
	Ping      Ping           `json:"ping"`
	Responses []PingResponse `json:"responses"`
	Present   int            `json:"present"`
	Absent    int            `json:"absent"`
	Pending   int            `json:"pending"`
}
