package domain

import "time"

// AssignmentSubmission is a student's hand-in; only graded rows earn points.
type AssignmentSubmission struct {
	ID            string  `json:"id"`
	AssignmentID  string  `json:"assignmentId"`
	StudentID     string  `json:"studentId"`
	MarksObtained float64 `json:"marksObtained"`
	Graded        bool    `json:"graded"`
}

// LessonAttendance tracks a recorded video lesson watched by a student.
type LessonAttendance struct {
	LessonID    string `json:"lessonId"`
	StudentID   string `json:"studentId"`
	IsCompleted bool   `json:"isCompleted"`
}

// LiveClassAttendance is written when a student joins a live class.
type LiveClassAttendance struct {
	LiveClassID          string    `json:"liveClassId"`
	StudentID            string    `json:"studentId"`
	JoinedAt             time.Time `json:"joinedAt"`
	AttendancePercentage float64   `json:"attendancePercentage"`
}
