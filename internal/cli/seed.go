package cli

import (
	"context"
	"time"

	"classroom-quiz-service/internal/domain"
	"classroom-quiz-service/internal/infra/memory"
)

// seedDemo fills an in-memory store with a small class so the API is usable
// without a database.
func seedDemo(store *memory.Store, now time.Time) {
	profiles := []domain.Profile{
		{ID: "teacher-1", FullName: "Meera Iyer", Role: domain.RoleTeacher},
		{ID: "admin-1", FullName: "School Admin", Role: domain.RoleAdmin},
		{ID: "student-1", FullName: "Aarav Shah", Role: domain.RoleStudent, Grade: "7", Section: "A"},
		{ID: "student-2", FullName: "Diya Nair", Role: domain.RoleStudent, Grade: "7", Section: "A"},
		{ID: "student-3", FullName: "Kabir Khan", Role: domain.RoleStudent, Grade: "7", Section: "B"},
		{ID: "parent-1", FullName: "Rohan Shah", Role: domain.RoleParent, LinkedStudentIDs: []string{"student-1"}},
		{ID: "mentor-1", FullName: "Anita Rao", Role: domain.RoleMentor, LinkedStudentIDs: []string{"student-2", "student-3"}},
	}
	for _, p := range profiles {
		store.PutProfile(p)
	}

	quiz := domain.Quiz{
		ID:              "quiz-1",
		TeacherID:       "teacher-1",
		Title:           "Fractions warm-up",
		Subject:         "Mathematics",
		Grade:           "7",
		DurationMinutes: 10,
		IsActive:        true,
		CreatedAt:       now,
		Questions: []domain.Question{
			{ID: "q1", QuizID: "quiz-1", Text: "What is 1/2 + 1/4?", Options: [4]string{"3/4", "2/6", "1/8", "1"}, CorrectAnswer: domain.OptionA, Marks: 2, Order: 1},
			{ID: "q2", QuizID: "quiz-1", Text: "Which is larger?", Options: [4]string{"2/5", "3/10", "1/2", "1/3"}, CorrectAnswer: domain.OptionC, Marks: 2, Order: 2},
			{ID: "q3", QuizID: "quiz-1", Text: "1/3 of 12 is", Options: [4]string{"3", "4", "6", "9"}, CorrectAnswer: domain.OptionB, Marks: 1, Order: 3},
		},
	}
	quiz.TotalMarks = quiz.SumMarks()
	_ = store.SaveQuiz(context.Background(), quiz)

	store.AddAssignmentSubmission(domain.AssignmentSubmission{ID: "sub-1", AssignmentID: "hw-1", StudentID: "student-1", MarksObtained: 8, Graded: true})
	store.AddAssignmentSubmission(domain.AssignmentSubmission{ID: "sub-2", AssignmentID: "hw-1", StudentID: "student-2", MarksObtained: 9, Graded: true})
	store.AddAssignmentSubmission(domain.AssignmentSubmission{ID: "sub-3", AssignmentID: "hw-1", StudentID: "student-3", MarksObtained: 7})
	for _, id := range []string{"student-1", "student-2", "student-3"} {
		store.AddLessonAttendance(domain.LessonAttendance{LessonID: "lesson-1", StudentID: id, IsCompleted: true})
		store.AddLiveAttendance(domain.LiveClassAttendance{LiveClassID: "live-1", StudentID: id, JoinedAt: now, AttendancePercentage: 80})
	}
}
