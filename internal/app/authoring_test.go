package app_test

import (
	"context"
	"errors"
	"testing"

	"classroom-quiz-service/internal/app"
	"classroom-quiz-service/internal/domain"
)

func TestCreateQuizComputesTotalMarks(t *testing.T) {
	f := newFixture(t)
	quiz := f.twoQuestionQuiz(t)

	if quiz.TotalMarks != 8 {
		t.Fatalf("expected total 8, got %d", quiz.TotalMarks)
	}
	if quiz.TeacherID != "t1" {
		t.Fatalf("expected teacher t1, got %s", quiz.TeacherID)
	}
	for _, q := range quiz.Questions {
		if q.QuizID != quiz.ID || q.ID == "" {
			t.Fatalf("question not linked to quiz: %+v", q)
		}
	}

	caps := f.teacher("t1")
	stored, err := f.authoring.Quiz(context.Background(), caps, quiz.ID)
	if err != nil {
		t.Fatalf("load quiz: %v", err)
	}
	if stored.Questions[0].CorrectAnswer != domain.OptionA {
		t.Fatalf("expected answer key visible to author")
	}
}

func TestCreateQuizValidation(t *testing.T) {
	f := newFixture(t)
	caps := f.teacher("t1")
	valid := app.QuestionDraft{Text: "q", Options: [4]string{"a", "b", "c", "d"}, CorrectAnswer: domain.OptionA, Marks: 1, Order: 1}

	cases := map[string]app.QuizDraft{
		"no title":     {Questions: []app.QuestionDraft{valid}},
		"no questions": {Title: "t"},
		"bad option": {Title: "t", Questions: []app.QuestionDraft{
			{Text: "q", Options: [4]string{"a", "b", "c", "d"}, CorrectAnswer: "E", Marks: 1},
		}},
		"empty option": {Title: "t", Questions: []app.QuestionDraft{
			{Text: "q", Options: [4]string{"a", "", "c", "d"}, CorrectAnswer: domain.OptionA, Marks: 1},
		}},
		"zero marks": {Title: "t", Questions: []app.QuestionDraft{
			{Text: "q", Options: [4]string{"a", "b", "c", "d"}, CorrectAnswer: domain.OptionA, Marks: 0},
		}},
		"duplicate order": {Title: "t", Questions: []app.QuestionDraft{valid, valid}},
	}
	for name, draft := range cases {
		if _, err := f.authoring.CreateQuiz(context.Background(), caps, draft); !errors.Is(err, domain.ErrInvalidQuiz) {
			t.Fatalf("%s: expected ErrInvalidQuiz, got %v", name, err)
		}
	}
}

func TestAuthoringRequiresCapability(t *testing.T) {
	f := newFixture(t)
	student := domain.CapabilitiesFor(domain.Profile{ID: "s1", Role: domain.RoleStudent})

	if _, err := f.authoring.CreateQuiz(context.Background(), student, app.QuizDraft{Title: "x"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := f.authoring.SetActive(context.Background(), student, "q", true); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestSetActiveInvalidatesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quiz := f.twoQuestionQuiz(t)

	if _, err := f.attempts.Start(ctx, "s1", quiz.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.authoring.SetActive(ctx, f.teacher("t1"), quiz.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := f.attempts.Start(ctx, "s1", quiz.ID); !errors.Is(err, domain.ErrQuizInactive) {
		t.Fatalf("expected inactive quiz right after toggle, got %v", err)
	}
}
