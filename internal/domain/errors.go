package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a question ID does not belong to the quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrProfileNotFound is returned for unknown user ids.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrPingNotFound is returned for unknown attendance pings.
	ErrPingNotFound = errors.New("attendance ping not found")

	// ErrQuizInactive blocks attempts on a quiz that has been switched off.
	ErrQuizInactive = errors.New("quiz is not active")
	// ErrInvalidOption indicates an answer letter outside A-D.
	ErrInvalidOption = errors.New("option must be one of A, B, C, D")
	// ErrInvalidQuiz wraps authoring validation failures.
	ErrInvalidQuiz = errors.New("invalid quiz")

	// ErrPingExpired rejects acknowledgements that arrive after the window closed.
	ErrPingExpired = errors.New("attendance ping expired")
	// ErrAlreadyResponded enforces one response per ping and student.
	ErrAlreadyResponded = errors.New("already responded to ping")
	// ErrNotJoined rejects acknowledgements from students who never joined the class.
	ErrNotJoined = errors.New("student has not joined the live class")

	// ErrForbidden is returned when the caller's role lacks a capability.
	ErrForbidden = errors.New("forbidden")
)
