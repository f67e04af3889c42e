package util

import "errors"

// Domain rule violations surfaced to clients with a stable category.
// Infrastructure failures are anything not in this list and map to 500.
var (
	// not found
	ErrUserNotFound       = errors.New("user not found")
	ErrClassNotFound      = errors.New("class not found")
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrAttemptNotFound    = errors.New("attempt not found")
	ErrSubmissionNotFound = errors.New("essay submission not found")
	ErrMaterialNotFound   = errors.New("material not found")

	// forbidden
	ErrNotEnrolled      = errors.New("not a member of this class")
	ErrNotClassOwner    = errors.New("not the owner of this class")
	ErrNotAttemptOwner  = errors.New("attempt belongs to another student")
	ErrPermissionDenied = errors.New("permission denied")

	// conflict
	ErrEmailRegistered      = errors.New("email already registered")
	ErrAlreadyEnrolled      = errors.New("already a member of this class")
	ErrAttemptLimitReached  = errors.New("maximum attempts reached")
	ErrAttemptAlreadyEnded  = errors.New("attempt already submitted")
	ErrQuizNotAvailable     = errors.New("quiz is not currently available")
	ErrQuizNotVisible       = errors.New("quiz is not visible to this student")
	ErrAttemptStillOpen     = errors.New("an attempt is already in progress")
	ErrQuizHasAttempts      = errors.New("quiz already has attempts, questions are frozen")

	// validation
	ErrScoreOutOfRange     = errors.New("score outside the question's allowed range")
	ErrQuestionTypeInvalid = errors.New("invalid question type")
	ErrOptionsRequired     = errors.New("options required for objective questions")
	ErrAnswerRequired      = errors.New("canonical answer required for objective questions")
	ErrMaxAttemptsInvalid  = errors.New("max attempts must be at least 1")
	ErrQuizStatusInvalid   = errors.New("invalid quiz status")
)

var notFoundErrs = []error{
	ErrUserNotFound, ErrClassNotFound, ErrQuizNotFound, ErrQuestionNotFound,
	ErrAttemptNotFound, ErrSubmissionNotFound, ErrMaterialNotFound,
}

var forbiddenErrs = []error{
	ErrNotEnrolled, ErrNotClassOwner, ErrNotAttemptOwner, ErrPermissionDenied,
}

var conflictErrs = []error{
	ErrEmailRegistered, ErrAlreadyEnrolled, ErrAttemptLimitReached,
	ErrAttemptAlreadyEnded, ErrQuizNotAvailable, ErrQuizNotVisible,
	ErrAttemptStillOpen, ErrQuizHasAttempts,
}

var validationErrs = []error{
	ErrScoreOutOfRange, ErrQuestionTypeInvalid, ErrOptionsRequired,
	ErrAnswerRequired, ErrMaxAttemptsInvalid, ErrQuizStatusInvalid,
}

func matchAny(err error, list []error) bool {
	for _, e := range list {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

func IsNotFound(err error) bool   { return matchAny(err, notFoundErrs) }
func IsForbidden(err error) bool  { return matchAny(err, forbiddenErrs) }
func IsConflict(err error) bool   { return matchAny(err, conflictErrs) }
func IsValidation(err error) bool { return matchAny(err, validationErrs) }
