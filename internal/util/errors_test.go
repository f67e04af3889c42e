package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCategories(t *testing.T) {
	assert.True(t, IsNotFound(ErrQuizNotFound))
	assert.True(t, IsForbidden(ErrNotAttemptOwner))
	assert.True(t, IsConflict(ErrAttemptLimitReached))
	assert.True(t, IsConflict(ErrQuizHasAttempts))
	assert.True(t, IsValidation(ErrScoreOutOfRange))

	assert.False(t, IsNotFound(ErrAttemptLimitReached))
	assert.False(t, IsConflict(errors.New("boom")))
}

func TestErrorCategoriesSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("starting attempt: %w", ErrAttemptLimitReached)
	assert.True(t, IsConflict(wrapped))
	assert.False(t, IsNotFound(wrapped))
}

func TestMustParseHelpers(t *testing.T) {
	assert.Equal(t, uint(42), MustParseUint("42"))
	assert.Equal(t, uint(0), MustParseUint("nope"))
	assert.Equal(t, 7, MustParseInt("7", 1))
	assert.Equal(t, 1, MustParseInt("x", 1))
}
