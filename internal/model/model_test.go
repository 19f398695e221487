package model

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"China", "china"},
		{"United States", "united_states"},
		{"  South Korea  ", "south_korea"},
		{"UNITED ARAB EMIRATES", "united_arab_emirates"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.in))
	}
}

func TestIndexKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "united states", IndexKey("United States"))
	assert.Equal(t, IndexKey("CHINA"), IndexKey("china"))
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	wrapped := eris.Wrap(ErrNotFound, "run lookup")
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsNotFound(eris.New("other")))

	ve := &ValidationError{Field: "score", Message: "must be 0-100, got 101"}
	assert.True(t, IsValidation(ve))
	assert.Contains(t, ve.Error(), "score")
	assert.False(t, IsValidation(ErrNotFound))
}
