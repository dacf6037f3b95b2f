package handlers

import (
	"net/http"
	"testing"

	"github.com/cyverse-de/quiet-hours/db"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("missing secret: query", NewAuthorizationError("missing secret: %s", "query").Error())
	assert.Equal("listing failed: 3 retries", NewListError("listing failed: %d retries", 3).Error())
	assert.Equal("invalid start time", NewBadRequestError("invalid start time").Error())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"authorization", NewAuthorizationError("no"), http.StatusUnauthorized},
		{"wrapped authorization", errors.Wrap(NewAuthorizationError("no"), "wrapped"), http.StatusUnauthorized},
		{"list", NewListError("no"), http.StatusInternalServerError},
		{"bad request", errors.Wrap(NewBadRequestError("bad"), "wrapped"), http.StatusBadRequest},
		{"block not found", db.ErrBlockNotFound, http.StatusNotFound},
		{"wrapped block not found", errors.Wrap(db.ErrBlockNotFound, "wrapped"), http.StatusNotFound},
		{"anything else", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, statusFor(tt.err))
		})
	}
}
