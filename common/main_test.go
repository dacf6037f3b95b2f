package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmailAddress(t *testing.T) {
	assert.NoError(t, ValidateEmailAddress("a@example.com"))
	assert.Error(t, ValidateEmailAddress("not an address"))
}
