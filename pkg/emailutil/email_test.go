package emailutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("john.doe@gmail.com"))
	assert.True(t, IsValidEmail("a@b.co"))
	assert.False(t, IsValidEmail("john.doe"))
	assert.False(t, IsValidEmail("john doe@gmail.com"))
	assert.False(t, IsValidEmail("john@gmail"))
	assert.False(t, IsValidEmail(""))
}

func TestIsPersonalEmail(t *testing.T) {
	assert.True(t, IsPersonalEmail("john@gmail.com"))
	assert.True(t, IsPersonalEmail("john@GMAIL.COM"))
	assert.True(t, IsPersonalEmail("jane@proton.me"))
	assert.False(t, IsPersonalEmail("jane@acme.io"))
	assert.False(t, IsPersonalEmail("not-an-email"))
}

func TestNameFromEmail(t *testing.T) {
	assert.Equal(t, "John Doe", NameFromEmail("john.doe@acme.com"))
	assert.Equal(t, "John Doe", NameFromEmail("john_doe42@acme.com"))
	assert.Equal(t, "Jane", NameFromEmail("jane@acme.com"))
	assert.Equal(t, "", NameFromEmail("12345@acme.com"))
}
