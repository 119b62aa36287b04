package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheck(t *testing.T) {
	hashed, err := Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hashed)
	assert.True(t, Check("correct horse", hashed))
	assert.False(t, Check("wrong horse", hashed))
}

func TestHashRejectsShortAndLongPasswords(t *testing.T) {
	_, err := Hash("short")
	assert.Error(t, err)

	_, err = Hash(strings.Repeat("x", 100))
	assert.Error(t, err)
}

func TestCheckDummyNeverMatches(t *testing.T) {
	assert.False(t, CheckDummy("not-a-real-password"))
}
