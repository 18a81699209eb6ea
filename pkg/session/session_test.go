package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsUniqueAcrossCalls(t *testing.T) {
	seen := make(map[ID]bool)
	for i := 0; i < 1000; i++ {
		id := New()
		assert.False(t, seen[id], "duplicate session id %s", id)
		seen[id] = true
	}
}

func TestNewHasExpectedShape(t *testing.T) {
	id := string(New())
	assert.True(t, strings.HasPrefix(id, "sess-"))
	assert.Equal(t, 2, strings.Count(id, "-"))
}

func TestAdoptPrefersServerProvided(t *testing.T) {
	assert.Equal(t, ID("server-1"), Adopt("client-1", "server-1"))
}

func TestAdoptKeepsCurrentWhenServerSilent(t *testing.T) {
	assert.Equal(t, ID("client-1"), Adopt("client-1", ""))
}

func TestAdoptTakesServerValueEvenWhenCurrentEmpty(t *testing.T) {
	assert.Equal(t, ID("server-1"), Adopt("", "server-1"))
}
