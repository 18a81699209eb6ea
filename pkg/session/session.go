// Package session manages the opaque id that correlates chat turns into one
// logical conversation on the server side.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ID is an opaque session identifier. Treat it as a token: the client never
// inspects or validates its contents.
type ID string

// New mints a session id unique within a process lifetime with overwhelming
// probability. A collision only crosses wires within one user's own history,
// so this is not a security boundary; a time prefix plus random suffix is
// plenty.
func New() ID {
	return ID(fmt.Sprintf("sess-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8]))
}

// Adopt picks the live session id after a response: the server-provided id
// when present, else the current one. The server may extend or replace the
// session at will, so a non-empty server value always wins.
func Adopt(current, serverProvided ID) ID {
	if serverProvided != "" {
		return serverProvided
	}
	return current
}
