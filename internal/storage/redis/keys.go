package redis

import (
	"fmt"

	"github.com/mcoot/numberduel-go/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "numduel"

// sessionKey returns the Redis key for a Session
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// sessionKeyPattern matches all session keys, for SCAN-based listing
func sessionKeyPattern() string {
	return fmt.Sprintf("%s:session:*", keyPrefix)
}
