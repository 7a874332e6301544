package shared

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewID builds a collision-resistant record identifier from the current
// timestamp plus a random suffix, e.g. "SO-1774000000000-3f9a1c2b".
func NewID(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), uuid.NewString()[:8])
}
