package harness

import "github.com/google/uuid"

// UUIDRunIDs generates time-ordered UUIDv7 run ids, so stored runs sort by
// creation time.
type UUIDRunIDs struct{}

// Generate returns a new UUIDv7 string.
func (UUIDRunIDs) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
