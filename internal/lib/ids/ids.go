package ids

import "github.com/google/uuid"

// New returns a time ordered UUIDv7 string, falling back to a random UUID if
// the clock source fails.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
