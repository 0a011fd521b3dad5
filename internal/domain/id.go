package domain

import "github.com/google/uuid"

// IsID reports whether s is a UUID in the canonical 36-character form.
// uuid.Parse also accepts urn:uuid: and braced forms that Postgres rejects.
func IsID(s string) bool {
	return len(s) == 36 && uuid.Validate(s) == nil
}
