package models

import "github.com/google/uuid"

// ensureID assigns a random identifier when the caller did not supply one.
// Postgres also defaults ids, but SQLite does not.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
