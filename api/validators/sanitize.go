package validators

import "strings"

// NotesMaxLength bounds free-text notes attached to stage updates.
const NotesMaxLength = 500

// SanitizeNotes trims free text and cuts it to maxLen runes. Blank input
// becomes nil so it is never stored as an empty note.
func SanitizeNotes(input *string, maxLen int) *string {
	if input == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*input)
	if trimmed == "" {
		return nil
	}
	if runes := []rune(trimmed); maxLen > 0 && len(runes) > maxLen {
		trimmed = strings.TrimSpace(string(runes[:maxLen]))
	}
	return &trimmed
}
