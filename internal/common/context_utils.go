package common

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxSearchRunes bounds free-text search input. Counted in runes so a
// multi-byte character is never split.
const maxSearchRunes = 100

type contextKey string

const (
	SubjectKey contextKey = "subject"
	RoleKey    contextKey = "role"
)

// WithSubject stores the authenticated caller's subject and role.
func WithSubject(ctx context.Context, subject, role string) context.Context {
	ctx = context.WithValue(ctx, SubjectKey, subject)
	return context.WithValue(ctx, RoleKey, role)
}

// GetSubjectFromContext extracts the authenticated subject from request context
func GetSubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(SubjectKey).(string)
	return subject, ok && subject != ""
}

// GetRoleFromContext extracts the caller role from request context
func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}

// SanitizeSearchQuery strips LIKE wildcards and bounds the length of free-text search input.
func SanitizeSearchQuery(query string) string {
	if strings.TrimSpace(query) == "" {
		return ""
	}

	query = strings.ToValidUTF8(query, "")
	query = strings.ReplaceAll(query, "%", "")
	query = strings.ReplaceAll(query, "_", "")
	query = strings.ReplaceAll(query, "\\", "")

	if utf8.RuneCountInString(query) > maxSearchRunes {
		query = string([]rune(query)[:maxSearchRunes])
	}

	return strings.TrimSpace(query)
}

// Slugify lower-cases s and collapses every run of characters that are not
// letters or digits into a single hyphen. Non-ASCII letters are kept.
func Slugify(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
