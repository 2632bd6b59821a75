package helpers

import (
	"context"
	"strings"
	"time"
)

func IsContextDone(ctx context.Context) bool {
	if ctx == nil {
		return true
	}
	select {
	case <-ctx.Done():
		return true
	default:
	}
	return false
}

func StrPtr(s string) *string {
	return &s
}

func PtrToStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// EmptyToNil turns a blank string into a nil pointer, used for optional foreign keys.
func EmptyToNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func FormatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02.01.2006 15:04")
}

// Unique keeps the first occurrence of every value and drops blanks.
func Unique(values []string) []string {
	seen := make(map[string]bool, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		result = append(result, v)
	}
	return result
}
