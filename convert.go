package exsave

import (
	"strconv"
	"strings"
)

// ParseBool reads a stored property as a bool: literal true/false, then a
// float above 0.5, then an int above 0. Anything else yields fallback.
func ParseBool(s string, fallback bool) bool {
	if s == "" {
		return fallback
	}
	trimmed := strings.TrimSpace(s)
	switch {
	case strings.EqualFold(trimmed, "true"):
		return true
	case strings.EqualFold(trimmed, "false"):
		return false
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f > 0.5
	}
	if i, err := strconv.Atoi(trimmed); err == nil {
		return i > 0
	}
	return fallback
}

// ParseInt reads a stored property as an int, or returns fallback.
func ParseInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return i
}

// ParseFloat reads a stored property as a float64, or returns fallback.
func ParseFloat(s string, fallback float64) float64 {
	if s == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fallback
	}
	return f
}

func formatBool(v bool) string {
	return strconv.FormatBool(v)
}

func formatInt(v int) string {
	return strconv.Itoa(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
