// Package util provides version range parsing and evaluation, text wrapping
// and small helpers shared by the notices engine.
//
//revive:disable-next-line:var-naming
package util

import (
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

// GetEnvDefault is a convenience function for handling env vars
func GetEnvDefault(key, defVal string) string {
	val, ex := os.LookupEnv(key) // get the env var
	if !ex {                     // not found return default
		return defVal
	}
	return val // return value for env var
}

// IsEmpty checks if a string is empty or contains only whitespace
func IsEmpty(s string) bool {
	return len(strings.TrimSpace(s)) == 0
}

// GetStringOrDefault returns value or default if empty
func GetStringOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

// ContainsInt checks if an int slice contains an item
func ContainsInt(slice []int, item int) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// MergeInts appends the items of extra that are not already present in base
func MergeInts(base []int, extra ...int) []int {
	out := append([]int{}, base...)
	for _, n := range extra {
		if !ContainsInt(out, n) {
			out = append(out, n)
		}
	}
	return out
}

// ParseIntList parses a comma separated list of integers such as "16603,17061".
// Blank entries are ignored.
func ParseIntList(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// WrapText greedily packs whole words into lines of at most width characters.
// Width counts runes, not bytes. A word longer than width is placed on a line of its own.
func WrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	currentLen := utf8.RuneCountInString(current)
	for _, word := range words[1:] {
		wordLen := utf8.RuneCountInString(word)
		if currentLen+1+wordLen <= width {
			current += " " + word
			currentLen += 1 + wordLen
			continue
		}
		lines = append(lines, current)
		current = word
		currentLen = wordLen
	}
	return append(lines, current)
}
