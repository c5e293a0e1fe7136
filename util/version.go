// Package util provides version range parsing and evaluation, text wrapping
// and small helpers shared by the notices engine.
//
//revive:disable-next-line:var-naming
package util

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Range operators understood by ParseVersionRange.
const (
	OpLess         = "<"
	OpLessEqual    = "<="
	OpGreater      = ">"
	OpGreaterEqual = ">="
	OpEqual        = "="
)

// two character operators must be tried before their one character prefixes
var rangeOperators = []string{OpLessEqual, OpGreaterEqual, OpLess, OpGreater, OpEqual}

// ErrMissingOperator is wrapped by MalformedRangeError when a token does not start with an operator
var ErrMissingOperator = errors.New("missing comparison operator")

// ErrMissingVersion is wrapped by MalformedRangeError when an operator is not followed by a version
var ErrMissingVersion = errors.New("missing version after operator")

// MalformedRangeError is returned when a version range token cannot be parsed.
type MalformedRangeError struct {
	Range string
	Token string
	Err   error
}

func (e *MalformedRangeError) Error() string {
	return fmt.Sprintf("malformed version range %q: token %q: %v", e.Range, e.Token, e.Err)
}

func (e *MalformedRangeError) Unwrap() error {
	return e.Err
}

// VersionClause is a single comparison, e.g. ">=1.126.0"
type VersionClause struct {
	Operator string
	Version  *semver.Version
}

// VersionRange is a conjunction of clauses. An empty range matches every version.
type VersionRange struct {
	Clauses []VersionClause
}

// ParseVersionRange parses a whitespace separated list of OPERATOR VERSION tokens.
// Every clause must hold for a version to satisfy the range; there is no OR.
func ParseVersionRange(text string) (VersionRange, error) {
	tokens := strings.Fields(text)
	vr := VersionRange{Clauses: make([]VersionClause, 0, len(tokens))}

	for _, token := range tokens {
		clause, err := parseClause(token)
		if err != nil {
			return VersionRange{}, &MalformedRangeError{Range: text, Token: token, Err: err}
		}
		vr.Clauses = append(vr.Clauses, clause)
	}

	return vr, nil
}

func parseClause(token string) (VersionClause, error) {
	op := ""
	for _, candidate := range rangeOperators {
		if strings.HasPrefix(token, candidate) {
			op = candidate
			break
		}
	}
	if op == "" {
		return VersionClause{}, ErrMissingOperator
	}

	raw := strings.TrimPrefix(token, op)
	if raw == "" {
		return VersionClause{}, ErrMissingVersion
	}

	v, err := semver.NewVersion(raw)
	if err != nil {
		return VersionClause{}, err
	}

	return VersionClause{Operator: op, Version: v}, nil
}

// Holds checks a single clause against a parsed version
func (c VersionClause) Holds(v *semver.Version) bool {
	cmp := v.Compare(c.Version)
	switch c.Operator {
	case OpLess:
		return cmp < 0
	case OpLessEqual:
		return cmp <= 0
	case OpGreater:
		return cmp > 0
	case OpGreaterEqual:
		return cmp >= 0
	case OpEqual:
		return cmp == 0
	}
	return false
}

// Satisfies reports whether version satisfies every clause of the range.
// A version that cannot be parsed satisfies no non-empty range.
func (r VersionRange) Satisfies(version string) bool {
	if len(r.Clauses) == 0 {
		return true
	}

	v, err := semver.NewVersion(CleanVersion(version))
	if err != nil {
		return false
	}

	for _, clause := range r.Clauses {
		if !clause.Holds(v) {
			return false
		}
	}
	return true
}

// SatisfiesRange parses rangeText and evaluates it against version.
func SatisfiesRange(rangeText, version string) (bool, error) {
	vr, err := ParseVersionRange(rangeText)
	if err != nil {
		return false, err
	}
	return vr.Satisfies(version), nil
}

// CleanVersion strips decorations that tools print around a version number
// Examples:
//   - "2.50.0 (build 4c11af6)" -> "2.50.0"
//   - " v1.126.0 " -> "v1.126.0"
func CleanVersion(version string) string {
	fields := strings.Fields(version)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
