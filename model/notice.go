// Package model defines the data structures used by pdvd-notices,
// including notices, their affected components, inventory facts and the cache envelope.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Well-known component names that do not refer to a module in the construct tree.
const (
	ComponentCLI       = "cli"
	ComponentFramework = "framework"
)

// Notice represents an advisory about a known issue, as published in the notices catalog.
type Notice struct {
	Title         string      `json:"title"`
	IssueNumber   int         `json:"issueNumber"`
	Overview      string      `json:"overview"`
	Components    []Component `json:"components"`
	SchemaVersion string      `json:"schemaVersion"`
}

// Component describes what a notice applies to: a name and a version range expression.
type Component struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// NoticesResponse is the body returned by the notices endpoint
type NoticesResponse struct {
	Notices []Notice `json:"notices"`
}

// String renders the component the way it is listed under "Affected versions"
func (c Component) String() string {
	return fmt.Sprintf("%s: %s", c.Name, c.Version)
}

// IsModuleTree reports whether the component name ends with "." and therefore
// covers a module and everything nested under it.
func (c Component) IsModuleTree() bool {
	return strings.HasSuffix(c.Name, ".")
}

// AffectedVersions joins the components of a notice into a single comma separated list.
func (n Notice) AffectedVersions() string {
	parts := make([]string, 0, len(n.Components))
	for _, c := range n.Components {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, ", ")
}

// DisplayContext carries the per-invocation inputs needed to decide which notices to show.
type DisplayContext struct {
	Outdir                   string `json:"outdir"`
	ToolVersion              string `json:"tool_version"`
	AcknowledgedIssueNumbers []int  `json:"acknowledged_issue_numbers,omitempty"`
}

// IsAcknowledged checks if the issue number was acknowledged by the operator
func (d DisplayContext) IsAcknowledged(issueNumber int) bool {
	for _, n := range d.AcknowledgedIssueNumbers {
		if n == issueNumber {
			return true
		}
	}
	return false
}

// CacheEnvelope is the persisted snapshot of the last fetched catalog.
// Expiration is stored as epoch milliseconds.
type CacheEnvelope struct {
	Notices    []Notice `json:"notices"`
	Expiration int64    `json:"expiration"`
}

// NewCacheEnvelope wraps notices with an expiration of now+ttl.
func NewCacheEnvelope(notices []Notice, now time.Time, ttl time.Duration) CacheEnvelope {
	if notices == nil {
		notices = []Notice{}
	}
	return CacheEnvelope{
		Notices:    notices,
		Expiration: now.Add(ttl).UnixMilli(),
	}
}

// ExpiresAt returns the expiration as a time.Time
func (e CacheEnvelope) ExpiresAt() time.Time {
	return time.UnixMilli(e.Expiration)
}

// Expired reports whether the envelope is stale at the given instant.
// An envelope is only fresh while its expiration lies strictly in the future.
func (e CacheEnvelope) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt())
}
