// Package model - InventoryFact describes what was observed about the current run.
package model

import (
	"strings"

	"github.com/package-url/packageurl-go"
)

// FactKind distinguishes the tool's own version from modules found in the construct tree
type FactKind int

const (
	// ToolVersionFact records the version of the running tool.
	ToolVersionFact FactKind = iota
	// ModuleFact records a module (and optionally a construct type) used by the application.
	ModuleFact
)

// String returns the display name of the fact kind
func (k FactKind) String() string {
	switch k {
	case ToolVersionFact:
		return "cli"
	case ModuleFact:
		return "module"
	default:
		return "unknown"
	}
}

// InventoryFact is a concrete (name, version[, construct type]) observation.
// The struct is comparable so it can be used directly as a set key.
type InventoryFact struct {
	Kind         FactKind `json:"kind"`
	ModuleName   string   `json:"module_name,omitempty"`
	Version      string   `json:"version"`
	ConstructFqn string   `json:"construct_fqn,omitempty"`
}

// NewToolVersionFact creates the fact describing the running tool
func NewToolVersionFact(version string) InventoryFact {
	return InventoryFact{Kind: ToolVersionFact, Version: version}
}

// NewModuleFact creates a fact for a module, with an optional construct type FQN
func NewModuleFact(moduleName, version, constructFqn string) InventoryFact {
	return InventoryFact{
		Kind:         ModuleFact,
		ModuleName:   moduleName,
		Version:      version,
		ConstructFqn: constructFqn,
	}
}

// PURL renders a module fact as an npm package URL, e.g. pkg:npm/aws-cdk-lib@2.50.0.
// Tool version facts have no package identity and return an empty string.
func (f InventoryFact) PURL() string {
	if f.Kind != ModuleFact || f.ModuleName == "" {
		return ""
	}

	namespace := ""
	name := f.ModuleName
	if strings.HasPrefix(name, "@") {
		if idx := strings.Index(name, "/"); idx > 0 {
			namespace = name[:idx]
			name = name[idx+1:]
		}
	}

	purl := packageurl.NewPackageURL("npm", namespace, name, f.Version, nil, "")
	return purl.ToString()
}

// Less orders facts by kind, module, construct and version for stable output
func (f InventoryFact) Less(other InventoryFact) bool {
	if f.Kind != other.Kind {
		return f.Kind < other.Kind
	}
	if f.ModuleName != other.ModuleName {
		return f.ModuleName < other.ModuleName
	}
	if f.ConstructFqn != other.ConstructFqn {
		return f.ConstructFqn < other.ConstructFqn
	}
	return f.Version < other.Version
}
