// Package util provides version range parsing and evaluation, text wrapping
// and small helpers shared by the notices engine.
//
//revive:disable-next-line:var-naming
package util

import "strings"

// FqnComponents holds the parsed components of a construct type FQN
type FqnComponents struct {
	Module string
	Path   []string
	Type   string
}

// ParseFqn parses a fully qualified construct type name into its components
// Format: <module>.<namespace...>.<Type>
// The module is everything before the first "."; scoped npm modules such as
// "@aws-cdk/aws-s3" never contain a dot themselves.
// Examples:
//   - "aws-cdk-lib.aws_s3.Bucket" -> module "aws-cdk-lib", path ["aws_s3"], type "Bucket"
//   - "@aws-cdk/core.Stack" -> module "@aws-cdk/core", type "Stack"
//   - "constructs" -> module "constructs", no type
func ParseFqn(fqn string) FqnComponents {
	fqn = strings.TrimSpace(fqn)
	if fqn == "" {
		return FqnComponents{Path: []string{}}
	}

	parts := strings.Split(fqn, ".")
	if len(parts) == 1 {
		return FqnComponents{Module: parts[0], Path: []string{}}
	}

	return FqnComponents{
		Module: parts[0],
		Path:   parts[1 : len(parts)-1],
		Type:   parts[len(parts)-1],
	}
}

// HasType reports whether the FQN named a construct type and not just a module
func (c FqnComponents) HasType() bool {
	return c.Type != ""
}
