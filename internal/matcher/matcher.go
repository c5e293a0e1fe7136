// Package matcher decides whether the components declared by a notice match
// the facts discovered about the current run.
package matcher

import (
	"strings"

	"github.com/ortelius/pdvd-notices/model"
	"github.com/ortelius/pdvd-notices/util"
)

// DefaultFrameworkModules are the module names denoting the core construct library
var DefaultFrameworkModules = []string{"aws-cdk-lib", "@aws-cdk/core"}

// Matcher evaluates notice components against inventory facts.
type Matcher struct {
	FrameworkModules []string
}

// New creates a Matcher. Without arguments the default framework modules are used.
func New(frameworkModules ...string) *Matcher {
	if len(frameworkModules) == 0 {
		frameworkModules = DefaultFrameworkModules
	}
	return &Matcher{FrameworkModules: frameworkModules}
}

// Matches reports whether component applies to fact.
// The version range is only parsed once the name matched, so a malformed range
// is reported exactly when it would have decided the outcome.
func (m *Matcher) Matches(component model.Component, fact model.InventoryFact) (bool, error) {
	if !m.nameMatches(component, fact) {
		return false, nil
	}
	return util.SatisfiesRange(component.Version, fact.Version)
}

func (m *Matcher) nameMatches(component model.Component, fact model.InventoryFact) bool {
	name := component.Name
	switch name {
	case model.ComponentCLI:
		return fact.Kind == model.ToolVersionFact
	case model.ComponentFramework:
		return fact.Kind == model.ModuleFact && m.isFramework(fact.ModuleName)
	}

	if fact.Kind != model.ModuleFact {
		return false
	}

	if fact.ModuleName == name || (fact.ConstructFqn != "" && fact.ConstructFqn == name) {
		return true
	}

	// a trailing "." selects the module and everything nested under it; the dot is a
	// segment boundary so "@aws-cdk/aws-s3." does not select "@aws-cdk/aws-s3-deployment"
	if component.IsModuleTree() {
		if fact.ModuleName == strings.TrimSuffix(name, ".") {
			return true
		}
		if strings.HasPrefix(fact.ModuleName, name) {
			return true
		}
		if fact.ConstructFqn != "" && strings.HasPrefix(fact.ConstructFqn, name) {
			return true
		}
	}

	return false
}

func (m *Matcher) isFramework(moduleName string) bool {
	for _, fw := range m.FrameworkModules {
		if moduleName == fw {
			return true
		}
	}
	return false
}

// IsApplicable reports whether at least one component of the notice matches at least one fact.
// A component with a malformed range is passed over, so the result does not depend on
// component order; the first such error is returned only when no other component matched.
func (m *Matcher) IsApplicable(notice model.Notice, facts []model.InventoryFact) (bool, error) {
	var firstErr error
	for _, component := range notice.Components {
		for _, fact := range facts {
			ok, err := m.Matches(component, fact)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				break
			}
			if ok {
				return true, nil
			}
		}
	}
	return false, firstErr
}
