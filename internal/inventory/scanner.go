// Package inventory discovers which modules and construct types a synthesized
// application uses by walking the construct tree written to its output directory.
package inventory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ortelius/pdvd-notices/model"
	"github.com/ortelius/pdvd-notices/util"
	"go.uber.org/zap"
)

// TreeFileName is the construct tree manifest inside an application output directory
const TreeFileName = "tree.json"

// Tree is the construct tree manifest, loaded fully into memory before it is walked
type Tree struct {
	Version string `json:"version"`
	Root    *Node  `json:"tree"`
}

// Node is a single construct in the tree
type Node struct {
	ID            string           `json:"id"`
	Path          string           `json:"path"`
	Children      map[string]*Node `json:"children,omitempty"`
	ConstructInfo *ConstructInfo   `json:"constructInfo,omitempty"`
	Module        *ModuleInfo      `json:"module,omitempty"`
}

// ConstructInfo carries the construct type and the version of the library defining it
type ConstructInfo struct {
	Fqn     string `json:"fqn"`
	Version string `json:"version"`
}

// ModuleInfo is explicit module metadata some nodes carry instead of, or next to, constructInfo
type ModuleInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Scanner produces the inventory facts for an application output directory
type Scanner struct {
	logger *zap.Logger
}

// NewScanner creates a Scanner; a nil logger discards output.
func NewScanner(logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{logger: logger}
}

// LoadTree reads and decodes <outdir>/tree.json
func LoadTree(outdir string) (*Tree, error) {
	fileName := filepath.Join(outdir, TreeFileName)
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to read construct tree: %w", err)
	}

	var tree Tree
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode construct tree %s: %w", fileName, err)
	}
	if tree.Root == nil {
		return nil, fmt.Errorf("construct tree %s has no root node", fileName)
	}
	return &tree, nil
}

// Scan always yields the tool version fact plus a module fact for every node of the
// construct tree that declares module or construct metadata. The result is deduplicated
// and sorted. A missing or malformed tree only costs the module facts.
func (s *Scanner) Scan(outdir, toolVersion string) []model.InventoryFact {
	facts := map[model.InventoryFact]struct{}{
		model.NewToolVersionFact(toolVersion): {},
	}

	if outdir != "" {
		tree, err := LoadTree(outdir)
		if err != nil {
			s.logger.Sugar().Debugf("Skipping construct tree in %s: %v", outdir, err)
		} else {
			tree.Root.walk(func(n *Node) {
				for _, f := range n.facts() {
					facts[f] = struct{}{}
				}
			})
		}
	}

	result := make([]model.InventoryFact, 0, len(facts))
	for f := range facts {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Less(result[j]) })

	s.logger.Sugar().Debugf("Inventory for %q has %d facts", outdir, len(result))
	return result
}

func (n *Node) walk(visit func(*Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, child := range n.Children {
		child.walk(visit)
	}
}

func (n *Node) facts() []model.InventoryFact {
	var out []model.InventoryFact

	if n.ConstructInfo != nil && n.ConstructInfo.Fqn != "" {
		parsed := util.ParseFqn(n.ConstructInfo.Fqn)
		constructFqn := ""
		if parsed.HasType() {
			constructFqn = n.ConstructInfo.Fqn
		}
		out = append(out, model.NewModuleFact(parsed.Module, n.ConstructInfo.Version, constructFqn))
	}

	if n.Module != nil && n.Module.Name != "" {
		out = append(out, model.NewModuleFact(n.Module.Name, n.Module.Version, ""))
	}

	return out
}
