package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const moduleName = "dceseed"

// layerRule lists what one service layer may import. services entries resolve
// against the owning service. Beyond the standard library, only the listed
// libraries are allowed unless anyLibrary is set.
type layerRule struct {
	services    []string
	contracts   bool
	libraries   []string
	anyLibrary  bool
	noAdapters  bool
	noInfra     bool
	siblingFree bool
}

var layerRules = map[string]layerRule{
	"domain": {
		services:   []string{"domain"},
		noAdapters: true,
		noInfra:    true,
	},
	"ports": {
		services:   []string{"domain", "ports"},
		noAdapters: true,
		noInfra:    true,
	},
	"application": {
		services:   []string{"application", "domain", "ports"},
		contracts:  true,
		libraries:  []string{"golang.org/x/sync"},
		noAdapters: true,
		noInfra:    true,
	},
	"transport": {
		services:   []string{"transport"},
		noAdapters: true,
		noInfra:    true,
	},
	"adapters": {
		services:    []string{"adapters", "application", "domain", "ports", "transport"},
		contracts:   true,
		anyLibrary:  true,
		noInfra:     true,
		siblingFree: true,
	},
}

type finding struct {
	File   string
	Line   int
	Import string
	Rule   string
}

func main() {
	findings := append(collectViolations("contexts"), collectContractViolations("contracts")...)
	if len(findings) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Import < b.Import
	})

	fmt.Printf("%d boundary violation(s):\n", len(findings))
	for _, f := range findings {
		fmt.Printf("  %s:%d %q: %s\n", f.File, f.Line, f.Import, f.Rule)
	}
	os.Exit(1)
}

// servicePath locates a source file inside contexts/<context>/<service>.
type servicePath struct {
	file    string
	prefix  string
	layer   string
	adapter string
}

func parseServicePath(path string) (servicePath, bool) {
	slashed := filepath.ToSlash(path)
	parts := strings.Split(slashed, "/")
	if len(parts) < 5 || parts[0] != "contexts" {
		return servicePath{}, false
	}
	sp := servicePath{
		file:   slashed,
		prefix: strings.Join([]string{moduleName, "contexts", parts[1], parts[2]}, "/"),
		layer:  parts[3],
	}
	if sp.layer == "adapters" {
		sp.adapter = parts[4]
	}
	return sp, true
}

func collectViolations(root string) []finding {
	var findings []finding
	walkSources(root, func(path string) {
		sp, ok := parseServicePath(path)
		if !ok {
			return
		}
		imports, err := readImports(path)
		if err != nil {
			findings = append(findings, finding{File: sp.file, Line: 1, Rule: "file must parse"})
			return
		}
		rule, ruled := layerRules[sp.layer]
		for _, imp := range imports {
			if isContextImport(imp.path) && !within(imp.path, sp.prefix) {
				findings = append(findings, sp.finding(imp, "cross-module imports are forbidden"))
				continue
			}
			if ruled {
				findings = append(findings, rule.check(sp, imp)...)
			}
		}
	})
	return findings
}

// collectContractViolations keeps wire contracts free of module and
// third-party imports so every service can depend on them.
func collectContractViolations(root string) []finding {
	var findings []finding
	walkSources(root, func(path string) {
		file := filepath.ToSlash(path)
		imports, err := readImports(path)
		if err != nil {
			findings = append(findings, finding{File: file, Line: 1, Rule: "file must parse"})
			return
		}
		for _, imp := range imports {
			if !isStdlib(imp.path) {
				findings = append(findings, finding{File: file, Line: imp.line, Import: imp.path, Rule: "contracts must only import the standard library"})
			}
		}
	})
	return findings
}

func (r layerRule) check(sp servicePath, imp importRef) []finding {
	var findings []finding
	if r.noAdapters && strings.Contains(imp.path, "/adapters/") {
		findings = append(findings, sp.finding(imp, sp.layer+" must not import adapters"))
	}
	if r.noInfra && within(imp.path, moduleName+"/internal") {
		findings = append(findings, sp.finding(imp, sp.layer+" must not import runtime infrastructure"))
	}
	if r.siblingFree && within(imp.path, sp.prefix+"/adapters") && !within(imp.path, sp.prefix+"/adapters/"+sp.adapter) {
		findings = append(findings, sp.finding(imp, "adapter "+sp.adapter+" must not import a sibling adapter"))
	}
	if !r.allows(sp.prefix, imp.path) {
		findings = append(findings, sp.finding(imp, sp.layer+" import is outside explicit allowlist"))
	}
	return findings
}

func (r layerRule) allows(prefix string, importPath string) bool {
	if isStdlib(importPath) {
		return true
	}
	for _, layer := range r.services {
		if within(importPath, prefix+"/"+layer) {
			return true
		}
	}
	if r.contracts && within(importPath, moduleName+"/contracts") {
		return true
	}
	if strings.HasPrefix(importPath, moduleName+"/") {
		return false
	}
	if r.anyLibrary {
		return true
	}
	for _, lib := range r.libraries {
		if within(importPath, lib) {
			return true
		}
	}
	return false
}

func (sp servicePath) finding(imp importRef, rule string) finding {
	return finding{File: sp.file, Line: imp.line, Import: imp.path, Rule: rule}
}

type importRef struct {
	path string
	line int
}

func readImports(path string) ([]importRef, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return nil, err
	}
	refs := make([]importRef, 0, len(file.Imports))
	for _, imp := range file.Imports {
		refs = append(refs, importRef{
			path: strings.Trim(imp.Path.Value, `"`),
			line: fset.Position(imp.Pos()).Line,
		})
	}
	return refs, nil
}

// walkSources visits non-test Go files under root. A missing root is fine.
func walkSources(root string, visit func(path string)) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		visit(path)
		return nil
	})
}

func isContextImport(importPath string) bool {
	return strings.HasPrefix(importPath, moduleName+"/contexts/")
}

func within(importPath string, prefix string) bool {
	return importPath == prefix || strings.HasPrefix(importPath, prefix+"/")
}

func isStdlib(importPath string) bool {
	if within(importPath, moduleName) {
		return false
	}
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}
