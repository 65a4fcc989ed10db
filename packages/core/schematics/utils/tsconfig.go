package utils

import (
	"encoding/json"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tailscale/hujson"
	"gitlab.com/tozd/go/errors"
)

// TsConfig is the part of a tsconfig.json that selects program files.
type TsConfig struct {
	Extends         string          `json:"extends"`
	CompilerOptions CompilerOptions `json:"compilerOptions"`
	Files           []string        `json:"files"`
	Include         []string        `json:"include"`
	Exclude         []string        `json:"exclude"`
}

type CompilerOptions struct {
	Target  string `json:"target"`
	Module  string `json:"module"`
	RootDir string `json:"rootDir"`
}

var defaultInclude = []string{"**/*"}

// ParseTsConfig reads and parses the tsconfig at p, following extends.
// Files, include and exclude missing from a config are inherited from its
// base and rewritten relative to the directory of p.
func ParseTsConfig(tree *Tree, p string) (*TsConfig, error) {
	return parseTsConfig(tree, NormalizePath(p), map[string]bool{})
}

func parseTsConfig(tree *Tree, p string, visiting map[string]bool) (*TsConfig, error) {
	if visiting[p] {
		return nil, errors.Errorf("%s: circular extends", p)
	}
	visiting[p] = true

	data, err := tree.Read(p)
	if err != nil {
		return nil, err
	}
	standard, err := hujson.Standardize(data)
	if err != nil {
		return nil, errors.Errorf("parsing %s: %w", p, err)
	}
	var config TsConfig
	if err := json.Unmarshal(standard, &config); err != nil {
		return nil, errors.Errorf("parsing %s: %w", p, err)
	}
	for _, pattern := range append(append([]string(nil), config.Include...), config.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("%s: invalid pattern %q", p, pattern)
		}
	}

	if config.Extends == "" {
		return &config, nil
	}
	dir := path.Dir(p)
	basePath := NormalizePath(path.Join(dir, config.Extends))
	if !strings.HasPrefix(config.Extends, ".") && !strings.HasPrefix(config.Extends, "/") {
		basePath = NormalizePath(path.Join(dir, "node_modules", config.Extends))
	}
	if !strings.HasSuffix(basePath, ".json") && !tree.Exists(basePath) {
		basePath += ".json"
	}
	base, err := parseTsConfig(tree, basePath, visiting)
	if err != nil {
		return nil, errors.Errorf("%s extends %s: %w", p, config.Extends, err)
	}
	rebase := func(patterns []string) []string {
		rebased := make([]string, len(patterns))
		for i, pattern := range patterns {
			rebased[i] = relativePath(dir, path.Join(path.Dir(basePath), pattern))
		}
		return rebased
	}
	if config.Files == nil {
		config.Files = rebase(base.Files)
	}
	if config.Include == nil {
		config.Include = rebase(base.Include)
	}
	if config.Exclude == nil {
		config.Exclude = rebase(base.Exclude)
	}
	if config.CompilerOptions.Target == "" {
		config.CompilerOptions.Target = base.CompilerOptions.Target
	}
	if config.CompilerOptions.Module == "" {
		config.CompilerOptions.Module = base.CompilerOptions.Module
	}
	if config.CompilerOptions.RootDir == "" && base.CompilerOptions.RootDir != "" {
		config.CompilerOptions.RootDir = relativePath(dir, path.Join(path.Dir(basePath), base.CompilerOptions.RootDir))
	}
	return &config, nil
}

// ProgramFiles returns the TypeScript sources the tsconfig at p selects:
// the listed files in order, then the included sources in lexical order.
// Declaration files and node_modules are never included.
// Without files and include every source below the tsconfig is used.
func ProgramFiles(tree *Tree, p string) ([]string, error) {
	config, err := ParseTsConfig(tree, p)
	if err != nil {
		return nil, err
	}
	root := path.Dir(NormalizePath(p))

	seen := map[string]bool{}
	var files []string
	add := func(file string) {
		if !seen[file] && isSourceFile(file) {
			seen[file] = true
			files = append(files, file)
		}
	}

	for _, file := range config.Files {
		resolved := NormalizePath(path.Join(root, file))
		if !tree.Exists(resolved) {
			return nil, errors.Errorf("%s: file %s does not exist", p, file)
		}
		add(resolved)
	}

	include := config.Include
	if len(include) == 0 && len(config.Files) == 0 {
		include = defaultInclude
	}
	if len(include) == 0 {
		return files, nil
	}
	include = rooted(root, include)
	exclude := rooted(root, config.Exclude)

	var included []string
	for _, dir := range walkRoots(include) {
		if !tree.stat(dir) {
			continue
		}
		err = tree.Visit(dir, func(file string) error {
			if matchesAny(include, file) && !matchesAny(exclude, file) {
				included = append(included, file)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(included)
	for _, file := range included {
		add(file)
	}
	return files, nil
}

// rooted joins tsconfig patterns onto root so they match tree paths.
func rooted(root string, patterns []string) []string {
	joined := make([]string, len(patterns))
	for i, pattern := range patterns {
		joined[i] = NormalizePath(path.Join(root, pattern))
	}
	return joined
}

// walkRoots returns the directories to walk for patterns: the literal
// leading segments of each pattern, without directories nested in another.
func walkRoots(patterns []string) []string {
	var roots []string
	for _, pattern := range patterns {
		segments := strings.Split(pattern, "/")
		var literal []string
		for _, segment := range segments[:len(segments)-1] {
			if strings.ContainsAny(segment, "*?[{") {
				break
			}
			literal = append(literal, segment)
		}
		if len(literal) == len(segments)-1 && !strings.ContainsAny(segments[len(segments)-1], "*?[{.") {
			literal = segments
		}
		roots = append(roots, NormalizePath(strings.Join(literal, "/")))
	}
	sort.Strings(roots)

	var walk []string
next:
	for _, root := range roots {
		for _, dir := range walk {
			if within(dir, root) {
				continue next
			}
		}
		walk = append(walk, root)
	}
	return walk
}

func within(dir, p string) bool {
	return dir == "." || p == dir || strings.HasPrefix(p, dir+"/")
}

func isSourceFile(file string) bool {
	return strings.HasSuffix(file, ".ts") && !strings.HasSuffix(file, ".d.ts")
}

// relativePath returns target relative to dir. Both are tree paths.
func relativePath(dir, target string) string {
	dir, target = NormalizePath(dir), NormalizePath(target)
	if dir == "." {
		return target
	}
	var up []string
	for !within(dir, target) {
		dir = path.Dir(dir)
		up = append(up, "..")
	}
	if dir != "." {
		target = strings.TrimPrefix(strings.TrimPrefix(target, dir), "/")
	}
	rel := path.Join(append(up, target)...)
	if rel == "" {
		return "."
	}
	return rel
}

// matchesAny matches a tree path against rooted tsconfig patterns. A pattern
// naming a directory matches everything below it.
func matchesAny(patterns []string, file string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, file); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern+"/**", file); ok && !strings.ContainsAny(path.Base(pattern), "*?.") {
			return true
		}
	}
	return false
}
