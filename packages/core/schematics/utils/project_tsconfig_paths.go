package utils

import (
	"encoding/json"
	"path"
	"sort"

	"github.com/tailscale/hujson"
	"gitlab.com/tozd/go/errors"
)

// DefaultWorkspaceConfig is the workspace file looked up at the tree root.
const DefaultWorkspaceConfig = "angular.json"

type workspaceConfig struct {
	Projects map[string]workspaceProject `json:"projects"`
}

type workspaceProject struct {
	Architect map[string]workspaceTarget `json:"architect"`
	Targets   map[string]workspaceTarget `json:"targets"`
}

type workspaceTarget struct {
	Options        map[string]any            `json:"options"`
	Configurations map[string]map[string]any `json:"configurations"`
}

// TsConfigPaths are the tsconfig files referenced by a workspace.
type TsConfigPaths struct {
	BuildPaths []string
	TestPaths  []string
}

// All returns build and test paths without duplicates.
func (paths TsConfigPaths) All() []string {
	seen := map[string]bool{}
	var all []string
	for _, p := range append(append([]string(nil), paths.BuildPaths...), paths.TestPaths...) {
		if !seen[p] {
			seen[p] = true
			all = append(all, p)
		}
	}
	return all
}

// GetProjectTsConfigPaths collects the tsConfig options of the build and
// test targets of every project in the workspace file at configFile
// (DefaultWorkspaceConfig when empty), relative to the directory of that
// file. Only paths that exist are returned.
// A tree without a workspace file falls back to a root tsconfig.json.
func GetProjectTsConfigPaths(tree *Tree, configFile string) (TsConfigPaths, error) {
	if configFile == "" {
		configFile = DefaultWorkspaceConfig
	}

	var paths TsConfigPaths
	if !tree.Exists(configFile) {
		if tree.Exists("tsconfig.json") {
			paths.BuildPaths = []string{"tsconfig.json"}
		}
		return paths, nil
	}

	data, err := tree.Read(configFile)
	if err != nil {
		return paths, err
	}
	standard, err := hujson.Standardize(data)
	if err != nil {
		return paths, errors.Errorf("parsing %s: %w", configFile, err)
	}
	var workspace workspaceConfig
	if err := json.Unmarshal(standard, &workspace); err != nil {
		return paths, errors.Errorf("parsing %s: %w", configFile, err)
	}

	base := path.Dir(NormalizePath(configFile))
	build := map[string]bool{}
	test := map[string]bool{}
	for _, project := range workspace.Projects {
		targets := project.Targets
		if targets == nil {
			targets = project.Architect
		}
		for name, target := range targets {
			switch name {
			case "build":
				collectTsConfigs(tree, base, target, build)
			case "test":
				collectTsConfigs(tree, base, target, test)
			}
		}
	}
	paths.BuildPaths = sortedKeys(build)
	paths.TestPaths = sortedKeys(test)
	return paths, nil
}

func collectTsConfigs(tree *Tree, base string, target workspaceTarget, into map[string]bool) {
	add := func(options map[string]any) {
		p, ok := options["tsConfig"].(string)
		if !ok {
			return
		}
		if resolved := NormalizePath(path.Join(base, p)); tree.Exists(resolved) {
			into[resolved] = true
		}
	}
	add(target.Options)
	for _, options := range target.Configurations {
		add(options)
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
