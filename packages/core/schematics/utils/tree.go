package utils

import (
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// Tree is a view of a project directory. Paths are slash separated and
// relative to the root of the underlying filesystem.
type Tree struct {
	fs afero.Fs
}

// NewTree creates a Tree over fsys
func NewTree(fsys afero.Fs) *Tree {
	return &Tree{fs: fsys}
}

// NormalizePath cleans p into the form Tree uses for its paths.
func NormalizePath(p string) string {
	cleaned := strings.TrimPrefix(path.Clean("/"+p), "/")
	if cleaned == "" {
		return "."
	}
	return cleaned
}

// Read returns the content of the file at p.
func (t *Tree) Read(p string) ([]byte, error) {
	data, err := afero.ReadFile(t.fs, NormalizePath(p))
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", p, err)
	}
	return data, nil
}

// Exists reports whether p is a regular file.
func (t *Tree) Exists(p string) bool {
	info, err := t.fs.Stat(NormalizePath(p))
	return err == nil && !info.IsDir()
}

// stat reports whether p names a file or directory.
func (t *Tree) stat(p string) bool {
	_, err := t.fs.Stat(NormalizePath(p))
	return err == nil
}

// Visit calls fn for every file below dir in lexical order. Directories
// named node_modules are not entered.
func (t *Tree) Visit(dir string, fn func(p string) error) error {
	err := afero.Walk(t.fs, NormalizePath(dir), func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == "node_modules" {
				return fs.SkipDir
			}
			return nil
		}
		return fn(NormalizePath(p))
	})
	if err != nil {
		return errors.Errorf("visiting %s: %w", dir, err)
	}
	return nil
}

// BeginUpdate starts recording edits to the file at p.
func (t *Tree) BeginUpdate(p string) (*UpdateRecorder, error) {
	data, err := t.Read(p)
	if err != nil {
		return nil, err
	}
	return &UpdateRecorder{path: NormalizePath(p), original: string(data)}, nil
}

// CommitUpdate applies the edits of r and writes the result.
func (t *Tree) CommitUpdate(r *UpdateRecorder) error {
	content, err := r.apply()
	if err != nil {
		return err
	}
	info, err := t.fs.Stat(r.path)
	if err != nil {
		return errors.Errorf("committing %s: %w", r.path, err)
	}
	if err := afero.WriteFile(t.fs, r.path, []byte(content), info.Mode().Perm()); err != nil {
		return errors.Errorf("committing %s: %w", r.path, err)
	}
	return nil
}

type edit struct {
	index  int
	remove int
	insert string
}

// UpdateRecorder collects edits to one file. Every index refers to the
// content the file had when the update began.
type UpdateRecorder struct {
	path     string
	original string
	edits    []edit
}

// Path returns the path of the file being updated.
func (r *UpdateRecorder) Path() string {
	return r.path
}

// Remove deletes length characters starting at index.
func (r *UpdateRecorder) Remove(index, length int) *UpdateRecorder {
	r.edits = append(r.edits, edit{index: index, remove: length})
	return r
}

// InsertRight inserts text at index, after anything already inserted there.
func (r *UpdateRecorder) InsertRight(index int, text string) *UpdateRecorder {
	r.edits = append(r.edits, edit{index: index, insert: text})
	return r
}

func (r *UpdateRecorder) apply() (string, error) {
	edits := append([]edit(nil), r.edits...)
	// Insertions at an index go before a removal starting there.
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].index != edits[j].index {
			return edits[i].index < edits[j].index
		}
		return edits[i].remove == 0 && edits[j].remove > 0
	})

	var b strings.Builder
	cursor := 0
	for _, e := range edits {
		if e.index < cursor || e.index+e.remove > len(r.original) {
			return "", errors.Errorf("%s: edit at %d overlaps a removed range or the end of the file", r.path, e.index)
		}
		b.WriteString(r.original[cursor:e.index])
		b.WriteString(e.insert)
		cursor = e.index + e.remove
	}
	b.WriteString(r.original[cursor:])
	return b.String(), nil
}
