// Package diff handles parsing git diffs into structured representations.
package diff

import (
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// File represents a single file in a diff with its line counts.
type File struct {
	OldName      string
	NewName      string
	IsNew        bool
	IsDeleted    bool
	IsRenamed    bool
	IsBinary     bool
	AddedLines   int
	DeletedLines int
}

// Name returns the display name for the file.
func (f *File) Name() string {
	if f.IsRenamed {
		return fmt.Sprintf("%s → %s", f.OldName, f.NewName)
	}
	return f.Path()
}

// Path returns the path the file has after the change, or its old path when
// the file was deleted.
func (f *File) Path() string {
	if f.IsDeleted || f.NewName == "" {
		return f.OldName
	}
	return f.NewName
}

// DiffSet holds the parsed diff for all files.
type DiffSet struct {
	Files []*File
	Raw   string // the raw unified diff text
}

// Stats returns aggregate statistics.
func (ds *DiffSet) Stats() (files, added, deleted int) {
	files = len(ds.Files)
	for _, f := range ds.Files {
		added += f.AddedLines
		deleted += f.DeletedLines
	}
	return
}

// Parse reads a unified diff string and returns a DiffSet.
func Parse(raw string) (*DiffSet, error) {
	parsed, _, err := gitdiff.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing diff: %w", err)
	}

	ds := &DiffSet{Raw: raw}
	for _, f := range parsed {
		ds.Files = append(ds.Files, convert(f))
	}

	return ds, nil
}

func convert(f *gitdiff.File) *File {
	df := &File{
		OldName:   f.OldName,
		NewName:   f.NewName,
		IsNew:     f.IsNew,
		IsDeleted: f.IsDelete,
		IsRenamed: f.IsRename,
		IsBinary:  f.IsBinary,
	}

	for _, frag := range f.TextFragments {
		for _, line := range frag.Lines {
			switch line.Op {
			case gitdiff.OpAdd:
				df.AddedLines++
			case gitdiff.OpDelete:
				df.DeletedLines++
			}
		}
	}
	return df
}

// Split breaks a multi-file unified diff into per-file chunks, preserving
// the original text of each chunk. Text before the first file header is
// dropped.
func Split(raw string) []string {
	var chunks []string
	var current strings.Builder
	for _, line := range strings.SplitAfter(raw, "\n") {
		if strings.HasPrefix(line, "diff --git ") && current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() == 0 && !strings.HasPrefix(line, "diff --git ") {
			continue
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// Filter returns the subset of raw whose files satisfy keep. Chunks that
// cannot be parsed are kept so nothing is silently dropped.
func Filter(raw string, keep func(path string) bool) string {
	var b strings.Builder
	for _, chunk := range Split(raw) {
		ds, err := Parse(chunk)
		if err != nil || len(ds.Files) == 0 || keep(ds.Files[0].Path()) {
			b.WriteString(chunk)
		}
	}
	return b.String()
}
