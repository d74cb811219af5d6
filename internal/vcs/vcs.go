// Package vcs reads the staged state of a git repository.
package vcs

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"go.uber.org/zap"

	"github.com/aezell/nodpts/internal/diff"
	"github.com/aezell/nodpts/internal/model"
)

// MaxFileSize caps how much of a staged blob is read.
const MaxFileSize = 2 << 20

// ErrNotRepository indicates the directory is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// Repo is an open repository with a work tree.
type Repo struct {
	repo   *git.Repository
	root   string
	gitDir string
	logger *zap.Logger
}

// Open finds the repository containing dir.
func Open(dir string, logger *zap.Logger) (*Repo, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("%w: %s", ErrNotRepository, abs)
	}
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("%w: %s has no work tree", ErrNotRepository, abs)
	}
	root := wt.Filesystem.Root()

	gitDir := filepath.Join(root, git.GitDirName)
	if fs, ok := repo.Storer.(*filesystem.Storage); ok {
		gitDir = fs.Filesystem().Root()
	}
	return &Repo{repo: repo, root: root, gitDir: gitDir, logger: logger}, nil
}

// Root returns the work tree root.
func (r *Repo) Root() string { return r.root }

// GitDir returns the repository's git directory.
func (r *Repo) GitDir() string { return r.gitDir }

// HooksDir returns the directory git runs hooks from.
func (r *Repo) HooksDir() string { return filepath.Join(r.gitDir, "hooks") }

// ListStaged returns the repo-relative paths of files added, copied,
// modified or renamed in the index.
func (r *Repo) ListStaged(ctx context.Context) ([]string, error) {
	out, err := r.git(ctx, "diff", "--cached", "--name-only", "-z", "--diff-filter=ACMR")
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, p := range strings.Split(out, "\x00") {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// DiffStaged returns the unified diff of the index against HEAD.
func (r *Repo) DiffStaged(ctx context.Context) (string, error) {
	return r.git(ctx, "diff", "--cached", "--no-color", "--no-ext-diff")
}

// ReadStaged returns the indexed content of path, cut at MaxFileSize.
func (r *Repo) ReadStaged(path string) ([]byte, error) {
	idx, err := r.index()
	if err != nil {
		return nil, err
	}
	data, _, err := r.readEntry(idx, path)
	return data, err
}

// Snapshot lists the staged files and reads each from the index once.
func (r *Repo) Snapshot(ctx context.Context) ([]model.StagedFile, error) {
	paths, err := r.ListStaged(ctx)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, nil
	}
	idx, err := r.index()
	if err != nil {
		return nil, err
	}

	files := make([]model.StagedFile, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, truncated, err := r.readEntry(idx, p)
		if errors.Is(err, errSubmodule) {
			r.logger.Debug("skipping submodule", zap.String("path", p))
			continue
		}
		if err != nil {
			return nil, err
		}
		if truncated {
			r.logger.Warn("staged file truncated", zap.String("file", p), zap.Int("limit", MaxFileSize))
		}
		f := model.StagedFile{
			Path:      p,
			Language:  diff.DetectLanguage(p),
			Content:   data,
			Binary:    model.IsBinary(data),
			Truncated: truncated,
		}
		if f.Binary {
			f.Language = diff.LangBinary
		}
		files = append(files, f)
	}
	return files, nil
}

var errSubmodule = errors.New("submodule entry")

// index loads the index the git CLI would use. `git commit -a`,
// `git commit <path>` and `--only` run hooks against a temporary index
// named by GIT_INDEX_FILE; a relative value is resolved against the work
// tree root, where git runs.
func (r *Repo) index() (*index.Index, error) {
	path := os.Getenv("GIT_INDEX_FILE")
	if path == "" {
		idx, err := r.repo.Storer.Index()
		if err != nil {
			return nil, fmt.Errorf("reading index: %w", err)
		}
		return idx, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.root, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading index %s: %w", path, err)
	}
	defer f.Close()

	idx := &index.Index{}
	if err := index.NewDecoder(bufio.NewReader(f)).Decode(idx); err != nil {
		return nil, fmt.Errorf("decoding index %s: %w", path, err)
	}
	r.logger.Debug("using alternate index", zap.String("path", path))
	return idx, nil
}

func (r *Repo) readEntry(idx *index.Index, path string) ([]byte, bool, error) {
	e, err := idx.Entry(path)
	if err != nil {
		return nil, false, fmt.Errorf("index entry %s: %w", path, err)
	}
	if e.Mode == filemode.Submodule {
		return nil, false, errSubmodule
	}
	blob, err := r.repo.BlobObject(e.Hash)
	if err != nil {
		return nil, false, fmt.Errorf("staged blob %s: %w", path, err)
	}
	rd, err := blob.Reader()
	if err != nil {
		return nil, false, fmt.Errorf("staged blob %s: %w", path, err)
	}
	defer rd.Close()

	data, err := io.ReadAll(io.LimitReader(rd, MaxFileSize+1))
	if err != nil {
		return nil, false, fmt.Errorf("reading staged blob %s: %w", path, err)
	}
	if len(data) > MaxFileSize {
		return data[:MaxFileSize], true, nil
	}
	return data, false, nil
}

func (r *Repo) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.root
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("git %s: %w: %s", args[0], err, msg)
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(out), nil
}
