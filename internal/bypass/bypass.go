// Package bypass manages the one-time token that lets the next commit skip
// all checks.
package bypass

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// TokenName is the token file name inside the git directory.
const TokenName = "NO_DPTS_SKIP"

const tokenContent = "BYPASS_TOKEN\n"

// Gate guards a single token file.
type Gate struct {
	Path string
}

// New returns the gate for the token in gitDir.
func New(gitDir string) *Gate {
	return &Gate{Path: filepath.Join(gitDir, TokenName)}
}

// Create writes the token. Creating an existing token is not an error; it
// still authorizes one run.
func (g *Gate) Create() error {
	tmp := fmt.Sprintf("%s.%s.tmp", g.Path, uuid.NewString())
	if err := os.WriteFile(tmp, []byte(tokenContent), 0o644); err != nil {
		return fmt.Errorf("writing bypass token: %w", err)
	}
	if err := os.Rename(tmp, g.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("installing bypass token: %w", err)
	}
	return nil
}

// Present reports whether a token exists without consuming it.
func (g *Gate) Present() bool {
	_, err := os.Stat(g.Path)
	return err == nil
}

// ConsumeIfPresent removes the token and reports whether this caller was
// the one that removed it. Of any number of concurrent callers at most one
// gets true per token.
func (g *Gate) ConsumeIfPresent() (bool, error) {
	claimed := fmt.Sprintf("%s.%s.consumed", g.Path, uuid.NewString())
	if err := os.Rename(g.Path, claimed); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("consuming bypass token: %w", err)
	}
	if err := os.Remove(claimed); err != nil && !errors.Is(err, os.ErrNotExist) {
		return true, fmt.Errorf("removing consumed bypass token: %w", err)
	}
	return true, nil
}
