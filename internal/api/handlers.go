package api

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/aezell/nodpts/internal/config"
	"github.com/aezell/nodpts/internal/diff"
	"github.com/aezell/nodpts/internal/model"
	"github.com/aezell/nodpts/internal/secrets"
)

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "rules": s.catalog.Len()})
}

// --- Patterns ---

type patternJSON struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Severity string `json:"severity"`
	Pattern  string `json:"pattern"`
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	rules := s.catalog.Rules()
	out := make([]patternJSON, 0, len(rules))
	for _, rule := range rules {
		out = append(out, patternJSON{
			Name:     rule.Name,
			Category: rule.Category,
			Severity: rule.Severity.String(),
			Pattern:  rule.Pattern.String(),
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"total": len(out), "patterns": out})
}

// --- Scan ---

type scanFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type scanRequest struct {
	Files        []scanFile `json:"files"`
	IgnoredFiles []string   `json:"ignored_files,omitempty"`
}

type scanResponse struct {
	Total       int               `json:"total"`
	Scanned     int               `json:"scanned"`
	Ignored     int               `json:"ignored"`
	MaxSeverity string            `json:"max_severity,omitempty"`
	Findings    []secrets.Finding `json:"findings"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := readJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if len(req.Files) == 0 {
		s.writeError(w, http.StatusBadRequest, "files is required")
		return
	}

	files := make([]model.StagedFile, 0, len(req.Files))
	for i, f := range req.Files {
		if f.Path == "" {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("files[%d].path is required", i))
			return
		}
		content := []byte(f.Content)
		files = append(files, model.StagedFile{
			Path:     f.Path,
			Language: diff.DetectLanguage(f.Path),
			Content:  content,
			Binary:   model.IsBinary(content),
		})
	}

	ignore := config.NewMatcher(req.IgnoredFiles)
	findings, err := s.scanner.Scan(r.Context(), files, ignore)
	if err != nil {
		s.logger.Warn("scan interrupted", zap.Error(err))
		s.writeError(w, http.StatusServiceUnavailable, "scan interrupted: "+err.Error())
		return
	}

	resp := scanResponse{Total: len(findings), Findings: findings}
	if resp.Findings == nil {
		resp.Findings = []secrets.Finding{}
	}
	for _, f := range files {
		if ignore.Match(f.Path) {
			resp.Ignored++
		} else {
			resp.Scanned++
		}
	}
	if len(findings) > 0 {
		top := findings[0].Severity
		for _, f := range findings[1:] {
			if f.Severity > top {
				top = f.Severity
			}
		}
		resp.MaxSeverity = top.String()
	}

	s.logger.Debug("scan served", zap.Int("files", len(files)), zap.Int("findings", len(findings)))
	s.writeJSON(w, http.StatusOK, resp)
}

// --- Parse ---

type parseRequest struct {
	Diff string `json:"diff"`
}

type parseResponse struct {
	Files []fileJSON    `json:"files"`
	Stats diffStatsJSON `json:"stats"`
}

type diffStatsJSON struct {
	Files   int `json:"files"`
	Added   int `json:"added"`
	Deleted int `json:"deleted"`
}

type fileJSON struct {
	Name         string `json:"name"`
	Language     string `json:"language,omitempty"`
	IsNew        bool   `json:"is_new,omitempty"`
	IsDeleted    bool   `json:"is_deleted,omitempty"`
	IsRenamed    bool   `json:"is_renamed,omitempty"`
	IsBinary     bool   `json:"is_binary,omitempty"`
	AddedLines   int    `json:"added_lines"`
	DeletedLines int    `json:"deleted_lines"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := readJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.Diff == "" {
		s.writeError(w, http.StatusBadRequest, "diff is required")
		return
	}

	ds, err := diff.Parse(req.Diff)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	nFiles, added, deleted := ds.Stats()
	resp := parseResponse{
		Files: []fileJSON{},
		Stats: diffStatsJSON{Files: nFiles, Added: added, Deleted: deleted},
	}
	for _, f := range ds.Files {
		resp.Files = append(resp.Files, fileJSON{
			Name:         f.Name(),
			Language:     diff.DetectLanguage(f.Path()),
			IsNew:        f.IsNew,
			IsDeleted:    f.IsDeleted,
			IsRenamed:    f.IsRenamed,
			IsBinary:     f.IsBinary,
			AddedLines:   f.AddedLines,
			DeletedLines: f.DeletedLines,
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}
