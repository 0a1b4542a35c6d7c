package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/tocheck/internal/checklist"
	"github.com/dgallion1/tocheck/internal/parser"
)

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		formError(w, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}
	p, err := parser.ForFile(filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	title := s.title(r)
	items, err := s.extract(p, data, filename, title)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"filename": filename,
		"title":    title,
		"items":    items,
	})
}

func (s *Server) handleBatchExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*int64(s.cfg.MaxBatchFiles)+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		formError(w, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}
	if len(files) > s.cfg.MaxBatchFiles {
		jsonError(w, fmt.Sprintf("too many files (max %d)", s.cfg.MaxBatchFiles), http.StatusBadRequest)
		return
	}

	title := s.title(r)
	results := make([]map[string]any, len(files))

	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(s.cfg.WorkerCount)
	for i, fh := range files {
		i, fh := i, fh
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = map[string]any{
					"filename": sanitizeFilename(fh.Filename),
					"error":    err.Error(),
				}
				return nil
			}
			results[i] = s.extractUpload(fh, title)
			return nil
		})
	}
	g.Wait()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"title":   title,
		"results": results,
	})
}

// extractUpload runs one batch entry. Failures are reported in the result
// rather than aborting the batch.
func (s *Server) extractUpload(fh *multipart.FileHeader, title string) map[string]any {
	filename := sanitizeFilename(fh.Filename)
	if !parser.IsSupportedExtension(filename) {
		return map[string]any{
			"filename": filename,
			"error":    fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
		}
	}
	p, err := parser.ForFile(filename)
	if err != nil {
		return map[string]any{
			"filename": filename,
			"error":    err.Error(),
		}
	}

	f, err := fh.Open()
	if err != nil {
		return map[string]any{
			"filename": filename,
			"error":    "failed to open file",
		}
	}
	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	f.Close()
	if err != nil || int64(len(data)) > s.cfg.MaxUploadBytes {
		return map[string]any{
			"filename": filename,
			"error":    "file too large or read error",
		}
	}

	items, err := s.extract(p, data, filename, title)
	if err != nil {
		return map[string]any{
			"filename": filename,
			"error":    err.Error(),
		}
	}
	return map[string]any{
		"filename": filename,
		"items":    items,
	}
}

// extract runs the checklist extraction and records its outcome.
func (s *Server) extract(p parser.Parser, data []byte, filename, title string) ([]checklist.Item, error) {
	start := time.Now()
	items, err := checklist.Run(p, bytes.NewReader(data), filename, title)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		s.stats.RecordFailure(elapsed)
		s.log.Warn("extraction failed", "filename", filename, "error", err)
		return nil, err
	}
	s.stats.Record(elapsed, len(items))
	s.log.Debug("extracted checklist", "filename", filename, "title", title, "items", len(items))
	return items, nil
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"window": s.cfg.StatsWindow.String(),
		"stats":  s.stats.Snapshot(),
	})
}

// title returns the request's section title override, or the configured one.
func (s *Server) title(r *http.Request) string {
	if t := r.FormValue("title"); t != "" {
		return t
	}
	return s.cfg.Title
}

// formError reports a multipart parse failure. A body cut off by
// http.MaxBytesReader is a size problem, not a malformed form.
func formError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		jsonError(w, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
		return
	}
	jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
