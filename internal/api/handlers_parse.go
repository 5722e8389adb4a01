package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/specgest/internal/parser"
	"github.com/dgallion1/specgest/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// defaultFilename names raw request bodies sent without ?filename=.
const defaultFilename = "document.md"

// multipart overhead allowed on top of the upload limit
const formOverhead = 1 << 20

// handleParse extracts directive tables from one document and returns
// them in the response.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+formOverhead)

	var (
		filename string
		data     []byte
		err      error
	)
	if isMultipart(r) {
		filename, data, err = s.readFormFile(r)
	} else {
		filename, data, err = s.readRawBody(r)
	}
	if err != nil {
		var he *httpError
		if errors.As(err, &he) {
			jsonError(w, he.msg, he.code)
			return
		}
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.orchestrator.Parse(filename, data)
	if err != nil {
		code := http.StatusUnprocessableEntity
		if errors.Is(err, parser.ErrUnsupportedExtension) {
			code = http.StatusBadRequest
		}
		jsonError(w, err.Error(), code)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"filename":    filename,
		"directives":  res.Directives,
		"diagnostics": res.Diagnostics,
	})
}

// handleBatchParse queues every uploaded file as its own job.
func (s *Server) handleBatchParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*formOverhead)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	results := make([]map[string]any, 0, len(files))
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !parser.IsSupportedExtension(filename) {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
			})
			continue
		}

		f, err := fh.Open()
		if err != nil {
			results = append(results, map[string]any{"filename": filename, "error": "failed to open file"})
			continue
		}
		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil || int64(len(data)) > s.cfg.MaxUploadBytes {
			results = append(results, map[string]any{"filename": filename, "error": "file too large or read error"})
			continue
		}

		job := pipeline.NewJob(filename, data)
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{"filename": filename, "job_id": job.ID, "error": err.Error()})
			continue
		}

		results = append(results, map[string]any{
			"filename": filename,
			"job_id":   job.ID,
			"doc_id":   job.DocID,
			"status":   pipeline.StatusQueued,
			"poll_url": "/api/jobs/" + job.ID,
		})
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

type httpError struct {
	code int
	msg  string
}

func (e *httpError) Error() string { return e.msg }

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

func (s *Server) readFormFile(r *http.Request) (string, []byte, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return "", nil, &httpError{code: http.StatusRequestEntityTooLarge, msg: "request body too large"}
		}
		return "", nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("file is required: %w", err)
	}
	defer file.Close()

	return s.readLimited(file, sanitizeFilename(header.Filename))
}

func (s *Server) readRawBody(r *http.Request) (string, []byte, error) {
	filename := defaultFilename
	if q := r.URL.Query().Get("filename"); q != "" {
		filename = sanitizeFilename(q)
	}
	return s.readLimited(r.Body, filename)
}

func (s *Server) readLimited(src io.Reader, filename string) (string, []byte, error) {
	if !parser.IsSupportedExtension(filename) {
		return "", nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}
	data, err := io.ReadAll(io.LimitReader(src, s.cfg.MaxUploadBytes+1))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return "", nil, &httpError{code: http.StatusRequestEntityTooLarge, msg: "request body too large"}
		}
		return "", nil, &httpError{code: http.StatusInternalServerError, msg: "failed to read file"}
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return "", nil, &httpError{
			code: http.StatusRequestEntityTooLarge,
			msg:  fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes),
		}
	}
	return filename, data, nil
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
