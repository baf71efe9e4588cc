package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"go.uber.org/zap"

	"legacyshift/internal/gateway/repository/artifact"
	jobrepo "legacyshift/internal/gateway/repository/job"
	"legacyshift/internal/gateway/service/conversion"
	"legacyshift/internal/types"
)

// ConversionService is the part of *conversion.Service the HTTP surface needs.
type ConversionService interface {
	Convert(ctx context.Context, data []byte, family string) (conversion.Result, error)
	Status() string
	Job(ctx context.Context, id string) (conversion.JobView, error)
	Archive(ctx context.Context, id string) ([]byte, error)
}

type ConversorHandler struct {
	svc            ConversionService
	maxUploadBytes int64
	log            *zap.Logger
}

func NewConversorHandler(svc ConversionService, maxUploadBytes int64, log *zap.Logger) *ConversorHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 64 << 20
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ConversorHandler{svc: svc, maxUploadBytes: maxUploadBytes, log: log.Named("http")}
}

// Register mounts the conversor routes on mux.
func (h *ConversorHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/conversor", h.HandleConvert)
	mux.HandleFunc("GET /api/conversor/status", h.HandleStatus)
	mux.HandleFunc("GET /api/conversor/families", h.HandleFamilies)
	mux.HandleFunc("GET /api/conversor/jobs/{id}", h.HandleJob)
	mux.HandleFunc("GET /api/conversor/jobs/{id}/archive", h.HandleArchive)
}

// problem is the JSON body of a failed request.
type problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	JobID  string `json:"job_id,omitempty"`
}

func writeProblem(w http.ResponseWriter, status int, detail, jobID string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(problem{
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
		JobID:  jobID,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// HandleConvert accepts a multipart upload in field "file" and answers with
// the converted archive.
func (h *ConversorHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeProblem(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", h.maxUploadBytes), "")
			return
		}
		writeProblem(w, http.StatusBadRequest, "multipart field \"file\" is required", "")
		return
	}
	defer file.Close()

	name := path.Base(strings.ReplaceAll(header.Filename, "\\", "/"))
	if !strings.EqualFold(path.Ext(name), ".zip") {
		writeProblem(w, http.StatusBadRequest, "only .zip uploads are supported", "")
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "failed to read upload", "")
		return
	}

	res, err := h.svc.Convert(r.Context(), data, r.URL.Query().Get("framework"))
	if err != nil {
		if conversion.IsInputError(err) {
			writeProblem(w, http.StatusBadRequest, err.Error(), "")
			return
		}
		h.log.Error("conversion failed", zap.String("job_id", res.JobID), zap.Error(err))
		writeProblem(w, http.StatusInternalServerError, err.Error(), res.JobID)
		return
	}

	download := "converted_" + strings.TrimSuffix(name, path.Ext(name)) + ".zip"
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download))
	w.Header().Set("X-Job-Id", res.JobID)
	_, _ = w.Write(res.Archive)
}

func (h *ConversorHandler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, h.svc.Status())
}

func (h *ConversorHandler) HandleFamilies(w http.ResponseWriter, _ *http.Request) {
	type family struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	out := make([]family, 0, len(types.Families()))
	for _, f := range types.Families() {
		out = append(out, family{ID: string(f), Name: f.DisplayName()})
	}
	writeJSON(w, out)
}

func (h *ConversorHandler) HandleJob(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	view, err := h.svc.Job(r.Context(), id)
	if errors.Is(err, jobrepo.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "unknown job", id)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, err.Error(), id)
		return
	}
	writeJSON(w, view)
}

func (h *ConversorHandler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	data, err := h.svc.Archive(r.Context(), id)
	if errors.Is(err, jobrepo.ErrNotFound) || errors.Is(err, artifact.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "no archive for job", id)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, err.Error(), id)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "converted_"+id+".zip"))
	_, _ = w.Write(data)
}
