package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobrepo "legacyshift/internal/gateway/repository/job"
	"legacyshift/internal/gateway/service/conversion"
	"legacyshift/internal/types"
)

type stubService struct {
	gotFamily string
	gotData   []byte
	result    conversion.Result
	err       error
	jobs      map[string]conversion.JobView
}

func (s *stubService) Convert(_ context.Context, data []byte, family string) (conversion.Result, error) {
	s.gotFamily = family
	s.gotData = data
	return s.result, s.err
}

func (s *stubService) Status() string { return conversion.StatusUp }

func (s *stubService) Job(_ context.Context, id string) (conversion.JobView, error) {
	v, ok := s.jobs[id]
	if !ok {
		return conversion.JobView{}, jobrepo.ErrNotFound
	}
	return v, nil
}

func (s *stubService) Archive(_ context.Context, id string) ([]byte, error) {
	if _, ok := s.jobs[id]; !ok {
		return nil, jobrepo.ErrNotFound
	}
	return []byte("PK-archive"), nil
}

func newMux(svc ConversionService) *http.ServeMux {
	mux := http.NewServeMux()
	NewConversorHandler(svc, 1<<20, nil).Register(mux)
	return mux
}

func upload(t *testing.T, url, filename string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestConvert_ReturnsArchive(t *testing.T) {
	svc := &stubService{result: conversion.Result{JobID: "job-1", Archive: []byte("PK-zip"), Files: 3}}
	rec := httptest.NewRecorder()
	newMux(svc).ServeHTTP(rec, upload(t, "/api/conversor?framework=JaxRs", "legacy-app.zip", []byte("zipbytes")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="converted_legacy-app.zip"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "job-1", rec.Header().Get("X-Job-Id"))
	assert.Equal(t, "PK-zip", rec.Body.String())
	assert.Equal(t, "JaxRs", svc.gotFamily)
	assert.Equal(t, "zipbytes", string(svc.gotData))
}

func TestConvert_RejectsBadUploads(t *testing.T) {
	svc := &stubService{}
	mux := newMux(svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, upload(t, "/api/conversor?framework=jsf", "", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, upload(t, "/api/conversor?framework=jsf", "app.tar.gz", []byte("x")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Nil(t, svc.gotData, "service must not be called")
}

func TestConvert_ErrorMapping(t *testing.T) {
	svc := &stubService{err: &conversion.InputError{Err: types.ErrUnknownFamily}}
	rec := httptest.NewRecorder()
	newMux(svc).ServeHTTP(rec, upload(t, "/api/conversor?framework=cobol", "a.zip", []byte("x")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc = &stubService{result: conversion.Result{JobID: "job-9"}, err: errors.New("job job-9 failed while processing group 2")}
	rec = httptest.NewRecorder()
	newMux(svc).ServeHTTP(rec, upload(t, "/api/conversor?framework=jsf", "a.ZIP", []byte("x")))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var p problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "job-9", p.JobID)
	assert.Contains(t, p.Detail, "group 2")
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), p.Title)
}

func TestStatusAndFamilies(t *testing.T) {
	mux := newMux(&stubService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/conversor/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Up!", rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/conversor/families", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var fams []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fams))
	require.Len(t, fams, 4)
	assert.Equal(t, "angularjs", fams[0].ID)
	assert.Equal(t, "AngularJs", fams[0].Name)
}

func TestJobRoutes(t *testing.T) {
	mux := newMux(&stubService{jobs: map[string]conversion.JobView{
		"job-1": {Record: jobrepo.Record{ID: "job-1", Family: "jsf", Status: jobrepo.StatusSucceeded}},
	}})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/conversor/jobs/job-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var view conversion.JobView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, jobrepo.StatusSucceeded, view.Status)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/conversor/jobs/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/conversor/jobs/job-1/archive", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PK-archive", rec.Body.String())
}
