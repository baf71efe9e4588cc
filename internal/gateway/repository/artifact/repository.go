package artifact

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ResultName is the object name of a job's converted archive.
const ResultName = "converted.zip"

// Store persists job artifacts under "<jobID>/<name>".
type Store interface {
	Put(ctx context.Context, jobID, name string, content []byte) error
	Get(ctx context.Context, jobID, name string) ([]byte, error)
	// URL returns a time-limited download link, or "" when the backend has none.
	URL(ctx context.Context, jobID, name string) (string, error)
	List(ctx context.Context, jobID string) ([]string, error)
}

var ErrNotFound = errors.New("artifact not found")

func objectKey(jobID, name string) (string, error) {
	jobID = strings.TrimSpace(jobID)
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if jobID == "" {
		return "", fmt.Errorf("job_id is required")
	}
	if name == "" {
		return "", fmt.Errorf("name is required")
	}
	return jobID + "/" + name, nil
}

func jobPrefix(jobID string) (string, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return "", fmt.Errorf("job_id is required")
	}
	return strings.TrimSuffix(jobID, "/") + "/", nil
}

func contentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".zip":
		return "application/zip"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
