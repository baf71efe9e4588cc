package config

import (
	"os"
	"strings"
)

// localArtifactConfig targets the MinIO container of the local compose stack.
// An explicit ARTIFACT_S3_ENDPOINT=off disables it for runs without MinIO.
func localArtifactConfig() ArtifactConfig {
	endpoint := firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_MINIO_ENDPOINT")), "minio:9000")
	if strings.EqualFold(strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT")), "off") {
		endpoint = ""
	}
	return ArtifactConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_ACCESS_KEY")), "legacyshift"),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_SECRET_KEY")), "legacyshift123"),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_BUCKET")), "legacyshift-artifacts"),
		UseSSL:    false,
	}
}
