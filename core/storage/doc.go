// Package storage provides the S3/MinIO client used for artifact publishing.
//
// After a successful build the store file and the conflict report can be
// uploaded to a bucket so the reporting layer (or CI) can fetch them without
// access to the machine that ran the analysis. Publishing is optional; the
// pipeline itself never requires network access.
package storage
