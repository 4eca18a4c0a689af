// Package minio implements storage.ObjectStore on top of a MinIO or
// S3-compatible endpoint.
package minio
