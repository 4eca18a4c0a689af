// Package storage defines the persistence contracts for the pipeline and
// the MUS serialization helpers shared by storage backends.
//
// Two concerns live behind these interfaces: the document registry
// (DocumentRepository) that tracks every uploaded file through its status
// lifecycle, and the object store (ObjectStore) that holds the raw uploaded
// bytes. The badger subpackage implements the registry and an in-tree
// vector index backend; the minio subpackage implements the object store
// for s3 URIs.
//
// Values are serialized with the MUS binary format. Serialization helpers
// panic-free round-trip documents and IDs; corrupted values surface as
// unmarshal errors, not partial structs.
package storage
