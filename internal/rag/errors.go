package rag

import "errors"

// Error kinds surfaced by the retrieval core. Per-chunk embedding failures
// during ingest are logged and skipped, never returned; chat failures degrade
// into the answer text. Everything else is reported explicitly.
var (
	// ErrEmptyDocument means no usable text was supplied for ingestion.
	ErrEmptyDocument = errors.New("rag: document contains no extractable text")

	// ErrNoChunks means chunking produced nothing to index.
	ErrNoChunks = errors.New("rag: no chunks produced from document")

	// ErrInvalidChunking means the overlap/size parameters would never terminate.
	ErrInvalidChunking = errors.New("rag: chunk overlap must be smaller than chunk size")

	// ErrDimensionMismatch means a vector's length differs from the vectors
	// already stored. The store cannot repair this silently.
	ErrDimensionMismatch = errors.New("rag: embedding dimension mismatch")

	// ErrDuplicateID means an insert reused an id already present in the store.
	ErrDuplicateID = errors.New("rag: duplicate chunk id")

	// ErrBadSnapshot means a persisted knowledge base could not be decoded,
	// or carries an unsupported format version.
	ErrBadSnapshot = errors.New("rag: invalid knowledge base snapshot")

	// ErrNotFound means no stored record matched the request.
	ErrNotFound = errors.New("rag: not found")
)
