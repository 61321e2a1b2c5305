package models

import "local-llm-chatbot/internal/rag"

// UploadResponse is the body of a successful POST /upload
type UploadResponse struct {
	Status        string `json:"status"`
	Filename      string `json:"filename"`
	ChunksCreated int    `json:"chunks_created"`
	Message       string `json:"message"`
}

// AddDocumentRequest is the body of POST /documents/add, for files already
// on disk.
type AddDocumentRequest struct {
	Path     string            `json:"path" binding:"required"`
	Metadata map[string]string `json:"metadata"`
}

// DeleteDocumentRequest is the body of DELETE /documents/delete
type DeleteDocumentRequest struct {
	Filename string `json:"filename" binding:"required"`
}

// DocumentListResponse is the body of GET /documents
type DocumentListResponse struct {
	Documents      []rag.DocumentInfo `json:"documents"`
	TotalDocuments int                `json:"total_documents"`
	TotalChunks    int                `json:"total_chunks"`
}

// StatusResponse is the generic success envelope for mutation endpoints
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status          string            `json:"status"`
	Models          map[string]string `json:"models"`
	VectorStoreSize int               `json:"vector_store_size"`
}
