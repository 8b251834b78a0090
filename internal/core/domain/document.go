package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Document represents a raw document handed to the ingestion path.
// It is immutable once loaded; the ingestion caller owns it.
type Document struct {
	ID         string            `json:"id"`   // source path or name
	Path       string            `json:"path"` // original location on disk or in the source system
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	IngestedAt time.Time         `json:"ingested_at"`
	ChunkCount int               `json:"chunk_count"`
}

// Chunk is a bounded, attributable segment of a document produced for
// indexing. Never mutated after creation.
type Chunk struct {
	ID          string            `json:"id"`
	DocumentID  string            `json:"document_id"`
	Index       int               `json:"chunk_index"`
	TotalChunks int               `json:"total_chunks"`
	Content     string            `json:"content"`
	Metadata    map[string]string `json:"metadata"`
}

// ChunkParams configures the chunker at ingestion time.
type ChunkParams struct {
	MaxSize int `json:"max_size"`
	Overlap int `json:"overlap"`
}

// DefaultChunkParams returns the ingestion defaults.
func DefaultChunkParams() ChunkParams {
	return ChunkParams{MaxSize: 500, Overlap: 50}
}

// Validate rejects parameter combinations the chunker cannot honor.
func (p ChunkParams) Validate() error {
	if p.MaxSize <= 0 {
		return fmt.Errorf("%w: max_size must be positive, got %d", ErrInvalidInput, p.MaxSize)
	}
	if p.Overlap < 0 {
		return fmt.Errorf("%w: overlap must be non-negative, got %d", ErrInvalidInput, p.Overlap)
	}
	if p.Overlap >= p.MaxSize {
		return fmt.Errorf("%w: overlap %d must be smaller than max_size %d", ErrInvalidInput, p.Overlap, p.MaxSize)
	}
	return nil
}

// ChunkID derives the stable id for the i-th chunk of a document.
func ChunkID(docID string, i int) string {
	stem := strings.TrimSuffix(filepath.Base(docID), filepath.Ext(docID))
	return fmt.Sprintf("%s_chunk_%d", stem, i)
}

// BuildChunks turns the chunker's raw segments into attributable chunks.
// Each chunk inherits the document metadata plus chunk_index, total_chunks,
// filename and source entries.
func BuildChunks(doc *Document, segments []string) []Chunk {
	chunks := make([]Chunk, 0, len(segments))
	total := len(segments)
	filename := filepath.Base(doc.Path)
	if filename == "." || filename == "" {
		filename = doc.ID
	}

	for i, segment := range segments {
		metadata := make(map[string]string, len(doc.Metadata)+4)
		for k, v := range doc.Metadata {
			metadata[k] = v
		}
		metadata["source"] = doc.Path
		metadata["filename"] = filename
		metadata["chunk_index"] = fmt.Sprintf("%d", i)
		metadata["total_chunks"] = fmt.Sprintf("%d", total)

		chunks = append(chunks, Chunk{
			ID:          ChunkID(doc.ID, i),
			DocumentID:  doc.ID,
			Index:       i,
			TotalChunks: total,
			Content:     segment,
			Metadata:    metadata,
		})
	}
	return chunks
}

// IngestStats summarises one ingestion run.
type IngestStats struct {
	Documents int `json:"total_documents"`
	Chunks    int `json:"total_chunks"`
}

// CollectionStats describes the state of one vector index collection.
type CollectionStats struct {
	Collection string `json:"collection"`
	Chunks     int    `json:"chunks"`
}
