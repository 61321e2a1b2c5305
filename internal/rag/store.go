package rag

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"
)

// ChunkMetadata carries the provenance of a stored chunk. The known fields
// are owned by the engine and always win over caller-supplied extras; any
// reserved key found in Extra is dropped on ingest.
type ChunkMetadata struct {
	Source          string            `json:"source"`
	Filename        string            `json:"filename"`
	ChunkIndex      int               `json:"chunk_index"`
	UploadTimestamp time.Time         `json:"upload_timestamp"`
	FileType        string            `json:"file_type,omitempty"`
	Extra           map[string]string `json:"extra,omitempty"`
}

// SearchResult is one ranked hit from a similarity query.
type SearchResult struct {
	ID         string        `json:"id"`
	Text       string        `json:"text"`
	Metadata   ChunkMetadata `json:"metadata"`
	Similarity float64       `json:"similarity"`
}

type record struct {
	id     string
	vector []float32
	text   string
	meta   ChunkMetadata
}

// VectorStore is an in-memory vector index with content deduplication.
// Ranking is an exhaustive cosine-similarity scan, O(n*d) per query - the
// right trade for corpora of thousands of chunks. Swapping in a partitioned
// or approximate index is the designated extension point if that ever stops
// being true.
type VectorStore struct {
	mu           sync.RWMutex
	records      []record
	ids          map[string]struct{}
	fingerprints map[string]struct{}
	dimension    int
}

// NewVectorStore creates an empty store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		ids:          make(map[string]struct{}),
		fingerprints: make(map[string]struct{}),
	}
}

// Insert adds a chunk record. A chunk whose text fingerprint is already
// present is silently dropped and Insert reports false: callers must not
// assume insertion occurred. A vector whose length differs from the stored
// dimensionality is a structural error.
func (s *VectorStore) Insert(id string, vector []float32, text string, meta ChunkMetadata) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(vector) == 0 {
		return false, fmt.Errorf("%w: empty vector for id %s", ErrDimensionMismatch, id)
	}
	if s.dimension != 0 && len(vector) != s.dimension {
		return false, fmt.Errorf("%w: got %d, store holds %d", ErrDimensionMismatch, len(vector), s.dimension)
	}

	fp := Fingerprint(text)
	if _, dup := s.fingerprints[fp]; dup {
		return false, nil
	}
	if _, taken := s.ids[id]; taken {
		return false, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}

	if s.dimension == 0 {
		s.dimension = len(vector)
	}
	s.records = append(s.records, record{id: id, vector: vector, text: text, meta: meta})
	s.ids[id] = struct{}{}
	s.fingerprints[fp] = struct{}{}
	return true, nil
}

// Rank scores the query vector against every stored vector and returns the
// top k results by cosine similarity, descending. Ties keep insertion order.
// An empty store yields an empty result, never an error.
func (s *VectorStore) Rank(query []float32, k int) []SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 || k <= 0 {
		return nil
	}

	results := make([]SearchResult, 0, len(s.records))
	for _, rec := range s.records {
		results = append(results, SearchResult{
			ID:         rec.id,
			Text:       rec.text,
			Metadata:   rec.meta,
			Similarity: cosineSimilarity(query, rec.vector),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if k < len(results) {
		results = results[:k]
	}
	return results
}

// DeleteBySource removes every record whose metadata source equals the
// argument, retracting each fingerprint. Returns the number removed; zero
// matches is not an error.
func (s *VectorStore) DeleteBySource(source string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	removed := 0
	for _, rec := range s.records {
		if rec.meta.Source == source {
			delete(s.fingerprints, Fingerprint(rec.text))
			delete(s.ids, rec.id)
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	s.records = kept
	if len(s.records) == 0 {
		s.dimension = 0
	}
	return removed
}

// Clear drops all records and fingerprints.
func (s *VectorStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.ids = make(map[string]struct{})
	s.fingerprints = make(map[string]struct{})
	s.dimension = 0
}

// Len returns the number of stored chunks.
func (s *VectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Contents is the read-only projection consumed by listing endpoints.
type Contents struct {
	IDs       []string        `json:"ids"`
	Texts     []string        `json:"documents"`
	Metadatas []ChunkMetadata `json:"metadatas"`
}

// Get returns all chunk ids, texts and metadata in insertion order.
func (s *VectorStore) Get() Contents {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := Contents{
		IDs:       make([]string, 0, len(s.records)),
		Texts:     make([]string, 0, len(s.records)),
		Metadatas: make([]ChunkMetadata, 0, len(s.records)),
	}
	for _, rec := range s.records {
		out.IDs = append(out.IDs, rec.id)
		out.Texts = append(out.Texts, rec.text)
		out.Metadatas = append(out.Metadatas, rec.meta)
	}
	return out
}

// Metadatas returns a copy of every stored chunk's metadata in insertion order.
func (s *VectorStore) Metadatas() []ChunkMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metas := make([]ChunkMetadata, 0, len(s.records))
	for _, rec := range s.records {
		metas = append(metas, rec.meta)
	}
	return metas
}

// SourcesByFilename resolves the distinct source values whose stored
// filename matches the argument.
func (s *VectorStore) SourcesByFilename(filename string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var sources []string
	for _, rec := range s.records {
		if rec.meta.Filename != filename {
			continue
		}
		if _, ok := seen[rec.meta.Source]; ok {
			continue
		}
		seen[rec.meta.Source] = struct{}{}
		sources = append(sources, rec.meta.Source)
	}
	return sources
}

// cosineSimilarity is dot(a,b)/(|a|*|b|). Vectors of different lengths are
// incomparable and score 0, as does a zero-norm operand.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
