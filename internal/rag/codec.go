package rag

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
)

// snapshotVersion tags the persisted container so a future format change is
// rejected cleanly instead of silently misparsed.
const snapshotVersion = 1

// Snapshot is the full serialized form of a VectorStore: the four parallel
// arrays plus the fingerprint set, written as one self-describing record.
type Snapshot struct {
	Version      int
	IDs          []string
	Vectors      [][]float32
	Texts        []string
	Metadatas    []ChunkMetadata
	Fingerprints []string
}

// Snapshot captures the complete in-memory state of the store.
func (s *VectorStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Version:      snapshotVersion,
		IDs:          make([]string, 0, len(s.records)),
		Vectors:      make([][]float32, 0, len(s.records)),
		Texts:        make([]string, 0, len(s.records)),
		Metadatas:    make([]ChunkMetadata, 0, len(s.records)),
		Fingerprints: make([]string, 0, len(s.fingerprints)),
	}
	for _, rec := range s.records {
		snap.IDs = append(snap.IDs, rec.id)
		snap.Vectors = append(snap.Vectors, rec.vector)
		snap.Texts = append(snap.Texts, rec.text)
		snap.Metadatas = append(snap.Metadatas, rec.meta)
	}
	for fp := range s.fingerprints {
		snap.Fingerprints = append(snap.Fingerprints, fp)
	}
	return snap
}

// Restore replaces the store's contents with a snapshot.
func (s *VectorStore) Restore(snap Snapshot) error {
	if snap.Version != snapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrBadSnapshot, snap.Version)
	}
	n := len(snap.IDs)
	if len(snap.Vectors) != n || len(snap.Texts) != n || len(snap.Metadatas) != n {
		return fmt.Errorf("%w: parallel arrays of unequal length", ErrBadSnapshot)
	}

	records := make([]record, 0, n)
	ids := make(map[string]struct{}, n)
	fingerprints := make(map[string]struct{}, len(snap.Fingerprints))
	dimension := 0

	for i := 0; i < n; i++ {
		if dimension == 0 {
			dimension = len(snap.Vectors[i])
		} else if len(snap.Vectors[i]) != dimension {
			return fmt.Errorf("%w: vector %d has dimension %d, expected %d",
				ErrBadSnapshot, i, len(snap.Vectors[i]), dimension)
		}
		records = append(records, record{
			id:     snap.IDs[i],
			vector: snap.Vectors[i],
			text:   snap.Texts[i],
			meta:   snap.Metadatas[i],
		})
		ids[snap.IDs[i]] = struct{}{}
	}

	// Older saves may predate the fingerprint list; recompute in that case.
	if len(snap.Fingerprints) > 0 {
		for _, fp := range snap.Fingerprints {
			fingerprints[fp] = struct{}{}
		}
	} else {
		for _, rec := range records {
			fingerprints[Fingerprint(rec.text)] = struct{}{}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.ids = ids
	s.fingerprints = fingerprints
	s.dimension = dimension
	return nil
}

// Encode writes the store snapshot to w.
func (s *VectorStore) Encode(w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(s.Snapshot()); err != nil {
		return fmt.Errorf("failed to encode vector store: %w", err)
	}
	return nil
}

// Decode reads a snapshot from r and restores the store from it.
func (s *VectorStore) Decode(r io.Reader) error {
	var snap Snapshot
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	return s.Restore(snap)
}

// Save writes the store to a file.
func (s *VectorStore) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := s.Encode(f); err != nil {
		return err
	}
	return f.Close()
}

// Load restores the store from a file. A missing file is not an error: the
// store is simply left in its current state.
func (s *VectorStore) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return s.Decode(f)
}
