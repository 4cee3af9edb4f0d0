package domain

// IndexSnapshot is the persisted form of the store. Vectors[i] belongs to
// Chunks[i]; persistence adapters must preserve that pairing.
type IndexSnapshot struct {
	Vectors   [][]float32
	Chunks    []Chunk
	Documents []Document
}

// Len returns the number of indexed chunks.
func (s *IndexSnapshot) Len() int {
	return len(s.Chunks)
}

// IndexStats summarises the published index.
type IndexStats struct {
	Documents  int `json:"documents"`
	Chunks     int `json:"chunks"`
	Dimensions int `json:"dimensions"`
}
