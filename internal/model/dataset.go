package model

// IngestOptions controls how a source extract is processed.
type IngestOptions struct {
	ChunkSize   int `json:"chunkSize"`   // records per emitted batch (default 500)
	PreviewRows int `json:"previewRows"` // raw-row prefix for the fast preview pass, 0 disables
}

// DatasetSpec describes one uploaded source extract. Stored alongside the
// load run for later inspection.
type DatasetSpec struct {
	FileName string        `json:"fileName"`
	Format   string        `json:"format"` // csv or xlsx
	Options  IngestOptions `json:"options"`
}
