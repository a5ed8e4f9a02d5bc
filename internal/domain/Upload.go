package domain

// UploadRequest carries one spreadsheet upload.
type UploadRequest struct {
	Filename   string
	Content    []byte
	Month      string
	UploadedBy int
}

type UploadResult struct {
	NewRecords     int    `json:"newRecords"`
	UpdatedRecords int    `json:"updatedRecords"`
	TotalRows      int    `json:"totalRows"`
	SkippedRows    int    `json:"-"`
	UploadID       string `json:"uploadId"`
	ArchiveKey     string `json:"archiveKey,omitempty"`
}

// UpsertCounts is what a store reports back for a batch.
type UpsertCounts struct {
	Created int
	Updated int
}
