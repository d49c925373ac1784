package models

import "time"

type SourceType string

const (
	SourceSQL   SourceType = "sql"
	SourceExcel SourceType = "excel"
)

// ParsedFile is the tabular content of an uploaded spreadsheet.
type ParsedFile struct {
	FileName string   `firestore:"fileName" json:"fileName"`
	Columns  []string `firestore:"columns" json:"columns"`
	Rows     []Row    `firestore:"rows" json:"rows"`
}

// CustomDatasetEntry is a user-added catalog item, persisted verbatim.
type CustomDatasetEntry struct {
	Dataset    DatasetMeta `firestore:"dataset" json:"dataset"`
	SourceType SourceType  `firestore:"sourceType" json:"sourceType"`
	Query      string      `firestore:"query,omitempty" json:"query,omitempty"`
	ParsedFile *ParsedFile `firestore:"parsedFile,omitempty" json:"parsedFile,omitempty"`
	CreatedAt  time.Time   `firestore:"createdAt" json:"createdAt"`
}
