package model

import "time"

const SpreadsheetMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ColumnSpec is the resolved column order of one export.
type ColumnSpec []string

type Table struct {
	Columns ColumnSpec
	Records []Record
}

type Document struct {
	ID        string     `json:"id"`
	Bytes     []byte     `json:"-"`
	FileName  string     `json:"file_name"`
	MimeType  string     `json:"mime_type"`
	Columns   ColumnSpec `json:"columns"`
	Rows      int        `json:"rows"`
	CreatedAt time.Time  `json:"created_at"`
}

func (d Document) Size() int64 {
	return int64(len(d.Bytes))
}
