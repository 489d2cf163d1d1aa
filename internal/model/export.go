package model

// ExportFile is either sent as a document (Bytes) or shared by Link when too large.
type ExportFile struct {
	FileName string
	Bytes    []byte
	Link     string
}
