package model

// SourceType identifies where the document bytes live.
type SourceType string

const (
	SourceGCS    SourceType = "gcs"
	SourceURL    SourceType = "url"
	SourceBase64 SourceType = "base64"
)

// Source points at the document handed to the extraction provider.
type Source struct {
	Type SourceType `json:"type"`
	URI  string     `json:"uri,omitempty"`
	Data string     `json:"data,omitempty"` // base64 document bytes
}

// ExtractionOptions are caller knobs forwarded from the provider call.
type ExtractionOptions struct {
	SkipOCR            bool `json:"skipOcr,omitempty"`
	SkipTableStructure bool `json:"skipTableStructure,omitempty"`
	Timeout            int  `json:"timeout,omitempty"` // seconds, provider call budget
}

// ExtractionInput identifies the document being normalized. It is produced by
// the collaborator that called the provider; this core only reads it.
type ExtractionInput struct {
	DocumentID string             `json:"documentId"`
	Filename   string             `json:"filename"`
	Source     Source             `json:"source"`
	Options    *ExtractionOptions `json:"options,omitempty"`
}
