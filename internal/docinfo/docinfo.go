// Package docinfo probes the source document itself for metadata the provider
// response cannot be trusted to carry: the mime type and, for PDFs, the
// original page count. The probe only sees sources delivered inline; gcs and
// url sources belong to the storage collaborator and are never fetched here.
package docinfo

import (
	"bytes"
	"encoding/base64"
	"net/http"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/bmarkwell/docslice/internal/model"
)

// Info is what the probe learned. Zero values mean the probe could not tell;
// probe failures never fail an extraction.
type Info struct {
	MimeType  string
	PageCount int
}

// Probe inspects an inline base64 source.
func Probe(src model.Source) Info {
	if src.Type != model.SourceBase64 || src.Data == "" {
		return Info{}
	}
	data, err := base64.StdEncoding.DecodeString(src.Data)
	if err != nil {
		return Info{}
	}
	return ProbeBytes(data)
}

// ProbeBytes inspects raw document bytes.
func ProbeBytes(data []byte) Info {
	if len(data) == 0 {
		return Info{}
	}
	info := Info{MimeType: http.DetectContentType(data)}
	if info.MimeType == "application/pdf" {
		if n, err := pdfPageCount(data); err == nil {
			info.PageCount = n
		}
	}
	return info
}

func pdfPageCount(data []byte) (int, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	return reader.NumPage(), nil
}
