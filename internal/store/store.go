package store

import (
	"context"
	"encoding/json"
	"log/slog"

	"barrabusiness/pkg/domain"
)

// Store persists the single record document. Load returns the current
// document; Save overwrites it wholesale. There are no partial updates:
// callers read-modify-write the full document.
type Store interface {
	Load(ctx context.Context) (domain.Document, error)
	Save(ctx context.Context, doc domain.Document) error
}

// decodeDocument turns a persisted payload into a document. A corrupt
// payload is treated as absent: the empty document is returned and the
// failure is logged, never propagated.
func decodeDocument(data []byte) domain.Document {
	if len(data) == 0 {
		return domain.EmptyDocument()
	}
	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Warn("store: discarding malformed document", "err", err)
		return domain.EmptyDocument()
	}
	doc.Normalize()
	return doc
}

func encodeDocument(doc domain.Document) ([]byte, error) {
	doc.Normalize()
	return json.Marshal(doc)
}
