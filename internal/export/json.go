package export

import (
	"encoding/json"
	"fmt"

	"drivemeta/internal/meta"
)

// jsonDocument is the structured export: a summary block plus the full
// record set sorted by id.
type jsonDocument struct {
	Summary jsonSummary       `json:"summary"`
	Files   []meta.FileRecord `json:"files"`
}

type jsonSummary struct {
	GeneratedAt  string `json:"generated_at"`
	FileCount    int    `json:"file_count"`
	ForensicHash string `json:"forensic_hash_sha256"`
}

// JSONExporter writes the structured-document export.
type JSONExporter struct {
	sink  Sink
	enc   Encryptor
	clock meta.Clock
}

// NewJSONExporter creates a JSONExporter writing through the given sink.
// enc may be nil to write plaintext artifacts.
func NewJSONExporter(sink Sink, enc Encryptor, clock meta.Clock) *JSONExporter {
	if clock == nil {
		clock = meta.RealClock{}
	}
	return &JSONExporter{sink: sink, enc: enc, clock: clock}
}

var _ meta.Exporter = (*JSONExporter)(nil)

// Export renders the record set as an indented JSON document carrying the
// fingerprint in its summary block.
func (e *JSONExporter) Export(records []meta.FileRecord, fingerprint string) (string, error) {
	now := e.clock.Now()
	doc := jsonDocument{
		Summary: jsonSummary{
			GeneratedAt:  now.UTC().Format("2006-01-02 15:04:05") + " UTC",
			FileCount:    len(records),
			ForensicHash: fingerprint,
		},
		Files: sortedByID(records),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializing json export: %w", err)
	}

	name := artifactName("drive_metadata", "json", now)
	return writeArtifact(e.sink, e.enc, name, data)
}
