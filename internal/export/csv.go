package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"drivemeta/internal/meta"
)

// csvColumns is the fixed, sorted column set of the tabular export.
var csvColumns = []string{
	"creation_date",
	"creation_date_raw",
	"description",
	"file_type",
	"full_path",
	"id",
	"last_modifier_email",
	"last_modifier_name",
	"last_viewed_date",
	"md5_checksum",
	"mime_type",
	"modification_date",
	"modification_date_raw",
	"name",
	"owner_email",
	"owner_name",
	"parents",
	"permission_count",
	"permissions",
	"share_link",
	"shared",
	"sharing_user_email",
	"size_bytes",
	"size_formatted",
	"starred",
	"trashed",
	"version",
}

// CSVExporter writes the tabular export: key-sorted columns, records sorted
// by id, plus a sidecar fingerprint file.
type CSVExporter struct {
	sink  Sink
	enc   Encryptor
	clock meta.Clock
}

// NewCSVExporter creates a CSVExporter writing through the given sink.
// enc may be nil to write plaintext artifacts.
func NewCSVExporter(sink Sink, enc Encryptor, clock meta.Clock) *CSVExporter {
	if clock == nil {
		clock = meta.RealClock{}
	}
	return &CSVExporter{sink: sink, enc: enc, clock: clock}
}

var _ meta.Exporter = (*CSVExporter)(nil)

// Export renders the record set as CSV and stores it with its fingerprint.
func (e *CSVExporter) Export(records []meta.FileRecord, fingerprint string) (string, error) {
	sorted := sortedByID(records)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvColumns); err != nil {
		return "", fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range sorted {
		row := recordRow(r)
		line := make([]string, len(csvColumns))
		for i, col := range csvColumns {
			line[i] = row[col]
		}
		if err := w.Write(line); err != nil {
			return "", fmt.Errorf("writing csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing csv: %w", err)
	}

	name := artifactName("drive_metadata", "csv", e.clock.Now())
	artifact, err := writeArtifact(e.sink, e.enc, name, buf.Bytes())
	if err != nil {
		return "", err
	}

	if _, err := writeArtifact(e.sink, e.enc, name+".sha256", []byte(fingerprint+"\n")); err != nil {
		return "", err
	}
	return artifact, nil
}

// recordRow flattens a record into the CSV column space.
func recordRow(r meta.FileRecord) map[string]string {
	return map[string]string{
		"id":                    r.ID,
		"name":                  r.Name,
		"mime_type":             r.MimeType,
		"file_type":             r.FileType,
		"creation_date":         r.CreationTime,
		"creation_date_raw":     r.CreationTimeRaw,
		"modification_date":     r.ModificationTime,
		"modification_date_raw": r.ModificationTimeRaw,
		"last_viewed_date":      r.LastViewedTime,
		"size_bytes":            r.SizeBytes,
		"size_formatted":        r.SizeFormatted,
		"owner_email":           r.OwnerEmail,
		"owner_name":            r.OwnerName,
		"last_modifier_email":   r.LastModifierEmail,
		"last_modifier_name":    r.LastModifierName,
		"sharing_user_email":    r.SharingUserEmail,
		"full_path":             r.Path,
		"share_link":            r.ShareLink,
		"shared":                strconv.FormatBool(r.Shared),
		"trashed":               strconv.FormatBool(r.Trashed),
		"starred":               strconv.FormatBool(r.Starred),
		"description":           r.Description,
		"md5_checksum":          r.Checksum,
		"version":               r.Version,
		"permissions":           r.Permissions,
		"permission_count":      strconv.Itoa(r.PermissionCount),
		"parents":               strings.Join(r.ParentIDs, "; "),
	}
}

func sortedByID(records []meta.FileRecord) []meta.FileRecord {
	sorted := make([]meta.FileRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return sorted
}
