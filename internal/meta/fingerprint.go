package meta

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// forensicFields is the subset of record fields whose change denotes a
// substantive edit. Viewing, moving, sharing, starring, and version-counter
// increments are deliberately excluded: the fingerprint tracks file content
// state, not access state.
var forensicFields = []string{
	"id",
	"name",
	"mime_type",
	"file_type",
	"creation_date_raw",
	"modification_date_raw",
	"size_bytes",
	"md5_checksum",
	"description",
	"trashed",
}

// ForensicSubset extracts the fingerprint-relevant fields of a record with
// every value stringified under fixed rules, keyed by field name.
func ForensicSubset(r FileRecord) map[string]string {
	raw := map[string]any{
		"id":                    r.ID,
		"name":                  r.Name,
		"mime_type":             r.MimeType,
		"file_type":             r.FileType,
		"creation_date_raw":     r.CreationTimeRaw,
		"modification_date_raw": r.ModificationTimeRaw,
		"size_bytes":            r.SizeBytes,
		"md5_checksum":          r.Checksum,
		"description":           r.Description,
		"trashed":               r.Trashed,
	}

	subset := make(map[string]string, len(forensicFields))
	for _, field := range forensicFields {
		subset[field] = canonicalValue(raw[field])
	}
	return subset
}

// canonicalValue stringifies a value deterministically: nil becomes the empty
// string, booleans "true"/"false", integral floats their integer form, lists a
// ";"-joined sorted sequence of trimmed elements, strings are trimmed.
func canonicalValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		if val == math.Trunc(val) && !math.IsInf(val, 0) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []string:
		elems := make([]string, 0, len(val))
		for _, e := range val {
			if trimmed := strings.TrimSpace(e); trimmed != "" {
				elems = append(elems, trimmed)
			}
		}
		sort.Strings(elems)
		return strings.Join(elems, ";")
	case string:
		return strings.TrimSpace(val)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// Fingerprint computes the forensic integrity value for a record set: the
// SHA-256 digest of the canonical serialization of every record's forensic
// subset. The result is a pure function of file content state, independent of
// input order and pagination boundaries.
func Fingerprint(records []FileRecord) (string, error) {
	sorted := make([]FileRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	files := make([]map[string]string, 0, len(sorted))
	for _, r := range sorted {
		files = append(files, ForensicSubset(r))
	}

	// encoding/json emits map keys in sorted order and no insignificant
	// whitespace, which is exactly the canonical form required here.
	canonical, err := json.Marshal(map[string]any{"files": files})
	if err != nil {
		return "", fmt.Errorf("serializing forensic data: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
