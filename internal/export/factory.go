package export

import (
	"fmt"

	"drivemeta/internal/meta"
)

// NewExportersFromConfig builds one exporter per requested format.
// Unknown formats are an error so a typo never silently drops an export.
func NewExportersFromConfig(formats []string, sink Sink, enc Encryptor, clock meta.Clock) ([]meta.Exporter, error) {
	exporters := make([]meta.Exporter, 0, len(formats))
	for _, format := range formats {
		switch format {
		case "csv":
			exporters = append(exporters, NewCSVExporter(sink, enc, clock))
		case "json":
			exporters = append(exporters, NewJSONExporter(sink, enc, clock))
		default:
			return nil, fmt.Errorf("unknown export format: %q", format)
		}
	}
	return exporters, nil
}
