// Package export renders completed record sets into evidence artifacts.
// Exporters own serialization only: they never alter hash-relevant field
// values, and every artifact carries the forensic fingerprint it was
// computed against.
package export

import (
	"bytes"
	"fmt"
	"io"
	"time"
)

// Sink receives finished artifacts. Implementations live in internal/sink.
type Sink interface {
	// Put stores an artifact under the given name. size is the number of
	// bytes that will be read from r.
	Put(name string, r io.Reader, size int64) error

	// ValidateSetup verifies that the sink is accessible and properly configured.
	ValidateSetup() error
}

// Encryptor optionally encrypts artifacts before they reach the sink.
type Encryptor interface {
	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Suffix is appended to encrypted artifact names, e.g. ".age".
	Suffix() string
}

// writeArtifact pushes an artifact through the optional encryptor into the
// sink and returns the final artifact name.
func writeArtifact(sink Sink, enc Encryptor, name string, data []byte) (string, error) {
	if enc != nil {
		var sealed bytes.Buffer
		if err := enc.Encrypt(bytes.NewReader(data), &sealed); err != nil {
			return "", fmt.Errorf("encrypting artifact %s: %w", name, err)
		}
		name += enc.Suffix()
		data = sealed.Bytes()
	}

	if err := sink.Put(name, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", fmt.Errorf("storing artifact %s: %w", name, err)
	}
	return name, nil
}

// artifactName builds a timestamped artifact file name.
func artifactName(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, now.UTC().Format("20060102T150405Z"), ext)
}
