package encryption

import (
	"fmt"
	"io"

	"drivemeta/internal/export"
)

// testHeader is prepended to data by TestEncryptor to make sealed output
// clearly different from plaintext while remaining deterministic and reversible.
var testHeader = []byte("DMENC\x00\x00\x00")

// TestEncryptor is a simple, deterministic encryptor for testing.
// It prepends a fixed 8-byte header so sealed output differs from plaintext
// without requiring any crypto.
type TestEncryptor struct{}

// NewTestEncryptor creates a new TestEncryptor.
func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

var _ export.Encryptor = (*TestEncryptor)(nil)

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(testHeader); err != nil {
		return fmt.Errorf("writing test header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (e *TestEncryptor) Suffix() string { return ".enc" }

// Unseal strips the test header, for assertions in tests.
func Unseal(data []byte) ([]byte, error) {
	if len(data) < len(testHeader) {
		return nil, fmt.Errorf("sealed data shorter than header")
	}
	return data[len(testHeader):], nil
}
