package encryption

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"filippo.io/age"

	"drivemeta/internal/export"
)

// AgeEncryptor seals export artifacts with filippo.io/age to the recipients
// listed in a recipient file. Encryption uses public keys only; decryption
// happens off-host with standard age tooling, so no private key ever touches
// the collection machine.
type AgeEncryptor struct {
	recipientPath string
}

// NewAgeEncryptor creates an encryptor reading recipients from the given file.
func NewAgeEncryptor(recipientPath string) *AgeEncryptor {
	return &AgeEncryptor{recipientPath: recipientPath}
}

var _ export.Encryptor = (*AgeEncryptor)(nil)

// Encrypt reads plaintext from r and writes age ciphertext to w.
func (e *AgeEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	recipients, err := e.loadRecipients()
	if err != nil {
		return fmt.Errorf("loading recipients: %w", err)
	}

	encWriter, err := age.Encrypt(w, recipients...)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}

	if _, err := io.Copy(encWriter, r); err != nil {
		return fmt.Errorf("encrypting data: %w", err)
	}

	if err := encWriter.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}

	return nil
}

// Suffix marks sealed artifacts.
func (e *AgeEncryptor) Suffix() string { return ".age" }

// loadRecipients reads and parses the recipient file.
func (e *AgeEncryptor) loadRecipients() ([]age.Recipient, error) {
	data, err := os.ReadFile(e.recipientPath)
	if err != nil {
		return nil, fmt.Errorf("reading recipient file: %w", err)
	}

	recipients, err := age.ParseRecipients(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing recipient file: %w", err)
	}

	if len(recipients) == 0 {
		return nil, fmt.Errorf("no recipients found in %s", e.recipientPath)
	}

	return recipients, nil
}
