package encryption

import (
	"fmt"

	"drivemeta/internal/config"
	"drivemeta/internal/export"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration type.
// An empty type disables artifact encryption: the returned Encryptor is nil.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (export.Encryptor, error) {
	switch cfg.Type {
	case "":
		return nil, nil
	case "age":
		if cfg.RecipientPath == "" {
			return nil, fmt.Errorf("age encryption requires recipient_path to be set")
		}
		return NewAgeEncryptor(cfg.RecipientPath), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
