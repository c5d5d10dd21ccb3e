package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/ports"
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new entries.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	FallbackKeys [][]byte
}

const envelopeKey = "__encrypted__"

type encryptionMiddleware struct {
	next   ports.Journal
	config EncryptionConfig
}

// sealed is the encrypted part of a change.
type sealed struct {
	Value    any `json:"value"`
	OldValue any `json:"old_value,omitempty"`
}

// NewEncryptionMiddleware creates a middleware that encrypts change values with AES-GCM.
// Property names and timestamps stay readable in the underlying journal.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.Journal) ports.Journal {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Append(ctx context.Context, change domain.Change) error {
	plainText, err := json.Marshal(sealed{Value: change.Value, OldValue: change.OldValue})
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt change: %w", err)
	}

	envelope := domain.Change{
		Property:  change.Property,
		Value:     map[string]any{envelopeKey: base64.StdEncoding.EncodeToString(ciphertext)},
		Timestamp: change.Timestamp,
	}
	return m.next.Append(ctx, envelope)
}

func (m *encryptionMiddleware) Entries(ctx context.Context) ([]domain.Change, error) {
	envelopes, err := m.next.Entries(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Change, len(envelopes))
	for i, env := range envelopes {
		blob, ok := env.Value.(map[string]any)
		encoded, _ := blob[envelopeKey].(string)
		if !ok || encoded == "" {
			// Plain entries are never mixed into an encrypted journal.
			return nil, fmt.Errorf("entry %d is missing encrypted data envelope", i)
		}

		ciphertext, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("entry %d: failed to decode ciphertext base64: %w", i, err)
		}

		plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
		if err != nil {
			return nil, fmt.Errorf("entry %d: failed to decrypt: %w", i, err)
		}

		var s sealed
		if err := json.Unmarshal(plainText, &s); err != nil {
			return nil, fmt.Errorf("entry %d: failed to unmarshal decrypted change: %w", i, err)
		}
		out[i] = domain.Change{
			Property:  env.Property,
			Value:     s.Value,
			OldValue:  s.OldValue,
			Timestamp: env.Timestamp,
		}
	}
	return out, nil
}

func (m *encryptionMiddleware) Reset(ctx context.Context) error {
	return m.next.Reset(ctx)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	for _, key := range append([][]byte{activeKey}, fallbackKeys...) {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
