// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"hash"
	"os"
	"strings"
	"syscall"

	"github.com/tidwall/gjson"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/term"
)

// IsEncrypted reports whether the document is an encrypted OpenTofu state
// envelope rather than plain JSON state.
func IsEncrypted(doc []byte) bool {
	return gjson.GetBytes(doc, "encrypted_data").Exists()
}

// encryptionMeta is the pbkdf2 key provider config embedded in the envelope.
type encryptionMeta struct {
	Salt         string `json:"salt"`
	Iterations   int    `json:"iterations"`
	HashFunction string `json:"hash_function"`
	KeyLength    int    `json:"key_length"`
}

// DecryptState decrypts an encrypted OpenTofu state envelope. The envelope
// carries the pbkdf2 parameters under meta; the payload is AES-256-GCM with
// the nonce prefixed to the ciphertext.
func DecryptState(doc []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("state is encrypted and no passphrase was provided")
	}

	var envelope struct {
		Meta          map[string]string `json:"meta"`
		EncryptedData string            `json:"encrypted_data"`
	}
	if err := json.Unmarshal(doc, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse encrypted envelope: %w", err)
	}

	meta, err := keyProviderMeta(envelope.Meta)
	if err != nil {
		return nil, err
	}

	salt, err := base64.StdEncoding.DecodeString(meta.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}

	payload, err := base64.StdEncoding.DecodeString(envelope.EncryptedData)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encrypted_data: %w", err)
	}

	var hashFn func() hash.Hash
	switch meta.HashFunction {
	case "sha256":
		hashFn = sha256.New
	case "", "sha512":
		hashFn = sha512.New
	default:
		return nil, fmt.Errorf("unsupported hash function %q", meta.HashFunction)
	}

	keyLen := meta.KeyLength
	if keyLen == 0 {
		keyLen = 32
	}

	key := pbkdf2.Key([]byte(passphrase), salt, meta.Iterations, keyLen, hashFn)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to init cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to init GCM: %w", err)
	}

	if len(payload) < gcm.NonceSize() {
		return nil, fmt.Errorf("encrypted payload is truncated")
	}

	nonce, ciphertext := payload[:gcm.NonceSize()], payload[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: wrong passphrase or corrupt state")
	}

	return plaintext, nil
}

// keyProviderMeta finds the pbkdf2 key provider entry in the envelope meta.
// Keys are of the form key_provider.pbkdf2.<name> with a base64 JSON value.
func keyProviderMeta(meta map[string]string) (*encryptionMeta, error) {
	for key, value := range meta {
		if !strings.HasPrefix(key, "key_provider.pbkdf2.") {
			continue
		}

		raw, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return nil, fmt.Errorf("failed to decode key provider meta %s: %w", key, err)
		}

		var em encryptionMeta
		if err := json.Unmarshal(raw, &em); err != nil {
			return nil, fmt.Errorf("failed to parse key provider meta %s: %w", key, err)
		}
		return &em, nil
	}

	return nil, fmt.Errorf("no pbkdf2 key provider found in encrypted state meta")
}

// GetPassphrase prompts on the terminal without echoing. It is the last stop
// of the flag > env > prompt fallback chain.
func GetPassphrase() (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("cannot prompt for passphrase without a terminal")
	}

	fmt.Fprint(os.Stderr, "Passphrase: ")
	pass, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read passphrase: %w", err)
	}

	return string(pass), nil
}
