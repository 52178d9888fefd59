package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// SigningKeyLen длина ключа подписи запросов в байтах
const SigningKeyLen = 32

// DeriveSigningKey получает ключ подписи токенов из master key аккаунта.
// Клиент и регион вычисляют один и тот же ключ, сам master key по сети не передается.
// account используется как salt, поэтому ключи разных аккаунтов независимы.
func DeriveSigningKey(masterKey, account string) ([]byte, error) {
	if masterKey == "" {
		return nil, fmt.Errorf("master key cannot be empty")
	}
	if account == "" {
		return nil, fmt.Errorf("account cannot be empty")
	}

	reader := hkdf.New(sha256.New, []byte(masterKey), []byte(account), []byte("conflictgen request signing"))

	key := make([]byte, SigningKeyLen)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}

	return key, nil
}
