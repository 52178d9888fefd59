// Package token выпускает и проверяет короткоживущие токены запросов к регионам.
// Токены подписываются ключом, производным от master key аккаунта.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL время жизни токена запроса
const DefaultTTL = 5 * time.Minute

// ErrAccountMismatch токен выпущен для другого аккаунта
var ErrAccountMismatch = errors.New("token issued for another account")

// Claims представляет claims токена запроса
type Claims struct {
	Region string `json:"region"` // Region предпочитаемый регион клиента
	jwt.RegisteredClaims
}

// Config содержит конфигурацию подписи
type Config struct {
	Account string
	Secret  []byte
	TTL     time.Duration
}

// Generate создает токен для запроса клиента, предпочитающего region
func Generate(cfg Config, region string) (string, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := time.Now()
	claims := Claims{
		Region: region,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-30 * time.Second)),
			Issuer:    cfg.Account,
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Validate проверяет подпись, срок действия и аккаунт токена
func Validate(cfg Config, tokenString string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Проверяем что используется правильный алгоритм подписи
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return cfg.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if claims.Issuer != cfg.Account {
		return nil, ErrAccountMismatch
	}

	return claims, nil
}
