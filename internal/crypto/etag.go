package crypto

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// ETag вычисляет токен версии документа.
// В хеш входят регион, timestamp фиксации и тело документа, поэтому две записи
// одного id из разных регионов всегда получают разные ETag.
func ETag(region string, timestamp int64, body []byte) (string, error) {
	h, err := blake2b.New(16, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create hash: %w", err)
	}

	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(timestamp))

	h.Write([]byte(region))
	h.Write([]byte{0})
	h.Write(ts[:])
	h.Write(body)

	return `"` + hex.EncodeToString(h.Sum(nil)) + `"`, nil
}
