package candid

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/text/unicode/norm"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainType   = "candid/type/v1"
	DomainSource = "candid/source/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash computes the canonical identity of a type: the digest of its
// NFC-normalized canonical text. Equivalent trees that emit the same text
// share a hash.
func Hash(t Type) string {
	return hashWithDomain(DomainType, []byte(norm.NFC.String(Emit(t))))
}

// SourceHash identifies raw input bytes. It is a cache key only; two
// sources with different spelling but the same meaning get different
// source hashes and the same Hash.
func SourceHash(src []byte) string {
	return hashWithDomain(DomainSource, src)
}
