package edn

import "github.com/zeebo/blake3"

// Canonical returns the canonical text of v: the printed form with set
// elements and map entries sorted. Equal values have equal canonical text.
func Canonical(v Value) []byte {
	return printer{canonical: true}.append(nil, v)
}

// Fingerprint returns the BLAKE3-256 digest of the canonical text of v.
func Fingerprint(v Value) [32]byte {
	return blake3.Sum256(Canonical(v))
}
