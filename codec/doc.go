// Package codec converts EDN values to CBOR (RFC 8949).
//
// Output uses Core Deterministic Encoding, so equal values produce
// identical bytes. EDN types without a native CBOR counterpart use
// registered tags:
//
//	bigint            tag 2 / tag 3 (only when outside the 64-bit range)
//	bigdecimal        tag 4, decimal fraction [exponent, mantissa]
//	ratio             tag 30, rational [numerator, denominator]
//	symbol, keyword   tag 39, identifier text (keywords keep their ':')
//	set               tag 258, array of unique elements
//	#inst             tag 1, epoch time
//	#uuid             tag 37, 16 byte string
//
// Characters become one-rune text strings. Lists and vectors both become
// arrays. A tagged literal without a reader becomes the map
// {"tag": tag, "value": inner}.
//
// Distinct EDN values can share an encoding (a list and a vector, a char
// and a one-rune string, 1 and 1N). Marshal fails when such values would
// collide as map keys or set elements.
package codec
