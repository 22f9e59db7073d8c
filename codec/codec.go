/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package codec provides the byte-level encodings shared by the ECDSA
// cryptosuites: hex, multibase (base58btc and base64url without padding),
// multicodec varint headers, and deterministic CBOR.
package codec

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-varint"
)

var (
	// ErrEncoding is returned when a value cannot be encoded into the
	// requested representation.
	ErrEncoding = errors.New("encoding error")
	// ErrDecoding is returned when an encoded string or byte sequence is
	// malformed for the representation it claims to carry.
	ErrDecoding = errors.New("decoding error")
)

// HexToBytes decodes a hex string without a leading "0x".
func HexToBytes(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid hex: %w", ErrDecoding, err)
	}

	return b, nil
}

// BytesToHex encodes bytes as lowercase hex without a leading "0x".
func BytesToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// MustHexToBytes decodes a compile-time hex constant, panicking on malformed
// input. Only for use with the constant prefix tables.
func MustHexToBytes(s string) []byte {
	b, err := HexToBytes(s)
	if err != nil {
		panic(err)
	}

	return b
}

// Concat concatenates byte slices into a freshly allocated buffer.
func Concat(chunks ...[]byte) []byte {
	size := 0
	for _, c := range chunks {
		size += len(c)
	}

	out := make([]byte, 0, size)
	for _, c := range chunks {
		out = append(out, c...)
	}

	return out
}

// Base58BTCEncode encodes bytes as multibase base58btc. The result begins
// with 'z'.
func Base58BTCEncode(b []byte) (string, error) {
	s, err := multibase.Encode(multibase.Base58BTC, b)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	return s, nil
}

// Base58BTCDecode decodes a multibase base58btc string. Fails if the leading
// multibase character is not 'z' or the payload is malformed.
func Base58BTCDecode(s string) ([]byte, error) {
	return decodeMultibase(s, multibase.Base58BTC)
}

// Base64URLNoPadEncode encodes bytes as multibase base64url without padding.
// The result begins with 'u'.
func Base64URLNoPadEncode(b []byte) (string, error) {
	s, err := multibase.Encode(multibase.Base64url, b)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	return s, nil
}

// Base64URLNoPadDecode decodes a multibase base64url-no-pad string. Fails if
// the leading multibase character is not 'u' or the payload is malformed.
func Base64URLNoPadDecode(s string) ([]byte, error) {
	return decodeMultibase(s, multibase.Base64url)
}

func decodeMultibase(s string, want multibase.Encoding) ([]byte, error) {
	enc, b, err := multibase.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecoding, err)
	}

	if enc != want {
		return nil, fmt.Errorf("%w: unexpected multibase prefix %q", ErrDecoding, string(s[0]))
	}

	return b, nil
}

// PutUvarintPrefix prepends the varint encoding of a multicodec code to the
// given payload.
func PutUvarintPrefix(code uint64, payload []byte) []byte {
	return Concat(varint.ToUvarint(code), payload)
}

// ReadUvarintPrefix reads the leading varint multicodec code and returns it
// together with the remaining payload.
func ReadUvarintPrefix(b []byte) (uint64, []byte, error) {
	code, n, err := varint.FromUvarint(b)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: multicodec header: %w", ErrDecoding, err)
	}

	return code, b[n:], nil
}

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	var err error

	// Core deterministic encoding, no tags on any element. The 3-byte proof
	// value headers are raw bytes prepended outside CBOR.
	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}

	cborDecMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
}

// CBOREncode encodes a value with deterministic CBOR encoding per RFC 8949.
func CBOREncode(v interface{}) ([]byte, error) {
	b, err := cborEncMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: cbor: %w", ErrEncoding, err)
	}

	return b, nil
}

// CBORDecode decodes CBOR bytes into the given value.
func CBORDecode(b []byte, v interface{}) error {
	if err := cborDecMode.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: cbor: %w", ErrDecoding, err)
	}

	return nil
}
