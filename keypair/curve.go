/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keypair

import (
	"crypto"
	"crypto/elliptic"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"

	"github.com/trustbloc/vc-di-ecdsa/codec"
)

// Curve enumerates the elliptic curves supported by the ECDSA cryptosuites.
// Every curve-parameterized operation selects its digest, material lengths
// and DER prefix tables from this single value.
type Curve int

const (
	// P256 is NIST P-256, paired with SHA-256.
	P256 Curve = iota
	// P384 is NIST P-384, paired with SHA-384.
	P384
)

// Flag distinguishes public from private key material.
type Flag int

const (
	// Public selects public key material.
	Public Flag = iota
	// Private selects private key material.
	Private
)

// Multicodec table-registered codes for ECDSA key material.
const (
	MulticodecP256Pub  uint64 = 0x1200
	MulticodecP384Pub  uint64 = 0x1201
	MulticodecP256Priv uint64 = 0x1306
	MulticodecP384Priv uint64 = 0x1307
)

// CurveFromName maps a JWK/Multikey curve name to a Curve.
func CurveFromName(name string) (Curve, error) {
	switch name {
	case "P-256":
		return P256, nil
	case "P-384":
		return P384, nil
	default:
		return 0, fmt.Errorf("%w: unsupported curve %q", codec.ErrEncoding, name)
	}
}

// Name returns the JWK curve name.
func (c Curve) Name() string {
	if c == P384 {
		return "P-384"
	}

	return "P-256"
}

// EllipticCurve returns the crypto/elliptic curve parameters.
func (c Curve) EllipticCurve() elliptic.Curve {
	if c == P384 {
		return elliptic.P384()
	}

	return elliptic.P256()
}

// Hash returns the digest paired with the curve.
func (c Curve) Hash() crypto.Hash {
	if c == P384 {
		return crypto.SHA384
	}

	return crypto.SHA256
}

// CoordinateSize returns the byte length of one affine coordinate.
func (c Curve) CoordinateSize() int {
	if c == P384 {
		return 48
	}

	return 32
}

// MaterialSize returns the uncompressed key material length for the flag:
// x‖y for public keys, the scalar d for private keys.
func (c Curve) MaterialSize(f Flag) int {
	if f == Public {
		return 2 * c.CoordinateSize()
	}

	return c.CoordinateSize()
}

// CompressedSize returns the compressed key material length for the flag.
func (c Curve) CompressedSize(f Flag) int {
	if f == Public {
		return c.CoordinateSize() + 1
	}

	return c.CoordinateSize()
}

// Multicodec returns the registered multicodec code for the (curve, flag)
// pair. Its varint form is the 2-byte header prepended to multibase-encoded
// key material.
func (c Curve) Multicodec(f Flag) uint64 {
	if f == Public {
		if c == P384 {
			return MulticodecP384Pub
		}

		return MulticodecP256Pub
	}

	if c == P384 {
		return MulticodecP384Priv
	}

	return MulticodecP256Priv
}

// Digest hashes data with the digest paired with the curve: SHA-256 for
// P-256, SHA-384 for P-384.
func Digest(c Curve, data []byte) ([]byte, error) {
	switch c {
	case P256:
		d := sha256.Sum256(data)
		return d[:], nil
	case P384:
		d := sha512.Sum384(data)
		return d[:], nil
	default:
		return nil, fmt.Errorf("%w: unsupported curve", codec.ErrEncoding)
	}
}
