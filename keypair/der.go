/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keypair

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/x509"
	"fmt"
	"math/big"

	"github.com/trustbloc/vc-di-ecdsa/codec"
)

// Canonical DER framing for P-256 and P-384 key material. Key export is
// required to reproduce these byte-for-byte; anything else is rejected.
var (
	// SPKI prefixes for uncompressed public points, ending with the 0x04
	// uncompressed-point marker.
	spkiPrefixP256 = codec.MustHexToBytes("3059301306072a8648ce3d020106082a8648ce3d03010703420004")
	spkiPrefixP384 = codec.MustHexToBytes("3076301006072a8648ce3d020106052b8104002203620004")

	// SPKI prefixes for compressed public points, up to but not including
	// the 0x02/0x03 sign byte.
	spkiCompressedPrefixP256 = codec.MustHexToBytes("3039301306072a8648ce3d020106082a8648ce3d030107032200")
	spkiCompressedPrefixP384 = codec.MustHexToBytes("3046301006072a8648ce3d020106052b81040022033200")

	// PKCS#8 prefixes, up to but not including the private scalar.
	pkcs8PrefixP256 = codec.MustHexToBytes("308187020100301306072a8648ce3d020106082a8648ce3d030107046d306b0201010420")
	pkcs8PrefixP384 = codec.MustHexToBytes("3081b6020100301006072a8648ce3d020106052b8104002204819e30819b0201010430")

	// PKCS#8 footers: the 6 bytes of ASN.1 envelope between the private
	// scalar and the trailing uncompressed public point.
	pkcs8FooterP256 = codec.MustHexToBytes("a14403420004")
	pkcs8FooterP384 = codec.MustHexToBytes("a16403620004")
)

// pkcs8FooterLength is the ASN.1 envelope length between the PKCS#8 private
// scalar and the embedded public point.
const pkcs8FooterLength = 6

func spkiPrefix(c Curve) []byte {
	if c == P384 {
		return spkiPrefixP384
	}

	return spkiPrefixP256
}

// SPKICompressedPrefix returns the SPKI prefix for a compressed public point
// on the given curve, up to but not including the point's sign byte.
func SPKICompressedPrefix(c Curve) []byte {
	if c == P384 {
		return spkiCompressedPrefixP384
	}

	return spkiCompressedPrefixP256
}

func pkcs8Prefix(c Curve) []byte {
	if c == P384 {
		return pkcs8PrefixP384
	}

	return pkcs8PrefixP256
}

func pkcs8Footer(c Curve) []byte {
	if c == P384 {
		return pkcs8FooterP384
	}

	return pkcs8FooterP256
}

// ExportPublicMaterial exports a public key as its raw x‖y material,
// enforcing bit-exact SPKI framing on the way.
func ExportPublicMaterial(pub *ecdsa.PublicKey, c Curve) ([]byte, error) {
	if pub == nil {
		return nil, fmt.Errorf("%w: no public key", ErrInvalidKeypairContent)
	}

	if pub.Curve != c.EllipticCurve() {
		return nil, fmt.Errorf("%w: key curve does not match %s", codec.ErrEncoding, c.Name())
	}

	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeypairExport, err)
	}

	prefix := spkiPrefix(c)

	if !bytes.HasPrefix(der, prefix) {
		return nil, fmt.Errorf("%w: SPKI prefix mismatch for %s", codec.ErrEncoding, c.Name())
	}

	if len(der) != len(prefix)+c.MaterialSize(Public) {
		return nil, fmt.Errorf("%w: SPKI length %d", ErrKeypairExport, len(der))
	}

	return der[len(prefix):], nil
}

// ExportPrivateMaterial exports a private key as its raw scalar material,
// enforcing bit-exact PKCS#8 framing on the way.
func ExportPrivateMaterial(priv *ecdsa.PrivateKey, c Curve) ([]byte, error) {
	if priv == nil {
		return nil, fmt.Errorf("%w: no private key", ErrInvalidKeypairContent)
	}

	if priv.Curve != c.EllipticCurve() {
		return nil, fmt.Errorf("%w: key curve does not match %s", codec.ErrEncoding, c.Name())
	}

	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeypairExport, err)
	}

	prefix := pkcs8Prefix(c)

	if !bytes.HasPrefix(der, prefix) {
		return nil, fmt.Errorf("%w: PKCS#8 prefix mismatch for %s", codec.ErrEncoding, c.Name())
	}

	privLen := c.MaterialSize(Private)

	if len(der) != len(prefix)+privLen+pkcs8FooterLength+c.MaterialSize(Public) {
		return nil, fmt.Errorf("%w: PKCS#8 length %d", ErrKeypairExport, len(der))
	}

	if !bytes.Equal(der[len(prefix)+privLen:len(prefix)+privLen+pkcs8FooterLength], pkcs8Footer(c)) {
		return nil, fmt.Errorf("%w: PKCS#8 footer mismatch for %s", ErrKeypairExport, c.Name())
	}

	return der[len(prefix) : len(prefix)+privLen], nil
}

// ImportPublicMaterial reconstructs a public key handle from raw x‖y
// material by reframing it as SPKI and parsing it back. The parse round-trip
// normalizes the point and rejects coordinates off the curve.
func ImportPublicMaterial(material []byte, c Curve) (*ecdsa.PublicKey, error) {
	if len(material) != c.MaterialSize(Public) {
		return nil, fmt.Errorf("%w: public material must be %d bytes for %s, got %d",
			ErrInvalidKeypairLength, c.MaterialSize(Public), c.Name(), len(material))
	}

	der := codec.Concat(spkiPrefix(c), material)

	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeypairImport, err)
	}

	pub, ok := key.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: SPKI does not hold an ECDSA key", ErrKeypairImport)
	}

	return pub, nil
}

// ImportPrivateMaterial reconstructs a private key handle from the raw
// scalar, re-deriving the public point from d.
func ImportPrivateMaterial(material []byte, c Curve) (*ecdsa.PrivateKey, error) {
	if len(material) != c.MaterialSize(Private) {
		return nil, fmt.Errorf("%w: private material must be %d bytes for %s, got %d",
			ErrInvalidKeypairLength, c.MaterialSize(Private), c.Name(), len(material))
	}

	curve := c.EllipticCurve()
	d := new(big.Int).SetBytes(material)

	if d.Sign() == 0 || d.Cmp(curve.Params().N) >= 0 {
		return nil, fmt.Errorf("%w: private scalar out of range", ErrInvalidKeypairContent)
	}

	x, y := curve.ScalarBaseMult(material)

	return &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: curve, X: x, Y: y},
		D:         d,
	}, nil
}
