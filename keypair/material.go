/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keypair

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"fmt"

	"github.com/trustbloc/vc-di-ecdsa/codec"
)

// CompressPublicMaterial converts uncompressed x‖y public material into the
// compressed sign‖x form.
func CompressPublicMaterial(material []byte, c Curve) ([]byte, error) {
	if len(material) != c.MaterialSize(Public) {
		return nil, fmt.Errorf("%w: public material must be %d bytes for %s, got %d",
			ErrInvalidKeypairLength, c.MaterialSize(Public), c.Name(), len(material))
	}

	size := c.CoordinateSize()
	x, y := material[:size], material[size:]

	sign := byte(0x02)
	if y[size-1]&1 == 1 {
		sign = 0x03
	}

	return codec.Concat([]byte{sign}, x), nil
}

// DecompressPublicMaterial converts compressed sign‖x public material back
// into the uncompressed x‖y form.
func DecompressPublicMaterial(compressed []byte, c Curve) ([]byte, error) {
	if len(compressed) != c.CompressedSize(Public) {
		return nil, fmt.Errorf("%w: compressed material must be %d bytes for %s, got %d",
			ErrInvalidKeypairLength, c.CompressedSize(Public), c.Name(), len(compressed))
	}

	curve := c.EllipticCurve()

	x, y := elliptic.UnmarshalCompressed(curve, compressed)
	if x == nil {
		return nil, fmt.Errorf("%w: point not on %s", codec.ErrDecoding, c.Name())
	}

	size := c.CoordinateSize()
	material := make([]byte, 2*size)
	x.FillBytes(material[:size])
	y.FillBytes(material[size:])

	return material, nil
}

// MaterialToMultibase encodes raw key material as a Multikey multibase
// string: base58btc over the 2-byte multicodec varint header followed by the
// compressed key bytes. The result begins with 'z'.
func MaterialToMultibase(material []byte, f Flag, c Curve) (string, error) {
	payload := material

	if f == Public {
		compressed, err := CompressPublicMaterial(material, c)
		if err != nil {
			return "", err
		}

		payload = compressed
	} else if len(material) != c.MaterialSize(Private) {
		return "", fmt.Errorf("%w: private material must be %d bytes for %s, got %d",
			ErrInvalidKeypairLength, c.MaterialSize(Private), c.Name(), len(material))
	}

	return codec.Base58BTCEncode(codec.PutUvarintPrefix(c.Multicodec(f), payload))
}

// MultibaseToMaterial decodes a Multikey multibase string back into raw
// uncompressed key material, validating the multicodec header and the
// compressed payload length.
func MultibaseToMaterial(s string, f Flag, c Curve) ([]byte, error) {
	b, err := codec.Base58BTCDecode(s)
	if err != nil {
		return nil, err
	}

	code, payload, err := codec.ReadUvarintPrefix(b)
	if err != nil {
		return nil, err
	}

	if code != c.Multicodec(f) {
		return nil, fmt.Errorf("%w: multicodec 0x%x does not match %s %s key",
			codec.ErrDecoding, code, c.Name(), flagName(f))
	}

	if f == Public {
		return DecompressPublicMaterial(payload, c)
	}

	if len(payload) != c.CompressedSize(Private) {
		return nil, fmt.Errorf("%w: private payload must be %d bytes for %s, got %d",
			ErrInvalidKeypairLength, c.CompressedSize(Private), c.Name(), len(payload))
	}

	return payload, nil
}

// MultibaseToPublicKey decodes a Multikey multibase string into a public key
// handle.
func MultibaseToPublicKey(s string, c Curve) (*ecdsa.PublicKey, error) {
	material, err := MultibaseToMaterial(s, Public, c)
	if err != nil {
		return nil, err
	}

	return ImportPublicMaterial(material, c)
}

// MultibaseToPrivateKey decodes a Multikey multibase string into a private
// key handle.
func MultibaseToPrivateKey(s string, c Curve) (*ecdsa.PrivateKey, error) {
	material, err := MultibaseToMaterial(s, Private, c)
	if err != nil {
		return nil, err
	}

	return ImportPrivateMaterial(material, c)
}

func flagName(f Flag) string {
	if f == Private {
		return "private"
	}

	return "public"
}
