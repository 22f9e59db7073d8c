/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keypair

import (
	"crypto"
	"crypto/ecdsa"
	"encoding/base64"
	"fmt"

	"github.com/trustbloc/kms-go/doc/jose/jwk"
	"github.com/trustbloc/kms-go/doc/jose/jwk/jwksupport"

	"github.com/trustbloc/vc-di-ecdsa/codec"
)

// KeyToJWK converts a key handle into an EC JWK. The private form carries d
// alongside the public coordinates.
func KeyToJWK(key interface{}, f Flag, c Curve) (*jwk.JWK, error) {
	switch k := key.(type) {
	case *ecdsa.PublicKey:
		if f == Private {
			return nil, fmt.Errorf("%w: public handle cannot export a private JWK", ErrInvalidKeypairContent)
		}

		if k.Curve != c.EllipticCurve() {
			return nil, fmt.Errorf("%w: key curve does not match %s", codec.ErrEncoding, c.Name())
		}

		return jwksupport.JWKFromKey(k)
	case *ecdsa.PrivateKey:
		if k.Curve != c.EllipticCurve() {
			return nil, fmt.Errorf("%w: key curve does not match %s", codec.ErrEncoding, c.Name())
		}

		if f == Public {
			return jwksupport.JWKFromKey(&k.PublicKey)
		}

		return jwksupport.JWKFromKey(k)
	default:
		return nil, fmt.Errorf("%w: unsupported key handle %T", ErrInvalidKeypairContent, key)
	}
}

// JWKToKey converts an EC JWK back into a key handle: *ecdsa.PublicKey for
// the public flag, *ecdsa.PrivateKey for the private flag.
func JWKToKey(j *jwk.JWK, f Flag) (interface{}, Curve, error) {
	if j == nil {
		return nil, 0, fmt.Errorf("%w: missing JWK", ErrInvalidKeypairContent)
	}

	if j.Kty != "EC" {
		return nil, 0, fmt.Errorf("%w: JWK kty must be EC, got %q", ErrInvalidKeypairContent, j.Kty)
	}

	c, err := CurveFromName(j.Crv)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrInvalidKeypairContent, err)
	}

	switch key := j.Key.(type) {
	case *ecdsa.PrivateKey:
		if f == Public {
			return &key.PublicKey, c, nil
		}

		return key, c, nil
	case *ecdsa.PublicKey:
		if f == Private {
			return nil, 0, fmt.Errorf("%w: JWK has no d for a private import", codec.ErrDecoding)
		}

		return key, c, nil
	default:
		return nil, 0, fmt.Errorf("%w: JWK does not hold an ECDSA key", ErrInvalidKeypairContent)
	}
}

// JWKThumbprint computes the RFC 7638 SHA-256 thumbprint of the JWK's public
// part, base64url-encoded without padding.
func JWKThumbprint(j *jwk.JWK) (string, error) {
	tp, err := j.Thumbprint(crypto.SHA256)
	if err != nil {
		return "", fmt.Errorf("%w: jwk thumbprint: %w", codec.ErrEncoding, err)
	}

	return base64.RawURLEncoding.EncodeToString(tp), nil
}
