/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ecdsa provides P1363-format ECDSA signature verifiers for the
// curves of the ECDSA Data Integrity cryptosuites.
package ecdsa

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"errors"
	"fmt"
	"math/big"
	"slices"

	"github.com/trustbloc/kms-go/spi/kms"

	"github.com/trustbloc/vc-di-ecdsa/crypto-ext/pubkey"
)

const (
	p256KeySize = 32
	p384KeySize = 48
)

type ellipticCurve struct {
	curve   elliptic.Curve
	keySize int
	hash    crypto.Hash
}

// Verifier verifies elliptic curve signatures in IEEE P1363 r‖s form.
type Verifier struct {
	ec         ellipticCurve
	kmsKeyType []kms.KeyType
}

// SupportedKeyType checks if verifier supports given key.
func (sv *Verifier) SupportedKeyType(keyType kms.KeyType) bool {
	return slices.Contains(sv.kmsKeyType, keyType)
}

func (sv *Verifier) parseKey(pubKey *pubkey.PublicKey) (*ecdsa.PublicKey, error) {
	if !sv.SupportedKeyType(pubKey.Type) {
		return nil, fmt.Errorf("unsupported key type %s", pubKey.Type)
	}

	var ecdsaPubKey *ecdsa.PublicKey

	if pubKey.JWK == nil {
		var err error

		ecdsaPubKey, err = sv.createECDSAPublicKey(pubKey.BytesKey.Bytes)
		if err != nil {
			return nil, fmt.Errorf("ecdsa: create public key from bytes: %w", err)
		}
	} else {
		var ok bool
		ecdsaPubKey, ok = pubKey.JWK.Key.(*ecdsa.PublicKey)
		if !ok {
			return nil, errors.New("ecdsa: invalid public key type")
		}
	}

	return ecdsaPubKey, nil
}

// Verify verifies the signature. The message is hashed with the curve's
// digest before the ECDSA check, so callers pass the raw signed data.
func (sv *Verifier) Verify(signature, msg []byte, pubKey *pubkey.PublicKey) error {
	ecdsaPubKey, err := sv.parseKey(pubKey)
	if err != nil {
		return err
	}

	ec := sv.ec

	if len(signature) != 2*ec.keySize {
		return errors.New("ecdsa: invalid signature size")
	}

	hasher := ec.hash.New()

	_, err = hasher.Write(msg)
	if err != nil {
		return errors.New("ecdsa: hash error")
	}

	hash := hasher.Sum(nil)

	r := big.NewInt(0).SetBytes(signature[:ec.keySize])
	s := big.NewInt(0).SetBytes(signature[ec.keySize:])

	verified := ecdsa.Verify(ecdsaPubKey, hash, r, s)
	if !verified {
		return errors.New("ecdsa: invalid signature")
	}

	return nil
}

func (sv *Verifier) createECDSAPublicKey(pubKeyBytes []byte) (*ecdsa.PublicKey, error) {
	curve := sv.ec.curve

	x, y := elliptic.Unmarshal(curve, pubKeyBytes)
	if x == nil {
		return nil, errors.New("invalid public key bytes")
	}

	return &ecdsa.PublicKey{
		Curve: curve,
		X:     x,
		Y:     y,
	}, nil
}

// NewES256 creates a new signature verifier that verifies a ECDSA P-256
// signature taking public key bytes and JSON Web Key as input.
func NewES256() *Verifier {
	return &Verifier{
		ec: ellipticCurve{
			curve:   elliptic.P256(),
			keySize: p256KeySize,
			hash:    crypto.SHA256,
		},
		kmsKeyType: []kms.KeyType{kms.ECDSAP256TypeIEEEP1363},
	}
}

// NewES384 creates a new signature verifier that verifies a ECDSA P-384
// signature taking public key bytes and JSON Web Key as input.
func NewES384() *Verifier {
	return &Verifier{
		ec: ellipticCurve{
			curve:   elliptic.P384(),
			keySize: p384KeySize,
			hash:    crypto.SHA384,
		},
		kmsKeyType: []kms.KeyType{kms.ECDSAP384TypeIEEEP1363},
	}
}
