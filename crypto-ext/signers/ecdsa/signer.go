/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ecdsa provides P1363-format ECDSA signers over crypto/ecdsa
// private keys, the signing counterpart of the ecdsa verifiers.
package ecdsa

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
)

const (
	p256KeySize = 32
	p384KeySize = 48
)

// Signer signs messages with an ECDSA private key, emitting fixed-size
// IEEE P1363 r‖s signatures.
type Signer struct {
	privKey *ecdsa.PrivateKey
	keySize int
	hash    crypto.Hash
}

// Sign hashes msg with the curve's digest and signs it, returning the
// signature as r‖s with both halves padded to the curve size.
func (s *Signer) Sign(msg []byte) ([]byte, error) {
	hasher := s.hash.New()

	_, err := hasher.Write(msg)
	if err != nil {
		return nil, errors.New("ecdsa: hash error")
	}

	digest := hasher.Sum(nil)

	r, sig, err := ecdsa.Sign(rand.Reader, s.privKey, digest)
	if err != nil {
		return nil, fmt.Errorf("ecdsa: sign: %w", err)
	}

	out := make([]byte, 2*s.keySize)
	r.FillBytes(out[:s.keySize])
	sig.FillBytes(out[s.keySize:])

	return out, nil
}

// NewES256 creates a signer producing ECDSA P-256 signatures over SHA-256.
func NewES256(privKey *ecdsa.PrivateKey) (*Signer, error) {
	return newSigner(privKey, elliptic.P256(), p256KeySize, crypto.SHA256)
}

// NewES384 creates a signer producing ECDSA P-384 signatures over SHA-384.
func NewES384(privKey *ecdsa.PrivateKey) (*Signer, error) {
	return newSigner(privKey, elliptic.P384(), p384KeySize, crypto.SHA384)
}

func newSigner(privKey *ecdsa.PrivateKey, curve elliptic.Curve, keySize int, hash crypto.Hash) (*Signer, error) {
	if privKey == nil {
		return nil, errors.New("ecdsa: missing private key")
	}

	if privKey.Curve != curve {
		return nil, errors.New("ecdsa: private key curve mismatch")
	}

	return &Signer{privKey: privKey, keySize: keySize, hash: hash}, nil
}
