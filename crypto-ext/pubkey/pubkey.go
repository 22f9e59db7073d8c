/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package pubkey models a resolved verification key as handed to the
// low-level signature verifiers.
package pubkey

import (
	"github.com/trustbloc/kms-go/doc/jose/jwk"
	"github.com/trustbloc/kms-go/spi/kms"
)

// BytesKey contains the raw bytes of a public key: an uncompressed elliptic
// curve point.
type BytesKey struct {
	Bytes []byte
}

// PublicKey contains a result of verification method resolution. Exactly one
// of BytesKey and JWK is set.
type PublicKey struct {
	Type kms.KeyType

	BytesKey *BytesKey
	JWK      *jwk.JWK
}
