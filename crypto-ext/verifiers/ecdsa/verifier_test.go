/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ecdsa

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trustbloc/kms-go/doc/jose/jwk/jwksupport"
	"github.com/trustbloc/kms-go/spi/kms"

	"github.com/trustbloc/vc-di-ecdsa/crypto-ext/pubkey"
	signers "github.com/trustbloc/vc-di-ecdsa/crypto-ext/signers/ecdsa"
)

func newKeys(t *testing.T, curve elliptic.Curve) (*ecdsa.PrivateKey, *pubkey.PublicKey, kms.KeyType) {
	t.Helper()

	priv, err := ecdsa.GenerateKey(curve, rand.Reader)
	require.NoError(t, err)

	pubJWK, err := jwksupport.JWKFromKey(&priv.PublicKey)
	require.NoError(t, err)

	keyType := kms.ECDSAP256TypeIEEEP1363
	if curve == elliptic.P384() {
		keyType = kms.ECDSAP384TypeIEEEP1363
	}

	return priv, &pubkey.PublicKey{Type: keyType, JWK: pubJWK}, keyType
}

func TestSignVerify(t *testing.T) {
	t.Run("P-256", func(t *testing.T) {
		priv, pub, _ := newKeys(t, elliptic.P256())

		signer, err := signers.NewES256(priv)
		require.NoError(t, err)

		sig, err := signer.Sign([]byte("message"))
		require.NoError(t, err)
		require.Len(t, sig, 64)

		require.NoError(t, NewES256().Verify(sig, []byte("message"), pub))
		require.Error(t, NewES256().Verify(sig, []byte("other message"), pub))
	})

	t.Run("P-384", func(t *testing.T) {
		priv, pub, _ := newKeys(t, elliptic.P384())

		signer, err := signers.NewES384(priv)
		require.NoError(t, err)

		sig, err := signer.Sign([]byte("message"))
		require.NoError(t, err)
		require.Len(t, sig, 96)

		require.NoError(t, NewES384().Verify(sig, []byte("message"), pub))
	})
}

func TestVerifyFailures(t *testing.T) {
	priv, pub, _ := newKeys(t, elliptic.P256())

	signer, err := signers.NewES256(priv)
	require.NoError(t, err)

	sig, err := signer.Sign([]byte("message"))
	require.NoError(t, err)

	t.Run("invalid signature size", func(t *testing.T) {
		require.ErrorContains(t, NewES256().Verify(sig[:63], []byte("message"), pub), "invalid signature size")
	})

	t.Run("unsupported key type", func(t *testing.T) {
		badKey := &pubkey.PublicKey{Type: kms.ED25519Type, JWK: pub.JWK}
		require.ErrorContains(t, NewES256().Verify(sig, []byte("message"), badKey), "unsupported key type")
	})

	t.Run("bytes key", func(t *testing.T) {
		raw := elliptic.Marshal(elliptic.P256(), priv.PublicKey.X, priv.PublicKey.Y)

		bytesKey := &pubkey.PublicKey{
			Type:     kms.ECDSAP256TypeIEEEP1363,
			BytesKey: &pubkey.BytesKey{Bytes: raw},
		}

		require.NoError(t, NewES256().Verify(sig, []byte("message"), bytesKey))
	})

	t.Run("wrong key", func(t *testing.T) {
		_, otherPub, _ := newKeys(t, elliptic.P256())
		require.ErrorContains(t, NewES256().Verify(sig, []byte("message"), otherPub), "invalid signature")
	})
}

func TestSignerConstruction(t *testing.T) {
	priv, _, _ := newKeys(t, elliptic.P256())

	_, err := signers.NewES256(nil)
	require.Error(t, err)

	_, err = signers.NewES384(priv)
	require.ErrorContains(t, err, "curve mismatch")
}
