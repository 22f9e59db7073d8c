/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keypair

import (
	"crypto/ecdsa"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/vc-di-ecdsa/codec"
)

func newInitialized(t *testing.T, c Curve) *ECKeypair {
	t.Helper()

	kp, err := New(c, &Options{Controller: "did:example:123"})
	require.NoError(t, err)
	require.NoError(t, kp.Initialize())

	return kp
}

func TestNew(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		kp, err := New(P256, nil)
		require.NoError(t, err)
		require.Equal(t, P256, kp.Curve())
		require.Nil(t, kp.PublicKey())
		require.Nil(t, kp.PrivateKey())
	})

	t.Run("failure: id does not begin with controller", func(t *testing.T) {
		_, err := New(P256, &Options{ID: "did:example:other#key-1", Controller: "did:example:123"})
		require.ErrorIs(t, err, ErrInvalidKeypairContent)
	})
}

func TestInitialize(t *testing.T) {
	for _, c := range []Curve{P256, P384} {
		t.Run(c.Name(), func(t *testing.T) {
			kp := newInitialized(t, c)

			require.NotNil(t, kp.PublicKey())
			require.NotNil(t, kp.PrivateKey())

			fp, err := kp.GenerateFingerprint()
			require.NoError(t, err)
			require.Equal(t, "did:example:123#"+fp, kp.ID)
		})
	}
}

func TestFingerprint(t *testing.T) {
	t.Run("success: round trip", func(t *testing.T) {
		for _, c := range []Curve{P256, P384} {
			kp := newInitialized(t, c)

			fp, err := kp.GenerateFingerprint()
			require.NoError(t, err)
			require.Equal(t, byte('z'), fp[0])
			require.True(t, kp.VerifyFingerprint(fp))
			require.False(t, kp.VerifyFingerprint(fp+"x"))
		}
	})

	t.Run("success: pure function of curve and public point", func(t *testing.T) {
		kp := newInitialized(t, P256)

		fp1, err := kp.GenerateFingerprint()
		require.NoError(t, err)

		clone, err := New(P256, &Options{PublicKey: kp.PublicKey()})
		require.NoError(t, err)

		fp2, err := clone.GenerateFingerprint()
		require.NoError(t, err)
		require.Equal(t, fp1, fp2)
	})

	t.Run("failure: no public key", func(t *testing.T) {
		kp, err := New(P256, nil)
		require.NoError(t, err)

		_, err = kp.GenerateFingerprint()
		require.ErrorIs(t, err, ErrInvalidKeypairContent)
		require.False(t, kp.VerifyFingerprint("zfoo"))
	})
}

func TestMaterialRoundTrip(t *testing.T) {
	for _, c := range []Curve{P256, P384} {
		t.Run(c.Name(), func(t *testing.T) {
			kp := newInitialized(t, c)

			t.Run("public", func(t *testing.T) {
				material, err := ExportPublicMaterial(kp.PublicKey(), c)
				require.NoError(t, err)
				require.Len(t, material, c.MaterialSize(Public))

				mb, err := MaterialToMultibase(material, Public, c)
				require.NoError(t, err)
				require.Equal(t, byte('z'), mb[0])

				decoded, err := MultibaseToMaterial(mb, Public, c)
				require.NoError(t, err)
				require.Equal(t, material, decoded)

				pub, err := ImportPublicMaterial(material, c)
				require.NoError(t, err)
				require.True(t, pub.Equal(kp.PublicKey()))
			})

			t.Run("private", func(t *testing.T) {
				material, err := ExportPrivateMaterial(kp.PrivateKey(), c)
				require.NoError(t, err)
				require.Len(t, material, c.MaterialSize(Private))

				mb, err := MaterialToMultibase(material, Private, c)
				require.NoError(t, err)

				decoded, err := MultibaseToMaterial(mb, Private, c)
				require.NoError(t, err)
				require.Equal(t, material, decoded)

				priv, err := ImportPrivateMaterial(material, c)
				require.NoError(t, err)
				require.True(t, priv.Equal(kp.PrivateKey()))
				require.True(t, priv.PublicKey.Equal(kp.PublicKey()))
			})
		})
	}
}

func TestMaterialFailures(t *testing.T) {
	t.Run("wrong material length", func(t *testing.T) {
		_, err := ImportPublicMaterial(make([]byte, 63), P256)
		require.ErrorIs(t, err, ErrInvalidKeypairLength)

		_, err = ImportPrivateMaterial(make([]byte, 47), P384)
		require.ErrorIs(t, err, ErrInvalidKeypairLength)

		_, err = MaterialToMultibase(make([]byte, 65), Public, P256)
		require.ErrorIs(t, err, ErrInvalidKeypairLength)
	})

	t.Run("curve mismatch on export", func(t *testing.T) {
		kp := newInitialized(t, P256)

		_, err := ExportPublicMaterial(kp.PublicKey(), P384)
		require.ErrorIs(t, err, codec.ErrEncoding)

		_, err = ExportPrivateMaterial(kp.PrivateKey(), P384)
		require.ErrorIs(t, err, codec.ErrEncoding)
	})

	t.Run("multicodec mismatch", func(t *testing.T) {
		kp := newInitialized(t, P256)

		material, err := ExportPublicMaterial(kp.PublicKey(), P256)
		require.NoError(t, err)

		mb, err := MaterialToMultibase(material, Public, P256)
		require.NoError(t, err)

		_, err = MultibaseToMaterial(mb, Public, P384)
		require.ErrorIs(t, err, codec.ErrDecoding)

		_, err = MultibaseToMaterial(mb, Private, P256)
		require.ErrorIs(t, err, codec.ErrDecoding)
	})

	t.Run("zero private scalar", func(t *testing.T) {
		_, err := ImportPrivateMaterial(make([]byte, 32), P256)
		require.ErrorIs(t, err, ErrInvalidKeypairContent)
	})
}

func TestCompressedSPKIPrefix(t *testing.T) {
	// The compressed SPKI table frames the same point material the
	// multibase path compresses.
	kp := newInitialized(t, P256)

	material, err := ExportPublicMaterial(kp.PublicKey(), P256)
	require.NoError(t, err)

	compressed, err := CompressPublicMaterial(material, P256)
	require.NoError(t, err)

	der := codec.Concat(SPKICompressedPrefix(P256), compressed)
	require.Len(t, der, len(SPKICompressedPrefix(P256))+P256.CompressedSize(Public))

	decompressed, err := DecompressPublicMaterial(der[len(SPKICompressedPrefix(P256)):], P256)
	require.NoError(t, err)
	require.Equal(t, material, decompressed)
}

func TestJWKRoundTrip(t *testing.T) {
	for _, c := range []Curve{P256, P384} {
		t.Run(c.Name(), func(t *testing.T) {
			kp := newInitialized(t, c)

			pubJWK, err := KeyToJWK(kp.PublicKey(), Public, c)
			require.NoError(t, err)
			require.Equal(t, "EC", pubJWK.Kty)
			require.Equal(t, c.Name(), pubJWK.Crv)

			key, kc, err := JWKToKey(pubJWK, Public)
			require.NoError(t, err)
			require.Equal(t, c, kc)
			require.True(t, key.(*ecdsa.PublicKey).Equal(kp.PublicKey()))

			// Stable across one import/export cycle.
			again, err := KeyToJWK(key, Public, c)
			require.NoError(t, err)
			require.Equal(t, pubJWK.Kty, again.Kty)
			require.Equal(t, pubJWK.Crv, again.Crv)
			require.True(t, again.Key.(*ecdsa.PublicKey).Equal(pubJWK.Key.(*ecdsa.PublicKey)))

			privJWK, err := KeyToJWK(kp.PrivateKey(), Private, c)
			require.NoError(t, err)

			priv, _, err := JWKToKey(privJWK, Private)
			require.NoError(t, err)
			require.True(t, priv.(*ecdsa.PrivateKey).Equal(kp.PrivateKey()))
		})
	}

	t.Run("failure: private import without d", func(t *testing.T) {
		kp := newInitialized(t, P256)

		pubJWK, err := KeyToJWK(kp.PublicKey(), Public, P256)
		require.NoError(t, err)

		_, _, err = JWKToKey(pubJWK, Private)
		require.ErrorIs(t, err, codec.ErrDecoding)
	})

	t.Run("failure: wrong kty", func(t *testing.T) {
		kp := newInitialized(t, P256)

		pubJWK, err := KeyToJWK(kp.PublicKey(), Public, P256)
		require.NoError(t, err)

		pubJWK.Kty = "OKP"

		_, _, err = JWKToKey(pubJWK, Public)
		require.ErrorIs(t, err, ErrInvalidKeypairContent)
	})
}

func TestExportImport(t *testing.T) {
	t.Run("Multikey", func(t *testing.T) {
		for _, c := range []Curve{P256, P384} {
			kp := newInitialized(t, c)

			t.Run(c.Name()+" public only", func(t *testing.T) {
				vm, err := kp.Export(&ExportOptions{Type: TypeMultikey})
				require.NoError(t, err)
				require.Equal(t, TypeMultikey, vm.Type)
				require.NotEmpty(t, vm.PublicKeyMultibase)
				require.Empty(t, vm.SecretKeyMultibase)

				imported, err := Import(vm, nil)
				require.NoError(t, err)
				require.Equal(t, c, imported.Curve())
				require.True(t, imported.PublicKey().Equal(kp.PublicKey()))
				require.Nil(t, imported.PrivateKey())
			})

			t.Run(c.Name()+" both keys", func(t *testing.T) {
				vm, err := kp.Export(&ExportOptions{Type: TypeMultikey, Flag: Private})
				require.NoError(t, err)
				require.NotEmpty(t, vm.PublicKeyMultibase)
				require.NotEmpty(t, vm.SecretKeyMultibase)

				imported, err := Import(vm, nil)
				require.NoError(t, err)
				require.True(t, imported.PrivateKey().Equal(kp.PrivateKey()))
			})
		}
	})

	t.Run("JsonWebKey", func(t *testing.T) {
		kp := newInitialized(t, P256)
		kp.ID = ""

		vm, err := kp.Export(&ExportOptions{Type: TypeJSONWebKey, Flag: Private})
		require.NoError(t, err)
		require.Equal(t, TypeJSONWebKey, vm.Type)
		require.NotNil(t, vm.PublicKeyJWK)
		require.NotNil(t, vm.SecretKeyJWK)

		tp, err := JWKThumbprint(vm.PublicKeyJWK)
		require.NoError(t, err)
		require.Equal(t, "did:example:123#"+tp, vm.ID)

		imported, err := Import(vm, nil)
		require.NoError(t, err)
		require.True(t, imported.PrivateKey().Equal(kp.PrivateKey()))
	})

	t.Run("failure: export without required key", func(t *testing.T) {
		kp, err := New(P256, nil)
		require.NoError(t, err)

		_, err = kp.Export(&ExportOptions{Type: TypeMultikey})
		require.ErrorIs(t, err, ErrInvalidKeypairContent)

		_, err = kp.Export(&ExportOptions{Type: TypeJSONWebKey, Flag: Private})
		require.ErrorIs(t, err, ErrInvalidKeypairContent)
	})

	t.Run("failure: unsupported export type", func(t *testing.T) {
		kp := newInitialized(t, P256)

		_, err := kp.Export(&ExportOptions{Type: "Ed25519VerificationKey2018"})
		require.ErrorIs(t, err, ErrKeypairExport)
	})

	t.Run("failure: import empty method", func(t *testing.T) {
		_, err := Import(&VerificationMethod{Type: TypeMultikey}, nil)
		require.ErrorIs(t, err, ErrInvalidKeypairContent)

		_, err = Import(&VerificationMethod{Type: TypeJSONWebKey}, nil)
		require.ErrorIs(t, err, ErrInvalidKeypairContent)

		_, err = Import(&VerificationMethod{Type: "Unknown"}, nil)
		require.ErrorIs(t, err, ErrKeypairImport)
	})

	t.Run("failure: import curve mismatch", func(t *testing.T) {
		kp := newInitialized(t, P256)

		vm, err := kp.Export(&ExportOptions{Type: TypeMultikey})
		require.NoError(t, err)

		p384 := P384

		_, err = Import(vm, &ImportOptions{Curve: &p384})
		require.ErrorIs(t, err, ErrInvalidKeypairContent)
	})
}

func TestImportChecks(t *testing.T) {
	past := time.Now().Add(-time.Hour)

	t.Run("expired", func(t *testing.T) {
		kp := newInitialized(t, P256)
		kp.Expires = &past

		vm, err := kp.Export(&ExportOptions{Type: TypeMultikey})
		require.NoError(t, err)

		_, err = Import(vm, nil)
		require.NoError(t, err)

		_, err = Import(vm, &ImportOptions{CheckExpired: true})
		require.ErrorIs(t, err, ErrKeypairExpired)
	})

	t.Run("revoked", func(t *testing.T) {
		kp := newInitialized(t, P256)
		kp.Revoked = &past

		vm, err := kp.Export(&ExportOptions{Type: TypeMultikey})
		require.NoError(t, err)

		_, err = Import(vm, &ImportOptions{CheckRevoked: true})
		require.ErrorIs(t, err, ErrKeypairExpired)
	})

	t.Run("context", func(t *testing.T) {
		kp := newInitialized(t, P256)

		vm, err := kp.Export(&ExportOptions{Type: TypeMultikey})
		require.NoError(t, err)

		_, err = Import(vm, &ImportOptions{CheckContext: true})
		require.NoError(t, err)

		vm.Context = "https://example.com/wrong/v1"

		_, err = Import(vm, &ImportOptions{CheckContext: true})
		require.ErrorIs(t, err, ErrInvalidKeypairContent)
	})
}

func TestDigest(t *testing.T) {
	d256, err := Digest(P256, []byte("data"))
	require.NoError(t, err)
	require.Len(t, d256, 32)

	d384, err := Digest(P384, []byte("data"))
	require.NoError(t, err)
	require.Len(t, d384, 48)

	_, err = Digest(Curve(99), []byte("data"))
	require.ErrorIs(t, err, codec.ErrEncoding)
}

func TestDERFramingLengths(t *testing.T) {
	// Key material lengths after prefix stripping, per curve and flag.
	for _, tc := range []struct {
		curve   Curve
		public  int
		private int
	}{
		{P256, 64, 32},
		{P384, 96, 48},
	} {
		kp := newInitialized(t, tc.curve)

		pub, err := ExportPublicMaterial(kp.PublicKey(), tc.curve)
		require.NoError(t, err)
		require.Len(t, pub, tc.public)

		priv, err := ExportPrivateMaterial(kp.PrivateKey(), tc.curve)
		require.NoError(t, err)
		require.Len(t, priv, tc.private)
	}
}

func TestKeyGenerationIsUnique(t *testing.T) {
	a, err := ecdsa.GenerateKey(P256.EllipticCurve(), rand.Reader)
	require.NoError(t, err)

	b, err := ecdsa.GenerateKey(P256.EllipticCurve(), rand.Reader)
	require.NoError(t, err)

	require.False(t, a.Equal(b))
}
