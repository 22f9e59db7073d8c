/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vermethod_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/vc-di-ecdsa/internal/testutil"
	"github.com/trustbloc/vc-di-ecdsa/keypair"
	"github.com/trustbloc/vc-di-ecdsa/vermethod"
)

func TestResolveVerificationMethod(t *testing.T) {
	loader := testutil.NewDocumentLoader(t)
	kp, vm := testutil.SigningKey(t, keypair.P256, loader)

	resolver := vermethod.NewResolver(loader)

	t.Run("success", func(t *testing.T) {
		resolved, err := resolver.ResolveVerificationMethod(vm.ID)
		require.NoError(t, err)
		require.Equal(t, vm.ID, resolved.ID)
		require.Equal(t, vm.PublicKeyMultibase, resolved.PublicKeyMultibase)

		imported, err := keypair.Import(resolved, nil)
		require.NoError(t, err)
		require.True(t, imported.PublicKey().Equal(kp.PublicKey()))
	})

	t.Run("failure: id without fragment", func(t *testing.T) {
		_, err := resolver.ResolveVerificationMethod("did:example:123")
		require.ErrorContains(t, err, "wrong id")
	})

	t.Run("failure: unknown id", func(t *testing.T) {
		_, err := resolver.ResolveVerificationMethod("did:example:unknown#key-1")
		require.ErrorContains(t, err, "resolve verification method")
	})
}

func TestPublicKeyOf(t *testing.T) {
	kp, _ := testutil.SigningKey(t, keypair.P384, nil)

	pub, err := vermethod.PublicKeyOf(kp)
	require.NoError(t, err)
	require.NotNil(t, pub.JWK)
	require.Equal(t, "P-384", pub.JWK.Crv)

	empty, err := keypair.New(keypair.P256, nil)
	require.NoError(t, err)

	_, err = vermethod.PublicKeyOf(empty)
	require.ErrorContains(t, err, "no public key")
}
