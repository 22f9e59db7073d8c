/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ecdsajcs2019

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/sjson"

	"github.com/trustbloc/vc-di-ecdsa/dataintegrity/models"
	"github.com/trustbloc/vc-di-ecdsa/dataintegrity/suite"
	"github.com/trustbloc/vc-di-ecdsa/internal/testutil"
	"github.com/trustbloc/vc-di-ecdsa/keypair"
)

type testCase struct {
	kp        *keypair.ECKeypair
	loader    *testutil.DocumentLoader
	proofOpts *models.ProofOptions
	document  []byte
}

func successCase(t *testing.T, curve keypair.Curve) *testCase {
	t.Helper()

	loader := testutil.NewDocumentLoader(t)
	kp, vm := testutil.SigningKey(t, curve, loader)

	return &testCase{
		kp:     kp,
		loader: loader,
		proofOpts: &models.ProofOptions{
			VerificationMethod:   vm,
			VerificationMethodID: vm.ID,
			SuiteType:            SuiteType,
			ProofType:            models.DataIntegrityProof,
			Purpose:              "assertionMethod",
			Created:              time.Now().UTC(),
		},
		document: testutil.AlumniCredential(),
	}
}

func signerSuite(t *testing.T, tc *testCase) suite.Signer {
	t.Helper()

	init := NewSignerInitializer(&SignerInitializerOptions{
		LDDocumentLoader: tc.loader,
		SignerGetter:     WithLocalKeypairSigner(tc.kp),
	})

	signer, err := init.Signer()
	require.NoError(t, err)

	return signer
}

func verifierSuite(t *testing.T, tc *testCase) suite.Verifier {
	t.Helper()

	init := NewVerifierInitializer(&VerifierInitializerOptions{
		LDDocumentLoader: tc.loader,
	})

	verifier, err := init.Verifier()
	require.NoError(t, err)

	return verifier
}

func TestSuite_SignVerify(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		for _, curve := range []keypair.Curve{keypair.P256, keypair.P384} {
			t.Run(curve.Name()+" key", func(t *testing.T) {
				tc := successCase(t, curve)

				proof, err := signerSuite(t, tc).CreateProof(tc.document, tc.proofOpts)
				require.NoError(t, err)
				require.Equal(t, SuiteType, proof.CryptoSuite)
				require.Equal(t, byte('z'), proof.ProofValue[0])

				require.NoError(t, verifierSuite(t, tc).VerifyProof(tc.document, proof, tc.proofOpts))
			})
		}
	})

	t.Run("success: non-JSON-LD JSON document", func(t *testing.T) {
		// JCS does not interpret the document as JSON-LD, so arbitrary
		// JSON is fine.
		tc := successCase(t, keypair.P256)
		tc.document = []byte(`{"free": "form", "n": [3, 2, 1]}`)

		proof, err := signerSuite(t, tc).CreateProof(tc.document, tc.proofOpts)
		require.NoError(t, err)

		require.NoError(t, verifierSuite(t, tc).VerifyProof(tc.document, proof, tc.proofOpts))
	})

	t.Run("failure: tampered document", func(t *testing.T) {
		tc := successCase(t, keypair.P256)

		proof, err := signerSuite(t, tc).CreateProof(tc.document, tc.proofOpts)
		require.NoError(t, err)

		tampered, err := sjson.SetBytes(tc.document, "credentialSubject.alumniOf", "Evil School")
		require.NoError(t, err)

		err = verifierSuite(t, tc).VerifyProof(tampered, proof, tc.proofOpts)
		require.ErrorContains(t, err, "failed to verify")
	})

	t.Run("failure: wrong proof type", func(t *testing.T) {
		tc := successCase(t, keypair.P256)
		tc.proofOpts.ProofType = "LegacyProof"

		_, err := signerSuite(t, tc).CreateProof(tc.document, tc.proofOpts)
		require.ErrorIs(t, err, suite.ErrProofTransformation)
	})

	t.Run("failure: bad proofValue encoding", func(t *testing.T) {
		tc := successCase(t, keypair.P256)

		proof, err := signerSuite(t, tc).CreateProof(tc.document, tc.proofOpts)
		require.NoError(t, err)

		proof.ProofValue = "uNotBase58"

		err = verifierSuite(t, tc).VerifyProof(tc.document, proof, tc.proofOpts)
		require.ErrorIs(t, err, suite.ErrProofVerification)
	})

	t.Run("failure: invalid created", func(t *testing.T) {
		tc := successCase(t, keypair.P256)

		proof, err := signerSuite(t, tc).CreateProof(tc.document, tc.proofOpts)
		require.NoError(t, err)

		proof.Created = "yesterday"

		err = verifierSuite(t, tc).VerifyProof(tc.document, proof, tc.proofOpts)
		require.ErrorIs(t, err, suite.ErrProofGeneration)
	})
}
