/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ecdsardfc2019

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

const fooBar = "foo bar"

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
	require.False(t, signer.RequiresCreated())

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

func TestSuite_CreateProof(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		for _, curve := range []keypair.Curve{keypair.P256, keypair.P384} {
			t.Run(curve.Name()+" key", func(t *testing.T) {
				tc := successCase(t, curve)

				proof, err := signerSuite(t, tc).CreateProof(tc.document, tc.proofOpts)
				require.NoError(t, err)
				require.Equal(t, models.DataIntegrityProof, proof.Type)
				require.Equal(t, SuiteType, proof.CryptoSuite)
				require.Equal(t, byte('z'), proof.ProofValue[0])
			})
		}
	})

	t.Run("failure", func(t *testing.T) {
		t.Run("unmarshal doc", func(t *testing.T) {
			tc := successCase(t, keypair.P256)
			tc.document = []byte("not JSON!")

			_, err := signerSuite(t, tc).CreateProof(tc.document, tc.proofOpts)
			require.ErrorContains(t, err, "expects JSON-LD payload")
		})

		t.Run("invalid proof/suite type", func(t *testing.T) {
			tc := successCase(t, keypair.P256)
			tc.proofOpts.ProofType = fooBar

			_, err := signerSuite(t, tc).CreateProof(tc.document, tc.proofOpts)
			require.ErrorIs(t, err, suite.ErrProofTransformation)

			tc.proofOpts.ProofType = models.DataIntegrityProof
			tc.proofOpts.SuiteType = fooBar

			_, err = signerSuite(t, tc).CreateProof(tc.document, tc.proofOpts)
			require.ErrorIs(t, err, suite.ErrProofTransformation)
		})

		t.Run("no verification method", func(t *testing.T) {
			tc := successCase(t, keypair.P256)
			tc.proofOpts.VerificationMethod = nil
			tc.proofOpts.VerificationMethodID = "did:example:unknown#key-1"

			_, err := signerSuite(t, tc).CreateProof(tc.document, tc.proofOpts)
			require.ErrorIs(t, err, suite.ErrInvalidVerificationMethod)
		})

		t.Run("canonicalize doc", func(t *testing.T) {
			tc := successCase(t, keypair.P256)
			tc.document = []byte(`{"@context": "https://unknown.example/ctx/v9", "name": "x"}`)

			_, err := signerSuite(t, tc).CreateProof(tc.document, tc.proofOpts)
			require.Error(t, err)
		})
	})
}

func TestSuite_VerifyProof(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		for _, curve := range []keypair.Curve{keypair.P256, keypair.P384} {
			t.Run(curve.Name()+" key", func(t *testing.T) {
				tc := successCase(t, curve)

				proof, err := signerSuite(t, tc).CreateProof(tc.document, tc.proofOpts)
				require.NoError(t, err)

				require.NoError(t, verifierSuite(t, tc).VerifyProof(tc.document, proof, tc.proofOpts))
			})
		}
	})

	t.Run("success: verification method resolved via loader", func(t *testing.T) {
		tc := successCase(t, keypair.P256)

		proof, err := signerSuite(t, tc).CreateProof(tc.document, tc.proofOpts)
		require.NoError(t, err)

		tc.proofOpts.VerificationMethod = nil
		tc.proofOpts.VerificationMethodID = ""

		require.NoError(t, verifierSuite(t, tc).VerifyProof(tc.document, proof, tc.proofOpts))
	})

	t.Run("failure", func(t *testing.T) {
		t.Run("decode proof signature", func(t *testing.T) {
			tc := successCase(t, keypair.P256)

			proof, err := signerSuite(t, tc).CreateProof(tc.document, tc.proofOpts)
			require.NoError(t, err)

			proof.ProofValue = "!%^@^@#%&#%#@"

			err = verifierSuite(t, tc).VerifyProof(tc.document, proof, tc.proofOpts)
			require.ErrorIs(t, err, suite.ErrProofVerification)
			require.ErrorContains(t, err, "decoding proofValue")
		})

		t.Run("tampered document", func(t *testing.T) {
			tc := successCase(t, keypair.P256)

			proof, err := signerSuite(t, tc).CreateProof(tc.document, tc.proofOpts)
			require.NoError(t, err)

			tampered, err := sjson.SetBytes(tc.document, "credentialSubject.alumniOf", "Evil School")
			require.NoError(t, err)

			err = verifierSuite(t, tc).VerifyProof(tampered, proof, tc.proofOpts)
			require.ErrorContains(t, err, "failed to verify")
		})

		t.Run("wrong cryptosuite", func(t *testing.T) {
			tc := successCase(t, keypair.P256)

			proof, err := signerSuite(t, tc).CreateProof(tc.document, tc.proofOpts)
			require.NoError(t, err)

			proof.CryptoSuite = fooBar

			err = verifierSuite(t, tc).VerifyProof(tc.document, proof, tc.proofOpts)
			require.ErrorIs(t, err, suite.ErrProofTransformation)
		})

		t.Run("invalid created", func(t *testing.T) {
			tc := successCase(t, keypair.P256)

			proof, err := signerSuite(t, tc).CreateProof(tc.document, tc.proofOpts)
			require.NoError(t, err)

			proof.Created = "not-a-datetime"

			err = verifierSuite(t, tc).VerifyProof(tc.document, proof, tc.proofOpts)
			require.ErrorIs(t, err, suite.ErrProofGeneration)
		})

		t.Run("signature by another key", func(t *testing.T) {
			tc := successCase(t, keypair.P256)

			otherTC := successCase(t, keypair.P256)

			proof, err := signerSuite(t, otherTC).CreateProof(tc.document, tc.proofOpts)
			require.NoError(t, err)

			err = verifierSuite(t, tc).VerifyProof(tc.document, proof, tc.proofOpts)
			require.ErrorContains(t, err, "failed to verify")
		})
	})
}

func TestHashData(t *testing.T) {
	// digest(proof config) ‖ digest(document), sized by curve.
	h256, err := hashData([]byte("conf"), []byte("doc"), keypair.P256)
	require.NoError(t, err)
	require.Len(t, h256, 64)

	h384, err := hashData([]byte("conf"), []byte("doc"), keypair.P384)
	require.NoError(t, err)
	require.Len(t, h384, 96)

	confHash, err := keypair.Digest(keypair.P256, []byte("conf"))
	require.NoError(t, err)
	require.Equal(t, confHash, h256[:32])
}
