/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProofMapRoundTrip(t *testing.T) {
	proof := &Proof{
		Type:               DataIntegrityProof,
		CryptoSuite:        "ecdsa-rdfc-2019",
		ProofPurpose:       "assertionMethod",
		VerificationMethod: "did:example:123#key-1",
		Created:            "2023-02-24T23:36:38Z",
		ProofValue:         "zQmFoo",
	}

	m, err := proof.ToMap()
	require.NoError(t, err)
	require.Equal(t, DataIntegrityProof, m["type"])
	require.Equal(t, "ecdsa-rdfc-2019", m["cryptosuite"])
	require.NotContains(t, m, "domain")

	decoded, err := ProofFromMap(m)
	require.NoError(t, err)
	require.Equal(t, proof, decoded)
}

func TestProofFromMapIgnoresUnknownFields(t *testing.T) {
	decoded, err := ProofFromMap(map[string]interface{}{
		"type":       DataIntegrityProof,
		"proofValue": "zQmFoo",
		"nonce":      "extra",
	})
	require.NoError(t, err)
	require.Equal(t, DataIntegrityProof, decoded.Type)
	require.Equal(t, "zQmFoo", decoded.ProofValue)
}
