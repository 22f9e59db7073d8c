/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package suite defines the contract shared by the Data Integrity
// cryptosuite implementations, and the error kinds they raise.
package suite

import (
	"errors"

	"github.com/trustbloc/vc-di-ecdsa/dataintegrity/models"
)

var (
	// ErrProofTransformation is returned when a proof carries the wrong type
	// or cryptosuite on entry to a suite.
	ErrProofTransformation = errors.New("proof transformation error")
	// ErrProofGeneration is returned when proof options or proof fields are
	// unusable: invalid created, unsupported curve.
	ErrProofGeneration = errors.New("proof generation error")
	// ErrProofVerification is returned when a proof value is structurally
	// malformed: bad multibase prefix, header mismatch, CBOR decode
	// failure, signature count mismatch.
	ErrProofVerification = errors.New("proof verification error")
	// ErrInvalidVerificationMethod is returned when a resolved verification
	// method lacks the key required by the operation.
	ErrInvalidVerificationMethod = errors.New("invalid verification method")
)

// A Signer creates Data Integrity proofs over JSON-LD documents.
type Signer interface {
	// CreateProof creates a proof over the given unsecured document.
	CreateProof(doc []byte, opts *models.ProofOptions) (*models.Proof, error)
	// RequiresCreated reports whether the suite requires the Created field.
	RequiresCreated() bool
}

// A Verifier verifies Data Integrity proofs over JSON-LD documents. The doc
// passed to VerifyProof must not contain the proof being verified.
type Verifier interface {
	VerifyProof(doc []byte, proof *models.Proof, opts *models.ProofOptions) error
	RequiresCreated() bool
}

// A Suite can both sign and verify.
type Suite interface {
	Signer
	Verifier
}

// SignerInitializer initializes a signing Suite.
type SignerInitializer interface {
	Signer() (Signer, error)
	Type() []string
}

// VerifierInitializer initializes a verification Suite.
type VerifierInitializer interface {
	Verifier() (Verifier, error)
	Type() []string
}
