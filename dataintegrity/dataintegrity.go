/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package dataintegrity provides the entry points for securing and
// verifying JSON-LD documents with the ECDSA Data Integrity cryptosuites.
package dataintegrity

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/trustbloc/vc-di-ecdsa/dataintegrity/models"
	"github.com/trustbloc/vc-di-ecdsa/dataintegrity/suite"
	"github.com/trustbloc/vc-di-ecdsa/keypair"
	jsonutil "github.com/trustbloc/vc-di-ecdsa/util/json"
)

var (
	// ErrUnsupportedSuite is returned when a Signer or Verifier is required
	// to use a cryptographic suite for which it doesn't have a suite.Signer
	// or suite.Verifier (respectively) initialized.
	ErrUnsupportedSuite = errors.New("data integrity proof requires unsupported cryptographic suite")
	// ErrMissingProof is returned when a secured document carries no proof.
	ErrMissingProof = errors.New("secured document carries no proof")
)

const proofKey = "proof"

// Signer creates Data Integrity proofs and attaches them to documents.
type Signer struct {
	suites map[string]suite.Signer
}

// NewSigner initializes a Signer with the given suite initializers.
func NewSigner(initializers ...suite.SignerInitializer) (*Signer, error) {
	signer := &Signer{suites: map[string]suite.Signer{}}

	for _, init := range initializers {
		signerSuite, err := init.Signer()
		if err != nil {
			return nil, err
		}

		for _, t := range init.Type() {
			signer.suites[t] = signerSuite
		}
	}

	return signer, nil
}

// AddProof secures the document with a proof of the cryptosuite selected by
// opts.SuiteType, returning the secured document.
func (s *Signer) AddProof(doc []byte, opts *models.ProofOptions) ([]byte, error) {
	signerSuite, ok := s.suites[opts.SuiteType]
	if !ok {
		return nil, ErrUnsupportedSuite
	}

	if opts.ProofType == "" {
		opts.ProofType = models.DataIntegrityProof
	}

	if opts.Created.IsZero() {
		opts.Created = time.Now().UTC()
	}

	if opts.VerificationMethodID == "" && opts.VerificationMethod != nil {
		opts.VerificationMethodID = opts.VerificationMethod.ID
	}

	proof, err := signerSuite.CreateProof(doc, opts)
	if err != nil {
		return nil, err
	}

	docMap, err := jsonutil.ToMap(doc)
	if err != nil {
		return nil, err
	}

	proofMap, err := proof.ToMap()
	if err != nil {
		return nil, err
	}

	docMap[proofKey] = proofMap

	return json.Marshal(docMap)
}

// Verifier verifies Data Integrity proofs.
type Verifier struct {
	suites map[string]suite.Verifier
}

// NewVerifier initializes a Verifier with the given suite initializers.
func NewVerifier(initializers ...suite.VerifierInitializer) (*Verifier, error) {
	verifier := &Verifier{suites: map[string]suite.Verifier{}}

	for _, init := range initializers {
		verifierSuite, err := init.Verifier()
		if err != nil {
			return nil, err
		}

		for _, t := range init.Type() {
			verifier.suites[t] = verifierSuite
		}
	}

	return verifier, nil
}

// VerifyProof verifies the proof attached to the secured document. The
// verified document, without its proof, is returned only on success. A
// failing signature check yields {Verified: false}; structural failures are
// returned as errors.
func (v *Verifier) VerifyProof(securedDoc []byte, opts *models.ProofOptions) (*models.VerificationResult, error) {
	docMap, err := jsonutil.ToMap(securedDoc)
	if err != nil {
		return nil, err
	}

	proofMap, ok := docMap[proofKey].(map[string]interface{})
	if !ok {
		return nil, ErrMissingProof
	}

	proof, err := models.ProofFromMap(proofMap)
	if err != nil {
		return nil, err
	}

	verifierSuite, ok := v.suites[proof.CryptoSuite]
	if !ok {
		return nil, ErrUnsupportedSuite
	}

	unsecured := jsonutil.CopyExcept(docMap, proofKey)

	unsecuredBytes, err := json.Marshal(unsecured)
	if err != nil {
		return nil, err
	}

	if opts == nil {
		opts = &models.ProofOptions{}
	}

	err = verifierSuite.VerifyProof(unsecuredBytes, proof, opts)
	if err != nil {
		if isStructural(err) {
			return nil, err
		}

		return &models.VerificationResult{Verified: false}, nil
	}

	return &models.VerificationResult{
		Verified:         true,
		VerifiedDocument: unsecured,
	}, nil
}

// isStructural distinguishes malformed inputs, which propagate as errors,
// from failed signature checks, which yield an unverified result.
func isStructural(err error) bool {
	return errors.Is(err, suite.ErrProofTransformation) ||
		errors.Is(err, suite.ErrProofGeneration) ||
		errors.Is(err, suite.ErrProofVerification) ||
		errors.Is(err, suite.ErrInvalidVerificationMethod) ||
		errors.Is(err, keypair.ErrInvalidKeypairContent) ||
		errors.Is(err, keypair.ErrKeypairImport)
}

// ProofDeriver is implemented by suites supporting selective disclosure.
type ProofDeriver interface {
	DeriveProof(doc []byte, opts *models.DeriveOptions) ([]byte, error)
}

// Holder derives selective-disclosure proofs from secured documents.
type Holder struct {
	deriver ProofDeriver
}

// NewHolder initializes a Holder over a suite supporting proof derivation.
func NewHolder(init suite.VerifierInitializer) (*Holder, error) {
	verifierSuite, err := init.Verifier()
	if err != nil {
		return nil, err
	}

	deriver, ok := verifierSuite.(ProofDeriver)
	if !ok {
		return nil, fmt.Errorf("%w: suite cannot derive proofs", ErrUnsupportedSuite)
	}

	return &Holder{deriver: deriver}, nil
}

// DeriveProof builds a reveal document disclosing the mandatory statements
// of the secured document's base proof plus those selected by the options.
func (h *Holder) DeriveProof(securedDoc []byte, opts *models.DeriveOptions) ([]byte, error) {
	if opts == nil {
		opts = &models.DeriveOptions{}
	}

	return h.deriver.DeriveProof(securedDoc, opts)
}
