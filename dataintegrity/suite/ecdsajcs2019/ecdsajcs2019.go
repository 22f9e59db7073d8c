/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ecdsajcs2019 implements the ecdsa-jcs-2019 Data Integrity
// cryptosuite: JSON Canonicalization Scheme (RFC 8785) followed by ECDSA
// over SHA-256 (P-256) or SHA-384 (P-384), per
// https://www.w3.org/TR/vc-di-ecdsa/#ecdsa-jcs-2019
package ecdsajcs2019

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/piprate/json-gold/ld"

	"github.com/trustbloc/vc-di-ecdsa/codec"
	verifiers "github.com/trustbloc/vc-di-ecdsa/crypto-ext/verifiers/ecdsa"
	"github.com/trustbloc/vc-di-ecdsa/dataintegrity/models"
	"github.com/trustbloc/vc-di-ecdsa/dataintegrity/suite"
	"github.com/trustbloc/vc-di-ecdsa/dataintegrity/suite/ecdsardfc2019"
	"github.com/trustbloc/vc-di-ecdsa/keypair"
	"github.com/trustbloc/vc-di-ecdsa/ldcanon"
	"github.com/trustbloc/vc-di-ecdsa/vermethod"
)

// SuiteType "ecdsa-jcs-2019" is the data integrity cryptosuite identifier
// for the suite implementing ecdsa signatures over JCS canonicalized input.
const SuiteType = "ecdsa-jcs-2019"

// Signer and SignerGetter are shared with the RDFC suite: the serialization
// stage is identical, only the transform differs.
type (
	// Signer is able to sign messages.
	Signer = ecdsardfc2019.Signer
	// SignerGetter returns a Signer for the imported verification method.
	SignerGetter = ecdsardfc2019.SignerGetter
	// Verifier is able to verify messages.
	Verifier = ecdsardfc2019.Verifier
)

// WithStaticSigner sets the Suite to use a fixed Signer.
func WithStaticSigner(signer Signer) SignerGetter {
	return ecdsardfc2019.WithStaticSigner(signer)
}

// WithLocalKeypairSigner provides a SignerGetter signing with the private
// key held by the given keypair.
func WithLocalKeypairSigner(kp *keypair.ECKeypair) SignerGetter {
	return ecdsardfc2019.WithLocalKeypairSigner(kp)
}

// Suite implements the ecdsa-jcs-2019 data integrity cryptographic suite.
type Suite struct {
	ldLoader     ld.DocumentLoader
	p256Verifier Verifier
	p384Verifier Verifier
	signerGetter SignerGetter
}

// Options provides initialization options for Suite.
type Options struct {
	LDDocumentLoader ld.DocumentLoader
	P256Verifier     Verifier
	P384Verifier     Verifier
	SignerGetter     SignerGetter
}

// SuiteInitializer is the initializer for Suite.
type SuiteInitializer func() (suite.Suite, error)

// New constructs an initializer for Suite.
func New(options *Options) SuiteInitializer {
	return func() (suite.Suite, error) {
		return &Suite{
			ldLoader:     options.LDDocumentLoader,
			p256Verifier: options.P256Verifier,
			p384Verifier: options.P384Verifier,
			signerGetter: options.SignerGetter,
		}, nil
	}
}

type initializer SuiteInitializer

// Signer private, implements suite.SignerInitializer.
func (i initializer) Signer() (suite.Signer, error) {
	return i()
}

// Verifier private, implements suite.VerifierInitializer.
func (i initializer) Verifier() (suite.Verifier, error) {
	return i()
}

// Type private, implements suite.SignerInitializer and
// suite.VerifierInitializer.
func (i initializer) Type() []string {
	return []string{SuiteType}
}

// SignerInitializerOptions provides options for a SignerInitializer.
type SignerInitializerOptions struct {
	LDDocumentLoader ld.DocumentLoader
	SignerGetter     SignerGetter
}

// NewSignerInitializer returns a suite.SignerInitializer that initializes an
// ecdsa-jcs-2019 signing Suite with the given SignerInitializerOptions.
func NewSignerInitializer(options *SignerInitializerOptions) suite.SignerInitializer {
	return initializer(New(&Options{
		LDDocumentLoader: options.LDDocumentLoader,
		SignerGetter:     options.SignerGetter,
	}))
}

// VerifierInitializerOptions provides options for a VerifierInitializer.
type VerifierInitializerOptions struct {
	LDDocumentLoader ld.DocumentLoader
	P256Verifier     Verifier
	P384Verifier     Verifier
}

// NewVerifierInitializer returns a suite.VerifierInitializer that
// initializes an ecdsa-jcs-2019 verification Suite with the given
// VerifierInitializerOptions.
func NewVerifierInitializer(options *VerifierInitializerOptions) suite.VerifierInitializer {
	p256Verifier, p384Verifier := options.P256Verifier, options.P384Verifier

	if p256Verifier == nil {
		p256Verifier = verifiers.NewES256()
	}

	if p384Verifier == nil {
		p384Verifier = verifiers.NewES384()
	}

	return initializer(New(&Options{
		LDDocumentLoader: options.LDDocumentLoader,
		P256Verifier:     p256Verifier,
		P384Verifier:     p384Verifier,
	}))
}

const ldCtxKey = "@context"

// CreateProof implements the ecdsa-jcs-2019 cryptographic suite for Add
// Proof: https://www.w3.org/TR/vc-di-ecdsa/#add-proof-ecdsa-jcs-2019
func (s *Suite) CreateProof(doc []byte, opts *models.ProofOptions) (*models.Proof, error) {
	if opts.SuiteType == "" {
		opts.SuiteType = SuiteType
	}

	docHash, kp, _, err := s.transformAndHash(doc, opts, nil)
	if err != nil {
		return nil, err
	}

	signer, err := s.signerGetter(kp)
	if err != nil {
		return nil, err
	}

	sig, err := signer.Sign(docHash)
	if err != nil {
		return nil, err
	}

	sigStr, err := codec.Base58BTCEncode(sig)
	if err != nil {
		return nil, err
	}

	return &models.Proof{
		Type:               models.DataIntegrityProof,
		CryptoSuite:        opts.SuiteType,
		ProofPurpose:       opts.Purpose,
		Domain:             opts.Domain,
		Challenge:          opts.Challenge,
		VerificationMethod: opts.VerificationMethodID,
		ProofValue:         sigStr,
		Created:            opts.Created.Format(models.DateTimeFormat),
	}, nil
}

// VerifyProof implements the ecdsa-jcs-2019 cryptographic suite for Verify
// Proof. The doc passed in must not contain the proof under verification.
func (s *Suite) VerifyProof(doc []byte, proof *models.Proof, opts *models.ProofOptions) error {
	message, kp, verifier, err := s.transformAndHash(doc, opts, proof)
	if err != nil {
		return err
	}

	signature, err := codec.Base58BTCDecode(proof.ProofValue)
	if err != nil {
		return fmt.Errorf("%w: decoding proofValue: %w", suite.ErrProofVerification, err)
	}

	verKey, err := vermethod.PublicKeyOf(kp)
	if err != nil {
		return fmt.Errorf("%w: %w", suite.ErrInvalidVerificationMethod, err)
	}

	if err = verifier.Verify(signature, message, verKey); err != nil {
		return fmt.Errorf("failed to verify ecdsa-jcs-2019 DI proof: %w", err)
	}

	return nil
}

// RequiresCreated returns false, as the ecdsa-jcs-2019 cryptographic suite
// does not require the use of the models.Proof.Created field.
func (s *Suite) RequiresCreated() bool {
	return false
}

func (s *Suite) transformAndHash(doc []byte, opts *models.ProofOptions,
	proof *models.Proof) ([]byte, *keypair.ECKeypair, Verifier, error) {
	if opts.SuiteType == "" {
		opts.SuiteType = SuiteType
	}

	docData := make(map[string]interface{})

	err := json.Unmarshal(doc, &docData)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("ecdsa-jcs-2019 suite expects JSON payload: %w", err)
	}

	if proof != nil {
		if proof.Type != models.DataIntegrityProof || proof.CryptoSuite != SuiteType {
			return nil, nil, nil, suite.ErrProofTransformation
		}
	} else if opts.ProofType != models.DataIntegrityProof || opts.SuiteType != SuiteType {
		return nil, nil, nil, suite.ErrProofTransformation
	}

	kp, err := s.resolveKeypair(opts, proof)
	if err != nil {
		return nil, nil, nil, err
	}

	var verifier Verifier

	switch kp.Curve() {
	case keypair.P256:
		verifier = s.p256Verifier
	case keypair.P384:
		verifier = s.p384Verifier
	default:
		return nil, nil, nil, fmt.Errorf("%w: unsupported ECDSA curve", suite.ErrProofGeneration)
	}

	confData, err := proofConfig(docData[ldCtxKey], opts, proof)
	if err != nil {
		return nil, nil, nil, err
	}

	canonDoc, err := ldcanon.CanonizeJCS(docData)
	if err != nil {
		return nil, nil, nil, err
	}

	canonConf, err := ldcanon.CanonizeJCS(confData)
	if err != nil {
		return nil, nil, nil, err
	}

	docHash, err := hashData(canonConf, canonDoc, kp.Curve())
	if err != nil {
		return nil, nil, nil, err
	}

	return docHash, kp, verifier, nil
}

func (s *Suite) resolveKeypair(opts *models.ProofOptions, proof *models.Proof) (*keypair.ECKeypair, error) {
	vm := opts.VerificationMethod

	if vm == nil {
		vmID := opts.VerificationMethodID
		if vmID == "" && proof != nil {
			vmID = proof.VerificationMethod
		}

		resolved, err := vermethod.NewResolver(s.ldLoader).ResolveVerificationMethod(vmID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", suite.ErrInvalidVerificationMethod, err)
		}

		vm = resolved
	}

	kp, err := keypair.Import(vm, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", suite.ErrInvalidVerificationMethod, err)
	}

	return kp, nil
}

func hashData(proofData, docData []byte, curve keypair.Curve) ([]byte, error) {
	proofHash, err := keypair.Digest(curve, proofData)
	if err != nil {
		return nil, err
	}

	docHash, err := keypair.Digest(curve, docData)
	if err != nil {
		return nil, err
	}

	return codec.Concat(proofHash, docHash), nil
}

func proofConfig(docCtx interface{}, opts *models.ProofOptions, proof *models.Proof) (map[string]interface{}, error) {
	conf := map[string]interface{}{
		"type":         models.DataIntegrityProof,
		"cryptosuite":  SuiteType,
		"proofPurpose": opts.Purpose,
	}

	if docCtx != nil {
		conf[ldCtxKey] = docCtx
	}

	created := opts.Created.Format(models.DateTimeFormat)
	vmID := opts.VerificationMethodID
	domain, challenge := opts.Domain, opts.Challenge

	if proof != nil {
		created = proof.Created
		vmID = proof.VerificationMethod
		domain, challenge = proof.Domain, proof.Challenge
		conf["proofPurpose"] = proof.ProofPurpose
	}

	if created != "" {
		if _, err := time.Parse(models.DateTimeFormat, created); err != nil {
			return nil, fmt.Errorf("%w: invalid created %q", suite.ErrProofGeneration, created)
		}

		conf["created"] = created
	}

	conf["verificationMethod"] = vmID

	if challenge != "" {
		conf["challenge"] = challenge
	}

	if domain != "" {
		conf["domain"] = domain
	}

	return conf, nil
}
