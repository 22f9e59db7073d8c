/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ecdsardfc2019 implements the ecdsa-rdfc-2019 Data Integrity
// cryptosuite: RDF Dataset Canonicalization followed by ECDSA over SHA-256
// (P-256) or SHA-384 (P-384), per
// https://www.w3.org/TR/vc-di-ecdsa/#ecdsa-rdfc-2019
package ecdsardfc2019

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/piprate/json-gold/ld"

	"github.com/trustbloc/vc-di-ecdsa/codec"
	"github.com/trustbloc/vc-di-ecdsa/crypto-ext/pubkey"
	signers "github.com/trustbloc/vc-di-ecdsa/crypto-ext/signers/ecdsa"
	verifiers "github.com/trustbloc/vc-di-ecdsa/crypto-ext/verifiers/ecdsa"
	"github.com/trustbloc/vc-di-ecdsa/dataintegrity/models"
	"github.com/trustbloc/vc-di-ecdsa/dataintegrity/suite"
	"github.com/trustbloc/vc-di-ecdsa/keypair"
	"github.com/trustbloc/vc-di-ecdsa/ldcanon"
	"github.com/trustbloc/vc-di-ecdsa/vermethod"
)

// SuiteType "ecdsa-rdfc-2019" is the data integrity cryptosuite identifier
// for the suite implementing ecdsa signatures over RDF canonicalized input.
const SuiteType = "ecdsa-rdfc-2019"

// SignerGetter returns a Signer, which must sign with the private key
// matching the public key of the given imported verification method.
type SignerGetter func(kp *keypair.ECKeypair) (Signer, error)

// WithStaticSigner sets the Suite to use a fixed Signer, with
// externally-chosen signing key.
//
// Use when a signing Suite is initialized for a single signature, then
// thrown away.
func WithStaticSigner(signer Signer) SignerGetter {
	return func(*keypair.ECKeypair) (Signer, error) {
		return signer, nil
	}
}

// WithLocalKeypairSigner provides a SignerGetter signing with the private
// key held by the given keypair.
func WithLocalKeypairSigner(kp *keypair.ECKeypair) SignerGetter {
	return func(*keypair.ECKeypair) (Signer, error) {
		return KeypairSigner(kp)
	}
}

// KeypairSigner builds a Signer over the private key of an ECKeypair.
func KeypairSigner(kp *keypair.ECKeypair) (Signer, error) {
	if kp == nil || kp.PrivateKey() == nil {
		return nil, fmt.Errorf("%w: signing requires a private key", suite.ErrInvalidVerificationMethod)
	}

	if kp.Curve() == keypair.P384 {
		return signers.NewES384(kp.PrivateKey())
	}

	return signers.NewES256(kp.PrivateKey())
}

// A Signer is able to sign messages.
type Signer interface {
	// Sign will sign msg using a private key internal to the Signer.
	Sign(msg []byte) ([]byte, error)
}

// A Verifier is able to verify messages.
type Verifier interface {
	// Verify will verify a signature for the given msg using the given
	// public key, returning nil on success.
	Verify(signature, msg []byte, pubKey *pubkey.PublicKey) error
}

// Suite implements the ecdsa-rdfc-2019 data integrity cryptographic suite.
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
// ecdsa-rdfc-2019 signing Suite with the given SignerInitializerOptions.
func NewSignerInitializer(options *SignerInitializerOptions) suite.SignerInitializer {
	return initializer(New(&Options{
		LDDocumentLoader: options.LDDocumentLoader,
		SignerGetter:     options.SignerGetter,
	}))
}

// VerifierInitializerOptions provides options for a VerifierInitializer.
type VerifierInitializerOptions struct {
	LDDocumentLoader ld.DocumentLoader // required
	P256Verifier     Verifier          // optional
	P384Verifier     Verifier          // optional
}

// NewVerifierInitializer returns a suite.VerifierInitializer that
// initializes an ecdsa-rdfc-2019 verification Suite with the given
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

// CreateProof implements the ecdsa-rdfc-2019 cryptographic suite for Add
// Proof: https://www.w3.org/TR/vc-di-ecdsa/#add-proof-ecdsa-rdfc-2019
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

// VerifyProof implements the ecdsa-rdfc-2019 cryptographic suite for Verify
// Proof: https://www.w3.org/TR/vc-di-ecdsa/#verify-proof-ecdsa-rdfc-2019
//
// The doc passed in must not contain the proof under verification.
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
		return fmt.Errorf("failed to verify ecdsa-rdfc-2019 DI proof: %w", err)
	}

	return nil
}

// RequiresCreated returns false, as the ecdsa-rdfc-2019 cryptographic suite
// does not require the use of the models.Proof.Created field.
func (s *Suite) RequiresCreated() bool {
	return false
}

// transformAndHash implements the shared Transform, Configure and Hash
// stages of the pipeline. When proof is non-nil the proof configuration is
// rebuilt from it, otherwise from opts.
func (s *Suite) transformAndHash(doc []byte, opts *models.ProofOptions,
	proof *models.Proof) ([]byte, *keypair.ECKeypair, Verifier, error) {
	if opts.SuiteType == "" {
		opts.SuiteType = SuiteType
	}

	docData := make(map[string]interface{})

	err := json.Unmarshal(doc, &docData)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("ecdsa-rdfc-2019 suite expects JSON-LD payload: %w", err)
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

	canonDoc, err := ldcanon.CanonizeJSONLD(docData, s.ldLoader)
	if err != nil {
		return nil, nil, nil, err
	}

	canonConf, err := ldcanon.CanonizeJSONLD(confData, s.ldLoader)
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

// hashData computes digest(canonical proof config) ‖ digest(canonical
// document) with the curve's digest.
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

// proofConfig builds the proof configuration to canonicalize, inheriting the
// document's @context.
func proofConfig(docCtx interface{}, opts *models.ProofOptions, proof *models.Proof) (map[string]interface{}, error) {
	conf := map[string]interface{}{
		ldCtxKey:       docCtx,
		"type":         models.DataIntegrityProof,
		"cryptosuite":  SuiteType,
		"proofPurpose": opts.Purpose,
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
