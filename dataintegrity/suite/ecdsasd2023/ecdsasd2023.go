/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ecdsasd2023 implements the ecdsa-sd-2023 Data Integrity
// cryptosuite: an issuer signs a document at per-statement granularity so a
// holder can later reveal any subset, plus mandatory statements, to a
// verifier without invalidating the proof. See
// https://www.w3.org/TR/vc-di-ecdsa/#ecdsa-sd-2023
package ecdsasd2023

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"

	"github.com/piprate/json-gold/ld"
	"github.com/trustbloc/kms-go/spi/kms"
	"golang.org/x/sync/errgroup"

	"github.com/trustbloc/vc-di-ecdsa/codec"
	"github.com/trustbloc/vc-di-ecdsa/crypto-ext/pubkey"
	signers "github.com/trustbloc/vc-di-ecdsa/crypto-ext/signers/ecdsa"
	verifiers "github.com/trustbloc/vc-di-ecdsa/crypto-ext/verifiers/ecdsa"
	"github.com/trustbloc/vc-di-ecdsa/dataintegrity/models"
	"github.com/trustbloc/vc-di-ecdsa/dataintegrity/suite"
	"github.com/trustbloc/vc-di-ecdsa/dataintegrity/suite/ecdsardfc2019"
	"github.com/trustbloc/vc-di-ecdsa/keypair"
	"github.com/trustbloc/vc-di-ecdsa/ldcanon"
	"github.com/trustbloc/vc-di-ecdsa/sdprimitives"
	jsonutil "github.com/trustbloc/vc-di-ecdsa/util/json"
	"github.com/trustbloc/vc-di-ecdsa/vermethod"
)

// SuiteType "ecdsa-sd-2023" is the data integrity cryptosuite identifier for
// the selective disclosure suite.
const SuiteType = "ecdsa-sd-2023"

// Group names used during canonicalize-and-group.
const (
	groupMandatory = "mandatory"
	groupSelective = "selective"
	groupCombined  = "combined"
)

// Signer and SignerGetter are shared with the RDFC suite; the base proof
// signature is a plain ECDSA signature under the issuer's key.
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

// Suite implements the ecdsa-sd-2023 data integrity cryptographic suite.
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
// ecdsa-sd-2023 signing Suite with the given SignerInitializerOptions.
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
// initializes an ecdsa-sd-2023 verification Suite with the given
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

// CreateProof implements the ecdsa-sd-2023 Add Base Proof operation:
// https://www.w3.org/TR/vc-di-ecdsa/#add-base-proof-ecdsa-sd-2023
func (s *Suite) CreateProof(doc []byte, opts *models.ProofOptions) (*models.Proof, error) {
	if opts.SuiteType == "" {
		opts.SuiteType = SuiteType
	}

	if opts.ProofType != models.DataIntegrityProof || opts.SuiteType != SuiteType {
		return nil, suite.ErrProofTransformation
	}

	docData := make(map[string]interface{})
	if err := json.Unmarshal(doc, &docData); err != nil {
		return nil, fmt.Errorf("ecdsa-sd-2023 suite expects JSON-LD payload: %w", err)
	}

	kp, err := s.resolveKeypair(opts, nil)
	if err != nil {
		return nil, err
	}

	// Transform: canonicalize and group under a fresh HMAC relabelling.
	hmacKey, err := sdprimitives.GenerateHMACKey()
	if err != nil {
		return nil, err
	}

	hmacFn, err := sdprimitives.NewHMAC(hmacKey)
	if err != nil {
		return nil, err
	}

	groups, err := sdprimitives.CanonicalizeAndGroup(docData,
		sdprimitives.CreateHmacIDLabelMapFunction(hmacFn),
		map[string][]string{groupMandatory: opts.MandatoryPointers},
		s.ldLoader)
	if err != nil {
		return nil, err
	}

	mandatoryGroup := groups.Groups[groupMandatory]

	// Configure and hash.
	confData, err := proofConfig(docData[ldCtxKey], opts, nil)
	if err != nil {
		return nil, err
	}

	canonConf, err := ldcanon.CanonizeJSONLD(confData, s.ldLoader)
	if err != nil {
		return nil, err
	}

	proofHash, err := keypair.Digest(kp.Curve(), canonConf)
	if err != nil {
		return nil, err
	}

	mandatoryHash, err := sdprimitives.HashMandatoryNQuads(
		sdprimitives.StatementsInOrder(mandatoryGroup.Matching), kp.Curve())
	if err != nil {
		return nil, err
	}

	// Serialize: sign each non-mandatory statement under a proof-scoped
	// P-256 key, then bind everything with the issuer's base signature.
	// Per-statement signatures are always P-256/SHA-256, even when the
	// issuer signs under P-384.
	psk, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: generating proof-scoped key: %w", suite.ErrProofGeneration, err)
	}

	defer psk.D.SetInt64(0)

	pskSigner, err := signers.NewES256(psk)
	if err != nil {
		return nil, err
	}

	nonMandatory := sdprimitives.StatementsInOrder(mandatoryGroup.NonMatching)

	signatures := make([][]byte, len(nonMandatory))
	for i, nq := range nonMandatory {
		signatures[i], err = pskSigner.Sign([]byte(nq))
		if err != nil {
			return nil, err
		}
	}

	pskBytes, err := proofPublicKeyBytes(&psk.PublicKey)
	if err != nil {
		return nil, err
	}

	signer, err := s.signerGetter(kp)
	if err != nil {
		return nil, err
	}

	baseSignature, err := signer.Sign(codec.Concat(proofHash, pskBytes, mandatoryHash))
	if err != nil {
		return nil, err
	}

	proofValue, err := serializeBaseProofValue(&BaseProofValue{
		BaseSignature:     baseSignature,
		PublicKey:         pskBytes,
		HMACKey:           hmacKey,
		Signatures:        signatures,
		MandatoryPointers: normalizePointers(opts.MandatoryPointers),
	})
	if err != nil {
		return nil, err
	}

	return &models.Proof{
		Type:               models.DataIntegrityProof,
		CryptoSuite:        SuiteType,
		ProofPurpose:       opts.Purpose,
		Domain:             opts.Domain,
		Challenge:          opts.Challenge,
		VerificationMethod: opts.VerificationMethodID,
		ProofValue:         proofValue,
		Created:            opts.Created.Format(models.DateTimeFormat),
	}, nil
}

// VerifyProof implements the ecdsa-sd-2023 Verify Derived Proof operation:
// https://www.w3.org/TR/vc-di-ecdsa/#verify-derived-proof-ecdsa-sd-2023
//
// The doc passed in is the reveal document without the proof under
// verification.
func (s *Suite) VerifyProof(doc []byte, proof *models.Proof, opts *models.ProofOptions) error {
	if proof.Type != models.DataIntegrityProof || proof.CryptoSuite != SuiteType {
		return suite.ErrProofTransformation
	}

	docData := make(map[string]interface{})
	if err := json.Unmarshal(doc, &docData); err != nil {
		return fmt.Errorf("ecdsa-sd-2023 suite expects JSON-LD payload: %w", err)
	}

	derived, err := parseDerivedProofValue(proof.ProofValue)
	if err != nil {
		return err
	}

	labelMap, err := decompressLabelMap(derived.CompressedLabelMap)
	if err != nil {
		return err
	}

	canonical, err := sdprimitives.LabelReplacementCanonicalizeJSONLD(
		jsonutil.CopyExcept(docData, "proof"),
		sdprimitives.CreateLabelMapFunction(labelMap),
		s.ldLoader)
	if err != nil {
		return fmt.Errorf("%w: %w", suite.ErrProofVerification, err)
	}

	mandatory, nonMandatory := partitionStatements(canonical.NQuads, derived.MandatoryIndexes)

	if len(derived.Signatures) != len(nonMandatory) {
		return fmt.Errorf("%w: %d signatures for %d non-mandatory statements",
			suite.ErrProofVerification, len(derived.Signatures), len(nonMandatory))
	}

	kp, err := s.resolveKeypair(opts, proof)
	if err != nil {
		return err
	}

	var verifier Verifier

	switch kp.Curve() {
	case keypair.P256:
		verifier = s.p256Verifier
	case keypair.P384:
		verifier = s.p384Verifier
	default:
		return fmt.Errorf("%w: unsupported ECDSA curve", suite.ErrProofGeneration)
	}

	confData, err := proofConfig(docData[ldCtxKey], nil, proof)
	if err != nil {
		return err
	}

	canonConf, err := ldcanon.CanonizeJSONLD(confData, s.ldLoader)
	if err != nil {
		return err
	}

	proofHash, err := keypair.Digest(kp.Curve(), canonConf)
	if err != nil {
		return err
	}

	mandatoryHash, err := sdprimitives.HashMandatoryNQuads(mandatory, kp.Curve())
	if err != nil {
		return err
	}

	issuerKey, err := vermethod.PublicKeyOf(kp)
	if err != nil {
		return fmt.Errorf("%w: %w", suite.ErrInvalidVerificationMethod, err)
	}

	toVerify := codec.Concat(proofHash, derived.PublicKey, mandatoryHash)

	if err := verifier.Verify(derived.BaseSignature, toVerify, issuerKey); err != nil {
		return fmt.Errorf("failed to verify ecdsa-sd-2023 base signature: %w", err)
	}

	proofKey, err := proofPublicKeyFromBytes(derived.PublicKey)
	if err != nil {
		return err
	}

	// Per-statement verifications are independent; run them concurrently
	// and AND-reduce.
	var group errgroup.Group

	for i := range nonMandatory {
		i := i

		group.Go(func() error {
			if err := s.p256Verifier.Verify(derived.Signatures[i], []byte(nonMandatory[i]), proofKey); err != nil {
				return fmt.Errorf("failed to verify statement %d: %w", i, err)
			}

			return nil
		})
	}

	return group.Wait()
}

// RequiresCreated returns false, as the ecdsa-sd-2023 cryptographic suite
// does not require the use of the models.Proof.Created field.
func (s *Suite) RequiresCreated() bool {
	return false
}

func (s *Suite) resolveKeypair(opts *models.ProofOptions, proof *models.Proof) (*keypair.ECKeypair, error) {
	var vm *keypair.VerificationMethod

	if opts != nil {
		vm = opts.VerificationMethod
	}

	if vm == nil {
		vmID := ""
		if opts != nil {
			vmID = opts.VerificationMethodID
		}

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

// proofPublicKeyBytes encodes the proof-scoped public key as its 35-byte
// multicodec-prefixed compressed form.
func proofPublicKeyBytes(pub *ecdsa.PublicKey) ([]byte, error) {
	material, err := keypair.ExportPublicMaterial(pub, keypair.P256)
	if err != nil {
		return nil, err
	}

	compressed, err := keypair.CompressPublicMaterial(material, keypair.P256)
	if err != nil {
		return nil, err
	}

	return codec.PutUvarintPrefix(keypair.MulticodecP256Pub, compressed), nil
}

// proofPublicKeyFromBytes reverses proofPublicKeyBytes into a key usable by
// the P-256 verifier.
func proofPublicKeyFromBytes(b []byte) (*pubkey.PublicKey, error) {
	code, compressed, err := codec.ReadUvarintPrefix(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", suite.ErrProofVerification, err)
	}

	if code != keypair.MulticodecP256Pub {
		return nil, fmt.Errorf("%w: proof-scoped key multicodec 0x%x", suite.ErrProofVerification, code)
	}

	material, err := keypair.DecompressPublicMaterial(compressed, keypair.P256)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", suite.ErrProofVerification, err)
	}

	pub, err := keypair.ImportPublicMaterial(material, keypair.P256)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", suite.ErrProofVerification, err)
	}

	keyJWK, err := keypair.KeyToJWK(pub, keypair.Public, keypair.P256)
	if err != nil {
		return nil, err
	}

	return &pubkey.PublicKey{Type: kms.ECDSAP256TypeIEEEP1363, JWK: keyJWK}, nil
}

// partitionStatements splits canonical statements into mandatory and
// non-mandatory by relative index.
func partitionStatements(nquads []string, mandatoryIndexes []int) ([]string, []string) {
	mandatorySet := make(map[int]bool, len(mandatoryIndexes))
	for _, idx := range mandatoryIndexes {
		mandatorySet[idx] = true
	}

	var mandatory, nonMandatory []string

	for i, nq := range nquads {
		if mandatorySet[i] {
			mandatory = append(mandatory, nq)
		} else {
			nonMandatory = append(nonMandatory, nq)
		}
	}

	return mandatory, nonMandatory
}

func normalizePointers(pointers []string) []string {
	if pointers == nil {
		return []string{}
	}

	return pointers
}

func proofConfig(docCtx interface{}, opts *models.ProofOptions, proof *models.Proof) (map[string]interface{}, error) {
	conf := map[string]interface{}{
		ldCtxKey:      docCtx,
		"type":        models.DataIntegrityProof,
		"cryptosuite": SuiteType,
	}

	var (
		created, vmID, purpose, domain, challenge string
	)

	if proof != nil {
		created = proof.Created
		vmID = proof.VerificationMethod
		purpose = proof.ProofPurpose
		domain, challenge = proof.Domain, proof.Challenge
	} else {
		created = opts.Created.Format(models.DateTimeFormat)
		vmID = opts.VerificationMethodID
		purpose = opts.Purpose
		domain, challenge = opts.Domain, opts.Challenge
	}

	if created != "" {
		if _, err := time.Parse(models.DateTimeFormat, created); err != nil {
			return nil, fmt.Errorf("%w: invalid created %q", suite.ErrProofGeneration, created)
		}

		conf["created"] = created
	}

	conf["proofPurpose"] = purpose
	conf["verificationMethod"] = vmID

	if challenge != "" {
		conf["challenge"] = challenge
	}

	if domain != "" {
		conf["domain"] = domain
	}

	return conf, nil
}
