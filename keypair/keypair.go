/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package keypair models ECDSA keypairs for the ECDSA Data Integrity
// cryptosuites, with import and export into Multikey and JsonWebKey
// verification methods.
package keypair

import (
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/trustbloc/kms-go/doc/jose/jwk"

	"github.com/trustbloc/vc-di-ecdsa/codec"
)

// Verification method types and their JSON-LD contexts.
const (
	TypeMultikey   = "Multikey"
	TypeJSONWebKey = "JsonWebKey"

	MultikeyContext   = "https://w3id.org/security/multikey/v1"
	JSONWebKeyContext = "https://w3id.org/security/jwk/v1"
)

// VerificationMethod is the exported, storable form of a keypair. Multikey
// methods carry multibase strings, JsonWebKey methods carry EC JWKs; both
// share the id/type/controller envelope.
type VerificationMethod struct {
	Context            interface{} `json:"@context,omitempty"`
	ID                 string      `json:"id,omitempty"`
	Type               string      `json:"type,omitempty"`
	Controller         string      `json:"controller,omitempty"`
	Expires            *time.Time  `json:"expires,omitempty"`
	Revoked            *time.Time  `json:"revoked,omitempty"`
	PublicKeyMultibase string      `json:"publicKeyMultibase,omitempty"`
	SecretKeyMultibase string      `json:"secretKeyMultibase,omitempty"`
	PublicKeyJWK       *jwk.JWK    `json:"publicKeyJwk,omitempty"`
	SecretKeyJWK       *jwk.JWK    `json:"secretKeyJwk,omitempty"`
}

// ECKeypair is an ECDSA keypair bound to one curve. Either key handle may be
// absent; operations that need a missing handle fail explicitly.
type ECKeypair struct {
	ID         string
	Controller string
	Expires    *time.Time
	Revoked    *time.Time

	curve      Curve
	publicKey  *ecdsa.PublicKey
	privateKey *ecdsa.PrivateKey
}

// Options carries the optional fields of a new ECKeypair.
type Options struct {
	ID         string
	Controller string
	Expires    *time.Time
	Revoked    *time.Time
	PublicKey  *ecdsa.PublicKey
	PrivateKey *ecdsa.PrivateKey
}

// New creates an ECKeypair on the given curve. The curve is immutable once
// constructed.
func New(c Curve, opts *Options) (*ECKeypair, error) {
	if opts == nil {
		opts = &Options{}
	}

	kp := &ECKeypair{
		ID:         opts.ID,
		Controller: opts.Controller,
		Expires:    opts.Expires,
		Revoked:    opts.Revoked,
		curve:      c,
		publicKey:  opts.PublicKey,
		privateKey: opts.PrivateKey,
	}

	if err := kp.checkIDController(); err != nil {
		return nil, err
	}

	return kp, nil
}

// Curve returns the keypair's curve.
func (kp *ECKeypair) Curve() Curve {
	return kp.curve
}

// PublicKey returns the public key handle, if present.
func (kp *ECKeypair) PublicKey() *ecdsa.PublicKey {
	return kp.publicKey
}

// PrivateKey returns the private key handle, if present.
func (kp *ECKeypair) PrivateKey() *ecdsa.PrivateKey {
	return kp.privateKey
}

// Initialize generates a fresh key on the keypair's curve and, when a
// controller is set and no id is, derives the id from the fingerprint.
func (kp *ECKeypair) Initialize() error {
	priv, err := ecdsa.GenerateKey(kp.curve.EllipticCurve(), rand.Reader)
	if err != nil {
		return fmt.Errorf("%w: generating %s key: %w", ErrKeypairImport, kp.curve.Name(), err)
	}

	kp.privateKey = priv
	kp.publicKey = &priv.PublicKey

	if kp.ID == "" && kp.Controller != "" {
		fp, err := kp.GenerateFingerprint()
		if err != nil {
			return err
		}

		kp.ID = kp.Controller + "#" + fp
	}

	return kp.checkIDController()
}

func (kp *ECKeypair) checkIDController() error {
	if kp.ID != "" && kp.Controller != "" && !strings.HasPrefix(kp.ID, kp.Controller) {
		return fmt.Errorf("%w: id must begin with controller", ErrInvalidKeypairContent)
	}

	return nil
}

// GenerateFingerprint computes the keypair's fingerprint: the base58btc
// encoding of the curve's multicodec header followed by the compressed
// public point. The fingerprint is a pure function of the curve and the
// public point.
func (kp *ECKeypair) GenerateFingerprint() (string, error) {
	if kp.publicKey == nil {
		return "", fmt.Errorf("%w: fingerprint requires a public key", ErrInvalidKeypairContent)
	}

	material, err := ExportPublicMaterial(kp.publicKey, kp.curve)
	if err != nil {
		return "", err
	}

	return MaterialToMultibase(material, Public, kp.curve)
}

// VerifyFingerprint reports whether the given fingerprint matches the
// keypair's public key.
func (kp *ECKeypair) VerifyFingerprint(fingerprint string) bool {
	fp, err := kp.GenerateFingerprint()
	if err != nil {
		return false
	}

	return fp == fingerprint
}

// ExportOptions selects the verification method shape and whether private
// key material is included.
type ExportOptions struct {
	Type string // TypeMultikey or TypeJSONWebKey
	Flag Flag   // Private includes secret key material
}

// Export builds a verification method from the keypair.
func (kp *ECKeypair) Export(opts *ExportOptions) (*VerificationMethod, error) {
	if opts == nil {
		opts = &ExportOptions{Type: TypeMultikey}
	}

	switch opts.Type {
	case TypeMultikey:
		return kp.exportMultikey(opts.Flag)
	case TypeJSONWebKey:
		return kp.exportJWK(opts.Flag)
	default:
		return nil, fmt.Errorf("%w: unsupported verification method type %q", ErrKeypairExport, opts.Type)
	}
}

func (kp *ECKeypair) envelope(vmType, context string) *VerificationMethod {
	return &VerificationMethod{
		Context:    context,
		ID:         kp.ID,
		Type:       vmType,
		Controller: kp.Controller,
		Expires:    kp.Expires,
		Revoked:    kp.Revoked,
	}
}

func (kp *ECKeypair) exportMultikey(f Flag) (*VerificationMethod, error) {
	vm := kp.envelope(TypeMultikey, MultikeyContext)

	if f == Private {
		if kp.privateKey == nil {
			return nil, fmt.Errorf("%w: private export requires a private key", ErrInvalidKeypairContent)
		}

		material, err := ExportPrivateMaterial(kp.privateKey, kp.curve)
		if err != nil {
			return nil, err
		}

		vm.SecretKeyMultibase, err = MaterialToMultibase(material, Private, kp.curve)
		if err != nil {
			return nil, err
		}
	}

	if kp.publicKey != nil {
		material, err := ExportPublicMaterial(kp.publicKey, kp.curve)
		if err != nil {
			return nil, err
		}

		vm.PublicKeyMultibase, err = MaterialToMultibase(material, Public, kp.curve)
		if err != nil {
			return nil, err
		}

		if vm.ID == "" && kp.Controller != "" {
			vm.ID = kp.Controller + "#" + vm.PublicKeyMultibase
		}
	} else if f == Public {
		return nil, fmt.Errorf("%w: public export requires a public key", ErrInvalidKeypairContent)
	}

	return vm, nil
}

func (kp *ECKeypair) exportJWK(f Flag) (*VerificationMethod, error) {
	vm := kp.envelope(TypeJSONWebKey, JSONWebKeyContext)

	if f == Private {
		if kp.privateKey == nil {
			return nil, fmt.Errorf("%w: private export requires a private key", ErrInvalidKeypairContent)
		}

		secret, err := KeyToJWK(kp.privateKey, Private, kp.curve)
		if err != nil {
			return nil, err
		}

		vm.SecretKeyJWK = secret
	}

	if kp.publicKey != nil {
		pub, err := KeyToJWK(kp.publicKey, Public, kp.curve)
		if err != nil {
			return nil, err
		}

		vm.PublicKeyJWK = pub

		if vm.ID == "" && kp.Controller != "" {
			tp, err := JWKThumbprint(pub)
			if err != nil {
				return nil, err
			}

			vm.ID = kp.Controller + "#" + tp
		}
	} else if f == Public {
		return nil, fmt.Errorf("%w: public export requires a public key", ErrInvalidKeypairContent)
	}

	return vm, nil
}

// ImportOptions gates the optional verification method checks. When a check
// is disabled the corresponding failure is never raised.
type ImportOptions struct {
	Curve        *Curve
	CheckContext bool
	CheckExpired bool
	CheckRevoked bool
}

// Import constructs an ECKeypair from a verification method. At least one of
// the public and secret keys must be present.
func Import(vm *VerificationMethod, opts *ImportOptions) (*ECKeypair, error) {
	if opts == nil {
		opts = &ImportOptions{}
	}

	if vm == nil {
		return nil, fmt.Errorf("%w: missing verification method", ErrInvalidKeypairContent)
	}

	var (
		kp  *ECKeypair
		err error
	)

	switch vm.Type {
	case TypeMultikey:
		kp, err = importMultikey(vm)
	case TypeJSONWebKey, "JsonWebKey2020":
		kp, err = importJWK(vm)
	default:
		return nil, fmt.Errorf("%w: unsupported document type %q", ErrKeypairImport, vm.Type)
	}

	if err != nil {
		return nil, err
	}

	if opts.Curve != nil && kp.curve != *opts.Curve {
		return nil, fmt.Errorf("%w: verification method curve %s does not match %s",
			ErrInvalidKeypairContent, kp.curve.Name(), opts.Curve.Name())
	}

	if opts.CheckContext {
		if err := checkVMContext(vm); err != nil {
			return nil, err
		}
	}

	now := time.Now()

	if opts.CheckExpired && vm.Expires != nil && vm.Expires.Before(now) {
		return nil, fmt.Errorf("%w: expired at %s", ErrKeypairExpired, vm.Expires.Format(time.RFC3339))
	}

	if opts.CheckRevoked && vm.Revoked != nil && vm.Revoked.Before(now) {
		return nil, fmt.Errorf("%w: revoked at %s", ErrKeypairExpired, vm.Revoked.Format(time.RFC3339))
	}

	return kp, nil
}

func importMultikey(vm *VerificationMethod) (*ECKeypair, error) {
	if vm.PublicKeyMultibase == "" && vm.SecretKeyMultibase == "" {
		return nil, fmt.Errorf("%w: Multikey method carries no key", ErrInvalidKeypairContent)
	}

	var (
		c    Curve
		pub  *ecdsa.PublicKey
		priv *ecdsa.PrivateKey
	)

	if vm.PublicKeyMultibase != "" {
		var err error

		c, _, err = multicodecOf(vm.PublicKeyMultibase)
		if err != nil {
			return nil, err
		}

		pub, err = MultibaseToPublicKey(vm.PublicKeyMultibase, c)
		if err != nil {
			return nil, err
		}
	}

	if vm.SecretKeyMultibase != "" {
		sc, _, err := multicodecOf(vm.SecretKeyMultibase)
		if err != nil {
			return nil, err
		}

		if pub != nil && sc != c {
			return nil, fmt.Errorf("%w: secret key curve %s does not match public key curve %s",
				ErrInvalidKeypairContent, sc.Name(), c.Name())
		}

		c = sc

		priv, err = MultibaseToPrivateKey(vm.SecretKeyMultibase, c)
		if err != nil {
			return nil, err
		}

		if pub == nil {
			pub = &priv.PublicKey
		}
	}

	return New(c, &Options{
		ID:         vm.ID,
		Controller: vm.Controller,
		Expires:    vm.Expires,
		Revoked:    vm.Revoked,
		PublicKey:  pub,
		PrivateKey: priv,
	})
}

func importJWK(vm *VerificationMethod) (*ECKeypair, error) {
	if vm.PublicKeyJWK == nil && vm.SecretKeyJWK == nil {
		return nil, fmt.Errorf("%w: JsonWebKey method carries no key", ErrInvalidKeypairContent)
	}

	var (
		c    Curve
		pub  *ecdsa.PublicKey
		priv *ecdsa.PrivateKey
	)

	if vm.PublicKeyJWK != nil {
		key, pc, err := JWKToKey(vm.PublicKeyJWK, Public)
		if err != nil {
			return nil, err
		}

		c = pc
		pub = key.(*ecdsa.PublicKey)
	}

	if vm.SecretKeyJWK != nil {
		key, sc, err := JWKToKey(vm.SecretKeyJWK, Private)
		if err != nil {
			return nil, err
		}

		if pub != nil && sc != c {
			return nil, fmt.Errorf("%w: secret key curve %s does not match public key curve %s",
				ErrInvalidKeypairContent, sc.Name(), c.Name())
		}

		c = sc
		priv = key.(*ecdsa.PrivateKey)

		if pub == nil {
			pub = &priv.PublicKey
		}
	}

	return New(c, &Options{
		ID:         vm.ID,
		Controller: vm.Controller,
		Expires:    vm.Expires,
		Revoked:    vm.Revoked,
		PublicKey:  pub,
		PrivateKey: priv,
	})
}

func multicodecOf(multibaseKey string) (Curve, Flag, error) {
	b, err := codec.Base58BTCDecode(multibaseKey)
	if err != nil {
		return 0, 0, err
	}

	code, _, err := codec.ReadUvarintPrefix(b)
	if err != nil {
		return 0, 0, err
	}

	switch code {
	case MulticodecP256Pub:
		return P256, Public, nil
	case MulticodecP384Pub:
		return P384, Public, nil
	case MulticodecP256Priv:
		return P256, Private, nil
	case MulticodecP384Priv:
		return P384, Private, nil
	default:
		return 0, 0, fmt.Errorf("%w: unknown multicodec 0x%x", ErrInvalidKeypairContent, code)
	}
}

func checkVMContext(vm *VerificationMethod) error {
	want := MultikeyContext
	if vm.Type != TypeMultikey {
		want = JSONWebKeyContext
	}

	switch ctx := vm.Context.(type) {
	case string:
		if ctx == want {
			return nil
		}
	case []interface{}:
		for _, c := range ctx {
			if s, ok := c.(string); ok && s == want {
				return nil
			}
		}
	}

	return fmt.Errorf("%w: @context missing %s", ErrInvalidKeypairContent, want)
}
