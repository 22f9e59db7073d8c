/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package models provides the shared value objects of the Data Integrity
// proof lifecycle.
package models

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/trustbloc/vc-di-ecdsa/keypair"
	jsonutil "github.com/trustbloc/vc-di-ecdsa/util/json"
)

const (
	// DataIntegrityProof is the proof type shared by all Data Integrity
	// cryptosuites.
	DataIntegrityProof = "DataIntegrityProof"

	// DateTimeFormat is the datetime format of proof created timestamps.
	DateTimeFormat = time.RFC3339
)

// Proof is a Data Integrity proof as attached to a JSON-LD document under
// the "proof" member.
type Proof struct {
	Context            interface{} `json:"@context,omitempty"`
	Type               string      `json:"type"`
	CryptoSuite        string      `json:"cryptosuite,omitempty"`
	ProofPurpose       string      `json:"proofPurpose,omitempty"`
	VerificationMethod string      `json:"verificationMethod,omitempty"`
	Created            string      `json:"created,omitempty"`
	Domain             string      `json:"domain,omitempty"`
	Challenge          string      `json:"challenge,omitempty"`
	ProofValue         string      `json:"proofValue,omitempty"`
}

// ToMap converts the proof into a JSON-LD map.
func (p *Proof) ToMap() (map[string]interface{}, error) {
	return jsonutil.ToMap(p)
}

// ProofFromMap decodes a JSON-LD proof map into a Proof.
func ProofFromMap(m map[string]interface{}) (*Proof, error) {
	proof := &Proof{}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  proof,
	})
	if err != nil {
		return nil, err
	}

	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("decoding proof: %w", err)
	}

	return proof, nil
}

// ProofOptions carries the caller-selected parameters of proof creation and
// verification.
type ProofOptions struct {
	// VerificationMethod, when set, skips resolution through the document
	// loader.
	VerificationMethod *keypair.VerificationMethod
	// VerificationMethodID is the verification method URI written into the
	// proof.
	VerificationMethodID string
	// SuiteType is the cryptosuite identifier.
	SuiteType string
	// ProofType must be DataIntegrityProof.
	ProofType string
	// Purpose is the proof purpose, e.g. assertionMethod.
	Purpose string
	// Created is the proof creation timestamp.
	Created time.Time
	// Domain and Challenge are optional binding fields.
	Domain    string
	Challenge string
	// MandatoryPointers are the JSON Pointers an ecdsa-sd-2023 base proof
	// always discloses.
	MandatoryPointers []string
}

// DeriveOptions carries the holder-side parameters of selective disclosure.
type DeriveOptions struct {
	// SelectivePointers name the statements revealed in addition to the
	// mandatory ones.
	SelectivePointers []string
	// VerificationMethod, when set, skips resolution through the document
	// loader.
	VerificationMethod *keypair.VerificationMethod
}

// VerificationResult is the outcome of proof verification. VerifiedDocument
// is populated only when Verified is true.
type VerificationResult struct {
	Verified         bool
	VerifiedDocument map[string]interface{}
}
