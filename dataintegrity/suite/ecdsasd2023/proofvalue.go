/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ecdsasd2023

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/trustbloc/vc-di-ecdsa/codec"
	"github.com/trustbloc/vc-di-ecdsa/dataintegrity/suite"
)

// Proof value headers: CBOR tag bytes d9 5d 00 (base) and d9 5d 01
// (derived), prepended raw to the tag-free CBOR payload.
var (
	baseProofHeader    = []byte{0xd9, 0x5d, 0x00}
	derivedProofHeader = []byte{0xd9, 0x5d, 0x01}
)

const (
	p256SignatureSize = 64
	p384SignatureSize = 96
	publicKeySize     = 35
	hmacKeySize       = 32
	labelValueSize    = 32

	blankLabelPrefix = "c14n"
)

// BaseProofValue is the decoded payload of an ecdsa-sd-2023 base proof.
type BaseProofValue struct {
	_ struct{} `cbor:",toarray"`

	BaseSignature     []byte
	PublicKey         []byte
	HMACKey           []byte
	Signatures        [][]byte
	MandatoryPointers []string
}

// DerivedProofValue is the decoded payload of an ecdsa-sd-2023 derived
// proof.
type DerivedProofValue struct {
	_ struct{} `cbor:",toarray"`

	BaseSignature      []byte
	PublicKey          []byte
	Signatures         [][]byte
	CompressedLabelMap map[int][]byte
	MandatoryIndexes   []int
}

func (v *BaseProofValue) validate() error {
	if len(v.BaseSignature) != p256SignatureSize && len(v.BaseSignature) != p384SignatureSize {
		return fmt.Errorf("%w: base signature must be %d or %d bytes, got %d",
			suite.ErrProofVerification, p256SignatureSize, p384SignatureSize, len(v.BaseSignature))
	}

	if len(v.PublicKey) != publicKeySize {
		return fmt.Errorf("%w: proof public key must be %d bytes, got %d",
			suite.ErrProofVerification, publicKeySize, len(v.PublicKey))
	}

	if len(v.HMACKey) != hmacKeySize {
		return fmt.Errorf("%w: HMAC key must be %d bytes, got %d",
			suite.ErrProofVerification, hmacKeySize, len(v.HMACKey))
	}

	for i, sig := range v.Signatures {
		if len(sig) != p256SignatureSize {
			return fmt.Errorf("%w: statement signature %d must be %d bytes, got %d",
				suite.ErrProofVerification, i, p256SignatureSize, len(sig))
		}
	}

	return nil
}

func (v *DerivedProofValue) validate() error {
	if len(v.BaseSignature) != p256SignatureSize && len(v.BaseSignature) != p384SignatureSize {
		return fmt.Errorf("%w: base signature must be %d or %d bytes, got %d",
			suite.ErrProofVerification, p256SignatureSize, p384SignatureSize, len(v.BaseSignature))
	}

	if len(v.PublicKey) != publicKeySize {
		return fmt.Errorf("%w: proof public key must be %d bytes, got %d",
			suite.ErrProofVerification, publicKeySize, len(v.PublicKey))
	}

	for i, sig := range v.Signatures {
		if len(sig) != p256SignatureSize {
			return fmt.Errorf("%w: statement signature %d must be %d bytes, got %d",
				suite.ErrProofVerification, i, p256SignatureSize, len(sig))
		}
	}

	for key, value := range v.CompressedLabelMap {
		if key < 0 || len(value) != labelValueSize {
			return fmt.Errorf("%w: malformed label map entry %d", suite.ErrProofVerification, key)
		}
	}

	for _, idx := range v.MandatoryIndexes {
		if idx < 0 {
			return fmt.Errorf("%w: negative mandatory index", suite.ErrProofVerification)
		}
	}

	return nil
}

func serializeBaseProofValue(v *BaseProofValue) (string, error) {
	if err := v.validate(); err != nil {
		return "", err
	}

	payload, err := codec.CBOREncode(v)
	if err != nil {
		return "", err
	}

	return codec.Base64URLNoPadEncode(codec.Concat(baseProofHeader, payload))
}

func parseBaseProofValue(proofValue string) (*BaseProofValue, error) {
	payload, err := parseProofValue(proofValue, baseProofHeader)
	if err != nil {
		return nil, err
	}

	v := &BaseProofValue{}

	if err := codec.CBORDecode(payload, v); err != nil {
		return nil, fmt.Errorf("%w: %w", suite.ErrProofVerification, err)
	}

	if err := v.validate(); err != nil {
		return nil, err
	}

	return v, nil
}

func serializeDerivedProofValue(v *DerivedProofValue) (string, error) {
	if err := v.validate(); err != nil {
		return "", err
	}

	payload, err := codec.CBOREncode(v)
	if err != nil {
		return "", err
	}

	return codec.Base64URLNoPadEncode(codec.Concat(derivedProofHeader, payload))
}

func parseDerivedProofValue(proofValue string) (*DerivedProofValue, error) {
	payload, err := parseProofValue(proofValue, derivedProofHeader)
	if err != nil {
		return nil, err
	}

	v := &DerivedProofValue{}

	if err := codec.CBORDecode(payload, v); err != nil {
		return nil, fmt.Errorf("%w: %w", suite.ErrProofVerification, err)
	}

	if err := v.validate(); err != nil {
		return nil, err
	}

	return v, nil
}

func parseProofValue(proofValue string, header []byte) ([]byte, error) {
	if !strings.HasPrefix(proofValue, "u") {
		return nil, fmt.Errorf("%w: proofValue must use base64url multibase encoding", suite.ErrProofVerification)
	}

	raw, err := codec.Base64URLNoPadDecode(proofValue)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", suite.ErrProofVerification, err)
	}

	if len(raw) < len(header) || !bytes.Equal(raw[:len(header)], header) {
		return nil, fmt.Errorf("%w: proofValue header mismatch", suite.ErrProofVerification)
	}

	return raw[len(header):], nil
}

// compressLabelMap converts a verifier label map (c14nN → multibase HMAC
// label) into its integer-keyed wire form.
func compressLabelMap(labelMap map[string]string) (map[int][]byte, error) {
	compressed := make(map[int][]byte, len(labelMap))

	for key, value := range labelMap {
		if !strings.HasPrefix(key, blankLabelPrefix) {
			return nil, fmt.Errorf("%w: unexpected blank node label %q", suite.ErrProofVerification, key)
		}

		idx, err := strconv.Atoi(strings.TrimPrefix(key, blankLabelPrefix))
		if err != nil {
			return nil, fmt.Errorf("%w: unexpected blank node label %q", suite.ErrProofVerification, key)
		}

		decoded, err := codec.Base64URLNoPadDecode(value)
		if err != nil {
			return nil, err
		}

		if len(decoded) != labelValueSize {
			return nil, fmt.Errorf("%w: label value must be %d bytes", suite.ErrProofVerification, labelValueSize)
		}

		compressed[idx] = decoded
	}

	return compressed, nil
}

// decompressLabelMap is the inverse of compressLabelMap.
func decompressLabelMap(compressed map[int][]byte) (map[string]string, error) {
	labelMap := make(map[string]string, len(compressed))

	for idx, value := range compressed {
		encoded, err := codec.Base64URLNoPadEncode(value)
		if err != nil {
			return nil, err
		}

		labelMap[blankLabelPrefix+strconv.Itoa(idx)] = encoded
	}

	return labelMap, nil
}
