/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package sdprimitives implements the selective-disclosure primitives used
// by the ecdsa-sd-2023 cryptosuite: HMAC blank-node label maps, skolemized
// JSON-Pointer selection, canonicalize-and-group, and label-map recovery.
package sdprimitives

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"github.com/trustbloc/vc-di-ecdsa/codec"
)

// HMACKeySize is the byte length of the blank-node relabelling key. Label
// relabelling always uses HMAC-SHA-256, so derived label map entries are
// always 32 bytes.
const HMACKeySize = 32

// HMAC is the keyed function used to derive unlinkable blank node labels
// from canonical ones.
type HMAC struct {
	key []byte
}

// NewHMAC wraps a relabelling key.
func NewHMAC(key []byte) (*HMAC, error) {
	if len(key) != HMACKeySize {
		return nil, fmt.Errorf("%w: HMAC key must be %d bytes, got %d", codec.ErrEncoding, HMACKeySize, len(key))
	}

	return &HMAC{key: key}, nil
}

// GenerateHMACKey creates a fresh random relabelling key.
func GenerateHMACKey() ([]byte, error) {
	key := make([]byte, HMACKeySize)

	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating HMAC key: %w", err)
	}

	return key, nil
}

// Key returns the relabelling key bytes.
func (h *HMAC) Key() []byte {
	return h.key
}

// Sign computes the HMAC over data.
func (h *HMAC) Sign(data []byte) []byte {
	mac := hmac.New(sha256.New, h.key)
	mac.Write(data)

	return mac.Sum(nil)
}

// LabelMapFactory produces a blank node label replacement map from a
// canonical id map (original label → canonical label, both without the "_:"
// prefix).
type LabelMapFactory func(canonicalIDMap map[string]string) (map[string]string, error)

// CreateHmacIDLabelMapFunction returns a factory mapping each blank node to
// the base64url multibase encoding of the HMAC over its canonical label.
// HMAC'd labels prevent correlation of statements across derived proofs.
func CreateHmacIDLabelMapFunction(h *HMAC) LabelMapFactory {
	return func(canonicalIDMap map[string]string) (map[string]string, error) {
		labelMap := make(map[string]string, len(canonicalIDMap))

		for input, c14nLabel := range canonicalIDMap {
			hmacLabel, err := codec.Base64URLNoPadEncode(h.Sign([]byte(c14nLabel)))
			if err != nil {
				return nil, err
			}

			labelMap[input] = hmacLabel
		}

		return labelMap, nil
	}
}

// CreateLabelMapFunction returns a factory that relabels blank nodes through
// an existing canonical-label → replacement map, as used by the verifier of
// a derived proof.
func CreateLabelMapFunction(labelMap map[string]string) LabelMapFactory {
	return func(canonicalIDMap map[string]string) (map[string]string, error) {
		out := make(map[string]string, len(canonicalIDMap))

		for input, c14nLabel := range canonicalIDMap {
			replacement, ok := labelMap[c14nLabel]
			if !ok {
				return nil, fmt.Errorf("label map has no entry for %q", c14nLabel)
			}

			out[input] = replacement
		}

		return out, nil
	}
}
