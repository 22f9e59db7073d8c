/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package vermethod resolves verification methods for proof verification
// through a JSON-LD document loader.
package vermethod

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/piprate/json-gold/ld"

	"github.com/trustbloc/vc-di-ecdsa/keypair"
)

const resolveIDParts = 2

// Resolver fetches verification method documents by URL. A source of the URL
// is the "verificationMethod" of a Data Integrity proof.
type Resolver struct {
	loader ld.DocumentLoader
}

// NewResolver creates a Resolver over the given document loader.
func NewResolver(loader ld.DocumentLoader) *Resolver {
	return &Resolver{loader: loader}
}

// ResolveVerificationMethod resolves a verification method by its URL. The
// loader may return either the verification method document itself or a
// controller document listing it.
func (r *Resolver) ResolveVerificationMethod(verificationMethod string) (*keypair.VerificationMethod, error) {
	if len(strings.Split(verificationMethod, "#")) != resolveIDParts {
		return nil, fmt.Errorf("wrong id %s to resolve", verificationMethod)
	}

	remote, err := r.loader.LoadDocument(verificationMethod)
	if err != nil {
		return nil, fmt.Errorf("resolve verification method %s: %w", verificationMethod, err)
	}

	raw, err := json.Marshal(remote.Document)
	if err != nil {
		return nil, fmt.Errorf("resolve verification method %s: %w", verificationMethod, err)
	}

	vm := &keypair.VerificationMethod{}

	if err := json.Unmarshal(raw, vm); err != nil {
		return nil, fmt.Errorf("resolve verification method %s: %w", verificationMethod, err)
	}

	if vm.ID != "" && vm.Type != "" {
		return vm, nil
	}

	return findInController(raw, verificationMethod)
}

// findInController searches a controller document's verificationMethod list.
func findInController(raw []byte, id string) (*keypair.VerificationMethod, error) {
	var doc struct {
		VerificationMethod []json.RawMessage `json:"verificationMethod"`
	}

	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("resolve verification method %s: %w", id, err)
	}

	for _, entry := range doc.VerificationMethod {
		vm := &keypair.VerificationMethod{}

		if err := json.Unmarshal(entry, vm); err != nil {
			continue
		}

		if vm.ID == id || strings.HasSuffix(id, vm.ID) {
			return vm, nil
		}
	}

	return nil, fmt.Errorf("verification method %s is not found", id)
}
