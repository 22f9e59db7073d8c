/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package testutil provides shared fixtures for suite tests: an in-memory
// JSON-LD document loader preloaded with the test contexts, and keypair
// helpers.
package testutil

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/piprate/json-gold/ld"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/vc-di-ecdsa/keypair"
)

// CredentialsContextURL is the context used by the test credentials.
const CredentialsContextURL = "https://vc.example/contexts/credentials/v1"

//go:embed contexts/credentials-v1.jsonld
var credentialsContext []byte

// DocumentLoader is an in-memory ld.DocumentLoader serving the test
// contexts and any registered verification method documents.
type DocumentLoader struct {
	docs map[string]interface{}
}

// NewDocumentLoader creates a loader preloaded with the test contexts.
func NewDocumentLoader(t *testing.T) *DocumentLoader {
	t.Helper()

	loader := &DocumentLoader{docs: map[string]interface{}{}}
	loader.add(t, CredentialsContextURL, credentialsContext)

	return loader
}

func (l *DocumentLoader) add(t *testing.T, url string, content []byte) {
	t.Helper()

	var doc interface{}

	require.NoError(t, json.Unmarshal(content, &doc))

	l.docs[url] = doc
}

// AddVerificationMethod registers a verification method document under its
// own id, so suites can resolve it like a remote document.
func (l *DocumentLoader) AddVerificationMethod(t *testing.T, vm *keypair.VerificationMethod) {
	t.Helper()

	content, err := json.Marshal(vm)
	require.NoError(t, err)

	l.add(t, vm.ID, content)
}

// LoadDocument implements ld.DocumentLoader.
func (l *DocumentLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	doc, ok := l.docs[u]
	if !ok {
		return nil, fmt.Errorf("document not found: %s", u)
	}

	return &ld.RemoteDocument{DocumentURL: u, Document: doc}, nil
}

// SigningKey creates an initialized keypair on the given curve together with
// its public Multikey verification method, registered with the loader.
func SigningKey(t *testing.T, curve keypair.Curve, loader *DocumentLoader) (*keypair.ECKeypair, *keypair.VerificationMethod) {
	t.Helper()

	kp, err := keypair.New(curve, &keypair.Options{Controller: "did:example:issuer"})
	require.NoError(t, err)
	require.NoError(t, kp.Initialize())

	vm, err := kp.Export(&keypair.ExportOptions{Type: keypair.TypeMultikey})
	require.NoError(t, err)

	if loader != nil {
		loader.AddVerificationMethod(t, vm)
	}

	return kp, vm
}

// AlumniCredential is a minimal single-subject test credential.
func AlumniCredential() []byte {
	return []byte(`{
		"@context": ["` + CredentialsContextURL + `"],
		"id": "urn:uuid:58172aac-d8ba-11ed-83dd-0b3aef56cc33",
		"type": ["VerifiableCredential", "AlumniCredential"],
		"name": "Alumni Credential",
		"description": "A minimal example of an alumni credential.",
		"issuer": "https://vc.example/issuers/5678",
		"validFrom": "2023-01-01T00:00:00Z",
		"credentialSubject": {
			"id": "did:example:abcdefgh",
			"alumniOf": "The School of Examples"
		}
	}`)
}

// EmployeeCredential is a test credential with blank credential subject
// structure, exercising the selective disclosure machinery.
func EmployeeCredential() []byte {
	return []byte(`{
		"@context": ["` + CredentialsContextURL + `"],
		"type": ["VerifiableCredential", "EmployeeCredential"],
		"issuer": "https://vc.example/issuers/5678",
		"validFrom": "2023-02-01T00:00:00Z",
		"credentialSubject": {
			"employeeName": {
				"firstName": "Alice",
				"lastName": "Holder"
			},
			"jobTitle": "Engineer",
			"department": {
				"name": "Engineering",
				"site": "Berlin"
			},
			"skills": ["go", "rust", "sql"],
			"clearance": "L2"
		}
	}`)
}
