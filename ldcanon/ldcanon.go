/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ldcanon wraps the external canonicalization implementations used
// by the ECDSA cryptosuites: RDF Dataset Canonicalization (URDNA2015) over
// JSON-LD and N-Quads input, and the JSON Canonicalization Scheme (RFC 8785).
package ldcanon

import (
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
	"github.com/piprate/json-gold/ld"
	"github.com/trustbloc/did-go/doc/ld/processor"
)

// CanonizeJSONLD canonicalizes a JSON-LD document into canonical N-Quads
// with URDNA2015.
func CanonizeJSONLD(doc map[string]interface{}, loader ld.DocumentLoader) ([]byte, error) {
	out, err := processor.Default().GetCanonicalDocument(doc, processor.WithDocumentLoader(loader))
	if err != nil {
		return nil, fmt.Errorf("canonicalizing signature base data: %w", err)
	}

	return out, nil
}

// CanonizeNQuads canonicalizes an N-Quads dataset with URDNA2015.
func CanonizeNQuads(nquads string, loader ld.DocumentLoader) (string, error) {
	opts := ld.NewJsonLdOptions("")
	opts.Algorithm = ld.AlgorithmURDNA2015
	opts.Format = "application/n-quads"
	opts.InputFormat = "application/n-quads"
	opts.DocumentLoader = loader

	out, err := ld.NewJsonLdProcessor().Normalize(nquads, opts)
	if err != nil {
		return "", fmt.Errorf("canonicalizing N-Quads: %w", err)
	}

	canonical, ok := out.(string)
	if !ok {
		return "", fmt.Errorf("canonicalizing N-Quads: unexpected output %T", out)
	}

	return canonical, nil
}

// Expand expands a JSON-LD document.
func Expand(doc map[string]interface{}, loader ld.DocumentLoader) ([]interface{}, error) {
	opts := ld.NewJsonLdOptions("")
	opts.DocumentLoader = loader

	expanded, err := ld.NewJsonLdProcessor().Expand(doc, opts)
	if err != nil {
		return nil, fmt.Errorf("expanding JSON-LD: %w", err)
	}

	return expanded, nil
}

// Compact compacts a JSON-LD document against the given context.
func Compact(doc interface{}, context interface{}, loader ld.DocumentLoader) (map[string]interface{}, error) {
	opts := ld.NewJsonLdOptions("")
	opts.DocumentLoader = loader

	compacted, err := ld.NewJsonLdProcessor().Compact(doc, context, opts)
	if err != nil {
		return nil, fmt.Errorf("compacting JSON-LD: %w", err)
	}

	return compacted, nil
}

// ToRDF serializes a JSON-LD document to N-Quads without canonicalizing.
func ToRDF(doc interface{}, loader ld.DocumentLoader) (string, error) {
	opts := ld.NewJsonLdOptions("")
	opts.Format = "application/n-quads"
	opts.DocumentLoader = loader

	out, err := ld.NewJsonLdProcessor().ToRDF(doc, opts)
	if err != nil {
		return "", fmt.Errorf("serializing JSON-LD to RDF: %w", err)
	}

	nquads, ok := out.(string)
	if !ok {
		return "", fmt.Errorf("serializing JSON-LD to RDF: unexpected output %T", out)
	}

	return nquads, nil
}

// CanonizeJCS canonicalizes a JSON value per RFC 8785.
func CanonizeJCS(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling for JCS: %w", err)
	}

	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("JCS transform: %w", err)
	}

	return out, nil
}
