/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ecdsasd2023

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/piprate/json-gold/ld"

	"github.com/trustbloc/vc-di-ecdsa/dataintegrity/models"
	"github.com/trustbloc/vc-di-ecdsa/dataintegrity/suite"
	"github.com/trustbloc/vc-di-ecdsa/ldcanon"
	"github.com/trustbloc/vc-di-ecdsa/sdprimitives"
	jsonutil "github.com/trustbloc/vc-di-ecdsa/util/json"
)

// DeriveProof implements the ecdsa-sd-2023 Add Derived Proof operation:
// https://www.w3.org/TR/vc-di-ecdsa/#add-derived-proof-ecdsa-sd-2023
//
// doc is the secured document carrying a base proof. The result is the
// reveal document: the mandatory statements plus those selected by
// opts.SelectivePointers, secured with a derived proof.
func (s *Suite) DeriveProof(doc []byte, opts *models.DeriveOptions) ([]byte, error) {
	docData := make(map[string]interface{})
	if err := json.Unmarshal(doc, &docData); err != nil {
		return nil, fmt.Errorf("ecdsa-sd-2023 suite expects JSON-LD payload: %w", err)
	}

	proofMap, ok := docData["proof"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: secured document carries no proof", suite.ErrProofVerification)
	}

	proof, err := models.ProofFromMap(proofMap)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", suite.ErrProofVerification, err)
	}

	if proof.Type != models.DataIntegrityProof || proof.CryptoSuite != SuiteType {
		return nil, suite.ErrProofTransformation
	}

	if proof.Created != "" {
		if _, err := time.Parse(models.DateTimeFormat, proof.Created); err != nil {
			return nil, fmt.Errorf("%w: invalid created %q", suite.ErrProofGeneration, proof.Created)
		}
	}

	base, err := parseBaseProofValue(proof.ProofValue)
	if err != nil {
		return nil, err
	}

	hmacFn, err := sdprimitives.NewHMAC(base.HMACKey)
	if err != nil {
		return nil, err
	}

	unsecured := jsonutil.CopyExcept(docData, "proof")
	combinedPointers := append(append([]string{}, base.MandatoryPointers...), opts.SelectivePointers...)

	groups, err := sdprimitives.CanonicalizeAndGroup(unsecured,
		sdprimitives.CreateHmacIDLabelMapFunction(hmacFn),
		map[string][]string{
			groupMandatory: base.MandatoryPointers,
			groupSelective: opts.SelectivePointers,
			groupCombined:  combinedPointers,
		},
		s.ldLoader)
	if err != nil {
		return nil, err
	}

	mandatoryGroup := groups.Groups[groupMandatory]
	selectiveGroup := groups.Groups[groupSelective]
	combinedGroup := groups.Groups[groupCombined]

	mandatoryIndexes := relativeMandatoryIndexes(combinedGroup, mandatoryGroup)

	filteredSignatures := filterSignatures(base.Signatures, mandatoryGroup, selectiveGroup)

	verifierLabelMap, err := buildVerifierLabelMap(combinedGroup, groups.LabelMap, s.ldLoader)
	if err != nil {
		return nil, err
	}

	compressed, err := compressLabelMap(verifierLabelMap)
	if err != nil {
		return nil, err
	}

	proofValue, err := serializeDerivedProofValue(&DerivedProofValue{
		BaseSignature:      base.BaseSignature,
		PublicKey:          base.PublicKey,
		Signatures:         filteredSignatures,
		CompressedLabelMap: compressed,
		MandatoryIndexes:   mandatoryIndexes,
	})
	if err != nil {
		return nil, err
	}

	revealDoc, err := sdprimitives.SelectJSONLD(combinedPointers, unsecured)
	if err != nil {
		return nil, err
	}

	if revealDoc == nil {
		revealDoc = map[string]interface{}{ldCtxKey: unsecured[ldCtxKey]}
	}

	derivedProof := &models.Proof{
		Type:               models.DataIntegrityProof,
		CryptoSuite:        SuiteType,
		ProofPurpose:       proof.ProofPurpose,
		VerificationMethod: proof.VerificationMethod,
		Created:            proof.Created,
		Domain:             proof.Domain,
		Challenge:          proof.Challenge,
		ProofValue:         proofValue,
	}

	derivedProofMap, err := derivedProof.ToMap()
	if err != nil {
		return nil, err
	}

	revealDoc["proof"] = derivedProofMap

	return json.Marshal(revealDoc)
}

// relativeMandatoryIndexes converts the absolute indices of the mandatory
// group into indices relative to the combined group's statement order.
func relativeMandatoryIndexes(combined, mandatory *sdprimitives.Group) []int {
	indexes := []int{}
	relative := 0

	for _, abs := range sdprimitives.SortedIndexes(combined.Matching) {
		if _, ok := mandatory.Matching[abs]; ok {
			indexes = append(indexes, relative)
		}

		relative++
	}

	return indexes
}

// filterSignatures keeps the base proof signatures belonging to selectively
// disclosed statements. The base signatures cover the non-mandatory
// statements in ascending absolute order, so the walk advances past
// mandatory indices while pairing each signature with its statement.
func filterSignatures(signatures [][]byte, mandatory, selective *sdprimitives.Group) [][]byte {
	filtered := [][]byte{}
	index := 0

	for _, sig := range signatures {
		for {
			if _, isMandatory := mandatory.Matching[index]; !isMandatory {
				break
			}

			index++
		}

		if _, isSelective := selective.Matching[index]; isSelective {
			filtered = append(filtered, sig)
		}

		index++
	}

	return filtered
}

// buildVerifierLabelMap maps the canonical labels the verifier will assign
// to the reveal document onto the HMAC labels of the base proof. The
// verifier's labels are obtained by canonicalizing the combined selection;
// URDNA2015 assigns the same labels to the same statements regardless of the
// input labelling, so this matches the verifier's canonicalization of the
// reveal document.
func buildVerifierLabelMap(combined *sdprimitives.Group, labelMap map[string]string,
	loader ld.DocumentLoader) (map[string]string, error) {
	if len(combined.DeskolemizedNQuads) == 0 {
		return map[string]string{}, nil
	}

	canonical, err := ldcanon.CanonizeNQuads(sdprimitives.JoinNQuads(combined.DeskolemizedNQuads), loader)
	if err != nil {
		return nil, err
	}

	canonicalIDMap, err := sdprimitives.RecoverCanonicalIDMap(
		combined.DeskolemizedNQuads, sdprimitives.SplitNQuads(canonical))
	if err != nil {
		return nil, err
	}

	verifierLabelMap := make(map[string]string, len(canonicalIDMap))

	for inputLabel, verifierLabel := range canonicalIDMap {
		hmacLabel, ok := labelMap[inputLabel]
		if !ok {
			return nil, fmt.Errorf("%w: no HMAC label for blank node %q", suite.ErrProofVerification, inputLabel)
		}

		verifierLabelMap[verifierLabel] = hmacLabel
	}

	return verifierLabelMap, nil
}
