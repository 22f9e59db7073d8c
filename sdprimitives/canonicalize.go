/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sdprimitives

import (
	"fmt"
	"sort"

	"github.com/piprate/json-gold/ld"
	"github.com/samber/lo"

	"github.com/trustbloc/vc-di-ecdsa/keypair"
	"github.com/trustbloc/vc-di-ecdsa/ldcanon"
)

// CanonicalizeResult is the outcome of a label-replacement
// canonicalization: the relabelled canonical statements in sorted order, and
// the replacement map keyed by the input dataset's blank node labels.
type CanonicalizeResult struct {
	NQuads   []string
	LabelMap map[string]string
}

// LabelReplacementCanonicalizeNQuads canonicalizes an N-Quads dataset, then
// replaces the canonical blank node labels through the map produced by the
// factory, and re-sorts the statements.
func LabelReplacementCanonicalizeNQuads(nquads []string, factory LabelMapFactory,
	loader ld.DocumentLoader) (*CanonicalizeResult, error) {
	canonical, err := ldcanon.CanonizeNQuads(JoinNQuads(nquads), loader)
	if err != nil {
		return nil, err
	}

	canonicalQuads := SplitNQuads(canonical)

	canonicalIDMap, err := RecoverCanonicalIDMap(nquads, canonicalQuads)
	if err != nil {
		return nil, fmt.Errorf("recovering canonical id map: %w", err)
	}

	labelMap, err := factory(canonicalIDMap)
	if err != nil {
		return nil, err
	}

	c14nToReplacement := make(map[string]string, len(canonicalIDMap))
	for input, c14nLabel := range canonicalIDMap {
		c14nToReplacement[c14nLabel] = labelMap[input]
	}

	relabelled := make([]string, len(canonicalQuads))
	for i, q := range canonicalQuads {
		relabelled[i] = ReplaceBlankNodeLabels(q, c14nToReplacement)
	}

	sort.Strings(relabelled)

	return &CanonicalizeResult{NQuads: relabelled, LabelMap: labelMap}, nil
}

// LabelReplacementCanonicalizeJSONLD serializes a JSON-LD document to
// N-Quads and runs the label-replacement canonicalization over them.
func LabelReplacementCanonicalizeJSONLD(doc map[string]interface{}, factory LabelMapFactory,
	loader ld.DocumentLoader) (*CanonicalizeResult, error) {
	rdf, err := ldcanon.ToRDF(doc, loader)
	if err != nil {
		return nil, err
	}

	return LabelReplacementCanonicalizeNQuads(SplitNQuads(rdf), factory, loader)
}

// Group partitions the canonical statements of a document against one
// pointer selection. Matching and NonMatching are keyed by the statement's
// absolute index in the canonical order. DeskolemizedNQuads carry the
// selection in the input-label form used for later re-canonicalization.
type Group struct {
	Matching           map[int]string
	NonMatching        map[int]string
	DeskolemizedNQuads []string
}

// GroupResult is the outcome of CanonicalizeAndGroup.
type GroupResult struct {
	Groups          map[string]*Group
	LabelMap        map[string]string
	CanonicalNQuads []string
}

// CanonicalizeAndGroup canonicalizes a document with blank node label
// replacement and partitions its statements into one group per named
// JSON-Pointer selection.
func CanonicalizeAndGroup(doc map[string]interface{}, factory LabelMapFactory,
	groups map[string][]string, loader ld.DocumentLoader) (*GroupResult, error) {
	skolemized, prefix, err := SkolemizeCompactJSONLD(doc, loader)
	if err != nil {
		return nil, err
	}

	skolemRDF, err := ldcanon.ToRDF(skolemized, loader)
	if err != nil {
		return nil, err
	}

	deskolemized := SplitNQuads(DeskolemizeNQuads(skolemRDF, prefix))

	canonical, err := LabelReplacementCanonicalizeNQuads(deskolemized, factory, loader)
	if err != nil {
		return nil, err
	}

	result := &GroupResult{
		Groups:          make(map[string]*Group, len(groups)),
		LabelMap:        canonical.LabelMap,
		CanonicalNQuads: canonical.NQuads,
	}

	for name, pointers := range groups {
		group, err := buildGroup(pointers, skolemized, prefix, canonical, loader)
		if err != nil {
			return nil, fmt.Errorf("grouping %q: %w", name, err)
		}

		result.Groups[name] = group
	}

	return result, nil
}

func buildGroup(pointers []string, skolemized map[string]interface{}, prefix string,
	canonical *CanonicalizeResult, loader ld.DocumentLoader) (*Group, error) {
	group := &Group{
		Matching:    map[int]string{},
		NonMatching: map[int]string{},
	}

	selection, err := SelectJSONLD(pointers, skolemized)
	if err != nil {
		return nil, err
	}

	selected := map[string]bool{}

	if selection != nil {
		selectionRDF, err := ldcanon.ToRDF(selection, loader)
		if err != nil {
			return nil, err
		}

		group.DeskolemizedNQuads = SplitNQuads(DeskolemizeNQuads(selectionRDF, prefix))

		for _, q := range group.DeskolemizedNQuads {
			selected[ReplaceBlankNodeLabels(q, canonical.LabelMap)] = true
		}
	}

	for i, q := range canonical.NQuads {
		if selected[q] {
			group.Matching[i] = q
		} else {
			group.NonMatching[i] = q
		}
	}

	return group, nil
}

// SortedIndexes returns the keys of an index → statement map in ascending
// order.
func SortedIndexes(m map[int]string) []int {
	indexes := lo.Keys(m)
	sort.Ints(indexes)

	return indexes
}

// StatementsInOrder returns the statements of an index → statement map in
// ascending index order.
func StatementsInOrder(m map[int]string) []string {
	indexes := SortedIndexes(m)

	return lo.Map(indexes, func(i int, _ int) string {
		return m[i]
	})
}

// HashMandatoryNQuads concatenates the statements in the order given and
// hashes them once with the curve's digest.
func HashMandatoryNQuads(nquads []string, curve keypair.Curve) ([]byte, error) {
	return keypair.Digest(curve, []byte(JoinNQuads(nquads)))
}
