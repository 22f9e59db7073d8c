/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sdprimitives

import (
	"fmt"
	"regexp"
	"sort"
)

var blankNodeRe = regexp.MustCompile(`_:([A-Za-z0-9_-]+)`)

// RecoverCanonicalIDMap reconstructs the blank node label bijection between
// an input N-Quads dataset and its canonical form. URDNA2015 output does not
// depend on input labels, so the bijection is recovered from the quad
// correspondence itself: quads are grouped by their ground pattern and the
// label assignment is searched under those constraints. Automorphic datasets
// admit more than one bijection; any consistent one maps the input onto the
// identical canonical form, so the first found is returned.
//
// Labels in the returned map carry no "_:" prefix on either side.
func RecoverCanonicalIDMap(inputNQuads, canonicalNQuads []string) (map[string]string, error) {
	if len(inputNQuads) != len(canonicalNQuads) {
		return nil, fmt.Errorf("datasets differ in size: %d vs %d", len(inputNQuads), len(canonicalNQuads))
	}

	inLabels := collectLabels(inputNQuads)
	outLabels := collectLabels(canonicalNQuads)

	if len(inLabels) != len(outLabels) {
		return nil, fmt.Errorf("datasets differ in blank node count: %d vs %d", len(inLabels), len(outLabels))
	}

	candidates := buildCandidates(inputNQuads, canonicalNQuads, inLabels, outLabels)

	for label, cands := range candidates {
		if len(cands) == 0 {
			return nil, fmt.Errorf("blank node %q has no canonical counterpart", label)
		}
	}

	// Assign most-constrained labels first.
	order := make([]string, 0, len(candidates))
	for label := range candidates {
		order = append(order, label)
	}

	sort.Slice(order, func(i, j int) bool {
		if len(candidates[order[i]]) != len(candidates[order[j]]) {
			return len(candidates[order[i]]) < len(candidates[order[j]])
		}

		return order[i] < order[j]
	})

	assignment := map[string]string{}
	used := map[string]bool{}

	if !searchAssignment(order, 0, candidates, assignment, used, inputNQuads, canonicalNQuads) {
		return nil, fmt.Errorf("no consistent blank node bijection found")
	}

	return assignment, nil
}

func collectLabels(nquads []string) []string {
	seen := map[string]bool{}
	labels := []string{}

	for _, q := range nquads {
		for _, m := range blankNodeRe.FindAllStringSubmatch(q, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				labels = append(labels, m[1])
			}
		}
	}

	return labels
}

// groundPattern replaces every blank node label in the quad with a
// placeholder, leaving only the ground structure.
func groundPattern(q string) string {
	return blankNodeRe.ReplaceAllString(q, "_:?")
}

func quadLabels(q string) []string {
	matches := blankNodeRe.FindAllStringSubmatch(q, -1)

	labels := make([]string, len(matches))
	for i, m := range matches {
		labels[i] = m[1]
	}

	return labels
}

// buildCandidates intersects, for every input label, the canonical labels
// seen at the same position of quads with the same ground pattern.
func buildCandidates(inQuads, outQuads []string, inLabels, outLabels []string) map[string]map[string]bool {
	type posKey struct {
		sig string
		pos int
	}

	outAtPos := map[posKey]map[string]bool{}

	for _, q := range outQuads {
		sig := groundPattern(q)
		for pos, label := range quadLabels(q) {
			key := posKey{sig, pos}
			if outAtPos[key] == nil {
				outAtPos[key] = map[string]bool{}
			}

			outAtPos[key][label] = true
		}
	}

	candidates := map[string]map[string]bool{}

	for _, label := range inLabels {
		all := map[string]bool{}
		for _, out := range outLabels {
			all[out] = true
		}

		candidates[label] = all
	}

	for _, q := range inQuads {
		sig := groundPattern(q)
		for pos, label := range quadLabels(q) {
			allowed := outAtPos[posKey{sig, pos}]

			for out := range candidates[label] {
				if !allowed[out] {
					delete(candidates[label], out)
				}
			}
		}
	}

	return candidates
}

func searchAssignment(order []string, depth int, candidates map[string]map[string]bool,
	assignment map[string]string, used map[string]bool, inQuads, outQuads []string) bool {
	if depth == len(order) {
		return bijectionHolds(assignment, inQuads, outQuads)
	}

	label := order[depth]

	cands := make([]string, 0, len(candidates[label]))
	for out := range candidates[label] {
		cands = append(cands, out)
	}

	sort.Strings(cands)

	for _, out := range cands {
		if used[out] {
			continue
		}

		assignment[label] = out
		used[out] = true

		if searchAssignment(order, depth+1, candidates, assignment, used, inQuads, outQuads) {
			return true
		}

		delete(assignment, label)
		used[out] = false
	}

	return false
}

// bijectionHolds verifies that relabelling the input quads through the
// assignment yields exactly the canonical quad multiset.
func bijectionHolds(assignment map[string]string, inQuads, outQuads []string) bool {
	counts := map[string]int{}

	for _, q := range outQuads {
		counts[q]++
	}

	for _, q := range inQuads {
		mapped := ReplaceBlankNodeLabels(q, assignment)

		if counts[mapped] == 0 {
			return false
		}

		counts[mapped]--
	}

	return true
}

// ReplaceBlankNodeLabels rewrites every blank node label in the statement
// through the given map. Labels without an entry are left untouched.
func ReplaceBlankNodeLabels(nquad string, labelMap map[string]string) string {
	return blankNodeRe.ReplaceAllStringFunc(nquad, func(match string) string {
		if replacement, ok := labelMap[match[2:]]; ok {
			return "_:" + replacement
		}

		return match
	})
}
