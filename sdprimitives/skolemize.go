/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sdprimitives

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/piprate/json-gold/ld"

	"github.com/trustbloc/vc-di-ecdsa/ldcanon"
	jsonutil "github.com/trustbloc/vc-di-ecdsa/util/json"
)

// skolemizer rewrites blank nodes of an expanded JSON-LD document into
// urn:bnid IRIs so that JSON-Pointer selections stay joinable with the
// document's canonical N-Quads.
type skolemizer struct {
	prefix  string
	counter int
}

// SkolemizeCompactJSONLD expands the document, replaces every blank node
// with a urn:bnid IRI under a random prefix, and compacts the result back
// against the document's own context. The returned prefix deskolemizes the
// document's N-Quads.
func SkolemizeCompactJSONLD(doc map[string]interface{}, loader ld.DocumentLoader) (map[string]interface{}, string, error) {
	expanded, err := ldcanon.Expand(doc, loader)
	if err != nil {
		return nil, "", err
	}

	sk := &skolemizer{prefix: uuid.NewString()}

	skolemized := make([]interface{}, len(expanded))
	for i, node := range expanded {
		skolemized[i] = sk.skolemize(jsonutil.DeepCopy(node))
	}

	compacted, err := ldcanon.Compact(skolemized, doc["@context"], loader)
	if err != nil {
		return nil, "", err
	}

	return compacted, sk.prefix, nil
}

func (sk *skolemizer) skolemize(v interface{}) interface{} {
	switch node := v.(type) {
	case []interface{}:
		for i, item := range node {
			node[i] = sk.skolemize(item)
		}

		return node
	case map[string]interface{}:
		if _, isValue := node["@value"]; isValue {
			return node
		}

		if _, isList := node["@list"]; !isList {
			sk.assignID(node)
		}

		for key, item := range node {
			if key == "@id" || key == "@type" || key == "@value" || key == "@index" {
				continue
			}

			node[key] = sk.skolemize(item)
		}

		return node
	default:
		return v
	}
}

func (sk *skolemizer) assignID(node map[string]interface{}) {
	id, hasID := node["@id"].(string)

	switch {
	case !hasID:
		node["@id"] = fmt.Sprintf("urn:bnid:%s:_:b%d", sk.prefix, sk.counter)
		sk.counter++
	case strings.HasPrefix(id, "_:"):
		node["@id"] = fmt.Sprintf("urn:bnid:%s:%s", sk.prefix, id)
	}
}

// DeskolemizeNQuads rewrites urn:bnid IRIs under the given prefix back into
// blank node labels.
func DeskolemizeNQuads(nquads, prefix string) string {
	re := regexp.MustCompile(`<urn:bnid:` + regexp.QuoteMeta(prefix) + `:([^>]+)>`)

	return re.ReplaceAllString(nquads, "$1")
}

// SplitNQuads splits an N-Quads document into individual statements, each
// retaining its trailing newline.
func SplitNQuads(nquads string) []string {
	lines := strings.Split(nquads, "\n")

	out := make([]string, 0, len(lines))

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		out = append(out, line+"\n")
	}

	return out
}

// JoinNQuads concatenates N-Quad statements back into one document.
func JoinNQuads(nquads []string) string {
	return strings.Join(nquads, "")
}
