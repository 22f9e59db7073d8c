/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sdprimitives

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonpointer"

	jsonutil "github.com/trustbloc/vc-di-ecdsa/util/json"
)

// SelectJSONLD selects the sub-trees named by RFC 6901 JSON Pointers from a
// compact JSON-LD document. The selection keeps the document's @context and
// the @id/@type of every ancestor along each pointer path, so the result is
// itself a valid JSON-LD document describing the same nodes. An empty
// pointer list selects nothing and returns nil.
func SelectJSONLD(pointers []string, doc map[string]interface{}) (map[string]interface{}, error) {
	if len(pointers) == 0 {
		return nil, nil
	}

	selection := map[string]interface{}{}

	if ctx, ok := doc["@context"]; ok {
		selection["@context"] = jsonutil.DeepCopy(ctx)
	}

	copyNodeIdentifiers(doc, selection)

	for _, pointer := range pointers {
		if pointer == "" {
			for k, v := range doc {
				selection[k] = jsonutil.DeepCopy(v)
			}

			continue
		}

		// Validate the pointer against the document before walking it.
		ptr, err := gojsonpointer.NewJsonPointer(pointer)
		if err != nil {
			return nil, fmt.Errorf("JSON pointer %q: %w", pointer, err)
		}

		if _, _, err := ptr.Get(doc); err != nil {
			return nil, fmt.Errorf("JSON pointer %q does not match document: %w", pointer, err)
		}

		if err := selectPointer(doc, selection, parsePointer(pointer)); err != nil {
			return nil, fmt.Errorf("JSON pointer %q: %w", pointer, err)
		}
	}

	pruneHoles(selection)

	return selection, nil
}

// parsePointer splits an RFC 6901 pointer into unescaped reference tokens.
func parsePointer(pointer string) []string {
	tokens := strings.Split(pointer, "/")[1:]

	for i, token := range tokens {
		token = strings.ReplaceAll(token, "~1", "/")
		tokens[i] = strings.ReplaceAll(token, "~0", "~")
	}

	return tokens
}

func selectPointer(doc, selection interface{}, tokens []string) error {
	cur, sel := doc, selection

	for i, token := range tokens {
		last := i == len(tokens)-1

		switch container := cur.(type) {
		case map[string]interface{}:
			value, ok := container[token]
			if !ok {
				return fmt.Errorf("no member %q", token)
			}

			selMap := sel.(map[string]interface{})

			if last {
				selMap[token] = jsonutil.DeepCopy(value)
				return nil
			}

			child, ok := selMap[token]
			if !ok {
				child = newSkeleton(value)
				selMap[token] = child
			}

			cur, sel = value, child
		case []interface{}:
			idx, err := strconv.Atoi(token)
			if err != nil || idx < 0 || idx >= len(container) {
				return fmt.Errorf("no element %q", token)
			}

			value := container[idx]
			selSlice := sel.([]interface{})

			if last {
				selSlice[idx] = jsonutil.DeepCopy(value)
				return nil
			}

			child := selSlice[idx]
			if child == nil {
				child = newSkeleton(value)
				selSlice[idx] = child
			}

			cur, sel = value, child
		default:
			return fmt.Errorf("cannot traverse %q", token)
		}
	}

	return nil
}

// newSkeleton creates the selection counterpart of an original container: an
// empty object keeping the node identifiers, or an all-holes array of the
// original length so that original indices stay addressable.
func newSkeleton(value interface{}) interface{} {
	switch container := value.(type) {
	case map[string]interface{}:
		skeleton := map[string]interface{}{}
		copyNodeIdentifiers(container, skeleton)

		return skeleton
	case []interface{}:
		return make([]interface{}, len(container))
	default:
		return nil
	}
}

func copyNodeIdentifiers(from, to map[string]interface{}) {
	if id, ok := from["@id"]; ok {
		to["@id"] = jsonutil.DeepCopy(id)
	}

	if typ, ok := from["type"]; ok {
		to["type"] = jsonutil.DeepCopy(typ)
	} else if typ, ok := from["@type"]; ok {
		to["@type"] = jsonutil.DeepCopy(typ)
	}

	if id, ok := from["id"]; ok {
		to["id"] = jsonutil.DeepCopy(id)
	}
}

// pruneHoles removes the nil placeholders left in selection arrays.
func pruneHoles(v interface{}) interface{} {
	switch container := v.(type) {
	case map[string]interface{}:
		for k, item := range container {
			container[k] = pruneHoles(item)
		}

		return container
	case []interface{}:
		out := make([]interface{}, 0, len(container))

		for _, item := range container {
			if item == nil {
				continue
			}

			out = append(out, pruneHoles(item))
		}

		return out
	default:
		return v
	}
}
