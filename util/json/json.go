/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package json provides helpers for working with JSON-LD documents as maps.
package json

import "encoding/json"

// ToMap converts an object, string or bytes to a JSON object represented by
// a map.
func ToMap(v interface{}) (map[string]interface{}, error) {
	var (
		b   []byte
		err error
	)

	switch cv := v.(type) {
	case []byte:
		b = cv
	case string:
		b = []byte(cv)
	default:
		b, err = json.Marshal(v)
		if err != nil {
			return nil, err
		}
	}

	var m map[string]interface{}

	err = json.Unmarshal(b, &m)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// ShallowCopyObj creates a new JSON object with copied fields from the
// provided object.
func ShallowCopyObj(obj map[string]interface{}) map[string]interface{} {
	flds := make(map[string]interface{}, len(obj))

	for k, v := range obj {
		flds[k] = v
	}

	return flds
}

// CopyExcept copies all fields except fields with given names.
func CopyExcept(obj map[string]interface{}, flds ...string) map[string]interface{} {
	newObj := ShallowCopyObj(obj)

	for _, fld := range flds {
		delete(newObj, fld)
	}

	return newObj
}

// DeepCopy copies a JSON value, including all nested objects and arrays.
func DeepCopy(v interface{}) interface{} {
	switch cv := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(cv))
		for k, item := range cv {
			out[k] = DeepCopy(item)
		}

		return out
	case []interface{}:
		out := make([]interface{}, len(cv))
		for i, item := range cv {
			out[i] = DeepCopy(item)
		}

		return out
	default:
		return v
	}
}
