// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides deterministic CBOR encoding for Sealbox's
// on-disk records. The encoder uses Core Deterministic Encoding
// (RFC 8949 §4.2) — sorted map keys, smallest integer encoding, no
// indefinite-length items — so the same logical record always
// produces identical bytes. The retention journal depends on this for
// byte-comparable audit records.
package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

var encMode cbor.EncMode
var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// When the decode target is any, pick map[string]any rather
		// than the CBOR default map[any]any, which nothing else in Go
		// interoperates with. Struct decoding is unaffected.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}
