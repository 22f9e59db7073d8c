/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keypair

import "errors"

var (
	// ErrInvalidKeypairContent is returned when a verification method or
	// keypair is malformed, or lacks the key required for the requested
	// operation.
	ErrInvalidKeypairContent = errors.New("invalid keypair content")
	// ErrInvalidKeypairLength is returned when key material has the wrong
	// length for the declared curve and flag.
	ErrInvalidKeypairLength = errors.New("invalid keypair length")
	// ErrKeypairExport is returned when DER framing produced during key
	// export disagrees with the expected layout.
	ErrKeypairExport = errors.New("keypair export error")
	// ErrKeypairImport is returned when a verification method document
	// cannot be imported as a keypair.
	ErrKeypairImport = errors.New("keypair import error")
	// ErrKeypairExpired is returned when a keypair's expiry or revocation
	// date is in the past and the corresponding import check is enabled.
	ErrKeypairExpired = errors.New("keypair expired")
)
