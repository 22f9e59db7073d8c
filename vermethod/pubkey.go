/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vermethod

import (
	"fmt"

	"github.com/trustbloc/kms-go/spi/kms"

	"github.com/trustbloc/vc-di-ecdsa/crypto-ext/pubkey"
	"github.com/trustbloc/vc-di-ecdsa/keypair"
)

// PublicKeyOf bridges an imported keypair to the form consumed by the
// low-level signature verifiers.
func PublicKeyOf(kp *keypair.ECKeypair) (*pubkey.PublicKey, error) {
	if kp.PublicKey() == nil {
		return nil, fmt.Errorf("keypair carries no public key")
	}

	keyJWK, err := keypair.KeyToJWK(kp.PublicKey(), keypair.Public, kp.Curve())
	if err != nil {
		return nil, err
	}

	keyType := kms.ECDSAP256TypeIEEEP1363
	if kp.Curve() == keypair.P384 {
		keyType = kms.ECDSAP384TypeIEEEP1363
	}

	return &pubkey.PublicKey{Type: keyType, JWK: keyJWK}, nil
}
