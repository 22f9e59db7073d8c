/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHexRoundTrip(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		b, err := HexToBytes("8024")
		require.NoError(t, err)
		require.Equal(t, []byte{0x80, 0x24}, b)
		require.Equal(t, "8024", BytesToHex(b))
	})

	t.Run("failure: odd length", func(t *testing.T) {
		_, err := HexToBytes("802")
		require.ErrorIs(t, err, ErrDecoding)
	})
}

func TestConcat(t *testing.T) {
	require.Equal(t, []byte{1, 2, 3, 4}, Concat([]byte{1}, []byte{2, 3}, nil, []byte{4}))
	require.Empty(t, Concat())
}

func TestBase58BTC(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s, err := Base58BTCEncode([]byte("hello"))
		require.NoError(t, err)
		require.Equal(t, byte('z'), s[0])

		b, err := Base58BTCDecode(s)
		require.NoError(t, err)
		require.Equal(t, []byte("hello"), b)
	})

	t.Run("failure: wrong multibase prefix", func(t *testing.T) {
		s, err := Base64URLNoPadEncode([]byte("hello"))
		require.NoError(t, err)

		_, err = Base58BTCDecode(s)
		require.ErrorIs(t, err, ErrDecoding)
	})

	t.Run("failure: malformed payload", func(t *testing.T) {
		_, err := Base58BTCDecode("z!!!not-base58!!!")
		require.ErrorIs(t, err, ErrDecoding)
	})
}

func TestBase64URLNoPad(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s, err := Base64URLNoPadEncode([]byte{0xff, 0xfe, 0xfd})
		require.NoError(t, err)
		require.Equal(t, byte('u'), s[0])
		require.NotContains(t, s, "=")

		b, err := Base64URLNoPadDecode(s)
		require.NoError(t, err)
		require.Equal(t, []byte{0xff, 0xfe, 0xfd}, b)
	})

	t.Run("failure: wrong multibase prefix", func(t *testing.T) {
		_, err := Base64URLNoPadDecode("zUsNV")
		require.ErrorIs(t, err, ErrDecoding)
	})
}

func TestUvarintPrefix(t *testing.T) {
	t.Run("success: two-byte headers", func(t *testing.T) {
		for _, tc := range []struct {
			code   uint64
			header []byte
		}{
			{0x1200, []byte{0x80, 0x24}},
			{0x1201, []byte{0x81, 0x24}},
			{0x1306, []byte{0x86, 0x26}},
			{0x1307, []byte{0x87, 0x26}},
		} {
			prefixed := PutUvarintPrefix(tc.code, []byte{0x01})
			require.Equal(t, append(tc.header, 0x01), prefixed)

			code, payload, err := ReadUvarintPrefix(prefixed)
			require.NoError(t, err)
			require.Equal(t, tc.code, code)
			require.Equal(t, []byte{0x01}, payload)
		}
	})

	t.Run("failure: truncated header", func(t *testing.T) {
		_, _, err := ReadUvarintPrefix([]byte{0x80})
		require.ErrorIs(t, err, ErrDecoding)
	})
}

func TestCBOR(t *testing.T) {
	t.Run("success: array round trip", func(t *testing.T) {
		in := []interface{}{[]byte{1, 2}, "mandatory", uint64(7)}

		b, err := CBOREncode(in)
		require.NoError(t, err)

		var out []interface{}
		require.NoError(t, CBORDecode(b, &out))
		require.Len(t, out, 3)
		require.Equal(t, []byte{1, 2}, out[0])
		require.Equal(t, "mandatory", out[1])
	})

	t.Run("success: deterministic encoding", func(t *testing.T) {
		m := map[int][]byte{2: {0x02}, 0: {0x00}, 1: {0x01}}

		first, err := CBOREncode(m)
		require.NoError(t, err)

		second, err := CBOREncode(m)
		require.NoError(t, err)
		require.Equal(t, first, second)
	})

	t.Run("failure: truncated input", func(t *testing.T) {
		b, err := CBOREncode([]string{"x", "y"})
		require.NoError(t, err)

		var out []string
		require.ErrorIs(t, CBORDecode(b[:len(b)-1], &out), ErrDecoding)
	})
}
