package main

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

func TestParseContentHash(t *testing.T) {
	h := sha256.Sum256([]byte("assignment"))
	sHex := hex.EncodeToString(h[:])

	for _, s := range []string{sHex, "0x" + sHex, base58.Encode(h[:])} {
		b, err := parseContentHash(s)
		require.NoError(t, err, s)
		require.Equal(t, h[:], b, s)
	}

	for _, s := range []string{
		"",
		"not a hash",
		base58.Encode(h[:31]),
		hex.EncodeToString(h[:31]),
	} {
		_, err := parseContentHash(s)
		require.Error(t, err, s)
	}
}

func TestContentHash(t *testing.T) {
	data := []byte("essay text")
	path := filepath.Join(t.TempDir(), "essay.txt")
	require.NoError(t, os.WriteFile(path, data, 0600))

	expected := sha256.Sum256(data)

	b, err := contentHash("", path)
	require.NoError(t, err)
	require.Equal(t, expected[:], b)

	b, err = contentHash(base58.Encode(expected[:]), "")
	require.NoError(t, err)
	require.Equal(t, expected[:], b)

	_, err = contentHash(base58.Encode(expected[:]), path)
	require.Error(t, err)

	_, err = contentHash("", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	_, err = contentHash("", "")
	require.Error(t, err)
}

func TestFormatHash(t *testing.T) {
	b := make([]byte, 32)
	b[31] = 0xff
	require.Equal(t, base58.Encode(b)+" ("+hex.EncodeToString(b)+")", formatHash(b))
}

func TestParseAccount(t *testing.T) {
	_, err := parseAccount("")
	require.Error(t, err)

	u := util.Uint160{1, 2, 3}

	u1, err := parseAccount(address.Uint160ToString(u))
	require.NoError(t, err)
	require.Equal(t, u, u1)

	u2, err := parseAccount(u.StringLE())
	require.NoError(t, err)
	require.Equal(t, u, u2)

	_, err = parseAccount("garbage")
	require.Error(t, err)
}
