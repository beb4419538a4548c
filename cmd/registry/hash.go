package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mr-tron/base58"
	rcst "github.com/nspcc-dev/assignment-registry/contracts/registry/registryconst"
)

// parseContentHash decodes content hash of the assignment from hex (with
// optional 0x prefix) or base58 string.
func parseContentHash(s string) ([]byte, error) {
	if s == "" {
		return nil, errors.New("empty content hash")
	}

	trimmed := strings.TrimPrefix(s, "0x")
	if len(trimmed) == 2*rcst.HashLength {
		b, err := hex.DecodeString(trimmed)
		if err == nil {
			return b, nil
		}
	}

	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("'%s' is neither hex nor base58 hash", s)
	}

	if len(b) != rcst.HashLength {
		return nil, fmt.Errorf("invalid hash length %d, expected %d", len(b), rcst.HashLength)
	}

	return b, nil
}

// hashFile calculates content hash of the assignment file.
func hashFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read assignment file: %w", err)
	}

	h := sha256.Sum256(data)

	return h[:], nil
}

// contentHash returns content hash given by the hash argument or calculated
// from the file. Exactly one of them must be set.
func contentHash(hashArg, file string) ([]byte, error) {
	switch {
	case hashArg != "" && file != "":
		return nil, errors.New("hash and file are mutually exclusive")
	case file != "":
		return hashFile(file)
	default:
		return parseContentHash(hashArg)
	}
}

func formatHash(b []byte) string {
	return base58.Encode(b) + " (" + hex.EncodeToString(b) + ")"
}
