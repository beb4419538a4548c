package dump

import (
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// ID identifies the registry dump.
type ID struct {
	// Network the dump is pulled from (e.g. testnet). Hyphens are not allowed.
	Label string
	// Block at which the storage is pulled.
	Block uint32
}

// String returns hyphen-separated label and block.
func (x ID) String() string {
	return x.Label + sep + strconv.FormatUint(uint64(x.Block), 10)
}

func (x ID) validate() error {
	switch {
	case x.Label == "":
		return errors.New("empty dump label")
	case strings.Contains(x.Label, sep):
		return fmt.Errorf("dump label '%s' contains '%s'", x.Label, sep)
	}
	return nil
}

func (x ID) path(dir, suffix string) string {
	return filepath.Join(dir, x.String()+sep+suffix)
}

// parseID decodes ID from the name of the dump's contract file.
func parseID(fileName string) (ID, error) {
	var id ID

	s, ok := strings.CutSuffix(fileName, sep+contractFileSuffix)
	if !ok {
		return id, fmt.Errorf("missing '%s' suffix", contractFileSuffix)
	}

	label, block, ok := strings.Cut(s, sep)
	if !ok {
		return id, fmt.Errorf("expected '<label>%s<block>' prefix", sep)
	}

	n, err := strconv.ParseUint(block, 10, 32)
	if err != nil {
		return id, fmt.Errorf("decode block number from '%s': %w", block, err)
	}

	id.Label = label
	id.Block = uint32(n)

	return id, id.validate()
}

const (
	sep = "-"
	// contract state in JSON
	contractFileSuffix = "registry.json"
	// storage items as 'key,value' CSV records
	storageFileSuffix = "storage.csv"
)

// binary keys and values in the storage file
var _encoding = base64.StdEncoding
