package dump

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
)

// Dump is the registry contract read from the saved dump.
type Dump struct {
	ID       ID
	Contract state.Contract
	// Decoded storage, consistency is not checked (see RegistryState.Validate).
	Registry *RegistryState
}

// List returns IDs of the dumps saved in the directory ordered by label and
// block. Missing directory holds no dumps.
func List(dir string) ([]ID, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dump dir: %w", err)
	}

	var ids []ID

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), sep+contractFileSuffix) {
			continue
		}

		id, err := parseID(e.Name())
		if err != nil {
			return nil, fmt.Errorf("invalid dump file name '%s': %w", e.Name(), err)
		}

		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Label != ids[j].Label {
			return ids[i].Label < ids[j].Label
		}
		return ids[i].Block < ids[j].Block
	})

	return ids, nil
}

// Open reads the dump with the given ID from the directory and decodes the
// registry storage.
func Open(dir string, id ID) (*Dump, error) {
	fContract, err := os.Open(id.path(dir, contractFileSuffix))
	if err != nil {
		return nil, fmt.Errorf("open contract file: %w", err)
	}
	defer fContract.Close()

	fStorage, err := os.Open(id.path(dir, storageFileSuffix))
	if err != nil {
		return nil, fmt.Errorf("open storage file: %w", err)
	}
	defer fStorage.Close()

	d := &Dump{
		ID:       id,
		Registry: NewRegistryState(),
	}

	err = json.NewDecoder(fContract).Decode(&d.Contract)
	if err != nil {
		return nil, fmt.Errorf("decode contract state: %w", err)
	}

	err = readStorage(fStorage, d.Registry.Add)
	if err != nil {
		return nil, fmt.Errorf("read dump %s: %w", id, err)
	}

	return d, nil
}

func readStorage(r io.Reader, f func(key, value []byte) error) error {
	records := csv.NewReader(r)
	records.FieldsPerRecord = 2
	records.ReuseRecord = true

	for line := 1; ; line++ {
		rec, err := records.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read storage item: %w", err)
		}

		key, err := _encoding.DecodeString(rec[0])
		if err != nil {
			return fmt.Errorf("decode key of storage item #%d: %w", line, err)
		}

		value, err := _encoding.DecodeString(rec[1])
		if err != nil {
			return fmt.Errorf("decode value of storage item #%d: %w", line, err)
		}

		err = f(key, value)
		if err != nil {
			return fmt.Errorf("storage item #%d: %w", line, err)
		}
	}
}
