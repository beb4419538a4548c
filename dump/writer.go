package dump

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
)

// ErrInconsistent is returned by Writer.Commit when the saved storage breaks
// registry invariants.
var ErrInconsistent = errors.New("inconsistent registry storage")

// Writer saves the registry contract into the directory as two files:
//
//	'<label>-<block>-registry.json': JSON contract state
//	'<label>-<block>-storage.csv': base64-encoded 'key,value' storage items
//
// Storage items are decoded into RegistryState on Put, so items the registry
// never writes don't get into the dump. Writer must be closed after use.
type Writer struct {
	contract state.Contract

	fContract, fStorage *os.File
	storage             *csv.Writer

	registry *RegistryState
}

// NewWriter creates files of the dump with the given ID in the directory.
// NewWriter fails with fs.ErrExist if the dump already exists.
func NewWriter(dir string, id ID, contract state.Contract) (*Writer, error) {
	if err := id.validate(); err != nil {
		return nil, err
	}

	const flag = os.O_CREATE | os.O_EXCL | os.O_WRONLY

	pContract := id.path(dir, contractFileSuffix)

	fContract, err := os.OpenFile(pContract, flag, 0600)
	if err != nil {
		return nil, fmt.Errorf("create contract file: %w", err)
	}

	fStorage, err := os.OpenFile(id.path(dir, storageFileSuffix), flag, 0600)
	if err != nil {
		_ = fContract.Close()
		_ = os.Remove(pContract)
		return nil, fmt.Errorf("create storage file: %w", err)
	}

	return &Writer{
		contract:  contract,
		fContract: fContract,
		fStorage:  fStorage,
		storage:   csv.NewWriter(fStorage),
		registry:  NewRegistryState(),
	}, nil
}

// Put adds the registry storage item to the dump.
func (x *Writer) Put(key, value []byte) error {
	err := x.registry.Add(key, value)
	if err != nil {
		return fmt.Errorf("decode registry storage item: %w", err)
	}

	err = x.storage.Write([]string{
		_encoding.EncodeToString(key),
		_encoding.EncodeToString(value),
	})
	if err != nil {
		return fmt.Errorf("write storage item: %w", err)
	}

	return nil
}

// Commit writes the contract state and flushes the storage. The dump is
// saved even if the storage is inconsistent, then the returned error wraps
// ErrInconsistent. The decoded storage is returned in both cases.
func (x *Writer) Commit() (*RegistryState, error) {
	x.storage.Flush()

	err := x.storage.Error()
	if err != nil {
		return nil, fmt.Errorf("flush storage items: %w", err)
	}

	enc := json.NewEncoder(x.fContract)
	enc.SetIndent("", " ")

	err = enc.Encode(x.contract)
	if err != nil {
		return nil, fmt.Errorf("encode contract state: %w", err)
	}

	err = x.registry.Validate()
	if err != nil {
		return x.registry, fmt.Errorf("%w: %w", ErrInconsistent, err)
	}

	return x.registry, nil
}

// Close releases the dump files.
func (x *Writer) Close() error {
	return errors.Join(x.fStorage.Close(), x.fContract.Close())
}
