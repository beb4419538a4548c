package dump

import (
	"io/fs"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	rcst "github.com/nspcc-dev/assignment-registry/contracts/registry/registryconst"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	require.Error(t, ID{}.validate())
	require.Error(t, ID{Label: "test-net"}.validate())
	require.NoError(t, ID{Label: "testnet", Block: 10}.validate())
	require.Equal(t, "testnet-10", ID{Label: "testnet", Block: 10}.String())

	id, err := parseID("mainnet-4242-registry.json")
	require.NoError(t, err)
	require.Equal(t, ID{Label: "mainnet", Block: 4242}, id)

	for _, name := range []string{
		"mainnet-4242",
		"mainnet-4242-storage.csv",
		"mainnet-block-registry.json",
		"4242-registry.json",
		"-4242-registry.json",
	} {
		_, err = parseID(name)
		require.Error(t, err, name)
	}
}

func registryContract() state.Contract {
	return state.Contract{
		ContractBase: state.ContractBase{
			ID:       1,
			Hash:     util.Uint160{1},
			Manifest: *manifest.NewManifest("Assignment Registry"),
		},
	}
}

type registryFixture struct {
	admin, authority, student util.Uint160
	hash0, hash1              []byte
}

func newRegistryFixture() registryFixture {
	f := registryFixture{
		admin:     util.Uint160{9},
		authority: util.Uint160{1, 2, 3},
		student:   util.Uint160{4, 5, 6},
		hash0:     make([]byte, rcst.HashLength),
		hash1:     make([]byte, rcst.HashLength),
	}
	f.hash1[0] = 1
	return f
}

func TestWriterOpen(t *testing.T) {
	var (
		dir = t.TempDir()
		id  = ID{Label: "privnet", Block: 100}
		f   = newRegistryFixture()
	)

	_, err := NewWriter(dir, ID{Label: "bad-label"}, registryContract())
	require.Error(t, err)

	w, err := NewWriter(dir, id, registryContract())
	require.NoError(t, err)

	require.Error(t, w.Put([]byte{'x'}, nil), "item unknown to the registry")

	for _, item := range testRegistryStorage(t, f) {
		require.NoError(t, w.Put(item.k, item.v))
	}

	rs, err := w.Commit()
	require.NoError(t, err)
	require.Len(t, rs.Assignments, 2)
	require.NoError(t, w.Close())

	_, err = NewWriter(dir, id, registryContract())
	require.ErrorIs(t, err, fs.ErrExist)

	d, err := Open(dir, id)
	require.NoError(t, err)
	require.Equal(t, id, d.ID)
	require.EqualValues(t, 1, d.Contract.ID)
	require.Equal(t, "Assignment Registry", d.Contract.Manifest.Name)
	require.NoError(t, d.Registry.Validate())
	require.Equal(t, rs, d.Registry)

	_, err = Open(dir, ID{Label: "privnet", Block: 1})
	require.Error(t, err)

	t.Run("inconsistent", func(t *testing.T) {
		id := ID{Label: "privnet", Block: 200}

		w, err := NewWriter(dir, id, registryContract())
		require.NoError(t, err)

		require.NoError(t, w.Put([]byte(rcst.FeeKey), []byte{50}))
		require.NoError(t, w.Put([]byte(rcst.CounterKey), []byte{1}))

		_, err = w.Commit()
		require.ErrorIs(t, err, ErrInconsistent)
		require.NoError(t, w.Close())

		// saved anyway
		d, err := Open(dir, id)
		require.NoError(t, err)
		require.Error(t, d.Registry.Validate())
	})

	t.Run("list", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0600))
		require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0700))

		ids, err := List(dir)
		require.NoError(t, err)
		require.Equal(t, []ID{id, {Label: "privnet", Block: 200}}, ids)

		ids, err = List(filepath.Join(dir, "missing"))
		require.NoError(t, err)
		require.Empty(t, ids)

		require.NoError(t, os.WriteFile(filepath.Join(dir, "broken-registry.json"), nil, 0600))
		_, err = List(dir)
		require.Error(t, err)
	})
}

func TestOpen_Malformed(t *testing.T) {
	dir := t.TempDir()
	id := ID{Label: "privnet", Block: 1}

	w, err := NewWriter(dir, id, registryContract())
	require.NoError(t, err)
	_, err = w.Commit()
	require.Error(t, err)
	require.NoError(t, w.Close())

	for _, content := range []string{
		"not base64,AA==\n",
		"AA==,not base64\n",
		"AA==\n",
		"eA==,AA==\n", // 'x' prefix
	} {
		require.NoError(t, os.WriteFile(id.path(dir, storageFileSuffix), []byte(content), 0600))
		_, err = Open(dir, id)
		require.Error(t, err, content)
	}
}

func TestRegistryState(t *testing.T) {
	f := newRegistryFixture()
	items := testRegistryStorage(t, f)

	fill := func(t *testing.T) *RegistryState {
		s := NewRegistryState()
		for i := range items {
			require.NoError(t, s.Add(items[i].k, items[i].v))
		}
		return s
	}

	s := fill(t)
	require.NoError(t, s.Validate())

	require.Equal(t, f.authority, *s.Authority)
	require.EqualValues(t, 50, s.Fee.Int64())
	require.EqualValues(t, 2, s.Counter.Int64())
	require.Len(t, s.Assignments, 2)
	require.Equal(t, "Essay", s.Assignments[0].Title)
	require.Equal(t, f.student, s.Assignments[1].Student)
	require.Equal(t, "Essay v2", s.Updates[0].Title)
	require.Equal(t, map[int64][]int64{7: {0, 1}}, s.Courses)
	require.Equal(t, []int64{0, 1}, s.Students[f.student])
	require.Equal(t, []util.Uint160{f.admin}, s.Authorities)

	t.Run("invalid items", func(t *testing.T) {
		s := NewRegistryState()
		require.Error(t, s.Add(nil, nil))
		require.Error(t, s.Add([]byte{'x'}, nil))
		require.Error(t, s.Add([]byte(rcst.AuthorityKey), []byte{1}))
		require.Error(t, s.Add([]byte{rcst.AssignmentPrefix, 0}, []byte{0xff}))
		require.Error(t, s.Add([]byte{rcst.HashPrefix, 1}, []byte{0}))
		require.Error(t, s.Add([]byte{rcst.StudentPrefix, 1}, []byte{0}))
	})

	t.Run("inconsistent", func(t *testing.T) {
		require.Error(t, NewRegistryState().Validate())

		for _, tc := range []struct {
			name    string
			corrupt func(*RegistryState)
			err     string
		}{
			{"counter", func(s *RegistryState) { s.Counter = big.NewInt(3) }, "counter"},
			{"hash index", func(s *RegistryState) { delete(s.Hashes, string(f.hash1)) }, "indexed"},
			{"course list", func(s *RegistryState) { s.Courses[7] = []int64{0} }, "not listed"},
			{"course capacity", func(s *RegistryState) {
				s.Courses[7] = make([]int64, rcst.MaxAssignmentsPerCourse+1)
			}, "course 7"},
			{"negative fee", func(s *RegistryState) { s.Fee = big.NewInt(-1) }, "negative"},
			{"update of missing", func(s *RegistryState) { s.Updates[5] = s.Updates[0] }, "update of missing"},
			{"student index incomplete", func(s *RegistryState) { s.Students[f.student] = []int64{0} }, "student entries"},
			{"student index foreign", func(s *RegistryState) {
				s.Students[f.student] = []int64{0}
				s.Students[f.authority] = []int64{1}
			}, "lists assignment 1"},
			{"student index missing", func(s *RegistryState) {
				s.Students[f.student] = []int64{0, 1, 2}
			}, "missing assignment 2"},
			{"no authorities", func(s *RegistryState) { s.Authorities = nil }, "authorities"},
			{"zero authority", func(s *RegistryState) { s.Authority = &util.Uint160{} }, "zero account"},
		} {
			t.Run(tc.name, func(t *testing.T) {
				s := fill(t)
				tc.corrupt(s)
				require.ErrorContains(t, s.Validate(), tc.err)
			})
		}
	})
}
