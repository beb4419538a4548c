package dump

import (
	"math/big"
	"testing"

	rcst "github.com/nspcc-dev/assignment-registry/contracts/registry/registryconst"
	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

type kv struct{ k, v []byte }

func serialize(t *testing.T, item stackitem.Item) []byte {
	b, err := stackitem.Serialize(item)
	require.NoError(t, err)
	return b
}

func intBytes(n int64) []byte {
	return bigint.ToBytes(big.NewInt(n))
}

func intKey(prefix byte, n int64) []byte {
	return append([]byte{prefix}, intBytes(n)...)
}

// testRegistryStorage returns storage items of the registry contract with two
// assignments of the same student in course 7, the first one updated.
func testRegistryStorage(t *testing.T, f registryFixture) []kv {
	assignment := func(hash []byte, title string) []byte {
		return serialize(t, stackitem.NewStruct([]stackitem.Item{
			stackitem.NewByteArray(hash),
			stackitem.NewByteArray(f.student.BytesBE()),
			stackitem.Make(7),
			stackitem.Make(12),
			stackitem.NewByteArray([]byte(title)),
			stackitem.NewBool(true),
		}))
	}

	studentKey := func(id int64) []byte {
		return append(append([]byte{rcst.StudentPrefix}, f.student.BytesBE()...), intBytes(id)...)
	}

	return []kv{
		{[]byte(rcst.AuthorityKey), f.authority.BytesBE()},
		{[]byte(rcst.FeeKey), intBytes(50)},
		{[]byte(rcst.CounterKey), intBytes(2)},
		{intKey(rcst.AssignmentPrefix, 0), assignment(f.hash0, "Essay")},
		{intKey(rcst.AssignmentPrefix, 1), assignment(f.hash1, "Report")},
		{append([]byte{rcst.HashPrefix}, f.hash0...), intBytes(0)},
		{append([]byte{rcst.HashPrefix}, f.hash1...), intBytes(1)},
		{intKey(rcst.CoursePrefix, 7), serialize(t, stackitem.NewArray([]stackitem.Item{
			stackitem.Make(0), stackitem.Make(1),
		}))},
		{studentKey(0), intBytes(0)},
		{studentKey(1), intBytes(1)},
		{intKey(rcst.UpdatePrefix, 0), serialize(t, stackitem.NewStruct([]stackitem.Item{
			stackitem.NewByteArray([]byte("Essay v2")),
			stackitem.NewByteArray(f.hash0),
			stackitem.Make(13),
			stackitem.NewByteArray(f.student.BytesBE()),
		}))},
		{append([]byte{rcst.VerifiedPrefix}, f.admin.BytesBE()...), []byte{1}},
	}
}

func TestIntList(t *testing.T) {
	ids, err := decodeIntList(serialize(t, stackitem.NewArray(nil)))
	require.NoError(t, err)
	require.Empty(t, ids)

	_, err = decodeIntList(serialize(t, stackitem.Make(1)))
	require.Error(t, err)

	_, err = decodeIntList(serialize(t, stackitem.NewArray([]stackitem.Item{stackitem.NewMap()})))
	require.Error(t, err)
}
