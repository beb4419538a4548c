package registry

import (
	"errors"
	"math/big"
	"testing"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/stretchr/testify/require"
)

type testInv struct {
	err error
	res *result.Invoke

	method string
	params []any
}

func (t *testInv) Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error) {
	t.method, t.params = operation, params
	return t.res, t.err
}

func (t *testInv) CallAndExpandIterator(contract util.Uint160, operation string, i int, params ...any) (*result.Invoke, error) {
	t.method, t.params = operation, params
	return t.res, t.err
}
func (t *testInv) TraverseIterator(uuid.UUID, *result.Iterator, int) ([]stackitem.Item, error) {
	return nil, nil
}
func (t *testInv) TerminateSession(uuid.UUID) error {
	return nil
}

func halt(items ...stackitem.Item) *result.Invoke {
	return &result.Invoke{
		State: vmstate.Halt.String(),
		Stack: items,
	}
}

func assignmentItem(hash []byte, student util.Uint160, title string) stackitem.Item {
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray(hash),
		stackitem.NewByteArray(student.BytesBE()),
		stackitem.Make(7),
		stackitem.Make(42),
		stackitem.NewByteArray([]byte(title)),
		stackitem.NewBool(true),
	})
}

func TestReader_Get(t *testing.T) {
	var (
		inv     = new(testInv)
		r       = NewReader(inv, util.Uint160{1})
		hash    = make([]byte, 32)
		student = util.Uint160{1, 2, 3}
	)
	hash[0] = 0xAA

	inv.err = errors.New("network failure")
	_, err := r.Get(big.NewInt(0))
	require.Error(t, err)

	inv.err = nil
	inv.res = halt(stackitem.Null{})
	a, err := r.Get(big.NewInt(1))
	require.NoError(t, err)
	require.Nil(t, a)
	require.Equal(t, "get", inv.method)
	require.Equal(t, []any{big.NewInt(1)}, inv.params)

	inv.res = halt(assignmentItem(hash, student, "Essay"))
	a, err = r.Get(big.NewInt(0))
	require.NoError(t, err)
	require.Equal(t, &Assignment{
		Hash:      hash,
		Student:   student,
		CourseID:  big.NewInt(7),
		Timestamp: big.NewInt(42),
		Title:     "Essay",
		Status:    true,
	}, a)

	t.Run("invalid", func(t *testing.T) {
		inv.res = halt(stackitem.NewStruct([]stackitem.Item{stackitem.Make(1)}))
		_, err = r.Get(big.NewInt(0))
		require.Error(t, err)

		inv.res = halt(assignmentItem(hash, student, "\xff\xfe"))
		_, err = r.Get(big.NewInt(0))
		require.Error(t, err)

		inv.res = &result.Invoke{State: vmstate.Fault.String(), FaultException: "boom"}
		_, err = r.Get(big.NewInt(0))
		require.Error(t, err)
	})
}

func TestReader_LastUpdate(t *testing.T) {
	inv := new(testInv)
	r := NewReader(inv, util.Uint160{1})

	inv.res = halt(stackitem.Null{})
	u, err := r.LastUpdate(big.NewInt(0))
	require.NoError(t, err)
	require.Nil(t, u)

	hash := make([]byte, 32)
	inv.res = halt(stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray([]byte("Final")),
		stackitem.NewByteArray(hash),
		stackitem.Make(10),
		stackitem.NewByteArray(util.Uint160{9}.BytesBE()),
	}))
	u, err = r.LastUpdate(big.NewInt(0))
	require.NoError(t, err)
	require.Equal(t, &AssignmentUpdate{
		Title:     "Final",
		Hash:      hash,
		Timestamp: big.NewInt(10),
		Updater:   util.Uint160{9},
	}, u)
}

func TestReader_Authority(t *testing.T) {
	inv := new(testInv)
	r := NewReader(inv, util.Uint160{1})

	inv.res = halt(stackitem.Null{})
	a, err := r.Authority()
	require.NoError(t, err)
	require.Nil(t, a)

	inv.res = halt(stackitem.NewByteArray(util.Uint160{5}.BytesBE()))
	a, err = r.Authority()
	require.NoError(t, err)
	require.Equal(t, util.Uint160{5}, *a)

	inv.res = halt(stackitem.NewByteArray([]byte{1, 2}))
	_, err = r.Authority()
	require.Error(t, err)
}

func TestReader_Scalars(t *testing.T) {
	inv := new(testInv)
	r := NewReader(inv, util.Uint160{1})

	inv.res = halt(stackitem.NewArray([]stackitem.Item{stackitem.Make(0), stackitem.Make(3)}))
	ids, err := r.ListByCourse(big.NewInt(1))
	require.NoError(t, err)
	require.Equal(t, []*big.Int{big.NewInt(0), big.NewInt(3)}, ids)

	inv.res = halt(stackitem.NewArray([]stackitem.Item{stackitem.NewMap()}))
	_, err = r.ListByCourse(big.NewInt(1))
	require.Error(t, err)

	inv.res = halt(stackitem.Make(5))
	n, err := r.Count()
	require.NoError(t, err)
	require.EqualValues(t, 5, n.Int64())

	inv.res = halt(stackitem.NewBool(true))
	ok, err := r.VerifyOwnership(big.NewInt(0), util.Uint160{2})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "verifyOwnership", inv.method)

	ok, err = r.Exists(make([]byte, 32))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEventsFromApplicationLog(t *testing.T) {
	hash := make([]byte, 32)
	student := util.Uint160{7}

	log := &result.ApplicationLog{
		Executions: []state.Execution{{
			Trigger: 0x20,
			VMState: vmstate.Halt,
			Events: []state.NotificationEvent{
				{
					Name: "Transfer",
					Item: stackitem.NewArray([]stackitem.Item{stackitem.Null{}}),
				},
				{
					Name: "AssignmentSubmitted",
					Item: stackitem.NewArray([]stackitem.Item{
						stackitem.Make(3),
						stackitem.NewByteArray(hash),
						stackitem.Make(11),
						stackitem.NewByteArray(student.BytesBE()),
					}),
				},
				{
					Name: "AssignmentUpdated",
					Item: stackitem.NewArray([]stackitem.Item{
						stackitem.Make(3),
						stackitem.NewByteArray(hash),
						stackitem.NewByteArray(hash),
					}),
				},
				{
					Name: "AuthoritySet",
					Item: stackitem.NewArray([]stackitem.Item{
						stackitem.NewByteArray(student.BytesBE()),
					}),
				},
				{
					Name: "SubmissionFeeSet",
					Item: stackitem.NewArray([]stackitem.Item{stackitem.Make(50)}),
				},
			},
		}},
	}

	submitted, err := AssignmentSubmittedEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Equal(t, []*AssignmentSubmittedEvent{{
		ID:       big.NewInt(3),
		Hash:     hash,
		CourseID: big.NewInt(11),
		Student:  student,
	}}, submitted)

	updated, err := AssignmentUpdatedEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Len(t, updated, 1)
	require.EqualValues(t, 3, updated[0].ID.Int64())

	set, err := AuthoritySetEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Equal(t, []*AuthoritySetEvent{{Principal: student}}, set)

	fees, err := SubmissionFeeSetEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Len(t, fees, 1)
	require.EqualValues(t, 50, fees[0].Amount.Int64())

	_, err = AssignmentSubmittedEventsFromApplicationLog(nil)
	require.Error(t, err)

	log.Executions[0].Events[1].Item = stackitem.NewArray([]stackitem.Item{stackitem.Make(3)})
	_, err = AssignmentSubmittedEventsFromApplicationLog(log)
	require.Error(t, err)
}
