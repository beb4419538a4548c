package deploy

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	rcst "github.com/nspcc-dev/assignment-registry/contracts/registry/registryconst"
	"github.com/nspcc-dev/assignment-registry/rpc/registry"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/trigger"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestStableTransactionModifier(t *testing.T) {
	t.Run("invalid invocation result state", func(t *testing.T) {
		var res result.Invoke
		res.State = "FAULT" // any non-HALT

		err := stableTransactionModifier(func() uint32 { return 0 })(&res, new(transaction.Transaction))
		require.Error(t, err)
	})

	t.Run("contract failure", func(t *testing.T) {
		var res result.Invoke
		res.State = "FAULT"
		res.FaultException = "at instruction 10 (THROW): unhandled exception: \"" + rcst.ErrorNotOwner + "\""

		err := stableTransactionModifier(func() uint32 { return 0 })(&res, new(transaction.Transaction))
		require.ErrorIs(t, err, registry.ErrUnauthorized)
	})

	var validRes result.Invoke
	validRes.State = "HALT"

	for _, tc := range []struct {
		curHeight     uint32
		expectedNonce uint32
		expectedVUB   uint32
	}{
		{curHeight: 0, expectedNonce: 0, expectedVUB: 100},
		{curHeight: 1, expectedNonce: 0, expectedVUB: 100},
		{curHeight: 99, expectedNonce: 0, expectedVUB: 100},
		{curHeight: 100, expectedNonce: 100, expectedVUB: 200},
		{curHeight: 199, expectedNonce: 100, expectedVUB: 200},
		{curHeight: 200, expectedNonce: 200, expectedVUB: 300},
		{curHeight: math.MaxUint32 - 50, expectedNonce: 100 * (math.MaxUint32 / 100), expectedVUB: math.MaxUint32},
	} {
		m := stableTransactionModifier(func() uint32 { return tc.curHeight })

		var tx transaction.Transaction

		err := m(&validRes, &tx)
		require.NoError(t, err, tc)
		require.EqualValues(t, tc.expectedNonce, tx.Nonce, tc)
		require.EqualValues(t, tc.expectedVUB, tx.ValidUntilBlock, tc)
	}
}

type testWaiter struct {
	height uint32
	logs   map[util.Uint256]*result.ApplicationLog

	// persisted transaction appears after the given number of polls
	delay int
	polls int
}

func (w *testWaiter) GetBlockCount() (uint32, error) {
	return w.height + 1, nil
}

func (w *testWaiter) GetApplicationLog(hash util.Uint256, _ *trigger.Type) (*result.ApplicationLog, error) {
	w.polls++
	if w.polls <= w.delay {
		return nil, errors.New("Unknown transaction")
	}
	aer, ok := w.logs[hash]
	if !ok {
		return nil, errors.New("Unknown transaction")
	}
	return aer, nil
}

func appLog(st vmstate.State, exception string) *result.ApplicationLog {
	return &result.ApplicationLog{
		Executions: []state.Execution{{
			Trigger:        trigger.Application,
			VMState:        st,
			FaultException: exception,
		}},
	}
}

func TestWaitTransaction(t *testing.T) {
	var (
		ctx     = context.Background()
		halted  = util.Uint256{1}
		faulted = util.Uint256{2}
		missing = util.Uint256{3}
		w       = &testWaiter{
			height: 10,
			logs: map[util.Uint256]*result.ApplicationLog{
				halted:  appLog(vmstate.Halt, ""),
				faulted: appLog(vmstate.Fault, "unhandled exception: \""+rcst.ErrorDuplicateAssignment+"\""),
			},
		}
	)

	require.NoError(t, WaitTransaction(ctx, w, halted, 20, time.Millisecond))

	err := WaitTransaction(ctx, w, faulted, 20, time.Millisecond)
	require.ErrorIs(t, err, registry.ErrDuplicateAssignment)

	t.Run("delayed", func(t *testing.T) {
		w.polls, w.delay = 0, 3
		require.NoError(t, WaitTransaction(ctx, w, halted, 20, time.Millisecond))
		require.Equal(t, 4, w.polls)
		w.delay = 0
	})

	t.Run("expired", func(t *testing.T) {
		err := WaitTransaction(ctx, w, missing, 5, time.Millisecond)
		require.ErrorContains(t, err, "expired")
	})

	t.Run("context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(ctx)
		cancel()

		err := WaitTransaction(ctx, w, missing, 20, time.Millisecond)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestDeploy_NegativeFee(t *testing.T) {
	acc, err := wallet.NewAccount()
	require.NoError(t, err)

	_, err = Deploy(context.Background(), Prm{
		Logger:        zaptest.NewLogger(t),
		LocalAccount:  acc,
		SubmissionFee: -1,
	})
	require.Error(t, err)
}

func TestIsErrContractNotFound(t *testing.T) {
	require.True(t, isErrContractNotFound(errors.New("Unknown contract (-105)")))
	require.False(t, isErrContractNotFound(errors.New("connection refused")))
}
