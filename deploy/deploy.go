package deploy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/nspcc-dev/assignment-registry/rpc/registry"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/trigger"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

const defaultPollInterval = time.Second

// Blockchain groups services provided by particular Neo blockchain network
// that are required for registry contract deployment.
type Blockchain interface {
	// RPCActor groups functions needed to compose and send transactions to the
	// blockchain.
	actor.RPCActor

	// GetContractStateByHash returns network state of the smart contract by its
	// address. GetContractStateByHash returns error with 'Unknown contract'
	// substring if requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)

	// GetApplicationLog returns execution results of the transaction persisted in
	// the blockchain.
	GetApplicationLog(hash util.Uint256, trig *trigger.Type) (*result.ApplicationLog, error)
}

// CommonDeployPrm groups common deployment parameters of the smart contract.
type CommonDeployPrm struct {
	NEF      nef.File
	Manifest manifest.Manifest
}

// Prm groups all parameters of the registry deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance to deploy the contract to.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	// Address of the deployed contract depends on it.
	LocalAccount *wallet.Account

	Contract CommonDeployPrm

	// Contract administrator. Local account is used if not set.
	Admin *util.Uint160

	// Initial submission fee, must not be negative.
	SubmissionFee int64

	// Interval between transaction status checks. Defaults to 1s.
	PollInterval time.Duration
}

// Deploy synchronizes registry contract with the blockchain and returns its
// on-chain address. The contract is deployed if it is missing and updated if
// the on-chain version differs from Prm.Contract. Update is accepted by the
// contract only when signed by the committee, so Prm.LocalAccount must be the
// committee account in this case.
//
// Deploy waits until the transaction is persisted or expired, or until the
// context is done.
func Deploy(ctx context.Context, prm Prm) (util.Uint160, error) {
	if prm.SubmissionFee < 0 {
		return util.Uint160{}, errors.New("negative submission fee")
	}

	localAddr := prm.LocalAccount.ScriptHash()
	addr := state.CreateContractHash(localAddr, prm.Contract.NEF.Checksum, prm.Contract.Manifest.Name)
	l := prm.Logger.With(zap.Stringer("address", addr))

	act, err := actor.NewTuned(prm.Blockchain, []actor.SignerAccount{{
		Signer: transaction.Signer{
			Account: localAddr,
			Scopes:  transaction.CalledByEntry,
		},
		Account: prm.LocalAccount,
	}}, actor.Options{
		CheckerModifier: stableTransactionModifier(func() uint32 {
			h, err := prm.Blockchain.GetBlockCount()
			if err != nil {
				return 0
			}
			return h
		}),
	})
	if err != nil {
		return addr, fmt.Errorf("init transaction sender from local account: %w", err)
	}

	onChain, err := prm.Blockchain.GetContractStateByHash(addr)
	if err != nil {
		if !isErrContractNotFound(err) {
			return addr, fmt.Errorf("get contract state: %w", err)
		}
		onChain = nil
	}

	var (
		txHash util.Uint256
		vub    uint32
	)

	if onChain == nil {
		admin := localAddr
		if prm.Admin != nil {
			admin = *prm.Admin
		}

		l.Info("registry contract is missing on the chain, deploying...",
			zap.Stringer("admin", admin), zap.Int64("fee", prm.SubmissionFee))

		txHash, vub, err = management.New(act).Deploy(&prm.Contract.NEF, &prm.Contract.Manifest,
			[]any{admin, prm.SubmissionFee})
		if err != nil {
			return addr, fmt.Errorf("send contract deployment transaction: %w", registry.ParseError(err))
		}
	} else {
		if onChain.NEF.Checksum == prm.Contract.NEF.Checksum {
			l.Info("registry contract is already deployed and up to date")
			return addr, nil
		}

		bNEF, err := prm.Contract.NEF.Bytes()
		if err != nil {
			return addr, fmt.Errorf("encode NEF: %w", err)
		}

		bManifest, err := json.Marshal(prm.Contract.Manifest)
		if err != nil {
			return addr, fmt.Errorf("encode manifest: %w", err)
		}

		l.Info("registry contract differs from the local one, updating...",
			zap.Uint32("on-chain checksum", onChain.NEF.Checksum),
			zap.Uint32("local checksum", prm.Contract.NEF.Checksum))

		txHash, vub, err = registry.New(act, addr).Update(bNEF, bManifest, nil)
		if err != nil {
			return addr, fmt.Errorf("send contract update transaction: %w", registry.ParseError(err))
		}
	}

	l.Debug("transaction sent, waiting for it to be persisted...",
		zap.Stringer("tx", txHash), zap.Uint32("vub", vub))

	err = WaitTransaction(ctx, prm.Blockchain, txHash, vub, prm.PollInterval)
	if err != nil {
		return addr, err
	}

	l.Info("registry contract successfully synchronized with the chain")

	return addr, nil
}

// TransactionWaiter provides the status of sent transactions.
type TransactionWaiter interface {
	GetBlockCount() (uint32, error)
	GetApplicationLog(hash util.Uint256, trig *trigger.Type) (*result.ApplicationLog, error)
}

// WaitTransaction blocks until the transaction is persisted in the chain and
// checks its execution result. It fails if the transaction is not included
// before its ValidUntilBlock or the context is done. FAULT exceptions of the
// registry contract are returned as *registry.Error.
func WaitTransaction(ctx context.Context, b TransactionWaiter, txHash util.Uint256, vub uint32, pollInterval time.Duration) error {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	t := time.NewTicker(pollInterval)
	defer t.Stop()

	for {
		aer, err := b.GetApplicationLog(txHash, nil)
		if err == nil {
			if len(aer.Executions) == 0 {
				return fmt.Errorf("transaction %s: empty application log", txHash.StringLE())
			}

			ex := aer.Executions[0]
			if ex.VMState != vmstate.Halt {
				return fmt.Errorf("transaction %s: %w", txHash.StringLE(), registry.ParseFault(ex.FaultException))
			}

			return nil
		}

		count, err := b.GetBlockCount()
		if err == nil && count > vub+1 {
			return fmt.Errorf("transaction %s expired at block %d", txHash.StringLE(), vub)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for transaction %s: %w", txHash.StringLE(), ctx.Err())
		case <-t.C:
		}
	}
}

func isErrContractNotFound(err error) bool {
	return strings.Contains(err.Error(), "Unknown contract")
}

// returns actor.TransactionCheckerModifier which checks that invocation
// finished with 'HALT' state and, if so, sets transaction's nonce and
// ValidUntilBlock to 100*N and 100*(N+1) correspondingly, where
// 100*N <= current height < 100*(N+1). Repeated deployment attempts within
// the same span produce the same transaction.
func stableTransactionModifier(getBlockchainHeight func() uint32) actor.TransactionCheckerModifier {
	return func(r *result.Invoke, tx *transaction.Transaction) error {
		err := actor.DefaultCheckerModifier(r, tx)
		if err != nil {
			return registry.ParseError(err)
		}

		curHeight := getBlockchainHeight()
		const span = 100
		n := curHeight / span

		tx.Nonce = n * span

		if math.MaxUint32-span > tx.Nonce {
			tx.ValidUntilBlock = tx.Nonce + span
		} else {
			tx.ValidUntilBlock = math.MaxUint32
		}

		return nil
	}
}
