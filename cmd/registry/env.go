package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/nspcc-dev/assignment-registry/deploy"
	"github.com/nspcc-dev/assignment-registry/rpc/registry"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// environment groups services shared by the commands.
type environment struct {
	ctx    context.Context
	cancel context.CancelFunc

	log *zap.Logger
	rpc *rpcclient.Client
}

func newEnvironment(c *cli.Context) (*environment, error) {
	endpoint := c.String(flagRPC)
	if endpoint == "" {
		return nil, fmt.Errorf("missing Neo RPC endpoint (--%s)", flagRPC)
	}

	log, err := newLogger(c.Bool(flagDebug))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	timeout := c.Duration(flagTimeout)
	ctx, cancel := context.WithTimeout(c.Context, timeout)

	rpc, err := rpcclient.New(ctx, endpoint, rpcclient.Options{
		DialTimeout:    timeout,
		RequestTimeout: timeout,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("RPC client dial: %w", err)
	}

	err = rpc.Init()
	if err != nil {
		rpc.Close()
		cancel()
		return nil, fmt.Errorf("init RPC client: %w", err)
	}

	log.Debug("connected to Neo RPC server", zap.String("endpoint", endpoint))

	return &environment{
		ctx:    ctx,
		cancel: cancel,
		log:    log,
		rpc:    rpc,
	}, nil
}

func (x *environment) close() {
	x.rpc.Close()
	x.cancel()
	_ = x.log.Sync()
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = ""
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

// parseAccount decodes account from its Neo address or LE script hash.
func parseAccount(s string) (util.Uint160, error) {
	if s == "" {
		return util.Uint160{}, errors.New("empty account")
	}

	u, err := address.StringToUint160(s)
	if err == nil {
		return u, nil
	}

	u, err = util.Uint160DecodeStringLE(s)
	if err != nil {
		return u, fmt.Errorf("'%s' is neither Neo address nor LE script hash", s)
	}

	return u, nil
}

func contractAddress(c *cli.Context) (util.Uint160, error) {
	s := c.String(flagContract)
	if s == "" {
		return util.Uint160{}, fmt.Errorf("missing registry contract (--%s)", flagContract)
	}

	u, err := parseAccount(s)
	if err != nil {
		return u, fmt.Errorf("decode registry contract: %w", err)
	}

	return u, nil
}

// reader returns registry contract reader working via test invocations.
func (x *environment) reader(c *cli.Context) (*registry.ContractReader, error) {
	addr, err := contractAddress(c)
	if err != nil {
		return nil, err
	}

	return registry.NewReader(invoker.New(x.rpc, nil), addr), nil
}

// openAccount opens the wallet account referenced by the command flags and
// decrypts it with the configured password.
func openAccount(c *cli.Context) (*wallet.Account, error) {
	path := c.String(flagWallet)
	if path == "" {
		return nil, fmt.Errorf("missing wallet (--%s)", flagWallet)
	}

	w, err := wallet.NewWalletFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("open wallet: %w", err)
	}
	defer w.Close()

	var acc *wallet.Account

	if s := c.String(flagAddress); s != "" {
		u, err := parseAccount(s)
		if err != nil {
			return nil, fmt.Errorf("decode wallet account: %w", err)
		}

		acc = w.GetAccount(u)
		if acc == nil {
			return nil, fmt.Errorf("account %s is missing in the wallet", s)
		}
	} else {
		acc = w.GetAccount(w.GetChangeAddress())
		if acc == nil {
			return nil, errors.New("wallet has no default account")
		}
	}

	err = acc.Decrypt(c.String(flagPassword), w.Scrypt)
	if err != nil {
		return nil, fmt.Errorf("decrypt account %s: %w", acc.Address, err)
	}

	return acc, nil
}

// writer returns registry contract client sending transactions signed by the
// wallet account. Account witness is allowed for the registry and GAS
// contracts only, the latter is needed to pay submission fees.
func (x *environment) writer(c *cli.Context) (*registry.Contract, util.Uint160, error) {
	addr, err := contractAddress(c)
	if err != nil {
		return nil, util.Uint160{}, err
	}

	acc, err := openAccount(c)
	if err != nil {
		return nil, util.Uint160{}, err
	}

	act, err := actor.New(x.rpc, []actor.SignerAccount{{
		Signer: transaction.Signer{
			Account:          acc.ScriptHash(),
			Scopes:           transaction.CustomContracts,
			AllowedContracts: []util.Uint160{addr, gas.Hash},
		},
		Account: acc,
	}})
	if err != nil {
		return nil, util.Uint160{}, fmt.Errorf("init transaction sender: %w", err)
	}

	return registry.New(act, addr), acc.ScriptHash(), nil
}

// await waits for the sent transaction to be persisted and checks that it
// succeeded.
func (x *environment) await(txHash util.Uint256, vub uint32, err error) error {
	if err != nil {
		return fmt.Errorf("send transaction: %w", registry.ParseError(err))
	}

	x.log.Debug("transaction sent, waiting for it to be persisted...",
		zap.Stringer("tx", txHash), zap.Uint32("vub", vub))

	err = deploy.WaitTransaction(x.ctx, x.rpc, txHash, vub, 0)
	if err != nil {
		return err
	}

	x.log.Info("transaction persisted", zap.String("tx", txHash.StringLE()))

	return nil
}
