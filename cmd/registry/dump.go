package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nspcc-dev/assignment-registry/dump"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const (
	flagDumpDir = "dir"
	flagLabel   = "label"
)

func dumpCommand() *cli.Command {
	return &cli.Command{
		Name:  "dump",
		Usage: "save state and storage of the registry contract at the latest block",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagDumpDir, Usage: "directory to save dump to", Value: "testdata"},
			&cli.StringFlag{Name: flagLabel, Usage: "label of the blockchain environment (e.g. 'testnet')", Required: true},
		},
		Action: withEnvironment(func(c *cli.Context, env *environment) error {
			addr, err := contractAddress(c)
			if err != nil {
				return err
			}

			dir := c.String(flagDumpDir)

			err = os.MkdirAll(dir, 0700)
			if err != nil {
				return fmt.Errorf("create dump dir: %w", err)
			}

			nBlocks, err := env.rpc.GetBlockCount()
			if err != nil {
				return fmt.Errorf("get number of the latest block: %w", err)
			}

			// state root of the latest block may be not ready yet
			height := nBlocks - 1
			if height > 0 {
				height--
			}

			id := dump.ID{Label: c.String(flagLabel), Block: height}

			st, err := env.rpc.GetContractStateByHash(addr)
			if err != nil {
				return fmt.Errorf("get state of the registry contract: %w", err)
			}

			w, err := dump.NewWriter(dir, id, *st)
			if err != nil {
				return fmt.Errorf("init dump writer: %w", err)
			}
			defer func() { _ = w.Close() }()

			err = iterateContractStorage(env, addr, height, w.Put)
			if err != nil {
				return fmt.Errorf("dump registry storage: %w", err)
			}

			rs, err := w.Commit()
			if err != nil {
				if !errors.Is(err, dump.ErrInconsistent) {
					return fmt.Errorf("save dump: %w", err)
				}
				env.log.Warn("registry storage is inconsistent", zap.Error(err))
			}

			env.log.Info("registry contract dumped",
				zap.Stringer("dump", id),
				zap.String("dir", dir),
				zap.Int("assignments", len(rs.Assignments)),
				zap.Int("courses", len(rs.Courses)))

			return nil
		}),
	}
}

// iterateContractStorage iterates over all storage items of the contract at
// the given height and passes them into f. It breaks on any f's error and
// returns it.
func iterateContractStorage(env *environment, contract util.Uint160, height uint32, f func(key, value []byte) error) error {
	stateRoot, err := env.rpc.GetStateRootByHeight(height)
	if err != nil {
		return fmt.Errorf("get state root at block #%d: %w", height, err)
	}

	var start []byte

	for {
		res, err := env.rpc.FindStates(stateRoot.Root, contract, nil, start, nil)
		if err != nil {
			return fmt.Errorf("get historical storage items of the contract at state root '%s': %w", stateRoot.Root, err)
		}

		for i := range res.Results {
			err = f(res.Results[i].Key, res.Results[i].Value)
			if err != nil {
				return err
			}
		}

		if !res.Truncated {
			return nil
		}

		start = res.Results[len(res.Results)-1].Key
	}
}

func checkDumpCommand() *cli.Command {
	return &cli.Command{
		Name:  "check-dump",
		Usage: "decode registry dumps and check their consistency",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagDumpDir, Usage: "directory with dumps", Value: "testdata"},
		},
		Action: func(c *cli.Context) error {
			log, err := newLogger(c.Bool(flagDebug))
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			ids, err := dump.List(c.String(flagDumpDir))
			if err != nil {
				return fmt.Errorf("list dumps: %w", err)
			}

			var failed int

			for _, id := range ids {
				l := log.With(zap.Stringer("dump", id))

				d, err := dump.Open(c.String(flagDumpDir), id)
				if err == nil {
					err = d.Registry.Validate()
				}
				if err != nil {
					failed++
					l.Error("invalid registry dump", zap.Error(err))
					continue
				}

				l.Info("registry dump is consistent",
					zap.Int("assignments", len(d.Registry.Assignments)),
					zap.Int("courses", len(d.Registry.Courses)))
			}

			if failed > 0 {
				return fmt.Errorf("%d invalid dumps", failed)
			}

			return nil
		},
	}
}
