package main

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/assignment-registry/contracts"
	rcst "github.com/nspcc-dev/assignment-registry/contracts/registry/registryconst"
	"github.com/nspcc-dev/assignment-registry/deploy"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/urfave/cli/v2"
)

const (
	flagSource = "source"
	flagDir    = "dir"
	flagAdmin  = "admin"
	flagFee    = "fee"
)

func deployCommand() *cli.Command {
	return &cli.Command{
		Name: "deploy",
		Usage: "deploy the registry contract or update it if the on-chain " +
			"version differs, prints contract address",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagSource, Usage: "directory with contract sources to compile"},
			&cli.StringFlag{Name: flagDir, Usage: "directory with compiled contract (NEF and manifest)"},
			&cli.StringFlag{Name: flagAdmin, Usage: "contract administrator, signing account is used if not set"},
			&cli.Int64Flag{Name: flagFee, Usage: "initial submission fee", Value: rcst.DefaultSubmissionFee},
		},
		Action: withEnvironment(func(c *cli.Context, env *environment) error {
			ctr, err := loadContract(c.String(flagSource), c.String(flagDir))
			if err != nil {
				return err
			}

			acc, err := openAccount(c)
			if err != nil {
				return err
			}

			prm := deploy.Prm{
				Logger:       env.log,
				Blockchain:   env.rpc,
				LocalAccount: acc,
				Contract: deploy.CommonDeployPrm{
					NEF:      ctr.NEF,
					Manifest: ctr.Manifest,
				},
				SubmissionFee: c.Int64(flagFee),
			}

			if s := c.String(flagAdmin); s != "" {
				admin, err := parseAccount(s)
				if err != nil {
					return fmt.Errorf("decode admin: %w", err)
				}
				prm.Admin = &admin
			}

			addr, err := deploy.Deploy(env.ctx, prm)
			if err != nil {
				return fmt.Errorf("deploy registry contract: %w", err)
			}

			fmt.Fprintf(c.App.Writer, "%s (%s)\n", addr.StringLE(), address.Uint160ToString(addr))

			return nil
		}),
	}
}

func loadContract(srcDir, dir string) (contracts.Contract, error) {
	switch {
	case srcDir != "" && dir != "":
		return contracts.Contract{}, fmt.Errorf("--%s and --%s are mutually exclusive", flagSource, flagDir)
	case srcDir != "":
		return contracts.Compile(srcDir)
	case dir != "":
		return contracts.ReadDir(dir)
	default:
		return contracts.Contract{}, errors.New("contract source or compiled contract directory required")
	}
}
