package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
)

const (
	flagRPC      = "rpc-endpoint"
	flagContract = "contract"
	flagWallet   = "wallet"
	flagAddress  = "address"
	flagPassword = "password"
	flagTimeout  = "timeout"
	flagDebug    = "debug"
)

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "registry",
		Usage: "Assignment Registry contract client",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagRPC, Usage: "Neo RPC server endpoint", EnvVars: []string{"REGISTRY_RPC_ENDPOINT"}},
			&cli.StringFlag{Name: flagContract, Usage: "registry contract address or LE script hash", EnvVars: []string{"REGISTRY_CONTRACT"}},
			&cli.StringFlag{Name: flagWallet, Usage: "path to the NEP-6 wallet signing transactions", EnvVars: []string{"REGISTRY_WALLET"}},
			&cli.StringFlag{Name: flagAddress, Usage: "wallet account address, default account is used if not set", EnvVars: []string{"REGISTRY_ADDRESS"}},
			&cli.StringFlag{Name: flagPassword, Usage: "wallet account password", EnvVars: []string{"REGISTRY_PASSWORD"}},
			&cli.DurationFlag{Name: flagTimeout, Usage: "timeout of network requests and transaction awaiting", Value: time.Minute},
			&cli.BoolFlag{Name: flagDebug, Usage: "enable debug logging"},
		},
		Commands: []*cli.Command{
			deployCommand(),
			setAuthorityCommand(),
			setFeeCommand(),
			submitCommand(),
			updateCommand(),
			getCommand(),
			lastUpdateCommand(),
			listCommand(),
			assignmentsOfCommand(),
			countCommand(),
			existsCommand(),
			verifyCommand(),
			configCommand(),
			dumpCommand(),
			checkDumpCommand(),
		},
	}
}
