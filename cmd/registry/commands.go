package main

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/nspcc-dev/assignment-registry/rpc/registry"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const (
	flagCourse  = "course"
	flagTitle   = "title"
	flagStudent = "student"
	flagHash    = "hash"
	flagFile    = "file"
)

// maximum number of iterator items expanded by assignments-of command
const maxIteratorItems = 1000

func hashFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: flagHash, Usage: "content hash in hex or base58"},
		&cli.StringFlag{Name: flagFile, Usage: "assignment file to calculate SHA-256 content hash of"},
	}
}

// withEnvironment wraps command action into environment initialization.
func withEnvironment(f func(*cli.Context, *environment) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		env, err := newEnvironment(c)
		if err != nil {
			return err
		}
		defer env.close()

		return f(c, env)
	}
}

func intArg(c *cli.Context, i int, name string) (*big.Int, error) {
	s := c.Args().Get(i)
	if s == "" {
		return nil, fmt.Errorf("missing %s argument", name)
	}

	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid %s '%s'", name, s)
	}

	return n, nil
}

func accountArg(c *cli.Context, i int, name string) (util.Uint160, error) {
	s := c.Args().Get(i)
	if s == "" {
		return util.Uint160{}, fmt.Errorf("missing %s argument", name)
	}

	u, err := parseAccount(s)
	if err != nil {
		return u, fmt.Errorf("decode %s: %w", name, err)
	}

	return u, nil
}

func setAuthorityCommand() *cli.Command {
	return &cli.Command{
		Name:      "set-authority",
		Usage:     "set account receiving submission fees (once)",
		ArgsUsage: "<account>",
		Action: withEnvironment(func(c *cli.Context, env *environment) error {
			principal, err := accountArg(c, 0, "account")
			if err != nil {
				return err
			}

			contract, _, err := env.writer(c)
			if err != nil {
				return err
			}

			return env.await(contract.SetAuthority(principal))
		}),
	}
}

func setFeeCommand() *cli.Command {
	return &cli.Command{
		Name:      "set-fee",
		Usage:     "change submission fee",
		ArgsUsage: "<amount>",
		Action: withEnvironment(func(c *cli.Context, env *environment) error {
			amount, err := intArg(c, 0, "amount")
			if err != nil {
				return err
			}
			if amount.Sign() < 0 {
				return errors.New("negative fee")
			}

			contract, _, err := env.writer(c)
			if err != nil {
				return err
			}

			return env.await(contract.SetSubmissionFee(amount))
		}),
	}
}

func submitCommand() *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: "register new assignment paying submission fee",
		Flags: append(hashFlags(),
			&cli.Int64Flag{Name: flagCourse, Usage: "course ID", Required: true},
			&cli.StringFlag{Name: flagTitle, Usage: "assignment title", Required: true},
			&cli.StringFlag{Name: flagStudent, Usage: "student account, signing account is used if not set"},
		),
		Action: withEnvironment(func(c *cli.Context, env *environment) error {
			hash, err := contentHash(c.String(flagHash), c.String(flagFile))
			if err != nil {
				return err
			}

			contract, sender, err := env.writer(c)
			if err != nil {
				return err
			}

			student := sender
			if s := c.String(flagStudent); s != "" {
				student, err = parseAccount(s)
				if err != nil {
					return fmt.Errorf("decode student: %w", err)
				}
			}

			txHash, vub, err := contract.Submit(hash, c.String(flagTitle), big.NewInt(c.Int64(flagCourse)), student)
			err = env.await(txHash, vub, err)
			if err != nil {
				return err
			}

			aer, err := env.rpc.GetApplicationLog(txHash, nil)
			if err != nil {
				return fmt.Errorf("get application log: %w", err)
			}

			events, err := registry.AssignmentSubmittedEventsFromApplicationLog(aer)
			if err != nil {
				return fmt.Errorf("decode submission event: %w", err)
			}
			if len(events) != 1 {
				return fmt.Errorf("unexpected number of submission events %d", len(events))
			}

			env.log.Info("assignment submitted",
				zap.Stringer("id", events[0].ID),
				zap.Stringer("course", events[0].CourseID))

			fmt.Fprintln(c.App.Writer, events[0].ID)

			return nil
		}),
	}
}

func updateCommand() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "replace title and content hash of own assignment",
		ArgsUsage: "<id>",
		Flags: append(hashFlags(),
			&cli.StringFlag{Name: flagTitle, Usage: "new assignment title", Required: true},
		),
		Action: withEnvironment(func(c *cli.Context, env *environment) error {
			id, err := intArg(c, 0, "id")
			if err != nil {
				return err
			}

			hash, err := contentHash(c.String(flagHash), c.String(flagFile))
			if err != nil {
				return err
			}

			contract, _, err := env.writer(c)
			if err != nil {
				return err
			}

			return env.await(contract.UpdateAssignment(id, c.String(flagTitle), hash))
		}),
	}
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "print assignment",
		ArgsUsage: "<id>",
		Action: withEnvironment(func(c *cli.Context, env *environment) error {
			id, err := intArg(c, 0, "id")
			if err != nil {
				return err
			}

			r, err := env.reader(c)
			if err != nil {
				return err
			}

			a, err := r.Get(id)
			if err != nil {
				return fmt.Errorf("get assignment: %w", registry.ParseError(err))
			}
			if a == nil {
				return fmt.Errorf("assignment %s: %w", id, registry.ErrAssignmentNotFound)
			}

			printAssignment(c.App.Writer, id, a)

			return nil
		}),
	}
}

func printAssignment(w io.Writer, id *big.Int, a *registry.Assignment) {
	fmt.Fprintf(w, "ID:        %s\n", id)
	fmt.Fprintf(w, "Title:     %s\n", a.Title)
	fmt.Fprintf(w, "Hash:      %s\n", formatHash(a.Hash))
	fmt.Fprintf(w, "Student:   %s\n", address.Uint160ToString(a.Student))
	fmt.Fprintf(w, "Course:    %s\n", a.CourseID)
	fmt.Fprintf(w, "Timestamp: %s\n", a.Timestamp)
	fmt.Fprintf(w, "Status:    %t\n", a.Status)
}

func lastUpdateCommand() *cli.Command {
	return &cli.Command{
		Name:      "last-update",
		Usage:     "print the latest edit of the assignment",
		ArgsUsage: "<id>",
		Action: withEnvironment(func(c *cli.Context, env *environment) error {
			id, err := intArg(c, 0, "id")
			if err != nil {
				return err
			}

			r, err := env.reader(c)
			if err != nil {
				return err
			}

			u, err := r.LastUpdate(id)
			if err != nil {
				return fmt.Errorf("get last update: %w", registry.ParseError(err))
			}
			if u == nil {
				fmt.Fprintln(c.App.Writer, "assignment was never updated")
				return nil
			}

			w := c.App.Writer
			fmt.Fprintf(w, "Title:     %s\n", u.Title)
			fmt.Fprintf(w, "Hash:      %s\n", formatHash(u.Hash))
			fmt.Fprintf(w, "Timestamp: %s\n", u.Timestamp)
			fmt.Fprintf(w, "Updater:   %s\n", address.Uint160ToString(u.Updater))

			return nil
		}),
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "print IDs of the course assignments in submission order",
		ArgsUsage: "<course>",
		Action: withEnvironment(func(c *cli.Context, env *environment) error {
			course, err := intArg(c, 0, "course")
			if err != nil {
				return err
			}

			r, err := env.reader(c)
			if err != nil {
				return err
			}

			ids, err := r.ListByCourse(course)
			if err != nil {
				return fmt.Errorf("list course assignments: %w", registry.ParseError(err))
			}

			for i := range ids {
				fmt.Fprintln(c.App.Writer, ids[i])
			}

			return nil
		}),
	}
}

func assignmentsOfCommand() *cli.Command {
	return &cli.Command{
		Name:      "assignments-of",
		Usage:     "print IDs of the assignments submitted for the student",
		ArgsUsage: "<student>",
		Action: withEnvironment(func(c *cli.Context, env *environment) error {
			student, err := accountArg(c, 0, "student")
			if err != nil {
				return err
			}

			r, err := env.reader(c)
			if err != nil {
				return err
			}

			ids, err := r.AssignmentsOfExpanded(student, maxIteratorItems)
			if err != nil {
				return fmt.Errorf("list student assignments: %w", registry.ParseError(err))
			}

			for i := range ids {
				fmt.Fprintln(c.App.Writer, ids[i])
			}

			return nil
		}),
	}
}

func countCommand() *cli.Command {
	return &cli.Command{
		Name:  "count",
		Usage: "print total number of submitted assignments",
		Action: withEnvironment(func(c *cli.Context, env *environment) error {
			r, err := env.reader(c)
			if err != nil {
				return err
			}

			n, err := r.Count()
			if err != nil {
				return fmt.Errorf("count assignments: %w", registry.ParseError(err))
			}

			fmt.Fprintln(c.App.Writer, n)

			return nil
		}),
	}
}

func existsCommand() *cli.Command {
	return &cli.Command{
		Name:  "exists",
		Usage: "check whether the content is already registered",
		Flags: hashFlags(),
		Action: withEnvironment(func(c *cli.Context, env *environment) error {
			hash, err := contentHash(c.String(flagHash), c.String(flagFile))
			if err != nil {
				return err
			}

			r, err := env.reader(c)
			if err != nil {
				return err
			}

			ok, err := r.Exists(hash)
			if err != nil {
				return fmt.Errorf("check hash: %w", registry.ParseError(err))
			}

			fmt.Fprintln(c.App.Writer, ok)

			return nil
		}),
	}
}

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "check that the assignment belongs to the student",
		ArgsUsage: "<id> <student>",
		Action: withEnvironment(func(c *cli.Context, env *environment) error {
			id, err := intArg(c, 0, "id")
			if err != nil {
				return err
			}

			student, err := accountArg(c, 1, "student")
			if err != nil {
				return err
			}

			r, err := env.reader(c)
			if err != nil {
				return err
			}

			ok, err := r.VerifyOwnership(id, student)
			if err != nil {
				return fmt.Errorf("verify ownership: %w", registry.ParseError(err))
			}

			fmt.Fprintln(c.App.Writer, ok)

			return nil
		}),
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "print contract version, fee authority and submission fee",
		Action: withEnvironment(func(c *cli.Context, env *environment) error {
			r, err := env.reader(c)
			if err != nil {
				return err
			}

			version, err := r.Version()
			if err != nil {
				return fmt.Errorf("get version: %w", registry.ParseError(err))
			}

			authority, err := r.Authority()
			if err != nil {
				return fmt.Errorf("get authority: %w", registry.ParseError(err))
			}

			fee, err := r.SubmissionFee()
			if err != nil {
				return fmt.Errorf("get submission fee: %w", registry.ParseError(err))
			}

			w := c.App.Writer
			fmt.Fprintf(w, "Version:   %s\n", version)
			if authority != nil {
				fmt.Fprintf(w, "Authority: %s\n", address.Uint160ToString(*authority))
			} else {
				fmt.Fprintln(w, "Authority: not set")
			}
			fmt.Fprintf(w, "Fee:       %s\n", fee)

			return nil
		}),
	}
}
