package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/urfave/cli"

	"github.com/haukened/rr-anchor/internal/dns/bootstrap"
	"github.com/haukened/rr-anchor/internal/dns/common/log"
	"github.com/haukened/rr-anchor/internal/dns/config"
	"github.com/haukened/rr-anchor/internal/dns/domain"
	"github.com/haukened/rr-anchor/internal/dns/gateways/wire"
	"github.com/haukened/rr-anchor/internal/dns/services/registry"
)

var fromFlag = cli.StringFlag{
	Name:  "from, f",
	Usage: "caller address; defaults to the current owner",
}

func newCommands() []cli.Command {
	return []cli.Command{
		{
			Name:      "set-ipfs",
			Usage:     "Publish a dnslink TXT record for a name",
			UsageText: "set-ipfs [--from <addr>] [--lock] <name> <cid>",
			Action:    setIPFS,
			Flags: []cli.Flag{
				fromFlag,
				cli.BoolFlag{Name: "lock, l", Usage: "lock the name after setting the record"},
			},
		},
		{
			Name:      "get-ipfs",
			Usage:     "Print the CID published for a name",
			UsageText: "get-ipfs <name>",
			Action:    getIPFS,
		},
		{
			Name:      "reset-ipfs",
			Usage:     "Clear the record of an unlocked name",
			UsageText: "reset-ipfs [--from <addr>] <name>",
			Action:    resetIPFS,
			Flags:     []cli.Flag{fromFlag},
		},
		{
			Name:      "lock-name",
			Usage:     "Permanently lock a name",
			UsageText: "lock-name [--from <addr>] <name>",
			Action:    lockName,
			Flags:     []cli.Flag{fromFlag},
		},
		{
			Name:      "is-locked",
			Usage:     "Report whether a name is locked",
			UsageText: "is-locked <name>",
			Action:    isLocked,
		},
		{
			Name:      "set-owner",
			Usage:     "Transfer registry ownership",
			UsageText: "set-owner [--from <addr>] <new-owner>",
			Action:    setOwner,
			Flags:     []cli.Flag{fromFlag},
		},
		{
			Name:   "owner",
			Usage:  "Print the registry owner",
			Action: printOwner,
		},
		{
			Name:      "namehash",
			Usage:     "Print the key a name is stored under",
			UsageText: "namehash <name>",
			Action:    namehash,
		},
		{
			Name:      "decode-record",
			Usage:     "Decode a hex wire-format resource record",
			UsageText: "decode-record <hex>",
			Action:    decodeRecord,
		},
	}
}

// loadConfig is replaced in tests.
var loadConfig = config.Load

// openRegistry builds the registry over the configured store, honoring the
// global --backend and --store overrides.
func openRegistry(ctx *cli.Context) (*bootstrap.Stack, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cli.NewExitError(fmt.Errorf("configuration error: %w", err), 1)
	}
	if b := ctx.GlobalString("backend"); b != "" {
		cfg.StoreBackend = b
	}
	if p := ctx.GlobalString("store"); p != "" {
		cfg.StorePath = p
	}
	if err := log.Configure(cfg.Env, cfg.LogLevel); err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	stack, err := bootstrap.Build(cfg, nil, log.GetLogger())
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	return stack, nil
}

// withRegistry runs fn against an open registry and closes the store after.
func withRegistry(ctx *cli.Context, fn func(*registry.Registry) error) error {
	stack, err := openRegistry(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = stack.Close() }()
	if err := fn(stack.Registry); err != nil {
		return cli.NewExitError(err, 1)
	}
	return nil
}

func args(ctx *cli.Context, n int) ([]string, error) {
	if ctx.NArg() != n {
		return nil, cli.NewExitError(fmt.Sprintf("expected %d argument(s), got %d; usage: %s", n, ctx.NArg(), ctx.Command.UsageText), 1)
	}
	return ctx.Args(), nil
}

func caller(ctx *cli.Context, reg *registry.Registry) (domain.Address, error) {
	from := ctx.String("from")
	if from == "" {
		return reg.Owner(), nil
	}
	return domain.ParseAddress(from)
}

func setIPFS(ctx *cli.Context) error {
	a, err := args(ctx, 2)
	if err != nil {
		return err
	}
	return withRegistry(ctx, func(reg *registry.Registry) error {
		from, err := caller(ctx, reg)
		if err != nil {
			return err
		}
		if err := reg.SetIPFS(from, a[0], a[1], ctx.Bool("lock")); err != nil {
			return err
		}
		msg := "set"
		if ctx.Bool("lock") {
			msg = "set and locked"
		}
		fmt.Fprintf(ctx.App.Writer, "%s: %s %s%s\n", a[0], msg, registry.DNSLinkPrefix, a[1])
		return nil
	})
}

func getIPFS(ctx *cli.Context) error {
	a, err := args(ctx, 1)
	if err != nil {
		return err
	}
	return withRegistry(ctx, func(reg *registry.Registry) error {
		cid, found, err := reg.LookupIPFS(a[0])
		if err != nil {
			return err
		}
		if !found {
			fmt.Fprintf(ctx.App.Writer, "%s: no IPFS record\n", a[0])
			return nil
		}
		fmt.Fprintln(ctx.App.Writer, cid)
		return nil
	})
}

func resetIPFS(ctx *cli.Context) error {
	a, err := args(ctx, 1)
	if err != nil {
		return err
	}
	return withRegistry(ctx, func(reg *registry.Registry) error {
		from, err := caller(ctx, reg)
		if err != nil {
			return err
		}
		if err := reg.ResetIPFS(from, a[0]); err != nil {
			return err
		}
		fmt.Fprintf(ctx.App.Writer, "%s: record cleared\n", a[0])
		return nil
	})
}

func lockName(ctx *cli.Context) error {
	a, err := args(ctx, 1)
	if err != nil {
		return err
	}
	return withRegistry(ctx, func(reg *registry.Registry) error {
		from, err := caller(ctx, reg)
		if err != nil {
			return err
		}
		if err := reg.LockName(from, a[0]); err != nil {
			return err
		}
		fmt.Fprintf(ctx.App.Writer, "%s: locked\n", a[0])
		return nil
	})
}

func isLocked(ctx *cli.Context) error {
	a, err := args(ctx, 1)
	if err != nil {
		return err
	}
	return withRegistry(ctx, func(reg *registry.Registry) error {
		locked, err := reg.IsLocked(a[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(ctx.App.Writer, locked)
		return nil
	})
}

func setOwner(ctx *cli.Context) error {
	a, err := args(ctx, 1)
	if err != nil {
		return err
	}
	newOwner, err := domain.ParseAddress(a[0])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return withRegistry(ctx, func(reg *registry.Registry) error {
		from, err := caller(ctx, reg)
		if err != nil {
			return err
		}
		if err := reg.SetOwner(from, newOwner); err != nil {
			return err
		}
		fmt.Fprintf(ctx.App.Writer, "owner: %s\n", newOwner)
		return nil
	})
}

func printOwner(ctx *cli.Context) error {
	return withRegistry(ctx, func(reg *registry.Registry) error {
		fmt.Fprintln(ctx.App.Writer, reg.Owner())
		return nil
	})
}

func namehash(ctx *cli.Context) error {
	a, err := args(ctx, 1)
	if err != nil {
		return err
	}
	key, err := wire.Namehash(a[0])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, key)
	return nil
}

func decodeRecord(ctx *cli.Context) error {
	a, err := args(ctx, 1)
	if err != nil {
		return err
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(a[0]), "0x"))
	if err != nil {
		return cli.NewExitError(fmt.Errorf("invalid hex: %w", err), 1)
	}
	rr, err := wire.DecodeRecord(raw)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	w := ctx.App.Writer
	fmt.Fprintf(w, "name:  %s\n", rr.Name)
	fmt.Fprintf(w, "type:  %s\n", rr.Type)
	fmt.Fprintf(w, "class: %s\n", rr.Class)
	fmt.Fprintf(w, "ttl:   %d\n", rr.TTL)
	if txt, ok := rr.Text(); ok {
		for _, s := range txt.Values() {
			fmt.Fprintf(w, "txt:   %q\n", s)
		}
		if cid, ok := strings.CutPrefix(strings.Join(txt.Values(), ""), registry.DNSLinkPrefix); ok {
			fmt.Fprintf(w, "cid:   %s\n", cid)
		}
		return nil
	}
	if o, ok := rr.Data.(domain.Opaque); ok {
		fmt.Fprintf(w, "rdata: 0x%x\n", o.Bytes)
	}
	return nil
}
