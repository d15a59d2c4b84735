package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"
	"github.com/trogers1052/carteira-dashboard/internal/dashboard"
	"github.com/trogers1052/carteira-dashboard/internal/options"
	"github.com/trogers1052/carteira-dashboard/internal/ticker"
)

type optionsCmd struct {
	env *Env
}

func (*optionsCmd) Name() string     { return "options" }
func (*optionsCmd) Synopsis() string { return "show the option dashboard" }
func (*optionsCmd) Usage() string {
	return `carteira options

  Fetches option and underlying closes and shows intrinsic values.
`
}
func (*optionsCmd) SetFlags(*flag.FlagSet) {}

func (c *optionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.run(ctx, func(svc *dashboard.Service) error {
		cards, err := svc.OptionCards(ctx)
		if err != nil {
			return err
		}
		return c.env.printMarkdown(OptionCardsMarkdown(cards))
	})
}

// addOptionCmd holds the flags for the 'add-option' subcommand.
type addOptionCmd struct {
	env  *Env
	base string
}

func (*addOptionCmd) Name() string     { return "add-option" }
func (*addOptionCmd) Synopsis() string { return "add or replace an option position" }
func (*addOptionCmd) Usage() string {
	return `carteira add-option [-base <codigo>] <codigo> <preco_medio> <preco_objetivo>

  Decodes the option code and stores it. Without -base the root of the code
  is used as the underlying.
`
}

func (c *addOptionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.base, "base", "", "underlying code, e.g. PETR4")
}

func (c *addOptionCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 3 {
		c.env.errorf("%s", c.Usage())
		return subcommands.ExitUsageError
	}
	return c.env.run(ctx, func(svc *dashboard.Service) error {
		o, err := svc.AddOption(ctx, f.Arg(0), c.base, f.Arg(1), f.Arg(2))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.env.Out, "%s saved (%s on %s)\n",
			ticker.Display(o.Code), o.OptionType, ticker.Display(o.UnderlyingCode))
		return nil
	})
}

type removeOptionCmd struct {
	env *Env
}

func (*removeOptionCmd) Name() string     { return "remove-option" }
func (*removeOptionCmd) Synopsis() string { return "remove a stored option position" }
func (*removeOptionCmd) Usage() string {
	return `carteira remove-option <codigo>
`
}
func (*removeOptionCmd) SetFlags(*flag.FlagSet) {}

func (c *removeOptionCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		c.env.errorf("%s", c.Usage())
		return subcommands.ExitUsageError
	}
	return c.env.run(ctx, func(svc *dashboard.Service) error {
		if err := svc.RemoveOption(ctx, f.Arg(0)); err != nil {
			return err
		}
		fmt.Fprintf(c.env.Out, "%s removed\n", ticker.Display(f.Arg(0)))
		return nil
	})
}

// decodeCmd does not open any store.
type decodeCmd struct {
	env *Env
	now func() time.Time
}

func (*decodeCmd) Name() string     { return "decode" }
func (*decodeCmd) Synopsis() string { return "explain an option code" }
func (*decodeCmd) Usage() string {
	return `carteira decode <codigo>

  Shows the underlying root, option type, expiry and strike encoded in an
  option code such as PETRF25.
`
}
func (*decodeCmd) SetFlags(*flag.FlagSet) {}

func (c *decodeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		c.env.errorf("%s", c.Usage())
		return subcommands.ExitUsageError
	}
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	contract, err := options.Decode(f.Arg(0), now())
	if err != nil {
		c.env.errorf("Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := c.env.printMarkdown(ContractMarkdown(contract)); err != nil {
		c.env.errorf("Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
