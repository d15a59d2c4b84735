package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/trogers1052/carteira-dashboard/internal/dashboard"
	"github.com/trogers1052/carteira-dashboard/internal/ticker"
)

type listCmd struct {
	env *Env
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list stored positions" }
func (*listCmd) Usage() string {
	return `carteira list

  Lists every stored position with its average and ceiling prices.
`
}
func (*listCmd) SetFlags(*flag.FlagSet) {}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.run(ctx, func(svc *dashboard.Service) error {
		positions, err := svc.ListPositions(ctx)
		if err != nil {
			return err
		}
		return c.env.printMarkdown(PositionsMarkdown(positions))
	})
}

// addCmd holds the flags for the 'add' subcommand.
type addCmd struct {
	env *Env
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add or replace a position" }
func (*addCmd) Usage() string {
	return `carteira add <codigo> <preco_medio> <preco_teto>

  Validates the code with the quote provider and stores the position.
  Prices accept both 32,50 and 32.50.
`
}
func (*addCmd) SetFlags(*flag.FlagSet) {}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 3 {
		c.env.errorf("%s", c.Usage())
		return subcommands.ExitUsageError
	}
	return c.env.run(ctx, func(svc *dashboard.Service) error {
		p, err := svc.AddPosition(ctx, f.Arg(0), f.Arg(1), f.Arg(2))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.env.Out, "%s saved\n", ticker.Display(p.Code))
		return nil
	})
}

// updateCmd holds the flags for the 'update' subcommand.
type updateCmd struct {
	env    *Env
	avg    string
	target string
}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "change the prices of a stored position" }
func (*updateCmd) Usage() string {
	return `carteira update [-medio <preco>] [-teto <preco>] <codigo>

  Updates an existing position. Omitted prices keep their stored value.
`
}

func (c *updateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.avg, "medio", "", "new average price")
	f.StringVar(&c.target, "teto", "", "new ceiling price")
}

func (c *updateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 || (c.avg == "" && c.target == "") {
		c.env.errorf("%s", c.Usage())
		return subcommands.ExitUsageError
	}
	return c.env.run(ctx, func(svc *dashboard.Service) error {
		p, err := svc.UpdatePosition(ctx, f.Arg(0), c.avg, c.target)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.env.Out, "%s updated\n", ticker.Display(p.Code))
		return nil
	})
}

type removeCmd struct {
	env *Env
}

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "remove a stored position" }
func (*removeCmd) Usage() string {
	return `carteira remove <codigo>
`
}
func (*removeCmd) SetFlags(*flag.FlagSet) {}

func (c *removeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		c.env.errorf("%s", c.Usage())
		return subcommands.ExitUsageError
	}
	return c.env.run(ctx, func(svc *dashboard.Service) error {
		if err := svc.RemovePosition(ctx, f.Arg(0)); err != nil {
			return err
		}
		fmt.Fprintf(c.env.Out, "%s removed\n", ticker.Display(f.Arg(0)))
		return nil
	})
}

// cardsCmd holds the flags for the 'cards' subcommand.
type cardsCmd struct {
	env    *Env
	record bool
}

func (*cardsCmd) Name() string     { return "cards" }
func (*cardsCmd) Synopsis() string { return "fetch quotes and show the dashboard" }
func (*cardsCmd) Usage() string {
	return `carteira cards [-record]

  Fetches the latest closes for every position and shows them classified
  against their ceiling price.
`
}

func (c *cardsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.record, "record", false, "append classification changes to the alert history")
}

func (c *cardsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.run(ctx, func(svc *dashboard.Service) error {
		cards, err := svc.Cards(ctx)
		if err != nil {
			return err
		}
		if c.record {
			if _, err := svc.RecordTransitions(ctx, cards); err != nil {
				c.env.errorf("Warning: %v\n", err)
			}
		}
		return c.env.printMarkdown(CardsMarkdown(cards))
	})
}

// alertsCmd holds the flags for the 'alerts' subcommand.
type alertsCmd struct {
	env   *Env
	limit int
}

func (*alertsCmd) Name() string     { return "alerts" }
func (*alertsCmd) Synopsis() string { return "show recorded classification changes" }
func (*alertsCmd) Usage() string {
	return `carteira alerts [-n <limit>] [codigo]
`
}

func (c *alertsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 20, "maximum number of rows")
}

func (c *alertsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		c.env.errorf("%s", c.Usage())
		return subcommands.ExitUsageError
	}
	return c.env.run(ctx, func(svc *dashboard.Service) error {
		history, err := svc.AlertHistory(ctx, f.Arg(0), c.limit)
		if err != nil {
			return err
		}
		return c.env.printMarkdown(AlertsMarkdown(history))
	})
}
