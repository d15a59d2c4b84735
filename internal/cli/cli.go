// Package cli implements the carteira terminal commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/trogers1052/carteira-dashboard/internal/dashboard"
)

// Opener builds a service for one command run. The returned func releases it.
type Opener func(ctx context.Context) (*dashboard.Service, func() error, error)

// Env is shared by every command
type Env struct {
	Open Opener
	Out  io.Writer
	Err  io.Writer
	// Raw prints markdown without terminal styling
	Raw bool
}

// Register adds all commands to c
func Register(c *subcommands.Commander, env *Env) {
	if env.Out == nil {
		env.Out = os.Stdout
	}
	if env.Err == nil {
		env.Err = os.Stderr
	}

	c.Register(&listCmd{env: env}, "positions")
	c.Register(&addCmd{env: env}, "positions")
	c.Register(&updateCmd{env: env}, "positions")
	c.Register(&removeCmd{env: env}, "positions")
	c.Register(&cardsCmd{env: env}, "positions")
	c.Register(&alertsCmd{env: env}, "positions")

	c.Register(&optionsCmd{env: env}, "options")
	c.Register(&addOptionCmd{env: env}, "options")
	c.Register(&removeOptionCmd{env: env}, "options")
	c.Register(&decodeCmd{env: env}, "options")
}

// run opens the service, calls fn and maps its error to an exit status
func (e *Env) run(ctx context.Context, fn func(*dashboard.Service) error) subcommands.ExitStatus {
	svc, closeFn, err := e.Open(ctx)
	if err != nil {
		e.errorf("Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer func() {
		if err := closeFn(); err != nil {
			e.errorf("Error closing store: %v\n", err)
		}
	}()

	if err := fn(svc); err != nil {
		e.errorf("Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (e *Env) errorf(format string, args ...any) {
	fmt.Fprintf(e.Err, format, args...)
}

// printMarkdown renders md for the terminal, or prints it as is in raw mode
func (e *Env) printMarkdown(md string) error {
	if e.Raw {
		_, err := io.WriteString(e.Out, md)
		return err
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(e.Out, out)
	return err
}
