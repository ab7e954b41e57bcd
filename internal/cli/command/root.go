package command

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tinykv/internal/cli/client"
	"github.com/yndnr/tinykv/internal/cli/output"
	"github.com/yndnr/tinykv/internal/cli/repl"
	"github.com/yndnr/tinykv/internal/infra/buildinfo"
)

// DefaultServer is the address used when --server is not given.
const DefaultServer = "127.0.0.1:6379"

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:      "tinykv-cli",
		Usage:     "tinykv command-line client",
		UsageText: "tinykv-cli [global options] command [arguments...]\n   tinykv-cli [global options] RAW COMMAND...\n   tinykv-cli [global options]   (interactive mode)",
		Version:   buildinfo.String(),
		Flags:     globalFlags(),
		Commands: []*cli.Command{
			PingCommand(),
			EchoCommand(),
			SetCommand(),
			GetCommand(),
		},
		Before: func(c *cli.Context) error {
			if f := c.String("output"); !output.ValidFormat(f) {
				return fmt.Errorf("invalid output format %q (want text or json)", f)
			}
			return nil
		},
		Action: rootAction,
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "tinykv server address (host:port)",
			EnvVars: []string{"TINYKV_SERVER"},
			Value:   DefaultServer,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: text, json",
			Value:   string(output.FormatText),
		},
		&cli.BoolFlag{
			Name:  "raw",
			Usage: "Print text replies without quoting or type prefixes",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Dial and request timeout",
			Value: client.DefaultTimeout,
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server  string
	Output  string
	Raw     bool
	Timeout time.Duration
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Server:  c.String("server"),
		Output:  c.String("output"),
		Raw:     c.Bool("raw"),
		Timeout: c.Duration("timeout"),
	}
}

// withClient dials the server, runs fn and closes the connection.
func withClient(c *cli.Context, fn func(ctx context.Context, cl *client.Client) error) error {
	flags := ParseGlobalFlags(c)
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	cl, err := client.Dial(ctx, flags.Server, client.WithTimeout(flags.Timeout))
	if err != nil {
		return err
	}
	defer cl.Close()

	return fn(ctx, cl)
}

// printReply writes r with the formatter selected by the global flags.
func printReply(c *cli.Context, r client.Reply) error {
	flags := ParseGlobalFlags(c)
	return output.NewFormatter(output.Format(flags.Output), flags.Raw).Format(c.App.Writer, r)
}

// rootAction sends the arguments as a raw command, or starts interactive
// mode when there are none.
func rootAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return interactive(c)
	}

	return withClient(c, func(ctx context.Context, cl *client.Client) error {
		r, err := cl.Do(ctx, c.Args().Slice()...)
		if err != nil {
			return err
		}
		if r.Kind == client.KindError {
			return &client.ServerError{Message: r.Text}
		}
		return printReply(c, r)
	})
}

func interactive(c *cli.Context) error {
	flags := ParseGlobalFlags(c)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withClient(c, func(_ context.Context, cl *client.Client) error {
		exec := func(ctx context.Context, args []string) (client.Reply, error) {
			return cl.Do(ctx, args...)
		}
		r := repl.New(exec, output.NewFormatter(output.Format(flags.Output), flags.Raw),
			repl.WithIO(c.App.Reader, c.App.Writer),
			repl.WithHistory(repl.NewHistory(repl.DefaultHistoryFile())),
			repl.WithPrompt(cl.Addr()+"> "),
		)
		return r.Run(ctx)
	})
}
