package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tinykv/internal/cli/client"
)

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:   "ping",
		Usage:  "Check that the server is alive",
		Action: ping,
	}
}

// EchoCommand returns the echo command.
func EchoCommand() *cli.Command {
	return &cli.Command{
		Name:      "echo",
		Usage:     "Echo a message back from the server",
		ArgsUsage: "MESSAGE",
		Action:    echo,
	}
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Store a value under a key",
		ArgsUsage: "KEY VALUE",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "px",
				Usage: "Expire after `MS` milliseconds",
			},
			&cli.Int64Flag{
				Name:  "ex",
				Usage: "Expire after `S` seconds",
			},
		},
		Action: set,
	}
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Read the value stored under a key",
		ArgsUsage: "KEY",
		Action:    get,
	}
}

func requireArgs(c *cli.Context, n int) error {
	if c.NArg() != n {
		return fmt.Errorf("%s: expected %d argument(s), got %d", c.Command.Name, n, c.NArg())
	}
	return nil
}

func ping(c *cli.Context) error {
	if err := requireArgs(c, 0); err != nil {
		return err
	}
	return withClient(c, func(ctx context.Context, cl *client.Client) error {
		pong, err := cl.Ping(ctx)
		if err != nil {
			return err
		}
		return printReply(c, client.Reply{Kind: client.KindStatus, Text: pong})
	})
}

func echo(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	return withClient(c, func(ctx context.Context, cl *client.Client) error {
		msg, err := cl.Echo(ctx, c.Args().First())
		if err != nil {
			return err
		}
		return printReply(c, client.Reply{Kind: client.KindBulk, Text: msg})
	})
}

func set(c *cli.Context) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}
	if c.IsSet("px") && c.IsSet("ex") {
		return fmt.Errorf("set: --px and --ex are mutually exclusive")
	}

	var opts []client.SetOption
	switch {
	case c.IsSet("px"):
		opts = append(opts, client.WithPX(c.Int64("px")))
	case c.IsSet("ex"):
		opts = append(opts, client.WithEX(c.Int64("ex")))
	}

	return withClient(c, func(ctx context.Context, cl *client.Client) error {
		if err := cl.Set(ctx, c.Args().Get(0), c.Args().Get(1), opts...); err != nil {
			return err
		}
		return printReply(c, client.Reply{Kind: client.KindStatus, Text: "OK"})
	})
}

func get(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	return withClient(c, func(ctx context.Context, cl *client.Client) error {
		v, ok, err := cl.Get(ctx, c.Args().First())
		if err != nil {
			return err
		}
		if !ok {
			return printReply(c, client.Reply{Kind: client.KindNil})
		}
		return printReply(c, client.Reply{Kind: client.KindBulk, Text: v})
	})
}
