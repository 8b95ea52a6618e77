package middleware

import (
	"fmt"
	"os"

	"github.com/keshon/fsnap/internal/cli"
)

// WithDebugArgsPrint dumps parsed args when FSNAP_DEBUG is set
func WithDebugArgsPrint() cli.Middleware {
	return func(cmd cli.Command) cli.Command {
		return &cli.WrappedCommand{
			Command: cmd,
			Wrap: func(ctx *cli.Context) error {
				if os.Getenv("FSNAP_DEBUG") != "" {
					fmt.Printf("Args: %+v\n", ctx.Args)
				}
				return cmd.Run(ctx)
			},
		}
	}
}
