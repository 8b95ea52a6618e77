package cli

import (
	"errors"
	"flag"
	"fmt"
)

// RunCLI resolves a command from args, parses its flags, and runs it.
func RunCLI(args []string) error {
	if len(args) == 0 {
		return errors.New("no command provided")
	}

	cmd, ok := GetCommand(args[0])
	if !ok {
		return fmt.Errorf("unknown command %q", args[0])
	}

	fset := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.Flags(fset)
	if err := fset.Parse(args[1:]); err != nil {
		return err
	}

	return cmd.Run(&Context{Args: fset.Args(), Flags: fset})
}
