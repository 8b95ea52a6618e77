package help

import (
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/keshon/fsnap/internal/cli"
	"github.com/keshon/fsnap/internal/middleware"
)

type Command struct{}

func (c *Command) Name() string      { return "help" }
func (c *Command) Aliases() []string { return []string{"h", "?"} }
func (c *Command) Usage() string     { return "help [command]" }
func (c *Command) Brief() string     { return "Show help for commands" }
func (c *Command) Help() string {
	return `Display help information for commands.

Usage:
  help          List all commands.
  help <name>   Show detailed help for a specific command.`
}

func (c *Command) Flags(fset *flag.FlagSet) {}

func (c *Command) Run(ctx *cli.Context) error {
	if len(ctx.Args) > 0 {
		return runCommandHelp(strings.ToLower(ctx.Args[0]))
	}
	return runListAllCommands()
}

// runCommandHelp shows detailed help for a specific command
func runCommandHelp(name string) error {
	cmd, ok := cli.GetCommand(name)
	if !ok {
		fmt.Printf("Unknown command: %s\n", name)
		return nil
	}

	if usage := cmd.Usage(); usage != "" {
		fmt.Printf("Usage: %s\n\n", usage)
	}
	fmt.Printf("%s\n", cmd.Help())

	if aliases := cmd.Aliases(); len(aliases) > 0 {
		fmt.Printf("Aliases: %s\n", strings.Join(aliases, ", "))
	}
	return nil
}

// runListAllCommands lists every registered command with its brief
func runListAllCommands() error {
	cmds := cli.AllCommands()
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })

	fmt.Println("Usage: fsnap <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	for _, cmd := range cmds {
		fmt.Printf("  %-10s %s\n", cmd.Name(), cmd.Brief())
	}
	fmt.Println()
	fmt.Println("Run \"fsnap help <command>\" for details.")
	return nil
}

func init() {
	cli.RegisterCommand(
		cli.ApplyMiddlewares(
			&Command{},
			middleware.WithDebugArgsPrint(),
		),
	)
}
