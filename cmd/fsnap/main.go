package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/keshon/fsnap/internal/apply"
	"github.com/keshon/fsnap/internal/cli"

	_ "github.com/keshon/fsnap/internal/command/apply"
	_ "github.com/keshon/fsnap/internal/command/compare"
	_ "github.com/keshon/fsnap/internal/command/diff"
	_ "github.com/keshon/fsnap/internal/command/help"
	_ "github.com/keshon/fsnap/internal/command/snapshot"
	_ "github.com/keshon/fsnap/internal/command/update"
	_ "github.com/keshon/fsnap/internal/command/watch"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: fsnap <command> [options]")
		fmt.Println("Available commands:")
		for _, cmd := range cli.AllCommands() {
			fmt.Printf("  %s: %s\n", cmd.Name(), cmd.Brief())
		}
		os.Exit(0)
	}

	if err := cli.RunCLI(os.Args[1:]); err != nil {
		// conflicts mean the run finished but preserved diverged
		// content; keep that distinguishable from a failure
		if errors.Is(err, apply.ErrConflicts) {
			fmt.Println(err)
			os.Exit(2)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
