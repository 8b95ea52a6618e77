package diff

import (
	"flag"
	"fmt"
	"sort"

	"github.com/keshon/fsnap/internal/cli"
	"github.com/keshon/fsnap/internal/fs"
	"github.com/keshon/fsnap/internal/middleware"
	snap "github.com/keshon/fsnap/internal/snapshot"
)

type Command struct {
	out string
}

func (c *Command) Name() string      { return "diff" }
func (c *Command) Aliases() []string { return nil }
func (c *Command) Usage() string     { return "diff <old-snapshot> <new-snapshot> [-out <changeset>]" }
func (c *Command) Brief() string     { return "Compute the changeset between two snapshots" }

func (c *Command) Help() string {
	return `Compare two snapshot files and print the per-path transitions,
optionally writing them as a changeset file for apply.

Options:
  -out <file>    Changeset file to write
`
}

func (c *Command) Flags(fset *flag.FlagSet) {
	fset.StringVar(&c.out, "out", "", "changeset file to write")
}

func (c *Command) Run(ctx *cli.Context) error {
	if len(ctx.Args) != 2 {
		return fmt.Errorf("expected two snapshot files, got %d args", len(ctx.Args))
	}
	fsys := fs.NewOSFS()

	oldSnap, err := snap.Load(fsys, ctx.Args[0])
	if err != nil {
		return err
	}
	newSnap, err := snap.Load(fsys, ctx.Args[1])
	if err != nil {
		return err
	}

	cs := snap.Diff(oldSnap, newSnap)

	paths := make([]string, 0, len(cs.Changes))
	for p := range cs.Changes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		ch := cs.Changes[p]
		fmt.Printf("%s->%s %s\n", ch.Old.Kind, ch.New.Kind, p)
	}
	fmt.Printf("%d changes\n", len(cs.Changes))

	if c.out != "" {
		if err := snap.SaveChangeset(fsys, c.out, cs); err != nil {
			return err
		}
	}
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
