package compare

import (
	"flag"
	"fmt"

	"github.com/keshon/fsnap/internal/cli"
	"github.com/keshon/fsnap/internal/fs"
	"github.com/keshon/fsnap/internal/middleware"
	"github.com/keshon/fsnap/internal/progress"
	snap "github.com/keshon/fsnap/internal/snapshot"
)

type Command struct {
	root string
	in   string
}

func (c *Command) Name() string      { return "compare" }
func (c *Command) Aliases() []string { return []string{"cmp"} }
func (c *Command) Usage() string     { return "compare -root <dir> -in <snapshot>" }
func (c *Command) Brief() string     { return "Quick size-only check of a tree against a snapshot" }

func (c *Command) Help() string {
	return `Walk a tree recording only file sizes and report what diverges
from a stored snapshot: extra files, missing files, and size changes.
No content is hashed, so same-size edits go unnoticed.

Options:
  -root <dir>   Directory to check (default ".")
  -in <file>    Snapshot to compare against
`
}

func (c *Command) Flags(fset *flag.FlagSet) {
	fset.StringVar(&c.root, "root", ".", "directory to check")
	fset.StringVar(&c.in, "in", "", "snapshot to compare against")
}

func (c *Command) Run(ctx *cli.Context) error {
	if c.in == "" {
		return fmt.Errorf("missing -in")
	}
	fsys := fs.NewOSFS()

	s, err := snap.Load(fsys, c.in)
	if err != nil {
		return err
	}

	fmt.Println("Collecting folder info")
	bar := progress.NewProgress(0, "Comparing")
	cmp := snap.QuickCompare(fsys, c.root, s, bar.Sink())
	bar.Finish()

	printSection("Extra files:", cmp.Extra)
	printSection("Missing files:", cmp.Missing)
	printSection("Different files:", cmp.Different)
	return nil
}

func printSection(title string, items []string) {
	fmt.Println(title)
	if len(items) == 0 {
		fmt.Println("    Not found.")
		return
	}
	for _, p := range items {
		fmt.Println("    " + p)
	}
}

func init() {
	cli.RegisterCommand(
		cli.ApplyMiddlewares(
			&Command{},
			middleware.WithDebugArgsPrint(),
		),
	)
}
