package update

import (
	"flag"
	"fmt"

	"github.com/keshon/fsnap/internal/cli"
	"github.com/keshon/fsnap/internal/fs"
	"github.com/keshon/fsnap/internal/middleware"
	"github.com/keshon/fsnap/internal/progress"
	snap "github.com/keshon/fsnap/internal/snapshot"
	"github.com/keshon/fsnap/internal/util"
)

type Command struct {
	root    string
	in      string
	out     string
	changes string
	workers int
}

func (c *Command) Name() string      { return "update" }
func (c *Command) Aliases() []string { return []string{"up"} }
func (c *Command) Usage() string {
	return "update -root <dir> -in <old-snapshot> -out <new-snapshot> -changes <changeset>"
}
func (c *Command) Brief() string { return "Refresh a snapshot and write the changeset" }

func (c *Command) Help() string {
	return `Rescan a tree against an existing snapshot and write both the
refreshed snapshot and the changeset between the two.

Files whose path and size match the old snapshot keep their fingerprint
without being re-read. Same-size in-place edits are therefore not
detected; take a fresh snapshot when that matters.

Options:
  -root <dir>        Directory to rescan (default ".")
  -in <file>         Previous snapshot
  -out <file>        Refreshed snapshot to write
  -changes <file>    Changeset to write
  -workers <n>       Scan top-level subtrees with n workers
`
}

func (c *Command) Flags(fset *flag.FlagSet) {
	fset.StringVar(&c.root, "root", ".", "directory to rescan")
	fset.StringVar(&c.in, "in", "", "previous snapshot")
	fset.StringVar(&c.out, "out", "", "refreshed snapshot to write")
	fset.StringVar(&c.changes, "changes", "", "changeset to write")
	fset.IntVar(&c.workers, "workers", 1, "top-level scan workers")
}

func (c *Command) Run(ctx *cli.Context) error {
	if c.in == "" || c.out == "" || c.changes == "" {
		return fmt.Errorf("missing -in, -out or -changes")
	}
	fsys := fs.NewOSFS()

	oldSnap, err := snap.Load(fsys, c.in)
	if err != nil {
		return err
	}

	fmt.Println("Computing folder total size...")
	total := util.DirSize(fsys, c.root)

	bar := progress.NewProgress(total, "Rescanning")
	newSnap, err := snap.Scan(fsys, c.root, snap.ScanOptions{
		Previous: oldSnap,
		Progress: bar.Sink(),
		Workers:  c.workers,
	})
	bar.Finish()
	if err != nil {
		return err
	}

	cs := snap.Diff(oldSnap, newSnap)

	if err := snap.Save(fsys, c.out, newSnap); err != nil {
		return err
	}
	if err := snap.SaveChangeset(fsys, c.changes, cs); err != nil {
		return err
	}
	fmt.Printf("%d entries, %d changed -> %s, %s\n",
		len(newSnap.Entries), len(cs.Changes), c.out, c.changes)
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
