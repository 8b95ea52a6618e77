package snapshot

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
	out     string
	mmap    bool
	workers int
}

func (c *Command) Name() string      { return "snapshot" }
func (c *Command) Aliases() []string { return []string{"snap"} }
func (c *Command) Usage() string     { return "snapshot -root <dir> -out <file>" }
func (c *Command) Brief() string     { return "Take a content-fingerprinted snapshot of a tree" }

func (c *Command) Help() string {
	return `Walk a directory tree and write a flattened snapshot: every file
and directory keyed by relative path, files carrying size and xxh3
fingerprint.

Options:
  -root <dir>     Directory to snapshot (default ".")
  -out <file>     Snapshot file to write, .json or .json.gz
  -mmap           Hash files through a memory map
  -workers <n>    Scan top-level subtrees with n workers
`
}

func (c *Command) Flags(fset *flag.FlagSet) {
	fset.StringVar(&c.root, "root", ".", "directory to snapshot")
	fset.StringVar(&c.out, "out", "", "snapshot file to write")
	fset.BoolVar(&c.mmap, "mmap", false, "hash files through a memory map")
	fset.IntVar(&c.workers, "workers", 1, "top-level scan workers")
}

func (c *Command) Run(ctx *cli.Context) error {
	if c.out == "" {
		return fmt.Errorf("missing -out")
	}
	fsys := fs.NewOSFS()

	fmt.Println("Computing folder total size...")
	total := util.DirSize(fsys, c.root)

	bar := progress.NewProgress(total, "Snapshotting")
	s, err := snap.Scan(fsys, c.root, snap.ScanOptions{
		Progress: bar.Sink(),
		Mmap:     c.mmap,
		Workers:  c.workers,
	})
	bar.Finish()
	if err != nil {
		return err
	}

	if err := snap.Save(fsys, c.out, s); err != nil {
		return err
	}
	fmt.Printf("Snapshot of %q: %d entries -> %s\n", c.root, len(s.Entries), c.out)
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
