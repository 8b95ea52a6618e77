package apply

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	applier "github.com/keshon/fsnap/internal/apply"
	"github.com/keshon/fsnap/internal/cli"
	"github.com/keshon/fsnap/internal/fs"
	"github.com/keshon/fsnap/internal/middleware"
	"github.com/keshon/fsnap/internal/progress"
	snap "github.com/keshon/fsnap/internal/snapshot"
)

type Command struct {
	from    string
	to      string
	changes string
	mask    string
}

func (c *Command) Name() string      { return "apply" }
func (c *Command) Aliases() []string { return []string{"copy"} }
func (c *Command) Usage() string {
	return "apply -changes <changeset> -from <source-dir> -to <dest-dir> [-mask <octal>]"
}
func (c *Command) Brief() string { return "Apply a changeset to a tree, pulling content from another" }

func (c *Command) Help() string {
	return `Bring the destination tree to the changeset's new state, copying
new file content from the source tree.

Every path is verified against the state the changeset expects before
anything destructive happens; diverged content is renamed to a .bak
sibling, never discarded. Re-running after an interruption is safe.

Exit status 2 means the run completed but some paths diverged and were
backed up; inspect the printed log lines.

Options:
  -changes <file>   Changeset to apply
  -from <dir>       Tree new content is copied from
  -to <dir>         Tree the changeset is applied to
  -mask <octal>     Permission mask applied to every touched path
`
}

func (c *Command) Flags(fset *flag.FlagSet) {
	fset.StringVar(&c.changes, "changes", "", "changeset to apply")
	fset.StringVar(&c.from, "from", "", "source tree")
	fset.StringVar(&c.to, "to", "", "destination tree")
	fset.StringVar(&c.mask, "mask", "", "octal permission mask")
}

func (c *Command) Run(ctx *cli.Context) error {
	if c.changes == "" || c.from == "" || c.to == "" {
		return fmt.Errorf("missing -changes, -from or -to")
	}
	fsys := fs.NewOSFS()

	cs, err := snap.LoadChangeset(fsys, c.changes)
	if err != nil {
		return err
	}

	opts := applier.Options{FS: fsys, Source: c.from, Dest: c.to}

	if c.mask != "" {
		parsed, err := strconv.ParseUint(c.mask, 8, 32)
		if err != nil {
			return fmt.Errorf("bad -mask %q: %w", c.mask, err)
		}
		mode := os.FileMode(parsed)
		opts.Mask = &mode
	}

	// size the bar by the bytes apply will copy
	var total int64
	for _, ch := range cs.Changes {
		if ch.New.Kind == snap.File {
			total += ch.New.Size
		}
	}
	bar := progress.NewProgress(total, "Applying")
	opts.Progress = bar.Sink()

	log, err := applier.Apply(cs, opts)
	bar.Finish()
	if err != nil {
		return err
	}

	for _, r := range log.Records {
		fmt.Println(r)
	}
	fmt.Printf("%d paths, %d conflicts, %d skipped\n",
		len(log.Records), log.Conflicts(), log.Skipped())

	if log.HasConflicts() {
		return applier.ErrConflicts
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
