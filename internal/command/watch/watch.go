package watch

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/keshon/fsnap/internal/cli"
	"github.com/keshon/fsnap/internal/fs"
	"github.com/keshon/fsnap/internal/middleware"
	snap "github.com/keshon/fsnap/internal/snapshot"
	"github.com/keshon/fsnap/internal/watch"
)

type Command struct {
	root     string
	out      string
	debounce time.Duration
}

func (c *Command) Name() string      { return "watch" }
func (c *Command) Aliases() []string { return nil }
func (c *Command) Usage() string     { return "watch -root <dir> [-out <snapshot>]" }
func (c *Command) Brief() string     { return "Keep a snapshot current as a tree changes" }

func (c *Command) Help() string {
	return `Watch a tree and rescan after each debounced burst of filesystem
events, printing the resulting transitions. With -out, the refreshed
snapshot is rewritten after every burst. Stop with Ctrl-C.

Options:
  -root <dir>        Directory to watch (default ".")
  -out <file>        Snapshot file to keep updated
  -debounce <dur>    Quiet period before a rescan (default 250ms)
`
}

func (c *Command) Flags(fset *flag.FlagSet) {
	fset.StringVar(&c.root, "root", ".", "directory to watch")
	fset.StringVar(&c.out, "out", "", "snapshot file to keep updated")
	fset.DurationVar(&c.debounce, "debounce", 250*time.Millisecond, "quiet period before a rescan")
}

func (c *Command) Run(ctx *cli.Context) error {
	w, err := watch.New(watch.Config{Root: c.root, Debounce: c.debounce})
	if err != nil {
		return err
	}
	w.Start()
	defer w.Stop()

	fsys := fs.NewOSFS()
	if c.out != "" {
		if err := snap.Save(fsys, c.out, w.Current()); err != nil {
			return err
		}
	}
	fmt.Printf("Watching %q (%d entries)\n", c.root, len(w.Current().Entries))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-sig:
			fmt.Println("\nStopped")
			return nil

		case ev := <-w.Events():
			paths := make([]string, 0, len(ev.Changes.Changes))
			for p := range ev.Changes.Changes {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			for _, p := range paths {
				ch := ev.Changes.Changes[p]
				fmt.Printf("%s %s->%s %s\n",
					ev.Snapshot.Time.Format(time.TimeOnly), ch.Old.Kind, ch.New.Kind, p)
			}
			if c.out != "" {
				if err := snap.Save(fsys, c.out, ev.Snapshot); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: save %q: %v\n", c.out, err)
				}
			}
		}
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
