package cli

import "flag"

// Command represents a cli command
type Command interface {
	Name() string
	Aliases() []string
	Usage() string
	Brief() string
	Help() string
	Flags(fs *flag.FlagSet)
	Run(ctx *Context) error
}

// Context represents a cli context
type Context struct {
	Args  []string
	Flags *flag.FlagSet
}
