// Command opc records options positions and reports their results.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/opcoes/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
)

func main() {
	name := path.Base(os.Args[0])
	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	// exits when invoked by the shell to complete a command line
	complete.Complete(name, cmd.Completion(commander))

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
