// Package cmd is the couchctl command line.
package cmd

import (
	"bufio"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/sofa-go/couchdb"
	"github.com/sofa-go/couchdb/internal/cmd/base"
	"github.com/sofa-go/couchdb/internal/cmd/commands"
)

// Main runs the CLI with the given arguments and returns the exit code.
func Main(args []string) int {
	cliName := args[0]

	log := hclog.New(&hclog.LoggerOptions{
		Name:   cliName,
		Output: os.Stderr,
	})

	if len(args) == 2 &&
		(args[1] == "-version" ||
			args[1] == "-v") {
		args = []string{cliName, "--version"}
	}

	ui := &cli.BasicUi{
		Reader:      bufio.NewReader(os.Stdin),
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}

	return run(cliName, args[1:], &base.Command{Log: log, UI: ui})
}

func run(name string, args []string, b *base.Command) int {
	c := &cli.CLI{
		Name:     name,
		Args:     args,
		Version:  couchdb.Version,
		Commands: commands.Factories(b),
		HelpWriter: uiWriter{
			ui: b.UI,
		},
	}

	exitCode, err := c.Run()
	if err != nil {
		b.UI.Error(err.Error())
		return 1
	}
	return exitCode
}

// uiWriter sends CLI help output through the UI.
type uiWriter struct {
	ui cli.Ui
}

func (w uiWriter) Write(p []byte) (int, error) {
	w.ui.Output(string(p))
	return len(p), nil
}
