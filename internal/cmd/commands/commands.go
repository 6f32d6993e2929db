// Package commands implements the couchctl subcommands.
package commands

import (
	"github.com/mitchellh/cli"

	"github.com/sofa-go/couchdb/internal/cmd/base"
)

// Factories returns the command factories, keyed by subcommand name.
func Factories(b *base.Command) map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"create-db": func() (cli.Command, error) {
			return &CreateDBCommand{Command: b}, nil
		},
		"delete-db": func() (cli.Command, error) {
			return &DeleteDBCommand{Command: b}, nil
		},
		"get": func() (cli.Command, error) {
			return &GetCommand{Command: b}, nil
		},
		"rev": func() (cli.Command, error) {
			return &RevCommand{Command: b}, nil
		},
		"put": func() (cli.Command, error) {
			return &PutCommand{Command: b}, nil
		},
		"update": func() (cli.Command, error) {
			return &UpdateCommand{Command: b}, nil
		},
		"delete": func() (cli.Command, error) {
			return &DeleteCommand{Command: b}, nil
		},
		"append-field": func() (cli.Command, error) {
			return &AppendFieldCommand{Command: b}, nil
		},
		"info": func() (cli.Command, error) {
			return &InfoCommand{Command: b}, nil
		},
	}
}
