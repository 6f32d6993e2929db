package commands

import (
	"github.com/mitchellh/cli"

	"github.com/sofa-go/couchdb"
	"github.com/sofa-go/couchdb/internal/cmd/base"
)

// record is a named list of fields, keyed by the hash of its name.
type record struct {
	couchdb.Doc
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

func (r *record) DeriveID() string { return couchdb.HashID(r.Name) }

// AppendFieldCommand appends a field to a named record.
type AppendFieldCommand struct {
	*base.Command

	flagCreate bool
}

func (c *AppendFieldCommand) Synopsis() string {
	return "Append a field to a named record"
}

func (c *AppendFieldCommand) flags() *base.FlagSet {
	f := c.NewFlagSet("append-field")
	f.BoolVar(&c.flagCreate, "create", false, "Create the record if it does not exist.")
	return f
}

func (c *AppendFieldCommand) Help() string {
	return `Usage: couchctl append-field [options] <name> <field>

  Fetches the record called <name>, whose ID is derived from the name, appends
  <field> to its fields and writes it back.` + c.flags().Help()
}

func (c *AppendFieldCommand) Run(args []string) int {
	flags := c.flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(err.Error())
		return cli.RunResultHelp
	}
	if flags.NArg() != 2 {
		c.UI.Error("expected a name and a field")
		return cli.RunResultHelp
	}
	name, field := flags.Arg(0), flags.Arg(1)
	client, err := c.NewClient()
	if err != nil {
		return c.Fail(err)
	}
	ctx := c.Context()

	rec := &record{Name: name}
	id := rec.DeriveID()
	err = client.Fetch(ctx, id, rec)
	switch {
	case couchdb.IsNotFound(err) && c.flagCreate:
		c.Log.Info("creating record", "name", name, "id", id)
		rec = &record{Doc: couchdb.Doc{ID: id}, Name: name}
	case err != nil:
		return c.Fail(err)
	}
	rec.Fields = append(rec.Fields, field)

	var result couchdb.Result
	if err := client.Save(ctx, rec, &result); err != nil {
		return c.Fail(err)
	}
	c.Log.Debug("appended field", "id", result.ID, "rev", result.Rev)
	if err := c.OutputJSON(result); err != nil {
		return c.Fail(err)
	}
	return 0
}
