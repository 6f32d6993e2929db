package commands

import (
	"encoding/json"

	"github.com/mitchellh/cli"
	"github.com/pkg/errors"

	"github.com/sofa-go/couchdb"
	"github.com/sofa-go/couchdb/internal/cmd/base"
)

// jsonDoc is a free-form document, as given on the command line.
type jsonDoc map[string]interface{}

var _ couchdb.Document = jsonDoc{}

func (d jsonDoc) DeriveID() string { return "" }

func (d jsonDoc) DocID() string {
	id, _ := d["_id"].(string)
	return id
}

func (d jsonDoc) DocRev() string {
	rev, _ := d["_rev"].(string)
	return rev
}

func (d jsonDoc) SetDocRev(rev string) { d["_rev"] = rev }

func parseDoc(arg string) (jsonDoc, error) {
	var doc jsonDoc
	if err := json.Unmarshal([]byte(arg), &doc); err != nil {
		return nil, errors.Wrap(err, "invalid document")
	}
	if doc == nil {
		return nil, errors.New("invalid document: not an object")
	}
	return doc, nil
}

// GetCommand prints a document.
type GetCommand struct {
	*base.Command
}

func (c *GetCommand) Synopsis() string {
	return "Print a document"
}

func (c *GetCommand) Help() string {
	return `Usage: couchctl get [options] <id>

  Fetches the document with the given ID and prints it.` + c.NewFlagSet("get").Help()
}

func (c *GetCommand) Run(args []string) int {
	flags := c.NewFlagSet("get")
	if err := flags.Parse(args); err != nil {
		c.UI.Error(err.Error())
		return cli.RunResultHelp
	}
	if flags.NArg() != 1 {
		c.UI.Error("expected exactly one document ID")
		return cli.RunResultHelp
	}
	client, err := c.NewClient()
	if err != nil {
		return c.Fail(err)
	}
	var doc json.RawMessage
	if err := client.Fetch(c.Context(), flags.Arg(0), &doc); err != nil {
		return c.Fail(err)
	}
	if err := c.OutputJSON(doc); err != nil {
		return c.Fail(err)
	}
	return 0
}

// RevCommand prints the current revision of a document.
type RevCommand struct {
	*base.Command
}

func (c *RevCommand) Synopsis() string {
	return "Print the current revision of a document"
}

func (c *RevCommand) Help() string {
	return `Usage: couchctl rev [options] <id>

  Prints the current revision of the document with the given ID, without
  fetching its body.` + c.NewFlagSet("rev").Help()
}

func (c *RevCommand) Run(args []string) int {
	flags := c.NewFlagSet("rev")
	if err := flags.Parse(args); err != nil {
		c.UI.Error(err.Error())
		return cli.RunResultHelp
	}
	if flags.NArg() != 1 {
		c.UI.Error("expected exactly one document ID")
		return cli.RunResultHelp
	}
	client, err := c.NewClient()
	if err != nil {
		return c.Fail(err)
	}
	rev, err := client.Rev(c.Context(), flags.Arg(0))
	if err != nil {
		return c.Fail(err)
	}
	c.UI.Output(rev)
	return 0
}

// PutCommand posts a document without revision handling.
type PutCommand struct {
	*base.Command
}

func (c *PutCommand) Synopsis() string {
	return "Post a new document"
}

func (c *PutCommand) Help() string {
	return `Usage: couchctl put [options] <json>

  Posts the given JSON document as is. A document without an _id is
  assigned one by the server.` + c.NewFlagSet("put").Help()
}

func (c *PutCommand) Run(args []string) int {
	flags := c.NewFlagSet("put")
	if err := flags.Parse(args); err != nil {
		c.UI.Error(err.Error())
		return cli.RunResultHelp
	}
	if flags.NArg() != 1 {
		c.UI.Error("expected exactly one JSON document")
		return cli.RunResultHelp
	}
	doc, err := parseDoc(flags.Arg(0))
	if err != nil {
		return c.Fail(err)
	}
	client, err := c.NewClient()
	if err != nil {
		return c.Fail(err)
	}
	var result couchdb.Result
	if err := client.Put(c.Context(), doc, &result); err != nil {
		return c.Fail(err)
	}
	if err := c.OutputJSON(result); err != nil {
		return c.Fail(err)
	}
	return 0
}

// UpdateCommand writes a document over its current revision.
type UpdateCommand struct {
	*base.Command

	flagCreate bool
}

func (c *UpdateCommand) Synopsis() string {
	return "Update a document"
}

func (c *UpdateCommand) flags() *base.FlagSet {
	f := c.NewFlagSet("update")
	f.BoolVar(&c.flagCreate, "create", false, "Create the document if it does not exist.")
	return f
}

func (c *UpdateCommand) Help() string {
	return `Usage: couchctl update [options] <json>

  Writes the given JSON document, which must have an _id. If it has no
  _rev, the current revision is looked up first.` + c.flags().Help()
}

func (c *UpdateCommand) Run(args []string) int {
	flags := c.flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(err.Error())
		return cli.RunResultHelp
	}
	if flags.NArg() != 1 {
		c.UI.Error("expected exactly one JSON document")
		return cli.RunResultHelp
	}
	doc, err := parseDoc(flags.Arg(0))
	if err != nil {
		return c.Fail(err)
	}
	client, err := c.NewClient()
	if err != nil {
		return c.Fail(err)
	}
	write := client.Update
	if c.flagCreate {
		write = client.Save
	}
	var result couchdb.Result
	if err := write(c.Context(), doc, &result); err != nil {
		return c.Fail(err)
	}
	if err := c.OutputJSON(result); err != nil {
		return c.Fail(err)
	}
	return 0
}

// DeleteCommand deletes a document.
type DeleteCommand struct {
	*base.Command

	flagRev string
}

func (c *DeleteCommand) Synopsis() string {
	return "Delete a document"
}

func (c *DeleteCommand) flags() *base.FlagSet {
	f := c.NewFlagSet("delete")
	f.StringVar(&c.flagRev, "rev", "", "Revision to delete. Defaults to the current one.")
	return f
}

func (c *DeleteCommand) Help() string {
	return `Usage: couchctl delete [options] <id>

  Deletes the document with the given ID.` + c.flags().Help()
}

func (c *DeleteCommand) Run(args []string) int {
	flags := c.flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(err.Error())
		return cli.RunResultHelp
	}
	if flags.NArg() != 1 {
		c.UI.Error("expected exactly one document ID")
		return cli.RunResultHelp
	}
	client, err := c.NewClient()
	if err != nil {
		return c.Fail(err)
	}
	ctx := c.Context()
	id := flags.Arg(0)
	var result couchdb.Result
	if c.flagRev != "" {
		err = client.Delete(ctx, jsonDoc{"_id": id, "_rev": c.flagRev}, &result)
	} else {
		err = client.DeleteByID(ctx, id, &result)
	}
	if err != nil {
		return c.Fail(err)
	}
	if err := c.OutputJSON(result); err != nil {
		return c.Fail(err)
	}
	return 0
}
