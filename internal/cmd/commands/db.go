package commands

import (
	"github.com/mitchellh/cli"

	"github.com/sofa-go/couchdb/internal/cmd/base"
)

// CreateDBCommand creates the configured database.
type CreateDBCommand struct {
	*base.Command
}

func (c *CreateDBCommand) Synopsis() string {
	return "Create the database"
}

func (c *CreateDBCommand) Help() string {
	return `Usage: couchctl create-db [options]

  Creates the configured database.` + c.NewFlagSet("create-db").Help()
}

func (c *CreateDBCommand) Run(args []string) int {
	flags := c.NewFlagSet("create-db")
	if err := flags.Parse(args); err != nil {
		c.UI.Error(err.Error())
		return cli.RunResultHelp
	}
	client, err := c.NewClient()
	if err != nil {
		return c.Fail(err)
	}
	var result map[string]interface{}
	if err := client.CreateDB(c.Context(), &result); err != nil {
		return c.Fail(err)
	}
	if err := c.OutputJSON(result); err != nil {
		return c.Fail(err)
	}
	return 0
}

// DeleteDBCommand deletes the configured database.
type DeleteDBCommand struct {
	*base.Command

	flagForce bool
}

func (c *DeleteDBCommand) Synopsis() string {
	return "Delete the database and all its documents"
}

func (c *DeleteDBCommand) flags() *base.FlagSet {
	f := c.NewFlagSet("delete-db")
	f.BoolVar(&c.flagForce, "force", false, "Do not fail if the database does not exist.")
	return f
}

func (c *DeleteDBCommand) Help() string {
	return `Usage: couchctl delete-db [options]

  Deletes the configured database and every document in it.` + c.flags().Help()
}

func (c *DeleteDBCommand) Run(args []string) int {
	flags := c.flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(err.Error())
		return cli.RunResultHelp
	}
	client, err := c.NewClient()
	if err != nil {
		return c.Fail(err)
	}
	ctx := c.Context()
	if c.flagForce {
		exists, err := client.DBExists(ctx)
		if err != nil {
			return c.Fail(err)
		}
		if !exists {
			c.Log.Info("database does not exist", "database", client.Config().Database)
			return 0
		}
	}
	var result map[string]interface{}
	if err := client.DestroyDB(ctx, &result); err != nil {
		return c.Fail(err)
	}
	if err := c.OutputJSON(result); err != nil {
		return c.Fail(err)
	}
	return 0
}

// InfoCommand prints server and database status.
type InfoCommand struct {
	*base.Command
}

func (c *InfoCommand) Synopsis() string {
	return "Print server version and database status"
}

func (c *InfoCommand) Help() string {
	return `Usage: couchctl info [options]

  Checks that the server is up, and prints its version and whether the
  configured database exists.` + c.NewFlagSet("info").Help()
}

func (c *InfoCommand) Run(args []string) int {
	flags := c.NewFlagSet("info")
	if err := flags.Parse(args); err != nil {
		c.UI.Error(err.Error())
		return cli.RunResultHelp
	}
	client, err := c.NewClient()
	if err != nil {
		return c.Fail(err)
	}
	ctx := c.Context()
	up, err := client.Ping(ctx)
	if err != nil {
		return c.Fail(err)
	}
	if !up {
		c.UI.Error("server is not up")
		return 1
	}
	info, err := client.ServerInfo(ctx)
	if err != nil {
		return c.Fail(err)
	}
	exists, err := client.DBExists(ctx)
	if err != nil {
		return c.Fail(err)
	}
	out := map[string]interface{}{
		"version":  info.Version,
		"vendor":   info.Vendor,
		"database": client.Config().Database,
		"exists":   exists,
	}
	if err := c.OutputJSON(out); err != nil {
		return c.Fail(err)
	}
	return 0
}
