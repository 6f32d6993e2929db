// Package base holds what every couchctl command shares.
package base

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/pkg/errors"

	"github.com/sofa-go/couchdb"
	"github.com/sofa-go/couchdb/internal/config"
)

// Command is embedded by every command.
type Command struct {
	Log hclog.Logger
	UI  cli.Ui

	// HTTPClient, if set, is used by clients built with NewClient.
	HTTPClient *http.Client

	flagConfig string
}

// NewFlagSet returns a flag set for the named command, with the flags common
// to all commands already defined.
func (c *Command) NewFlagSet(name string) *FlagSet {
	f := NewFlagSet(flag.NewFlagSet(name, flag.ContinueOnError))
	f.SetOutput(io.Discard)
	f.StringVar(
		&c.flagConfig, "config", "",
		"Path to an HCL configuration file. Settings may also come from the "+
			config.EnvURL+", "+config.EnvDatabase+" and "+config.EnvLogLevel+
			" environment variables.",
	)
	return f
}

// NewClient loads the configuration and returns a client for it. The
// command's logger is set to the configured level.
func (c *Command) NewClient() (*couchdb.Client, error) {
	cfg, err := config.Load(c.flagConfig)
	if err != nil {
		return nil, err
	}
	c.Log.SetLevel(cfg.Level())
	client, err := couchdb.New(cfg.Client(), &couchdb.Options{
		Logger:      c.Log,
		HTTPClient:  c.HTTPClient,
		RawEnvelope: cfg.RawEnvelope,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error creating client")
	}
	if auth := cfg.Authenticator(); auth != nil {
		if err := client.Authenticate(auth); err != nil {
			return nil, errors.Wrap(err, "error configuring authentication")
		}
	}
	c.Log.Debug("client ready", "database", cfg.Database)
	return client, nil
}

// Context returns the context for a command's requests. At trace level,
// every request and response is logged. Call it after NewClient, which sets
// the level.
func (c *Command) Context() context.Context {
	return couchdb.WithTraceLog(context.Background(), c.Log.Named("trace"))
}

// OutputJSON writes v to the UI as indented JSON.
func (c *Command) OutputJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	c.UI.Output(string(out))
	return nil
}

// Fail reports err and returns the exit status for it.
func (c *Command) Fail(err error) int {
	c.UI.Error(fmt.Sprintf("error: %v", err))
	if couchdb.KindOf(err) == couchdb.KindArgument {
		return 2
	}
	return 1
}

// FlagSet wraps a flag.FlagSet to render its flags for command help.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet wraps f.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	return &FlagSet{FlagSet: f}
}

// Help returns the flag usage, formatted for inclusion in a command's help
// text.
func (f *FlagSet) Help() string {
	var b strings.Builder
	b.WriteString("\n\nOptions:\n")
	f.VisitAll(func(fl *flag.Flag) {
		fmt.Fprintf(&b, "\n  -%s", fl.Name)
		if fl.DefValue != "" {
			fmt.Fprintf(&b, "=%s", fl.DefValue)
		}
		fmt.Fprintf(&b, "\n    %s\n", fl.Usage)
	})
	return b.String()
}
