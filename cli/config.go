package cli

import (
	"encoding/json"

	"github.com/urfave/cli/v2"

	"go.viam.com/sslmotion/config"
)

// DefaultsAction prints the default configuration as JSON.
func DefaultsAction(c *cli.Context) error {
	data, err := config.MarshalIndent(config.Default())
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", data)
	return nil
}

// SchemaAction prints the JSON schema of configuration files.
func SchemaAction(c *cli.Context) error {
	data, err := json.MarshalIndent(config.Schema(), "", "  ")
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", data)
	return nil
}

// ValidateAction loads a configuration file and reports every problem with it.
func ValidateAction(c *cli.Context) error {
	path, err := singleArg(c, "configuration")
	if err != nil {
		return err
	}
	if _, err := config.Load(path); err != nil {
		return err
	}
	printf(c.App.Writer, "%s is valid", path)
	return nil
}
