package cli

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/sslmotion/config"
	"go.viam.com/sslmotion/logging"
)

func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

func warningf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, "Warning: "+format+"\n", a...)
}

const (
	metaLogAppender = "logAppender"
	metaLogCloser   = "logCloser"
	maxLogFileMB    = 10
)

func openLogFile(c *cli.Context) error {
	delete(c.App.Metadata, metaLogAppender)
	delete(c.App.Metadata, metaLogCloser)
	path := c.String(flagLog)
	if path == "" {
		return nil
	}
	appender, closer := logging.NewFileAppender(path, maxLogFileMB)
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata[metaLogAppender] = appender
	c.App.Metadata[metaLogCloser] = closer
	return nil
}

func closeLogFile(c *cli.Context) error {
	closer, ok := c.App.Metadata[metaLogCloser].(io.Closer)
	if !ok {
		return nil
	}
	delete(c.App.Metadata, metaLogAppender)
	delete(c.App.Metadata, metaLogCloser)
	return closer.Close()
}

func newLogger(c *cli.Context) logging.Logger {
	logger := logging.NewLogger("sslmotion")
	if c.Bool(flagDebug) {
		logger = logging.NewDebugLogger("sslmotion")
	}
	if appender, ok := c.App.Metadata[metaLogAppender].(logging.Appender); ok {
		logger.AddAppender(appender)
	}
	return logger
}

// loadConfig reads the --config file, or returns the defaults when none is given.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String(flagConfig)
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// singleArg returns the only positional argument of the command.
func singleArg(c *cli.Context, what string) (string, error) {
	if c.NArg() != 1 {
		return "", errors.Errorf("expected exactly one %s argument, got %d", what, c.NArg())
	}
	return c.Args().First(), nil
}

// loadInputs reads the configuration and the scenario named on the command line.
func loadInputs(c *cli.Context) (*config.Config, *Scenario, error) {
	path, err := singleArg(c, "scenario")
	if err != nil {
		return nil, nil, err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	sc, err := LoadScenario(path)
	if err != nil {
		return nil, nil, err
	}
	return cfg, sc, nil
}
