// Command promptcraft composes, validates and exports prompts from the command
// line, and maintains a local prompt library.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/scrypster/promptcraft/internal/logger"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries the state shared by all subcommands.
type cli struct {
	in       io.Reader
	out      io.Writer
	logLevel string
}

func (c *cli) logger() (*logger.Logger, error) {
	return logger.New("development", c.logLevel)
}

// readInput reads path, or stdin when path is "-".
func (c *cli) readInput(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("--file is required")
	}
	if path == "-" {
		return io.ReadAll(c.in)
	}
	return os.ReadFile(path)
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{in: in, out: out}

	root := &cobra.Command{
		Use:   "promptcraft",
		Short: "Compose, validate and export AI prompts",
		Long: `promptcraft builds prompts from a base instruction, an optional framework
and a set of enhancements.

Commands:
  promptcraft compose   Compose a prompt from an input file
  promptcraft validate  Validate an input file
  promptcraft parse     Parse a verbalized-sampling model response
  promptcraft export    Render a template document
  promptcraft import    Check a template document
  promptcraft library   Import a directory of Markdown prompts
  promptcraft backup    Back up or restore the local database`,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		SilenceUsage:      true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().StringVar(&c.logLevel, "log", "warn", "Log level: debug, info, warn, error")

	root.AddCommand(
		c.composeCmd(),
		c.validateCmd(),
		c.parseCmd(),
		c.exportCmd(),
		c.importCmd(),
		c.libraryCmd(),
		c.backupCmd(),
	)
	return root
}
