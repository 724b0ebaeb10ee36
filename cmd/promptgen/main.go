package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := newRootCmd(&runtime{})
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd(rt *runtime) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "promptgen",
		Short: "Turn prompt templates into forms and prompts",
		Long: `promptgen reads prompt templates containing placeholders such as
{{field "number" "Lines"}} or {{topic}}, builds a form for them and
renders the finished prompt from the submitted values.

Run "promptgen serve" for the web interface or use the terminal
commands below. Settings come from the environment (STORE_DRIVER,
TEMPLATES_SOURCE, ...); the flags override the common ones.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rt.flags.templatesDir, "templates-dir", "", "read built-in templates from this directory")
	flags.StringVar(&rt.flags.storeDriver, "store", "", "store driver: memory, file, redis or postgres")
	flags.StringVar(&rt.flags.storeDSN, "store-dsn", "", "store file path or connection URL")
	flags.StringVar(&rt.flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.BoolVar(&rt.flags.noEscape, "no-escape", false, "keep HTML characters in values as typed in the prompt")

	rootCmd.AddCommand(
		serveCmd(rt),
		listCmd(rt),
		fieldsCmd(rt),
		composeCmd(rt),
		renderCmd(rt),
		fillCmd(rt),
		addCmd(rt),
		deleteCmd(rt),
		versionCmd(),
	)
	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "promptgen %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
