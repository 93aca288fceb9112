package commands

import "github.com/urfave/cli/v3"

const (
	appUsage       = "Keep markdown task lists and task trees in sync"
	appDescription = `marksync converts between markdown checklists and JSON task trees.

Headers ("### Section") group tasks, bullets ("- [ ] task") nest by
indentation, and a trailing "due:YYYY-MM-DD" sets a due date.

Run 'marksync watch' to keep a markdown file and a JSON tree in sync.`
)

// NewRoot builds the marksync root command with its global flags bound to
// flags and every subcommand registered. Callers attach Before/After hooks.
func NewRoot(flags *Flags) *cli.Command {
	root := &cli.Command{
		Name:                  "marksync",
		Usage:                 appUsage,
		UsageText:             "marksync [global options] command [command options]",
		Description:           appDescription,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("MARKSYNC_LOG_LEVEL"),
				Value:       "warn",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to stderr)",
				Sources:     cli.EnvVars("MARKSYNC_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("MARKSYNC_CONFIG"),
				Value:       DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
		},
	}

	root = NewParseCmd(flags).Register(root)
	root = NewExportCmd(flags).Register(root)
	root = NewFmtCmd(flags).Register(root)
	root = NewMergeCmd(flags).Register(root)
	root = NewDueCmd(flags).Register(root)
	root = NewWatchCmd(flags).Register(root)
	root = NewConfigCmd(flags).Register(root)
	root = NewDoctorCmd(flags).Register(root)

	return root
}

// ToleratesInvalidConfig reports whether the named subcommand reports config
// problems itself and can run without a loaded config.
func ToleratesInvalidConfig(name string) bool {
	return name == "config" || name == "doctor"
}
