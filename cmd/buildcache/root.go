package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/buildcache/buildcache/pkg/buildcache"
	"github.com/buildcache/buildcache/pkg/housekeeping"
)

// configFlagValue holds the --config flag shared by every subcommand. It
// takes precedence over BUILDCACHE_CONFIG and the default path.
var configFlagValue string

// legacyFlagActions maps the front-end binary's legacy single-token flag
// aliases to the subcommand each is shorthand for, so `buildcache -s` and
// `buildcache stats` behave identically.
var legacyFlagActions = map[string]func() error{
	"--show-stats": runStats,
	"-s":           runStats,
	"--zero-stats": runZeroStats,
	"-z":           runZeroStats,
	"--clear":      runClear,
	"-C":           runClear,
	"--get-config": runGetConfig,
	"-c":           runGetConfig,
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "buildcache <tool> [args...]",
		Short:         "A transparent compiler invocation cache",
		Version:       buildcache.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.ArbitraryArgs,
		// Flag parsing is disabled so that a wrapped tool's own flags
		// (many of which collide with common Cobra/POSIX conventions,
		// e.g. "-c") are never intercepted by the root command; they're
		// forwarded to the tool untouched.
		DisableFlagParsing: true,
		RunE:               runRoot,
	}

	root.PersistentFlags().StringVar(&configFlagValue, "config", "", "path to the configuration file")

	root.AddCommand(newStatsCommand())
	root.AddCommand(newClearCommand())
	root.AddCommand(newConfigCommand())
	root.AddCommand(newHousekeepCommand())

	return root
}

// runRoot implements the root command's default behavior: either a legacy
// single-token front-end flag, or an ordinary `buildcache <tool>
// [args...]` cached invocation.
func runRoot(root *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("no tool specified; see `buildcache --help`")
	}

	if args[0] == "--help" || args[0] == "-h" {
		return root.Help()
	}
	if args[0] == "--version" {
		fmt.Fprintln(os.Stdout, buildcache.Version)
		return nil
	}
	if action, ok := legacyFlagActions[args[0]]; ok {
		return action()
	}

	code, err := runInvocation(args[0], args[1:])
	if err != nil {
		return err
	}
	os.Exit(code)
	return nil
}

func runGetConfig() error {
	env, err := openEnvironment(configFlagValue)
	if err != nil {
		return err
	}
	defer env.Close()

	data, err := env.Config.Marshal()
	if err != nil {
		return fmt.Errorf("unable to render configuration: %w", err)
	}
	os.Stdout.Write(data)
	return nil
}

func runHousekeep() error {
	env, err := openEnvironment(configFlagValue)
	if err != nil {
		return err
	}
	defer env.Close()

	housekeeping.Housekeep(env.Store, env.Config.SizeCap, env.Logger)
	return nil
}
