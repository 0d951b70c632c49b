package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/buildcache/buildcache/cmd"
	"github.com/buildcache/buildcache/pkg/config"
)

var (
	statsJSONFlag bool
	statsZeroFlag bool
)

func newStatsCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "stats",
		Short: "Print cache statistics",
		Args:  cmd.DisallowArguments,
		Run: cmd.Mainify(func(*cobra.Command, []string) error {
			if statsZeroFlag {
				return runZeroStats()
			}
			return runStats()
		}),
	}
	command.Flags().BoolVar(&statsJSONFlag, "json", false, "print statistics as JSON")
	command.Flags().BoolVarP(&statsZeroFlag, "zero", "z", false, "reset statistics to zero instead of printing them")
	return command
}

func newClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cache entries, keeping the stats ledger",
		Args:  cmd.DisallowArguments,
		Run:   cmd.Mainify(func(*cobra.Command, []string) error { return runClear() }),
	}
}

func newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cmd.DisallowArguments,
		Run:   cmd.Mainify(func(*cobra.Command, []string) error { return runGetConfig() }),
	}
}

func newHousekeepCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "housekeep",
		Short: "Run an eviction sweep now",
		Args:  cmd.DisallowArguments,
		Run:   cmd.Mainify(func(*cobra.Command, []string) error { return runHousekeep() }),
	}
}

func runStats() error {
	env, err := openEnvironment(configFlagValue)
	if err != nil {
		return err
	}
	defer env.Close()

	stats, err := env.Store.Stats()
	if err != nil {
		return fmt.Errorf("unable to read stats ledger: %w", err)
	}

	if statsJSONFlag {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("unable to encode stats: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	bold := color.New(color.Bold)
	printRow := func(label string, value interface{}) {
		bold.Fprintf(os.Stdout, "%-22s", label+":")
		fmt.Fprintln(os.Stdout, value)
	}

	printRow("Total size", config.FormatSize(stats.TotalBytes))
	printRow("Entries", stats.EntryCount)
	printRow("Hits (direct)", stats.HitsDirect)
	printRow("Hits (preprocessed)", stats.HitsPreprocessed)
	printRow("Hits (remote)", stats.HitsRemote)
	printRow("Misses", stats.Misses)
	printRow("Evictions", stats.Evictions)

	return nil
}

func runZeroStats() error {
	env, err := openEnvironment(configFlagValue)
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.Store.ZeroStats(); err != nil {
		return fmt.Errorf("unable to zero stats ledger: %w", err)
	}
	return nil
}

func runClear() error {
	env, err := openEnvironment(configFlagValue)
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.Store.Clear(); err != nil {
		return fmt.Errorf("unable to clear store: %w", err)
	}
	return nil
}
