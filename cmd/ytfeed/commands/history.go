package commands

import (
	"github.com/spf13/cobra"
)

var clearHistoryAll bool

var clearHistoryCmd = &cobra.Command{
	Use:   "clear-history [--all]",
	Short: "Removes every watch history entry, or clears it in one call with --all.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if clearHistoryAll {
			ok, err := client.ClearHistoryAll(cmd.Context())
			if err != nil {
				return err
			}
			return notDone(ok, "Failed to clear history. It may already be empty.")
		}
		ok, err := client.ClearHistory(cmd.Context())
		if err != nil {
			return err
		}
		return notDone(ok, "Some history entries were not removed.")
	},
}

var toggleHistoryCmd = &cobra.Command{
	Use:   "toggle-history",
	Short: "Pauses or resumes the watch history.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		ok, err := client.ToggleHistory(cmd.Context())
		if err != nil {
			return err
		}
		return notDone(ok, "Failed to toggle watch history.")
	},
}

var printHistoryOutput outputFlags

var printHistoryCmd = &cobra.Command{
	Use:   "print-history [--json|--table]",
	Short: "Prints the watch history, most recent first.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return printHistory(cmd.Context(), client, printHistoryOutput)
	},
}

var removeHistoryEntriesCmd = &cobra.Command{
	Use:   "remove-history-entries VIDEO_ID...",
	Short: "Removes the watch history entries of the given videos.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		ok, err := client.RemoveHistoryEntries(cmd.Context(), args)
		if err != nil {
			return err
		}
		return notDone(ok, "Failed to remove the history entries.")
	},
}

func init() {
	clearHistoryCmd.Flags().BoolVar(&clearHistoryAll, "all", false, "Clear the whole history with a single call.")
	printHistoryOutput.register(printHistoryCmd)

	rootCmd.AddCommand(clearHistoryCmd)
	rootCmd.AddCommand(toggleHistoryCmd)
	rootCmd.AddCommand(printHistoryCmd)
	rootCmd.AddCommand(removeHistoryEntriesCmd)
}
