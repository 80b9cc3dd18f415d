package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"ytfeed/lib/telemetry"

	"github.com/spf13/cobra"
)

// errNotDone is returned by a command whose mutation was answered but not
// applied, the message has already been printed.
var errNotDone = errors.New("not done")

var rootFlags struct {
	config  string
	cookies string
	dumpDir string
	debug   bool
}

var rootCmd = &cobra.Command{
	Use:           "ytfeed",
	Short:         "ytfeed lists and clears the watch history and playlists of a signed in account.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(rootFlags.debug)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootFlags.config, "config", defaultConfigPath, "The config file to read.")
	flags.StringVar(&rootFlags.cookies, "cookies", "", "A Netscape cookies.txt file, overrides the config file.")
	flags.StringVar(&rootFlags.dumpDir, "dump-dir", "", "Write every request and response to this directory.")
	flags.BoolVarP(&rootFlags.debug, "debug", "d", false, "Enable debug logging.")
}

// ExecuteContext runs the command line and returns the exit code.
func ExecuteContext(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if errors.Is(err, errNotDone) {
		return 1
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// notDone prints message and returns errNotDone when ok is false.
func notDone(ok bool, message string) error {
	if ok {
		return nil
	}
	fmt.Fprintln(os.Stderr, message)
	return errNotDone
}
