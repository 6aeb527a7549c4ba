package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jstall/jstall/utils"
)

var validateCmd = &cobra.Command{
	Use:   "validate [thread-dump-file]",
	Short: "Check that a file parses as a thread dump",
	Long: `validate parses a single jstack/jcmd thread dump file and reports
its thread count, source format, any JVM-confirmed deadlocks, and any parse
warnings (thread states the parser did not recognize and degraded to
RUNNABLE). Other malformed lines are not counted or reported. Use this to
sanity-check a capture before running "jstall analyze" on it.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: utils.CompleteFilesByExtension([]string{".txt", ".log"}, true),
	RunE: func(cmd *cobra.Command, args []string) error {
		dumps, err := loadDumps(args)
		if err != nil {
			return err
		}
		d := dumps[0]

		fmt.Printf("%s: %d threads, source=%s\n", args[0], len(d.Threads), d.Source)
		if len(d.Deadlocks) > 0 {
			fmt.Printf("  %d confirmed deadlock(s)\n", len(d.Deadlocks))
		}
		if len(d.Warnings) > 0 {
			fmt.Printf("  %d warning(s):\n", len(d.Warnings))
			for _, w := range d.Warnings {
				fmt.Printf("    - %s\n", w)
			}
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
