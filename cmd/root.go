package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jstall",
	Short: "Diagnose stalled JVMs from thread dumps",
	Long: `jstall parses and correlates Java thread dumps to answer "why is this
application stalled?" — deadlocks, lack of progress, lock contention, stack
clusters, and thread churn. Run "jstall completion --help" for shell
completion setup.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func GetRootCmd() *cobra.Command {
	return rootCmd
}
