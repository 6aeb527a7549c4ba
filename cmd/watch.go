package cmd

import (
	"fmt"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jstall/jstall/internal/analysiscontext"
	"github.com/jstall/jstall/internal/javaproc"
	"github.com/jstall/jstall/internal/jstackproc"
	"github.com/jstall/jstall/internal/livetui"
)

var (
	watchInterval time.Duration
	watchUseJcmd  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [pid]",
	Short: "Attach to a running JVM and watch its stall verdict live",
	Long: `watch repeatedly captures thread dumps from a running JVM via jstack
(or jcmd with --jcmd), feeding each capture into a fresh analysis and
rendering the running Stall Verdict and thread-count trend until a
deadlock is confirmed or you quit. With no pid, lists discovered Java
processes to choose from.

Examples:
  jstall watch                  # list discovered Java processes
  jstall watch 1234             # attach to pid 1234, sample every 5s
  jstall watch 1234 -i 2s        # sample every 2 seconds
  jstall watch 1234 --jcmd       # use jcmd Thread.print instead of jstack`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return listJavaProcesses()
		}

		pid, err := strconv.Atoi(args[0])
		if err != nil || pid <= 0 {
			return fmt.Errorf("invalid pid: %s", args[0])
		}

		if !jstackproc.ProcessExists(pid) {
			return fmt.Errorf("no process with pid %d", pid)
		}

		capturer := &jstackproc.Capturer{UseJcmd: watchUseJcmd}
		model := livetui.NewModel(pid, watchInterval, capturer.Capture, analysiscontext.DefaultOptions())

		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("watch TUI error: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVarP(&watchInterval, "interval", "i", 5*time.Second, "sampling interval")
	watchCmd.Flags().BoolVar(&watchUseJcmd, "jcmd", false, "use jcmd Thread.print instead of jstack")
}

func listJavaProcesses() error {
	processes, err := javaproc.Discover()
	if err != nil {
		return fmt.Errorf("discovering Java processes: %w", err)
	}
	if len(processes) == 0 {
		fmt.Println("no running Java processes found")
		return nil
	}

	fmt.Println("Discovered Java processes (use: jstall watch <pid>):")
	for _, p := range processes {
		fmt.Printf("  %-8d %-10s %s\n", p.PID, p.User, p.MainClass)
	}
	return nil
}
