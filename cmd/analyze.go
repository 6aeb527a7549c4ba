package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jstall/jstall/internal/analysis"
	"github.com/jstall/jstall/internal/analysiscontext"
	"github.com/jstall/jstall/internal/dump"
	"github.com/jstall/jstall/utils"
)

var (
	includeDaemon bool
	includeGC     bool
	includeVM     bool
	ignorePattern []string
	focusPattern  []string
	detailed      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [thread-dump-file ...]",
	Short: "Parse one or more thread dumps and print a stall verdict",
	Long: `analyze parses one or more jstack/jcmd thread dump files, correlates them
across captures, and prints a Stall Verdict: OK, SUSPECTED_STALL, or DEADLOCK.

Multiple files are treated as a time-ordered sequence of captures of the
same JVM, enabling progress, churn, and contention analysis across dumps.

Examples:
  jstall analyze dump.txt                  # single-capture analysis
  jstall analyze dump1.txt dump2.txt        # progress across two captures
  jstall analyze --detailed dump.txt        # print every analyzer's findings`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: utils.CompleteFilesByExtension([]string{".txt", ".log"}, true),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := analysiscontext.DefaultOptions()
		opts.IncludeDaemon = includeDaemon
		opts.IncludeGC = includeGC
		opts.IncludeVM = includeVM
		opts.IgnorePatterns = ignorePattern
		opts.FocusPatterns = focusPattern

		dumps, err := loadDumps(args)
		if err != nil {
			return err
		}

		ctx, err := analysiscontext.New(dumps, opts)
		if err != nil {
			return fmt.Errorf("invalid options: %w", err)
		}

		verdict := analysis.AnalyzeVerdict(ctx)
		printVerdict(verdict)

		if detailed {
			printDetailed(ctx)
		}

		for _, w := range ctx.Warnings() {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}

		os.Exit(verdict.ExitCode())
		return nil
	},
}

func loadDumps(paths []string) ([]*dump.ThreadDump, error) {
	dumps := make([]*dump.ThreadDump, 0, len(paths))
	for _, path := range paths {
		text, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		d, err := dump.Parse(string(text))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		dumps = append(dumps, d)
	}
	return dumps, nil
}

func verdictSeverity(v analysis.Verdict) string {
	switch v {
	case analysis.VerdictDeadlock, analysis.VerdictError:
		return "critical"
	case analysis.VerdictSuspectedStall:
		return "warning"
	default:
		return "good"
	}
}

func printVerdict(v *analysis.VerdictResult) {
	severity := verdictSeverity(v.Verdict)
	line := fmt.Sprintf("%s Verdict: %s (%s)", utils.GetSeverityIcon(severity), v.Verdict, v.Confidence)
	fmt.Println(utils.GetSeverityStyle(severity).Render(line))
	for _, r := range v.Reasons {
		fmt.Printf("  - %s\n", utils.SanitizeString(r))
	}
}

func printDetailed(ctx *analysiscontext.AnalysisContext) {
	deadlocks := analysis.AnalyzeDeadlocks(ctx)
	fmt.Printf("\nDeadlocks: %d (severity %s)\n", len(deadlocks.Deadlocks), deadlocks.Severity)

	contention := analysis.AnalyzeContention(ctx)
	fmt.Printf("Contended locks: %d (%d long-held)\n", contention.TotalContendedLocks, contention.LongHeldCount)

	stackGroups := analysis.AnalyzeStackGroups(ctx)
	fmt.Printf("Stack groups: %d\n", len(stackGroups.Groups))
	for _, g := range stackGroups.Groups {
		label := "<empty stack>"
		if len(g.Stack) > 0 {
			label = g.Stack[0].Class + "." + g.Stack[0].Method
		}
		fmt.Printf("  %d threads at %s\n", len(g.Threads), label)
	}

	if ctx.DumpCount() >= 2 {
		progress := analysis.AnalyzeProgress(ctx)
		fmt.Printf("Progress: %d active, %d no-progress, %d blocked, %d stuck, %d ignored\n",
			progress.Summary.Active, progress.Summary.NoProgress, progress.Summary.Blocked,
			progress.Summary.Stuck, progress.Summary.Ignored)

		churn := analysis.AnalyzeChurn(ctx)
		if churn.IsValid() {
			fmt.Printf("Thread churn: %d -> %d (net %+d) %s, potential leak: %v, high churn: %v\n",
				churn.FirstCount, churn.LastCount, churn.NetGrowth, utils.GetTrendIcon(churn.TrendSlope), churn.PotentialLeak, churn.HighChurn)
		}
	}

	gcActivity := analysis.AnalyzeGCActivity(ctx)
	for i, a := range gcActivity.PerDump {
		bar := utils.CreateProgressBar(a.GCCPUPercentage, 20, utils.InfoColor)
		fmt.Printf("Dump %d GC activity: %d threads %s %.1f%% of total CPU\n", i, a.GCThreadCount, bar, a.GCCPUPercentage*100)
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&includeDaemon, "include-daemon", false, "include daemon threads in analysis")
	analyzeCmd.Flags().BoolVar(&includeGC, "include-gc", false, "include GC threads in analysis")
	analyzeCmd.Flags().BoolVar(&includeVM, "include-vm", false, "include VM-internal threads in analysis")
	analyzeCmd.Flags().StringSliceVar(&ignorePattern, "ignore", nil, "regex of thread names to exclude")
	analyzeCmd.Flags().StringSliceVar(&focusPattern, "focus", nil, "regex of thread names to exclusively include")
	analyzeCmd.Flags().BoolVar(&detailed, "detailed", false, "print every analyzer's findings, not just the verdict")
}
