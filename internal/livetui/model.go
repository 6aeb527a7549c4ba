package livetui

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jstall/jstall/internal/analysis"
	"github.com/jstall/jstall/internal/analysiscontext"
	"github.com/jstall/jstall/internal/dump"
)

// CaptureFunc and ProcessExistsFunc mirror the sampler package's
// collaborator contracts so the dashboard can drive the same capture loop
// interactively instead of blocking until a final verdict.
type CaptureFunc func(ctx context.Context, pid int) (*dump.ThreadDump, error)
type ProcessExistsFunc func(pid int) bool

// Model is the bubbletea model for `jstall watch`.
type Model struct {
	pid      int
	interval time.Duration
	capture  CaptureFunc
	opts     analysiscontext.AnalysisOptions

	width, height int

	dumps        []*dump.ThreadDump
	threadCounts []float64
	verdict      *analysis.VerdictResult
	err          error

	startTime time.Time
	lastTick  time.Time
	ticks     int64
	quitting  bool

	help help.Model
}

// NewModel builds the initial dashboard state. opts defaults to
// analysiscontext.DefaultOptions() when zero-valued.
func NewModel(pid int, interval time.Duration, capture CaptureFunc, opts analysiscontext.AnalysisOptions) *Model {
	if reflect.DeepEqual(opts, analysiscontext.AnalysisOptions{}) {
		opts = analysiscontext.DefaultOptions()
	}
	return &Model{
		pid:       pid,
		interval:  interval,
		capture:   capture,
		opts:      opts,
		startTime: time.Now(),
		help:      help.New(),
	}
}

type tickMsg time.Time

type captureResultMsg struct {
	d   *dump.ThreadDump
	err error
}

func (m *Model) scheduleTick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func triggerImmediateCapture(m *Model) tea.Cmd {
	return func() tea.Msg {
		d, err := m.capture(context.Background(), m.pid)
		return captureResultMsg{d: d, err: err}
	}
}

func (m *Model) Init() tea.Cmd {
	return triggerImmediateCapture(m)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		return m, triggerImmediateCapture(m)

	case captureResultMsg:
		m.lastTick = time.Now()
		m.ticks++
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.err = nil
		m.dumps = append(m.dumps, msg.d)
		m.threadCounts = append(m.threadCounts, float64(len(msg.d.Threads)))
		m.recomputeVerdict()

		if m.verdict != nil && m.verdict.Verdict == analysis.VerdictDeadlock {
			m.quitting = true
			return m, tea.Quit
		}

		return m, m.scheduleTick()
	}

	return m, nil
}

func (m *Model) recomputeVerdict() {
	if len(m.dumps) < 1 {
		return
	}
	ctx, err := analysiscontext.New(m.dumps, m.opts)
	if err != nil {
		m.err = err
		return
	}
	m.verdict = analysis.AnalyzeVerdict(ctx)
}

func (m *Model) title() string {
	return fmt.Sprintf("jstall watch — pid %d", m.pid)
}
