// Package jstackproc implements the dump-capture collaborator (spec §6):
// invoking jstack/jcmd against a live pid and handing the combined output to
// the parser, suitable for wiring as a sampler.CaptureFunc.
package jstackproc

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"syscall"
	"time"

	"github.com/jstall/jstall/internal/dump"
	"github.com/jstall/jstall/internal/jstallerr"
	"github.com/sirupsen/logrus"
)

// DefaultCaptureTimeout is the hard per-capture subprocess timeout (spec §5).
const DefaultCaptureTimeout = 30 * time.Second

// Capturer invokes jstack or jcmd against a pid and parses the result. The
// zero value uses jstack -l and logrus's standard logger.
type Capturer struct {
	Log            logrus.FieldLogger
	UseJcmd        bool
	CaptureTimeout time.Duration
}

// Capture runs the configured subprocess, enforcing CaptureTimeout (or
// DefaultCaptureTimeout) against ctx, and parses its combined output.
func (c *Capturer) Capture(ctx context.Context, pid int) (*dump.ThreadDump, error) {
	timeout := c.CaptureTimeout
	if timeout <= 0 {
		timeout = DefaultCaptureTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	name, args := c.command(pid)
	cmd := exec.CommandContext(callCtx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if callCtx.Err() == context.DeadlineExceeded {
		return nil, jstallerr.New(jstallerr.CaptureTimeout, fmt.Sprintf("%s timed out after %s for pid %d", name, timeout, pid))
	}
	if ctx.Err() == context.Canceled {
		return nil, jstallerr.New(jstallerr.CaptureInterrupted, fmt.Sprintf("capture for pid %d interrupted", pid))
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, jstallerr.Wrap(jstallerr.CaptureNonzeroExit,
				fmt.Sprintf("%s exited %d for pid %d", name, exitErr.ExitCode(), pid), err)
		}
		return nil, jstallerr.Wrap(jstallerr.CaptureProcessNotFound, fmt.Sprintf("failed to run %s for pid %d", name, pid), err)
	}

	log := c.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return dump.ParseWithLogger(out.String(), log)
}

func (c *Capturer) command(pid int) (string, []string) {
	pidStr := strconv.Itoa(pid)
	if c.UseJcmd {
		return "jcmd", []string{pidStr, "Thread.print", "-l"}
	}
	return "jstack", []string{"-l", pidStr}
}

// ProcessExists probes whether pid refers to a live process by sending the
// null signal (spec §6's processExists(pid) -> bool probe).
func ProcessExists(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, syscall.Signal(0))
	return err == nil
}
