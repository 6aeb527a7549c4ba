// Package javaproc discovers candidate pids for `jstall watch` to attach
// to: jstall only needs a pid and a label to show the user, so discovery
// stays a thin jps/ps scrape with no JMX handshake.
package javaproc

import (
	"bufio"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Process is one discovered Java process.
type Process struct {
	PID       int
	MainClass string
	User      string
}

// Discover finds running Java processes, preferring jps and falling back
// to ps when jps isn't on PATH.
func Discover() ([]*Process, error) {
	if processes, err := discoverWithJPS(); err == nil {
		return processes, nil
	}
	return discoverWithPS()
}

func discoverWithJPS() ([]*Process, error) {
	cmd := exec.Command("jps", "-l")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run jps: %w (ensure Java development tools are installed)", err)
	}

	var processes []*Process
	scanner := bufio.NewScanner(strings.NewReader(string(output)))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, " ", 2)
		if len(parts) < 2 {
			continue
		}

		pid, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}

		mainClass := strings.TrimSuffix(parts[1], ".jar")
		if strings.Contains(mainClass, "sun.tools.jps.Jps") {
			continue
		}

		process := &Process{PID: pid, MainClass: mainClass}
		getProcessUser(process)
		processes = append(processes, process)
	}

	return processes, nil
}

func discoverWithPS() ([]*Process, error) {
	cmd := exec.Command("ps", "aux")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run ps: %w", err)
	}

	var processes []*Process
	scanner := bufio.NewScanner(strings.NewReader(string(output)))

	if scanner.Scan() {
		// header
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.Contains(line, "java") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 11 {
			continue
		}

		pid, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}

		user := fields[0]
		cmdLineStart := strings.Index(line, "java")
		if cmdLineStart == -1 {
			continue
		}

		mainClass := extractMainClassFromCmdLine(line[cmdLineStart:])
		processes = append(processes, &Process{PID: pid, MainClass: mainClass, User: user})
	}

	return processes, nil
}

func extractMainClassFromCmdLine(cmdLine string) string {
	parts := strings.Fields(cmdLine)

	for i, part := range parts {
		if strings.HasSuffix(part, "java") && i+1 < len(parts) {
			for j := i + 1; j < len(parts); j++ {
				if !strings.HasPrefix(parts[j], "-") {
					return strings.TrimSuffix(parts[j], ".jar")
				}
			}
		}
	}

	return "Unknown"
}

func getProcessUser(process *Process) {
	cmd := exec.Command("ps", "-o", "user=", "-p", strconv.Itoa(process.PID))
	output, err := cmd.Output()
	if err != nil {
		process.User = "unknown"
		return
	}

	user := strings.TrimSpace(string(output))
	if user != "" {
		process.User = user
	} else {
		process.User = "unknown"
	}
}
