// Package hooks runs the pre_install and post_install command lists of a
// dotfile and fingerprints them so they run only when they change.
package hooks

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"io"
	"os"
	"os/exec"

	"github.com/dob9601/jointhedots/pkg/errors"
	"github.com/dob9601/jointhedots/pkg/logging"
)

var log = logging.GetLogger("hooks")

// Runner executes an ordered list of shell commands
type Runner interface {
	Run(ctx context.Context, commands []string) error
}

// StepReporter is told about each command before it runs
type StepReporter interface {
	Step(n int, command string)
}

// ShellRunner runs each command with `sh -c`, one at a time, with the
// process's standard streams attached
type ShellRunner struct {
	Shell    string
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Reporter StepReporter
}

// NewShellRunner returns a ShellRunner attached to the terminal
func NewShellRunner(reporter StepReporter) *ShellRunner {
	return &ShellRunner{
		Shell:    "sh",
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Reporter: reporter,
	}
}

// Run executes commands in order and stops at the first failure
func (r *ShellRunner) Run(ctx context.Context, commands []string) error {
	shell := r.Shell
	if shell == "" {
		shell = "sh"
	}

	for i, command := range commands {
		if r.Reporter != nil {
			r.Reporter.Step(i, command)
		}
		log.Debug().Int("step", i).Str("command", command).Msg("Running hook")

		cmd := exec.CommandContext(ctx, shell, "-c", command)
		cmd.Stdin = r.Stdin
		cmd.Stdout = r.Stdout
		cmd.Stderr = r.Stderr

		if err := cmd.Run(); err != nil {
			return errors.Wrapf(err, errors.ErrHookExecution, "step #%d failed: %s", i, command).
				WithDetails(map[string]interface{}{"step": i, "command": command})
		}
	}
	return nil
}

// Hash fingerprints a command list. Each command is length-prefixed so
// that reordering, splitting or editing commands all change the result.
// An empty list hashes to "".
func Hash(commands []string) string {
	if len(commands) == 0 {
		return ""
	}

	h := sha1.New()
	var size [8]byte
	for _, c := range commands {
		binary.BigEndian.PutUint64(size[:], uint64(len(c)))
		h.Write(size[:])
		h.Write([]byte(c))
	}
	return hex.EncodeToString(h.Sum(nil))
}
