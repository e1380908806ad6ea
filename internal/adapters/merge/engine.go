// Package merge runs the external merge tool as a subprocess.
package merge

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.MergeEngine = (*Engine)(nil)

// WorkspaceEnv names the variable holding the absolute workspace path.
const WorkspaceEnv = "PACKSMITH_WORKSPACE"

const (
	// maxStderr bounds how much of the tool's error stream is kept.
	maxStderr = 64 << 10

	// waitDelay bounds how long output is drained after the tool is killed.
	waitDelay = 5 * time.Second
)

// allowListedEnvVars are inherited from the server environment.
var allowListedEnvVars = map[string]struct{}{
	"HOME":       {},
	"LANG":       {},
	"PATH":       {},
	"PYTHONPATH": {},
	"TERM":       {},
	"USER":       {},
}

// Engine runs the configured command once per merge. The command receives the request
// id, the mode and the platform version as its last three arguments and runs in the
// parent directory of the workspace root, so "<root>/<request id>" is its workspace.
type Engine struct {
	command []string
	timeout time.Duration
	logger  ports.Logger
	// usePTY streams stdout through a pseudo-terminal so the tool line-buffers.
	usePTY bool
}

// NewEngine creates an Engine. A zero timeout leaves runs unbounded.
func NewEngine(command []string, timeout time.Duration, logger ports.Logger) *Engine {
	return &Engine{
		command: command,
		timeout: timeout,
		logger:  logger,
		usePTY:  true,
	}
}

// Run merges every archive in the invocation's workspace.
func (e *Engine) Run(ctx context.Context, inv domain.MergeInvocation) (domain.ExitResult, error) {
	if len(e.command) == 0 {
		return domain.ExitResult{}, zerr.Wrap(domain.ErrMergeFailed, "no merge command configured")
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	wsDir, err := filepath.Abs(inv.Workspace.Dir)
	if err != nil {
		return domain.ExitResult{}, zerr.Wrap(err, domain.ErrMergeFailed.Error())
	}

	args := append(append([]string{}, e.command[1:]...), inv.Workspace.ID.String(), string(inv.Mode), inv.PlatformVersion)
	cmd := exec.CommandContext(ctx, e.command[0], args...) //nolint:gosec // operator configured command
	cmd.Dir = filepath.Dir(filepath.Dir(wsDir))
	cmd.Env = append(filterEnv(os.Environ()), WorkspaceEnv+"="+wsDir)

	stderr := &limitedBuffer{limit: maxStderr}
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay
	stdout := &logWriter{logger: e.logger, prefix: "merge " + inv.Workspace.ID.String() + ": "}

	var runErr error
	proc, err := e.start(cmd, stdout)
	if err == nil {
		runErr = proc.Wait()
	} else {
		runErr = err
	}
	_ = stdout.Close()

	result := domain.ExitResult{Stderr: strings.TrimSpace(stderr.String())}
	if runErr == nil {
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, zerr.With(zerr.Wrap(ctxErr, domain.ErrMergeFailed.Error()), "request_id", inv.Workspace.ID.String())
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	return result, zerr.With(zerr.Wrap(runErr, domain.ErrMergeFailed.Error()), "command", e.command[0])
}

type process struct {
	cmd    *exec.Cmd
	ioDone <-chan struct{}
}

// Wait waits for the command to exit and its output to drain.
func (p *process) Wait() error {
	err := p.cmd.Wait()
	if p.ioDone != nil {
		<-p.ioDone
	}
	return err
}

// start launches cmd with stdout on a pseudo-terminal, falling back to a pipe when
// no terminal can be allocated.
func (e *Engine) start(cmd *exec.Cmd, stdout io.Writer) (*process, error) {
	if e.usePTY {
		ptmx, tty, err := pty.Open()
		if err == nil {
			cmd.Stdout = tty
			startErr := cmd.Start()
			// The child holds its own copy; the read loop ends once it exits.
			_ = tty.Close()
			if startErr != nil {
				_ = ptmx.Close()
				return nil, startErr
			}

			ioDone := make(chan struct{})
			go func() {
				defer close(ioDone)
				defer func() { _ = ptmx.Close() }()
				_, _ = io.Copy(stdout, ptmx)
			}()
			return &process{cmd: cmd, ioDone: ioDone}, nil
		}
		e.logger.Warn("no pseudo-terminal available, reading merge output through a pipe")
	}

	cmd.Stdout = stdout
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &process{cmd: cmd}, nil
}

func filterEnv(sysEnv []string) []string {
	env := make([]string, 0, len(allowListedEnvVars)+1)
	for _, entry := range sysEnv {
		k, _, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, allowed := allowListedEnvVars[k]; allowed {
			env = append(env, entry)
		}
	}
	return env
}

// logWriter turns the tool's output into one Info line per line written.
type logWriter struct {
	logger ports.Logger
	prefix string
	mu     sync.Mutex
	buf    []byte
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *logWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	// PTYs translate newlines to CRLF.
	msg := strings.TrimRight(string(line), "\r")
	if msg == "" {
		return
	}
	w.logger.Info(w.prefix + msg)
}

// limitedBuffer keeps the first limit bytes written to it and discards the rest.
type limitedBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
