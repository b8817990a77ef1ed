package xspec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-xspec/fit"
)

// ErrInteractiveQuery is returned for query policies that would make XSPEC
// wait for an answer on stdin.
var ErrInteractiveQuery = errors.New("xspec: interactive query prompts are not supported")

// Engine implements fit.Engine over an XSPEC Tcl interpreter.
type Engine struct {
	conn *Conn
	log  zerolog.Logger

	method     string
	iterations int

	cmd   *exec.Cmd
	stdin io.Closer
}

var _ fit.Engine = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger logs every command at trace level and replies at debug.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// NewEngine returns an Engine speaking over c.
func NewEngine(c *Conn, opts ...Option) *Engine {
	e := &Engine{conn: c, log: zerolog.Nop(), method: "chi", iterations: 100}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Start launches binary (normally "xspec") and returns an Engine talking
// to it. The process is killed when ctx is done.
func Start(ctx context.Context, binary string, args []string, opts ...Option) (*Engine, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("xspec: stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("xspec: stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("xspec: start %s: %w", binary, err)
	}

	e := NewEngine(NewConn(stdout, stdin), opts...)
	e.cmd = cmd
	e.stdin = stdin

	// Quiet console output; replies are framed by the sentinel.
	if err := e.exec("chatter 0 0"); err != nil {
		_ = e.Close()
		return nil, err
	}
	return e, nil
}

// Close ends the interpreter started by Start. It is a no-op for engines
// built with NewEngine.
func (e *Engine) Close() error {
	if e.cmd == nil {
		return nil
	}
	_, _ = io.WriteString(e.conn.w, "exit\n")
	err := e.stdin.Close()
	if werr := e.cmd.Wait(); werr != nil {
		var exitErr *exec.ExitError
		if !errors.As(werr, &exitErr) {
			err = errors.Join(err, werr)
		}
	}
	e.cmd = nil
	return err
}

func (e *Engine) exec(cmd string) error {
	e.log.Trace().Str("cmd", cmd).Msg("xspec")
	lines, err := e.conn.Exec(cmd)
	if len(lines) > 0 {
		e.log.Debug().Str("cmd", cmd).Strs("reply", lines).Msg("xspec")
	}
	return err
}

func (e *Engine) tclout(query string) (string, error) {
	v, err := e.conn.Tclout(query)
	e.log.Trace().Str("tclout", query).Str("value", v).Msg("xspec")
	return v, err
}

// LoadData loads spectra, e.g. "1:1 spectrum.fits".
func (e *Engine) LoadData(spec string) error {
	return e.exec("data " + spec)
}

// Response assigns a response matrix to spectrum n.
func (e *Engine) Response(n int, file string) error {
	return e.exec(fmt.Sprintf("response %d %s", n, file))
}

// SetAbundance selects the solar abundance table, e.g. "felc".
func (e *Engine) SetAbundance(table string) error { return e.exec("abund " + table) }

// SetStatMethod selects the fit statistic and records it for Perform.
func (e *Engine) SetStatMethod(method string) error {
	if err := e.exec("statistic " + method); err != nil {
		return err
	}
	e.method = method
	return nil
}

// SetQuery sets how XSPEC answers "continue fitting?" when a fit runs out
// of iterations. Policy "on" asks on stdin, which cannot be answered over
// the command pipe, and is rejected with ErrInteractiveQuery.
func (e *Engine) SetQuery(policy string) error {
	if policy == "on" {
		return fmt.Errorf("%w: query %s", ErrInteractiveQuery, policy)
	}
	return e.exec("query " + policy)
}

// SetIterations sets the iteration budget used by later Perform calls.
// XSPEC takes it as the argument of the fit command.
func (e *Engine) SetIterations(n int) error {
	if n <= 0 {
		return fmt.Errorf("xspec: iterations %d", n)
	}
	e.iterations = n
	return nil
}

// ClearModels removes every defined model.
func (e *Engine) ClearModels() error { return e.exec("model clear") }

// NewModel defines expr with default parameter values and reads back its
// component layout.
func (e *Engine) NewModel(expr string) (fit.Model, error) {
	if err := e.exec("model " + expr + " & /*"); err != nil {
		return nil, err
	}
	return e.describe(expr)
}

// Ignore excludes energy ranges in XSPEC syntax, e.g. "0.-2 10-**".
func (e *Engine) Ignore(ranges string) error { return e.exec("ignore " + ranges) }

// NoticeAll restores every channel.
func (e *Engine) NoticeAll() error { return e.exec("notice all") }

// Renorm rescales the model normalisations to the data.
func (e *Engine) Renorm() error { return e.exec("renorm") }

// Perform runs "fit <iterations>" and reads back the statistic, the
// degrees of freedom and the null hypothesis probability.
func (e *Engine) Perform() (fit.Statistic, error) {
	if err := e.exec(fmt.Sprintf("fit %d", e.iterations)); err != nil {
		return fit.Statistic{}, err
	}

	st := fit.Statistic{Method: e.method}

	v, err := e.tclout("stat")
	if err != nil {
		return st, err
	}
	if st.Value, err = parseFloat(v); err != nil {
		return st, fmt.Errorf("xspec: stat %q: %w", v, err)
	}

	v, err = e.tclout("dof")
	if err != nil {
		return st, err
	}
	if st.DOF, err = strconv.Atoi(firstField(v)); err != nil {
		return st, fmt.Errorf("xspec: dof %q: %w", v, err)
	}

	v, err = e.tclout("nullhyp")
	if err != nil {
		return st, err
	}
	if st.NullHyp, err = parseFloat(v); err != nil {
		return st, fmt.Errorf("xspec: nullhyp %q: %w", v, err)
	}

	return st, nil
}

func firstField(s string) string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(firstField(s), 64)
}
