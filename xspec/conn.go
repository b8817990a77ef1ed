package xspec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Sentinel ends the reply to every command.
const Sentinel = "__xspecfit_done__"

var (
	// ErrCommand is returned when the interpreter reports a Tcl error.
	ErrCommand = errors.New("xspec: command failed")
	// ErrClosed is returned when the interpreter output ended.
	ErrClosed = errors.New("xspec: connection closed")
)

// Conn is a line-oriented connection to an XSPEC Tcl interpreter. Each
// command is wrapped in catch and followed by a sentinel line, so replies
// can be framed without parsing XSPEC's chatter.
type Conn struct {
	mu sync.Mutex
	r  *bufio.Reader
	w  io.Writer
}

// NewConn wraps the interpreter's stdout (r) and stdin (w).
func NewConn(r io.Reader, w io.Writer) *Conn {
	return &Conn{r: bufio.NewReader(r), w: w}
}

// wrap frames cmd so that the interpreter always ends its reply with a
// sentinel line carrying OK or ERR and the Tcl error message.
func wrap(cmd string) string {
	return fmt.Sprintf(
		"if {[catch {%s} xspecfit_err]} {puts \"%s ERR $xspecfit_err\"} else {puts \"%s OK\"}\n",
		cmd, Sentinel, Sentinel)
}

// Exec runs cmd and returns the lines it printed.
func (c *Conn) Exec(cmd string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.ContainsAny(cmd, "\n\r") {
		return nil, fmt.Errorf("%w: multi-line command %q", ErrCommand, cmd)
	}
	if _, err := io.WriteString(c.w, wrap(cmd)); err != nil {
		return nil, fmt.Errorf("xspec: write %q: %w", cmd, err)
	}

	var out []string
	for {
		line, err := c.r.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")

		if head, status, ok := splitSentinel(line); ok {
			if head != "" {
				out = append(out, head)
			}
			if msg, failed := strings.CutPrefix(status, "ERR"); failed {
				return out, fmt.Errorf("%w: %s: %s", ErrCommand, cmd, strings.TrimSpace(msg))
			}
			return out, nil
		}
		if line != "" {
			out = append(out, line)
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, fmt.Errorf("%w: during %q", ErrClosed, cmd)
			}
			return out, fmt.Errorf("xspec: read reply to %q: %w", cmd, err)
		}
	}
}

// splitSentinel finds the status line in line. XSPEC prompts end without a
// newline, so the sentinel may follow other output. An echoed wrapper
// carries the sentinel too but never a bare OK or ERR status after it.
func splitSentinel(line string) (head, status string, ok bool) {
	i := strings.LastIndex(line, Sentinel)
	if i < 0 {
		return "", "", false
	}
	status = strings.TrimSpace(line[i+len(Sentinel):])
	if status != "OK" && status != "ERR" && !strings.HasPrefix(status, "ERR ") {
		return "", "", false
	}
	return strings.TrimSpace(line[:i]), status, true
}

// Tclout runs "tclout <query>" and returns the value of xspec_tclout.
func (c *Conn) Tclout(query string) (string, error) {
	lines, err := c.Exec("tclout " + query + "; puts $xspec_tclout")
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("%w: tclout %s returned nothing", ErrCommand, query)
	}
	return strings.TrimSpace(lines[len(lines)-1]), nil
}
