package xspec

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"testing"
)

type scriptParam struct {
	name, unit string
	value      float64
	delta      float64
}

var scriptCatalog = map[string][]scriptParam{
	"apec": {
		{name: "kT", unit: "keV", value: 1, delta: 0.01},
		{name: "Abundanc", value: 1, delta: -0.001},
		{name: "Redshift", value: 0, delta: -0.01},
		{name: "norm", value: 1, delta: 0.01},
	},
	"bknpower": {
		{name: "PhoIndx1", value: 1, delta: 0.01},
		{name: "BreakE", unit: "keV", value: 5, delta: 0.05},
		{name: "PhoIndx2", value: 2, delta: 0.02},
		{name: "norm", value: 1, delta: 0.01},
	},
}

type scriptComp struct {
	name  string
	first int
	count int
}

// interp is a scripted stand-in for the XSPEC Tcl interpreter. It unwraps
// framed commands, keeps a model and its parameters, and answers the tclout
// queries the adapter issues.
type interp struct {
	mu      sync.Mutex
	cmds    []string
	fail    map[string]string
	chatter map[string][]string
	// text printed without a newline just before the sentinel
	prompt map[string]string

	comps  []scriptComp
	params []scriptParam

	// frozen flags of every parameter at each fit command
	fits [][]bool
}

func newInterp() *interp {
	return &interp{fail: map[string]string{}, chatter: map[string][]string{}, prompt: map[string]string{}}
}

// connect returns a Conn served by it until the test ends.
func (it *interp) connect(t *testing.T) *Conn {
	t.Helper()

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer outW.Close()
		sc := bufio.NewScanner(inR)
		for sc.Scan() {
			if !it.serve(sc.Text(), outW) {
				return
			}
		}
	}()

	t.Cleanup(func() {
		inW.Close()
		outR.Close()
		<-done
	})
	return NewConn(outR, inW)
}

func (it *interp) commands() []string {
	it.mu.Lock()
	defer it.mu.Unlock()
	return append([]string(nil), it.cmds...)
}

func unwrap(line string) (string, bool) {
	const head = "if {[catch {"
	const tail = "} xspecfit_err]}"
	if !strings.HasPrefix(line, head) {
		return "", false
	}
	end := strings.Index(line, tail)
	if end < 0 {
		return "", false
	}
	return line[len(head):end], true
}

func (it *interp) serve(line string, w io.Writer) bool {
	it.mu.Lock()
	defer it.mu.Unlock()

	cmd, ok := unwrap(line)
	if !ok {
		return true
	}
	it.cmds = append(it.cmds, cmd)

	for _, l := range it.chatter[cmd] {
		fmt.Fprintln(w, l)
	}
	if msg, failed := it.fail[cmd]; failed {
		fmt.Fprintf(w, "%s ERR %s\n", Sentinel, msg)
		return true
	}

	reply, err := it.apply(cmd)
	if err != nil {
		fmt.Fprintf(w, "%s ERR %v\n", Sentinel, err)
		return true
	}
	if reply != "" {
		fmt.Fprintln(w, reply)
	}
	fmt.Fprint(w, it.prompt[cmd])
	fmt.Fprintf(w, "%s OK\n", Sentinel)
	return true
}

func (it *interp) apply(cmd string) (string, error) {
	f := strings.Fields(cmd)
	if len(f) == 0 {
		return "", nil
	}

	switch f[0] {
	case "model":
		it.comps, it.params = nil, nil
		if f[1] == "clear" {
			return "", nil
		}
		for _, name := range strings.Split(f[1], "+") {
			ps, ok := scriptCatalog[name]
			if !ok {
				return "", fmt.Errorf("unknown model component %s", name)
			}
			it.comps = append(it.comps, scriptComp{name: name, first: len(it.params) + 1, count: len(ps)})
			it.params = append(it.params, ps...)
		}
	case "newpar":
		p, err := it.param(f[1])
		if err != nil {
			return "", err
		}
		if p.value, err = strconv.ParseFloat(f[2], 64); err != nil {
			return "", err
		}
		if len(f) > 3 {
			if d := strings.Split(f[3], ",")[0]; d != "" {
				if p.delta, err = strconv.ParseFloat(d, 64); err != nil {
					return "", err
				}
			}
		}
	case "freeze", "thaw":
		p, err := it.param(f[1])
		if err != nil {
			return "", err
		}
		if (f[0] == "freeze") != (p.delta < 0) {
			p.delta = -p.delta
		}
	case "fit":
		frozen := make([]bool, len(it.params))
		for i, p := range it.params {
			frozen[i] = p.delta < 0
		}
		it.fits = append(it.fits, frozen)
	case "tclout":
		return it.tclout(strings.Fields(strings.TrimSuffix(cmd, "; puts $xspec_tclout"))[1:])
	}
	return "", nil
}

func (it *interp) param(s string) (*scriptParam, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 1 || i > len(it.params) {
		return nil, fmt.Errorf("bad parameter index %s", s)
	}
	return &it.params[i-1], nil
}

func (it *interp) tclout(q []string) (string, error) {
	switch q[0] {
	case "modcomp":
		return strconv.Itoa(len(it.comps)), nil
	case "compinfo":
		i, _ := strconv.Atoi(q[1])
		c := it.comps[i-1]
		return fmt.Sprintf("%s %d %d", c.name, c.first, c.count), nil
	case "pinfo":
		p, err := it.param(q[1])
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(p.name + " " + p.unit), nil
	case "param":
		p, err := it.param(q[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%g %g 0 0 1e+06 1e+06", p.value, p.delta), nil
	case "sigma":
		p, err := it.param(q[1])
		if err != nil {
			return "", err
		}
		if p.delta < 0 {
			return "-1", nil
		}
		return "0.05", nil
	case "error":
		return "0.9 2.1 FFFTFFFFF", nil
	case "stat":
		return "42.5", nil
	case "dof":
		return "37 40", nil
	case "nullhyp":
		return "0.31", nil
	}
	return "", fmt.Errorf("unknown tclout %v", q)
}
