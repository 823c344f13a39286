package monitor

import (
	"fmt"
	"io"
	"strings"
)

// ConsoleMonitor writes tab-separated rows to an io.Writer (typically
// os.Stdout).
//
// Grounded on ScreenMonitor: a node-set monitor writing to the console on a
// fixed period, with a header gate on chain activity.
type ConsoleMonitor struct {
	base
	w io.Writer
}

// NewConsoleMonitor returns a ConsoleMonitor writing to w, firing every
// period generations, and watching the nodes named in names.
func NewConsoleMonitor(w io.Writer, period int, names ...string) *ConsoleMonitor {
	return &ConsoleMonitor{base: newBase(period, names...), w: w}
}

func (m *ConsoleMonitor) Clone() Monitor {
	return &ConsoleMonitor{base: m.cloneBase(), w: m.w}
}

func (m *ConsoleMonitor) OpenStream() error { return nil }
func (m *ConsoleMonitor) Close() error      { return nil }

func (m *ConsoleMonitor) PrintHeader() {
	if !m.chain.ChainActive() {
		return
	}
	fmt.Fprintln(m.w, strings.Join(m.header(), "\t"))
}

func (m *ConsoleMonitor) Monitor(generation int) error {
	if !m.shouldFire(generation) {
		return nil
	}
	row := m.row(generation)
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = fmt.Sprintf("%v", v)
	}
	fmt.Fprintln(m.w, strings.Join(parts, "\t"))

	return nil
}
