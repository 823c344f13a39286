package monitor

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// FileMonitor writes tab-separated rows to a file at Path, opened at
// OpenStream and flushed/closed at Close — the scoped-acquisition lifecycle
// the Monitor protocol requires (opened by the driver's Run, released by the
// driver's Close).
//
// Grounded on ScreenMonitor's shape, generalized from a fixed stdout target
// to an owned file handle the way the original source's file-backed
// monitors (its sibling classes) hold their own output stream.
type FileMonitor struct {
	base
	Path string

	f *os.File
	w *bufio.Writer
}

// NewFileMonitor returns a FileMonitor that will write to path, firing
// every period generations, watching the nodes named in names.
func NewFileMonitor(path string, period int, names ...string) *FileMonitor {
	return &FileMonitor{base: newBase(period, names...), Path: path}
}

func (m *FileMonitor) Clone() Monitor {
	return &FileMonitor{base: m.cloneBase(), Path: m.Path}
}

func (m *FileMonitor) OpenStream() error {
	f, err := os.Create(m.Path)
	if err != nil {
		return fmt.Errorf("monitor: open %q: %w", m.Path, err)
	}
	m.f = f
	m.w = bufio.NewWriter(f)

	return nil
}

func (m *FileMonitor) Close() error {
	if m.w == nil {
		return nil
	}
	if err := m.w.Flush(); err != nil {
		return err
	}

	return m.f.Close()
}

func (m *FileMonitor) PrintHeader() {
	if m.w == nil || !m.chain.ChainActive() {
		return
	}
	fmt.Fprintln(m.w, strings.Join(m.header(), "\t"))
}

func (m *FileMonitor) Monitor(generation int) error {
	if m.w == nil {
		return ErrNotOpen
	}
	if !m.shouldFire(generation) {
		return nil
	}
	row := m.row(generation)
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = fmt.Sprintf("%v", v)
	}
	_, err := fmt.Fprintln(m.w, strings.Join(parts, "\t"))

	return err
}
