package termio

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"

	"shellm/internal/keys"
)

// ErrNoCursorReport is returned when the terminal does not answer a
// position request in time.
var ErrNoCursorReport = errors.New("terminal did not report cursor position")

// ReportSource is the input side of a position request.
type ReportSource interface {
	ExpectCursorReport() (done func())
	CursorReports() <-chan keys.Position
}

// Locator asks the real terminal where its cursor is.
type Locator struct {
	mu      sync.Mutex
	out     io.Writer
	src     ReportSource
	Timeout time.Duration
}

// NewLocator sends requests to out and reads replies from src.
func NewLocator(out io.Writer, src ReportSource) *Locator {
	return &Locator{out: out, src: src, Timeout: 300 * time.Millisecond}
}

// CursorPosition returns the 0-based cursor row and column.
func (l *Locator) CursorPosition() (row, col int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	reports := l.src.CursorReports()
	for drained := false; !drained; {
		select {
		case <-reports:
		default:
			drained = true
		}
	}

	done := l.src.ExpectCursorReport()
	defer done()
	if _, err := io.WriteString(l.out, ansi.RequestCursorPositionReport); err != nil {
		return 0, 0, err
	}
	timer := time.NewTimer(l.Timeout)
	defer timer.Stop()
	select {
	case p := <-reports:
		return p.Row - 1, p.Col - 1, nil
	case <-timer.C:
		return 0, 0, ErrNoCursorReport
	}
}
