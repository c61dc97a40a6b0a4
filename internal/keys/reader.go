package keys

import (
	"io"
	"sync/atomic"
)

// Reader owns a terminal input stream. A background goroutine decodes it
// and publishes key and paste events on Events and cursor reports on
// CursorReports. Events is closed when the input ends.
type Reader struct {
	src     io.Reader
	dec     Decoder
	events  chan Event
	reports chan Position
	expect  atomic.Int32
	err     atomic.Value
}

// NewReader starts reading r.
func NewReader(r io.Reader) *Reader {
	rd := &Reader{
		src:     r,
		events:  make(chan Event, 64),
		reports: make(chan Position, 4),
	}
	rd.dec.ExpectReport = func() bool { return rd.expect.Load() > 0 }
	go rd.loop()
	return rd
}

func (r *Reader) loop() {
	defer close(r.events)
	buf := make([]byte, 4096)
	for {
		n, err := r.src.Read(buf)
		for _, ev := range r.dec.Feed(buf[:n]) {
			if ev.Kind == KindCursorReport {
				select {
				case r.reports <- ev.Pos:
				default:
				}
				continue
			}
			r.events <- ev
		}
		if err != nil {
			if err != io.EOF {
				r.err.Store(err)
			}
			return
		}
	}
}

// Events delivers decoded keys and pastes.
func (r *Reader) Events() <-chan Event { return r.events }

// CursorReports delivers cursor position reports.
func (r *Reader) CursorReports() <-chan Position { return r.reports }

// ExpectCursorReport marks a position request as outstanding until the
// returned func is called.
func (r *Reader) ExpectCursorReport() (done func()) {
	r.expect.Add(1)
	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			r.expect.Add(-1)
		}
	}
}

// Err returns the read error that ended the stream, if any.
func (r *Reader) Err() error {
	if err, ok := r.err.Load().(error); ok {
		return err
	}
	return nil
}
