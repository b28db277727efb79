// Package rxlog is a small structured logger in the style of the
// go-ethereum log package: named loggers, lazy context values, and a
// handler chain writing "[timestamp LEVEL file:line] msg k=v ..." lines.
package rxlog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-stack/stack"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level is a logging severity, ordered from least to most severe.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCrit
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRCE"
	case LevelDebug:
		return "DBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERRO"
	case LevelCrit:
		return "CRIT"
	default:
		return "????"
	}
}

// Lazy wraps a function whose value is only computed if the record is
// actually emitted, mirroring the teacher's log.Lazy{Fn: ...} usage for
// expensive context values (see consensus/keccak/sealer.go).
type Lazy struct {
	Fn func() interface{}
}

// Logger is the interface workers and the supervisor log through.
type Logger interface {
	New(ctx ...interface{}) Logger
	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
}

type logger struct {
	ctx []interface{}
	out *output
}

type output struct {
	mu     sync.Mutex
	w      io.Writer
	minLvl Level
}

var root = &logger{out: &output{w: os.Stderr, minLvl: LevelInfo}}

// SetOutput redirects the root logger (and every child derived from it)
// to w. Call once during startup, before any logging happens.
func SetOutput(w io.Writer) {
	root.out.mu.Lock()
	defer root.out.mu.Unlock()
	root.out.w = w
}

// SetMinLevel filters out records below lvl.
func SetMinLevel(lvl Level) {
	root.out.mu.Lock()
	defer root.out.mu.Unlock()
	root.out.minLvl = lvl
}

// New returns a child of the root logger carrying the given key/value
// context on every subsequent record, e.g. New("worker", identity).
func New(ctx ...interface{}) Logger {
	return root.New(ctx...)
}

func (l *logger) New(ctx ...interface{}) Logger {
	merged := make([]interface{}, 0, len(l.ctx)+len(ctx))
	merged = append(merged, l.ctx...)
	merged = append(merged, ctx...)
	return &logger{ctx: merged, out: l.out}
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(LevelTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(LevelDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(LevelInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(LevelWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(LevelError, msg, ctx) }
func (l *logger) Crit(msg string, ctx ...interface{})  { l.write(LevelCrit, msg, ctx) }

func (l *logger) write(lvl Level, msg string, extra []interface{}) {
	if lvl < l.out.minLvl {
		return
	}
	call := stack.Caller(2)
	site := fmt.Sprintf("%v", call)

	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(time.Now().Format("2006-01-02 15:04:05.000"))
	b.WriteByte(' ')
	b.WriteString(lvl.String())
	b.WriteByte(' ')
	b.WriteString(site)
	b.WriteString("] ")
	b.WriteString(msg)

	all := make([]interface{}, 0, len(l.ctx)+len(extra))
	all = append(all, l.ctx...)
	all = append(all, extra...)
	for i := 0; i+1 < len(all); i += 2 {
		k := all[i]
		v := all[i+1]
		if lz, ok := v.(Lazy); ok {
			v = lz.Fn()
		}
		fmt.Fprintf(&b, " %v=%v", k, v)
	}
	b.WriteByte('\n')

	l.out.mu.Lock()
	io.WriteString(l.out.w, b.String())
	l.out.mu.Unlock()
}

// TerminalWriter returns a color-capable writer over os.Stderr when fd
// is a terminal, matching the teacher's use of go-colorable/go-isatty to
// decide whether to decorate console output; it is nil (no terminal
// writer) when fd is redirected to a file or pipe. fd is only tested;
// the returned writer always wraps os.Stderr.
func TerminalWriter(fd uintptr) io.Writer {
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return colorable.NewColorable(os.Stderr)
	}
	return nil
}

// MultiWriter fans a single log record out to every writer in ws,
// skipping nils so callers can pass the possibly-nil TerminalWriter
// result directly.
func MultiWriter(ws ...io.Writer) io.Writer {
	filtered := make([]io.Writer, 0, len(ws))
	for _, w := range ws {
		if w != nil {
			filtered = append(filtered, w)
		}
	}
	return io.MultiWriter(filtered...)
}
