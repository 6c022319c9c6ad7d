package infra

import (
	"fmt"
	"io"
	"path"
	"runtime"
	"strconv"
	"strings"

	"go.uber.org/zap/zapcore"
)

// References:
// https://github.com/pkg/errors/blob/master/stack.go

// Frame is a program counter of a single call site.
type Frame uintptr

// Caller returns the frame of the function that invokes it,
// or of one of its callers when skip > 0.
func Caller(skip int) Frame {
	var pcs [1]uintptr
	if n := runtime.Callers(skip+2, pcs[:]); n == 0 {
		return 0
	}
	return Frame(pcs[0])
}

func (frame Frame) pc() uintptr {
	return uintptr(frame) - 1
}

func (frame Frame) fn() *runtime.Func {
	if frame == 0 {
		return nil
	}
	return runtime.FuncForPC(frame.pc())
}

func (frame Frame) file() string {
	fn := frame.fn()
	if fn == nil {
		return "unknownFile"
	}
	f, _ := fn.FileLine(frame.pc())
	return f
}

func (frame Frame) line() int {
	fn := frame.fn()
	if fn == nil {
		return 0
	}
	_, l := fn.FileLine(frame.pc())
	return l
}

func (frame Frame) name() string {
	fn := frame.fn()
	if fn == nil {
		return "unknownFunc"
	}
	return fn.Name()
}

// Format characters:
// %s - source file
// %d - source line
// %n - function name
// %v - equivalent to %s:%d
// %+s - function name and full path separated by \n\t
// %+v - equivalent to %+s:%d
func (frame Frame) Format(s fmt.State, verb rune) {
	switch verb {
	case 's':
		if s.Flag('+') {
			_, _ = io.WriteString(s, frame.name())
			_, _ = io.WriteString(s, "\n\t")
			_, _ = io.WriteString(s, frame.file())
		} else {
			_, _ = io.WriteString(s, path.Base(frame.file()))
		}
	case 'd':
		_, _ = io.WriteString(s, strconv.Itoa(frame.line()))
	case 'n':
		_, _ = io.WriteString(s, funcName(frame.name()))
	case 'v':
		frame.Format(s, 's')
		_, _ = io.WriteString(s, ":")
		frame.Format(s, 'd')
	}
}

// String is the short "file.go:line" form.
func (frame Frame) String() string {
	return path.Base(frame.file()) + ":" + strconv.Itoa(frame.line())
}

// MarshalLogObject lets the frame be logged as a nested zap object.
func (frame Frame) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if frame.fn() == nil {
		enc.AddString("frame", "unknownFrame")
		return nil
	}
	enc.AddString("func", funcName(frame.name()))
	enc.AddString("fileAndLine", frame.file()+":"+strconv.Itoa(frame.line()))
	return nil
}

func funcName(name string) string {
	i := strings.LastIndex(name, "/")
	name = name[i+1:]
	i = strings.Index(name, ".")
	return name[i+1:]
}
