// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jcursor

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// A wframe records an open object or array in the output.
type wframe struct {
	isArray bool
	n       int  // number of members or elements written so far
	inKey   bool // object: a key has been written, awaiting its value
}

// A Writer emits a single well-formed JSON value to a stream, one token at a
// time. The caller opens objects and arrays with BeginObject and BeginArray,
// closes them with End, and writes keys and values with the corresponding
// methods; the writer checks that the calls describe a complete value.
//
// Errors are sticky: once any method has reported an error, all subsequent
// calls report the same error and no further output is written.
type Writer struct {
	w      *bufio.Writer
	cl     io.Closer // if non-nil, closed by Close
	indent string    // "" for compact output
	stk    []wframe
	done   bool // a complete top-level value has been written
	closed bool
	err    error
}

// NewWriter constructs a writer that emits output to w.
// If w implements io.Closer, closing the writer also closes w.
func NewWriter(w io.Writer) *Writer {
	cl, _ := w.(io.Closer)
	return &Writer{w: bufio.NewWriter(w), cl: cl}
}

// SetIndent configures the writer to produce multi-line indented output,
// using the given string for one level of indentation. If indent is empty
// the output is compact, with no blank space between tokens. SetIndent
// should be called before any output is written.
func (w *Writer) SetIndent(indent string) { w.indent = indent }

// BeginObject opens an object. Until the matching End, subsequent output
// must consist of alternating keys and values.
func (w *Writer) BeginObject() error { return w.begin("BeginObject", false, "{") }

// BeginArray opens an array. Until the matching End, subsequent values are
// written as its elements.
func (w *Writer) BeginArray() error { return w.begin("BeginArray", true, "[") }

// End closes the innermost open object or array. It reports an error if no
// structure is open, or if the enclosing object has a key awaiting its
// value.
func (w *Writer) End() error {
	if w.closed {
		return &StateError{Op: "End", Reason: "writer is closed"}
	} else if w.err != nil {
		return w.err
	}
	if len(w.stk) == 0 {
		return w.fail(&StateError{Op: "End", Reason: "no open object or array"})
	}
	fr := w.stk[len(w.stk)-1]
	if !fr.isArray && fr.inKey {
		return w.fail(&StateError{Op: "End", Reason: "member value required"})
	}
	if fr.n > 0 {
		w.newline(len(w.stk) - 1)
	}
	if fr.isArray {
		w.ws("]")
	} else {
		w.ws("}")
	}
	w.stk = w.stk[:len(w.stk)-1]
	if len(w.stk) == 0 {
		w.done = true
	}
	return w.err
}

// Key writes the key of the next object member. It reports an error if the
// innermost open structure is not an object, or if a key has already been
// written without its value.
func (w *Writer) Key(name string) error {
	if w.closed {
		return &StateError{Op: "Key", Reason: "writer is closed"}
	} else if w.err != nil {
		return w.err
	}
	if len(w.stk) == 0 || w.stk[len(w.stk)-1].isArray {
		return w.fail(&StateError{Op: "Key", Reason: "no open object"})
	}
	fr := &w.stk[len(w.stk)-1]
	if fr.inKey {
		return w.fail(&StateError{Op: "Key", Reason: "member value required"})
	}
	if fr.n > 0 {
		w.ws(",")
	}
	w.newline(len(w.stk))
	w.ws(Quote(name))
	w.ws(":")
	if w.indent != "" {
		w.ws(" ")
	}
	fr.n++
	fr.inKey = true
	return w.err
}

// String writes a string value, quoting and escaping its contents.
func (w *Writer) String(s string) error { return w.value("String", Quote(s)) }

// Int writes an integer value.
func (w *Writer) Int(v int64) error { return w.value("Int", strconv.FormatInt(v, 10)) }

// Float writes a floating-point value. NaN and infinities have no JSON
// representation and are reported as errors.
func (w *Writer) Float(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return w.fail(fmt.Errorf("unsupported float value %v", v))
	}
	return w.value("Float", strconv.FormatFloat(v, 'g', -1, 64))
}

// Bool writes a true or false value.
func (w *Writer) Bool(v bool) error { return w.value("Bool", strconv.FormatBool(v)) }

// Null writes a null value.
func (w *Writer) Null() error { return w.value("Null", "null") }

// Rat writes the exact decimal rendering of v. It reports an error if v has
// no finite decimal representation (for example 1/3).
func (w *Writer) Rat(v *big.Rat) error {
	if w.closed {
		return &StateError{Op: "Rat", Reason: "writer is closed"}
	} else if w.err != nil {
		return w.err
	}
	den := new(big.Int).Set(v.Denom())
	n2 := countFactor(den, 2)
	n5 := countFactor(den, 5)
	if den.CmpAbs(bigOne) != 0 {
		return w.fail(fmt.Errorf("%s has no finite decimal representation", v.RatString()))
	}
	prec := max(n2, n5)
	return w.value("Rat", v.FloatString(prec))
}

// Number writes a number value from its literal text. The text must be a
// valid JSON number representation.
func (w *Writer) Number(text string) error {
	if w.closed {
		return &StateError{Op: "Number", Reason: "writer is closed"}
	} else if w.err != nil {
		return w.err
	}
	if !isValidNumber(text) {
		return w.fail(fmt.Errorf("invalid number literal %q", text))
	}
	return w.value("Number", text)
}

// Flush writes any buffered output to the underlying writer.
func (w *Writer) Flush() error {
	if w.closed {
		return &StateError{Op: "Flush", Reason: "writer is closed"}
	} else if w.err != nil {
		return w.err
	}
	if err := w.w.Flush(); err != nil {
		return w.fail(err)
	}
	return nil
}

// Close flushes the writer and closes the underlying writer if it implements
// io.Closer. Closing a writer before a complete top-level value has been
// written reports an error. Close is idempotent: closing a closed writer
// reports nil.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	err := w.err
	if err == nil && (!w.done || len(w.stk) != 0) {
		err = w.fail(&StateError{Op: "Close", Reason: "incomplete JSON text"})
	}
	if err == nil {
		if err = w.w.Flush(); err != nil {
			w.fail(err)
		}
	}
	if w.cl != nil {
		if cerr := w.cl.Close(); cerr != nil && err == nil {
			err = w.fail(fmt.Errorf("close output: %w", cerr))
		}
	}
	return err
}

// Copy transcribes the remaining events of src to dst, preserving the
// literal text of numbers. It consumes src to the end of its input and
// reports the first error from either side.
func Copy(dst *Writer, src *Parser) error {
	for {
		ev, err := src.Next()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		if err := writeEvent(dst, src, ev); err != nil {
			return err
		}
	}
}

// CopyValue transcribes the single value whose opening event the cursor of
// src is positioned on to dst, leaving src positioned on the final event of
// that value. It reports a *StateError if the current event does not begin a
// value.
func CopyValue(dst *Writer, src *Parser) error {
	switch ev := src.Event(); ev {
	case StringValue, NumberValue, TrueValue, FalseValue, NullValue:
		return writeEvent(dst, src, ev)
	case BeginObject, BeginArray:
		if err := writeEvent(dst, src, ev); err != nil {
			return err
		}
	default:
		return &StateError{Op: "CopyValue", Event: ev}
	}
	base := src.Depth()
	for {
		ev, err := src.Next()
		if err != nil {
			return err
		}
		if err := writeEvent(dst, src, ev); err != nil {
			return err
		}
		if src.Depth() < base {
			return nil
		}
	}
}

// writeEvent applies a single parser event to w.
func writeEvent(w *Writer, src *Parser, ev Event) error {
	switch ev {
	case BeginObject:
		return w.BeginObject()
	case BeginArray:
		return w.BeginArray()
	case EndObject, EndArray:
		return w.End()
	case Key:
		return w.Key(src.String())
	case StringValue:
		return w.String(src.String())
	case NumberValue:
		return w.Number(src.String())
	case TrueValue:
		return w.Bool(true)
	case FalseValue:
		return w.Bool(false)
	case NullValue:
		return w.Null()
	}
	return nil
}

// begin opens an object or array: structurally it is a value, so the same
// bookkeeping applies before the delimiter is written.
func (w *Writer) begin(op string, isArray bool, open string) error {
	if err := w.beforeValue(op); err != nil {
		return err
	}
	w.ws(open)
	w.stk = append(w.stk, wframe{isArray: isArray})
	return w.err
}

// value writes the pre-rendered text of a single value.
func (w *Writer) value(op, text string) error {
	if err := w.beforeValue(op); err != nil {
		return err
	}
	w.ws(text)
	if len(w.stk) == 0 {
		w.done = true
	}
	return w.err
}

// beforeValue applies the bookkeeping common to writing any value: the
// one-value limit at the top level, element separators in arrays, and the
// key requirement inside objects.
func (w *Writer) beforeValue(op string) error {
	if w.closed {
		return &StateError{Op: op, Reason: "writer is closed"}
	} else if w.err != nil {
		return w.err
	}
	if len(w.stk) == 0 {
		if w.done {
			return w.fail(&StateError{Op: op, Reason: "top-level value already written"})
		}
		return nil
	}
	fr := &w.stk[len(w.stk)-1]
	if fr.isArray {
		if fr.n > 0 {
			w.ws(",")
		}
		w.newline(len(w.stk))
		fr.n++
	} else if !fr.inKey {
		return w.fail(&StateError{Op: op, Reason: "member key required"})
	} else {
		fr.inKey = false
	}
	return w.err
}

// newline starts an indented line at the given depth when indentation is
// enabled; in compact mode it writes nothing.
func (w *Writer) newline(depth int) {
	if w.indent == "" {
		return
	}
	w.ws("\n")
	for i := 0; i < depth; i++ {
		w.ws(w.indent)
	}
}

// ws writes s to the output, recording the first write error.
func (w *Writer) ws(s string) {
	if w.err == nil {
		if _, err := w.w.WriteString(s); err != nil {
			w.err = err
		}
	}
}

// fail records err as the writer's sticky error and returns it.
func (w *Writer) fail(err error) error {
	if w.err == nil {
		w.err = err
	}
	return w.err
}

var bigOne = big.NewInt(1)

// countFactor divides d in place by f as long as it divides evenly,
// reporting how many times it did.
func countFactor(d *big.Int, f int64) int {
	bf := big.NewInt(f)
	q, r := new(big.Int), new(big.Int)
	var n int
	for {
		q.QuoRem(d, bf, r)
		if r.Sign() != 0 {
			return n
		}
		d.Set(q)
		n++
	}
}

// isValidNumber reports whether s is a valid JSON number literal. The check
// runs the scanner over s, so the writer and the parser agree exactly on the
// number grammar.
func isValidNumber(s string) bool {
	sc := NewScanner(strings.NewReader(s))
	if sc.Next() != nil {
		return false
	} else if t := sc.Token(); t != Integer && t != Number {
		return false
	}
	return sc.Next() == io.EOF
}
