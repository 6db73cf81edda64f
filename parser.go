// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jcursor

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"slices"
	"strings"
)

// Event is the type of a structural event in a JSON input stream.
//
// Events are ordered so that any event greater than Key marks the completion
// of a value: a scalar value event completes the scalar, and EndObject and
// EndArray complete the enclosing structure. Callers may rely on this
// ordering, for example to detect whether a value has just finished.
type Event byte

// Constants defining the valid Event values.
const (
	NoEvent     Event = iota // no event: parsing has not started
	BeginArray               // the opening bracket of an array
	BeginObject              // the opening brace of an object
	Key                      // the key of an object member
	StringValue              // a string value
	NumberValue              // a number value
	TrueValue                // the constant true
	FalseValue               // the constant false
	NullValue                // the constant null
	EndObject                // the closing brace of an object
	EndArray                 // the closing bracket of an array
)

var eventStr = [...]string{
	NoEvent:     "no event",
	BeginArray:  "begin array",
	BeginObject: "begin object",
	Key:         "object key",
	StringValue: "string value",
	NumberValue: "number value",
	TrueValue:   "true",
	FalseValue:  "false",
	NullValue:   "null",
	EndObject:   "end object",
	EndArray:    "end array",
}

func (e Event) String() string {
	v := int(e)
	if v >= len(eventStr) {
		return fmt.Sprintf("event(%d)", v)
	}
	return eventStr[v]
}

// completesValue reports whether e marks the completion of a JSON value,
// either a scalar or the close of an object or array.
func (e Event) completesValue() bool { return e > Key }

// valueEvent maps a single-token value to its corresponding event.
func valueEvent(t Token) Event {
	switch t {
	case String:
		return StringValue
	case Integer, Number:
		return NumberValue
	case True:
		return TrueValue
	case False:
		return FalseValue
	case Null:
		return NullValue
	}
	return NoEvent
}

// ErrExtraInput is reported when a complete top-level value is followed by
// further non-blank input. Errors reported for trailing input wrap this
// value.
var ErrExtraInput = errors.New("extra input after value")

// SyntaxError is the concrete type of errors reported by the parser for
// ill-formed input.
type SyntaxError struct {
	Location LineCol // the position of the offending token
	Token    Token   // the offending token, or EOF at the end of input
	Expected []Token // the tokens that were admissible at this position, if known
	Message  string

	err error
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	return fmt.Sprintf("at %s: %s", s.Location, s.Message)
}

// Unwrap supports error wrapping.
func (s *SyntaxError) Unwrap() error { return s.err }

// A StateError reports a method call that is not legal in the parser's
// current state, for example a value accessor invoked when the cursor is not
// positioned on a value of the accessor's type, or any operation after Close.
// Accessor methods panic with a *StateError rather than returning it.
type StateError struct {
	Op     string // the name of the offending method
	Event  Event  // the event at the cursor position, if relevant
	Reason string // a description of the problem, if the event does not imply it
}

// Error satisfies the error interface.
func (e *StateError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s: not valid at %s", e.Op, e.Event)
}

// A frame records an open object or array enclosing the cursor position.
type frame struct {
	isArray bool            // true for an array, false for an object
	keys    map[string]bool // decoded member keys seen, when duplicate checking
}

// A Parser is a pull-style cursor over a single JSON value read from a
// stream. Each call to Next advances the cursor to the next structural event
// of the input and validates the grammar incrementally; the accessor methods
// report the contents of the value at the current position.
//
// The parser verifies that exactly one top-level value is present. Blank
// space after the value is ignored; any other trailing content is reported
// as an error wrapping ErrExtraInput.
type Parser struct {
	sc     *Scanner
	stk    []frame // enclosing open objects and arrays, innermost last
	event  Event   // the event at the current cursor position
	closed bool

	tcomma bool // allow trailing commas in objects and arrays
	nodup  bool // reject duplicate object keys
}

// NewParser constructs a parser that reads input from r.
// If r implements io.Closer, closing the parser also closes r.
func NewParser(r io.Reader) *Parser { return &Parser{sc: NewScanner(r)} }

// NewParserWithScanner constructs a parser that consumes tokens from s.
func NewParserWithScanner(s *Scanner) *Parser { return &Parser{sc: s} }

// AllowComments configures the parser to skip (true) or reject (false)
// C++ style comments in the input.
func (p *Parser) AllowComments(ok bool) { p.sc.AllowComments(ok) }

// AllowTrailingCommas configures the parser to allow (true) or reject (false)
// a comma after the last member of an object or element of an array.
func (p *Parser) AllowTrailingCommas(ok bool) { p.tcomma = ok }

// RejectDuplicateKeys configures the parser to report an error (true) for an
// object member whose key repeats the key of an earlier member of the same
// object. Keys are compared after unescaping. Members inside regions passed
// over by the skip methods are not checked.
func (p *Parser) RejectDuplicateKeys(ok bool) { p.nodup = ok }

// More reports whether another parse event is available.
//
// Inside an open object or array, More reporting false means the input ended
// before the structure was closed, and the accompanying error describes the
// tokens that would have been admissible. After the top-level value is
// complete, More consumes the remaining input to verify that nothing but
// blank space follows; if other content is found it reports an error
// wrapping ErrExtraInput.
//
// Before the first event of a document, More reports true without reading
// ahead, even if the input is empty; in that case the subsequent Next
// reports what the input was missing.
func (p *Parser) More() (bool, error) {
	if p.closed {
		return false, &StateError{Op: "More", Reason: "parser is closed"}
	}
	if len(p.stk) == 0 && p.event.completesValue() {
		tok, err := p.advance()
		if err == io.EOF {
			return false, nil
		} else if err != nil {
			return false, err
		}
		return false, p.failExtra(tok)
	}
	if len(p.stk) != 0 && !p.sc.More() {
		// The input ran out inside an open structure. Run the grammar one
		// more step so the error names the admissible tokens.
		_, err := p.nextEvent()
		return false, err
	}
	return true, nil
}

// Next advances the cursor to the next event of the input and returns it.
// When no further events are available because the top-level value is
// complete, Next returns NoEvent and io.EOF. All other failures are reported
// as a *SyntaxError, or a *StateError if p has been closed.
func (p *Parser) Next() (Event, error) {
	if p.closed {
		return NoEvent, &StateError{Op: "Next", Reason: "parser is closed"}
	}
	if ok, err := p.More(); err != nil {
		return NoEvent, err
	} else if !ok {
		return NoEvent, io.EOF
	}
	ev, err := p.nextEvent()
	if err != nil {
		return NoEvent, err
	}
	p.event = ev
	return ev, nil
}

// Event returns the event at the current position of the cursor. Before the
// first call to Next, and after Close, it returns NoEvent.
func (p *Parser) Event() Event { return p.event }

// Depth reports the number of objects and arrays enclosing the cursor
// position. It is zero at the top level.
func (p *Parser) Depth() int { return len(p.stk) }

// String returns the text of the current event. For Key and StringValue
// events the text is decoded, with quotes and escapes removed; for a
// NumberValue event it is the literal text of the number.
//
// String panics with a *StateError if the cursor is not positioned on a Key,
// StringValue, or NumberValue event.
func (p *Parser) String() string {
	if p.closed {
		panic(&StateError{Op: "String", Reason: "parser is closed"})
	}
	switch p.event {
	case Key, StringValue:
		return string(p.sc.Unescape())
	case NumberValue:
		return string(p.sc.Text())
	}
	panic(&StateError{Op: "String", Event: p.event})
}

// Int returns the value of the current event as an int. It is shorthand for
// int(p.Int64()).
//
// Int panics with a *StateError if the cursor is not positioned on a
// NumberValue event.
func (p *Parser) Int() int {
	p.checkNumber("Int")
	return int(p.sc.Int64())
}

// Int64 returns the value of the current event as an int64, truncating
// toward zero if the number has a fractional part. Values that do not fit in
// int64 are reduced modulo 2^64.
//
// Int64 panics with a *StateError if the cursor is not positioned on a
// NumberValue event.
func (p *Parser) Int64() int64 {
	p.checkNumber("Int64")
	return p.sc.Int64()
}

// Float64 returns the value of the current event as a float64. Values
// outside the range of a float64 are pinned to ±Inf.
//
// Float64 panics with a *StateError if the cursor is not positioned on a
// NumberValue event.
func (p *Parser) Float64() float64 {
	p.checkNumber("Float64")
	return p.sc.Float64()
}

// Rat returns the exact value of the current event as a rational.
//
// Rat panics with a *StateError if the cursor is not positioned on a
// NumberValue event.
func (p *Parser) Rat() *big.Rat {
	p.checkNumber("Rat")
	return p.sc.Rat()
}

// IsIntegralNumber reports whether the current event is a number with an
// exact integer value. Numbers written with a fraction or exponent are
// integral if their value is (for example, 15e-1 is not integral but 1.5e1
// is).
//
// IsIntegralNumber panics with a *StateError if the cursor is not positioned
// on a NumberValue event.
func (p *Parser) IsIntegralNumber() bool {
	p.checkNumber("IsIntegralNumber")
	return p.sc.IsIntegral()
}

// Location returns the location in the input of the token at the current
// cursor position.
func (p *Parser) Location() Location { return p.sc.Location() }

// SkipObject moves the cursor past the contents of the object whose
// BeginObject event it is positioned on, so that the current event becomes
// the matching EndObject. The skipped input is scanned for lexical validity,
// but its grammar is not checked and no events are reported for it. If the
// current event is not BeginObject, SkipObject does nothing.
func (p *Parser) SkipObject() error {
	if p.closed {
		return &StateError{Op: "SkipObject", Reason: "parser is closed"}
	}
	if p.event != BeginObject {
		return nil
	}
	if err := p.skipBalanced(LBrace, RBrace); err != nil {
		return err
	}
	p.pop()
	p.event = EndObject
	return nil
}

// SkipArray moves the cursor past the contents of the array whose BeginArray
// event it is positioned on, so that the current event becomes the matching
// EndArray. The skipped input is scanned for lexical validity, but its
// grammar is not checked and no events are reported for it. If the current
// event is not BeginArray, SkipArray does nothing.
func (p *Parser) SkipArray() error {
	if p.closed {
		return &StateError{Op: "SkipArray", Reason: "parser is closed"}
	}
	if p.event != BeginArray {
		return nil
	}
	if err := p.skipBalanced(LSquare, RSquare); err != nil {
		return err
	}
	p.pop()
	p.event = EndArray
	return nil
}

// SkipChildren skips the contents of the object or array whose opening
// delimiter the cursor is positioned on, leaving the cursor on the matching
// EndObject or EndArray event. If the current event is not BeginObject or
// BeginArray, SkipChildren does nothing.
func (p *Parser) SkipChildren() error {
	switch p.event {
	case BeginObject:
		return p.SkipObject()
	case BeginArray:
		return p.SkipArray()
	}
	return nil
}

// Close closes the parser, releasing its state. If the reader the parser was
// constructed from implements io.Closer, it is also closed, and any error it
// reports is returned. Close is idempotent: closing a closed parser reports
// nil. After Close, calls to More, Next, and the skip methods report a
// *StateError, and the value accessors panic with one.
func (p *Parser) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.stk = nil
	p.event = NoEvent
	return p.sc.Close()
}

func (p *Parser) checkNumber(op string) {
	if p.closed {
		panic(&StateError{Op: op, Reason: "parser is closed"})
	} else if p.event != NumberValue {
		panic(&StateError{Op: op, Event: p.event})
	}
}

// Expected-token sets for the states of the parse, used for diagnostics.
var (
	valueStart   = []Token{LBrace, LSquare, String, Integer, Number, True, False, Null}
	valueOrClose = []Token{LBrace, LSquare, String, Integer, Number, True, False, Null, RSquare}
)

// nextEvent runs one step of the grammar for the innermost context and
// returns the resulting event. Stack adjustments for structures opened or
// closed by the step are applied before it returns.
func (p *Parser) nextEvent() (Event, error) {
	if len(p.stk) == 0 {
		return p.rootNext()
	} else if p.stk[len(p.stk)-1].isArray {
		return p.arrayNext()
	}
	return p.objectNext()
}

// rootNext parses the opening token of the top-level value.
func (p *Parser) rootNext() (Event, error) {
	tok, err := p.advanceWant(valueStart...)
	if err != nil {
		return NoEvent, err
	}
	return p.beginValue(tok), nil
}

// objectNext parses the next step inside an object, using the current event
// to establish the position: after the open brace a key or close is
// admissible, after a key a colon and the member value, and after a member
// value a comma or close.
func (p *Parser) objectNext() (Event, error) {
	switch p.event {
	case BeginObject:
		tok, err := p.advanceWant(String, RBrace)
		if err != nil {
			return NoEvent, err
		} else if tok == RBrace {
			p.pop()
			return EndObject, nil
		}
		return p.beginKey()

	case Key:
		if _, err := p.advanceWant(Colon); err != nil {
			return NoEvent, err
		}
		tok, err := p.advanceWant(valueStart...)
		if err != nil {
			return NoEvent, err
		}
		return p.beginValue(tok), nil

	default:
		tok, err := p.advanceWant(Comma, RBrace)
		if err != nil {
			return NoEvent, err
		} else if tok == RBrace {
			p.pop()
			return EndObject, nil
		}

		// After the comma: the key of the next member or, if trailing commas
		// are enabled, the close of the object.
		want := []Token{String}
		if p.tcomma {
			want = []Token{String, RBrace}
		}
		tok, err = p.advanceWant(want...)
		if err != nil {
			return NoEvent, err
		} else if tok == RBrace {
			p.pop()
			return EndObject, nil
		}
		return p.beginKey()
	}
}

// arrayNext parses the next step inside an array: after the open bracket a
// value or close is admissible, and after an element a comma or close.
func (p *Parser) arrayNext() (Event, error) {
	if p.event == BeginArray {
		tok, err := p.advanceWant(valueOrClose...)
		if err != nil {
			return NoEvent, err
		} else if tok == RSquare {
			p.pop()
			return EndArray, nil
		}
		return p.beginValue(tok), nil
	}

	tok, err := p.advanceWant(Comma, RSquare)
	if err != nil {
		return NoEvent, err
	} else if tok == RSquare {
		p.pop()
		return EndArray, nil
	}

	// After the comma: the next element or, if trailing commas are enabled,
	// the close of the array.
	want := valueStart
	if p.tcomma {
		want = valueOrClose
	}
	tok, err = p.advanceWant(want...)
	if err != nil {
		return NoEvent, err
	} else if tok == RSquare {
		p.pop()
		return EndArray, nil
	}
	return p.beginValue(tok), nil
}

// beginValue returns the event opening a value at tok, pushing a frame if
// tok opens an object or array. The caller is responsible for ensuring tok
// can begin a value.
func (p *Parser) beginValue(tok Token) Event {
	switch tok {
	case LBrace:
		p.stk = append(p.stk, frame{isArray: false})
		return BeginObject
	case LSquare:
		p.stk = append(p.stk, frame{isArray: true})
		return BeginArray
	default:
		return valueEvent(tok)
	}
}

// beginKey reports a Key event for the string token at the cursor, checking
// for duplicates if the parser is configured to do so.
func (p *Parser) beginKey() (Event, error) {
	if p.nodup {
		fr := &p.stk[len(p.stk)-1]
		key := string(p.sc.Unescape())
		if fr.keys == nil {
			fr.keys = make(map[string]bool)
		} else if fr.keys[key] {
			return NoEvent, &SyntaxError{
				Location: p.sc.Location().First,
				Token:    String,
				Message:  fmt.Sprintf("duplicate object key %q", key),
			}
		}
		fr.keys[key] = true
	}
	return Key, nil
}

func (p *Parser) pop() { p.stk = p.stk[:len(p.stk)-1] }

// advance fetches the next non-comment token from the scanner. At the end of
// the input it returns io.EOF; lexical failures are returned as a
// *SyntaxError.
func (p *Parser) advance() (Token, error) {
	for {
		err := p.sc.Next()
		if err == io.EOF {
			return EOF, io.EOF
		} else if err != nil {
			return Invalid, &SyntaxError{
				Location: p.sc.Location().First,
				Token:    Invalid,
				Message:  err.Error(),
				err:      err,
			}
		}
		if tok := p.sc.Token(); tok != LineComment && tok != BlockComment {
			return tok, nil
		}
		// comments are skipped
	}
}

// advanceWant fetches the next non-comment token and verifies that it is one
// of want, reporting a *SyntaxError naming the admissible tokens otherwise.
// The end of input is reported the same way, with EOF as the offending token.
func (p *Parser) advanceWant(want ...Token) (Token, error) {
	tok, err := p.advance()
	if err == io.EOF {
		return EOF, p.failExpect(EOF, want)
	} else if err != nil {
		return tok, err
	} else if !tokOneOf(tok, want) {
		return tok, p.failExpect(tok, want)
	}
	return tok, nil
}

// skipBalanced consumes raw tokens until the structure open at the cursor,
// along with any of the same kind opened after it, is balanced by its close
// delimiter.
func (p *Parser) skipBalanced(open, close Token) error {
	depth := 1
	for {
		tok, err := p.advance()
		if err == io.EOF {
			return p.failExpect(EOF, []Token{close})
		} else if err != nil {
			return err
		}
		switch tok {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return nil
			}
		}
	}
}

// failExpect returns a *SyntaxError reporting that got was found at the
// cursor where one of want was required.
func (p *Parser) failExpect(got Token, want []Token) error {
	return &SyntaxError{
		Location: p.sc.Location().First,
		Token:    got,
		Expected: want,
		Message:  tokLabel(want, got),
	}
}

// failExtra returns a *SyntaxError reporting non-blank content after the end
// of the top-level value.
func (p *Parser) failExtra(got Token) error {
	return &SyntaxError{
		Location: p.sc.Location().First,
		Token:    got,
		Expected: []Token{EOF},
		Message:  tokLabel([]Token{EOF}, got),
		err:      ErrExtraInput,
	}
}

// tokLabel makes a human-readable summary string for the given token types.
func tokLabel(tokens []Token, got Token) string {
	if len(tokens) == 0 {
		return fmt.Sprintf("unexpected %v", got)
	}
	var exp string
	if len(tokens) == 1 {
		exp = tokens[0].String()
	} else {
		last := len(tokens) - 1
		ss := make([]string, last)
		for i, tok := range tokens[:last] {
			ss[i] = tok.String()
		}
		exp = strings.Join(ss, ", ") + " or " + tokens[last].String()
	}
	return fmt.Sprintf("expected %s, got %v", exp, got)
}

// tokOneOf reports whether cur is an element of tokens.
func tokOneOf(cur Token, tokens []Token) bool {
	return slices.Contains(tokens, cur)
}
