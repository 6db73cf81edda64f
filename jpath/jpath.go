// Package jpath implements a subset of JSONPath expressions that address a
// single value, and evaluates them against a streaming parser in one forward
// pass, without building a document tree.
package jpath

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/creachadair/jcursor"
)

/*
Grammar:

   expr = "$" [steps]
  steps = step [steps]
   step = "." WORD
   step = "['" QTEXT "']"
   step = "[" INDEX "]"

   WORD = RE `\w+`
  QTEXT = RE `[^']*`
  INDEX = RE `\d+`

The subset is the part of JSONPath that addresses exactly one value: member
lookups and non-negative array indices. Wildcards, recursion, slices, and
filters address multiple values and cannot be evaluated in a single forward
pass, so they are not accepted.

Source:
  https://www.ietf.org/archive/id/draft-goessner-dispatch-jsonpath-00.html
*/

// An Expr is a parsed path: a sequence of steps addressing a single value.
// An empty Expr addresses the top-level value.
type Expr []Step

// Parse parses s as a path expression.
func Parse(s string) (Expr, error) {
	t, ok := strings.CutPrefix(s, "$")
	if !ok {
		return nil, errors.New("missing root marker")
	}
	var steps []Step
	for t != "" {
		step, rest, err := parseStep(t)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
		t = rest
	}
	return steps, nil
}

func (e Expr) String() string {
	var buf strings.Builder
	buf.WriteString("$")
	for _, s := range e {
		switch s.Op {
		case Member:
			if plainRE.MatchString(s.Name) {
				fmt.Fprintf(&buf, ".%s", s.Name)
			} else {
				fmt.Fprintf(&buf, "['%s']", s.Name)
			}
		case Index:
			fmt.Fprintf(&buf, "[%d]", s.Index)
		}
	}
	return buf.String()
}

func parseStep(s string) (_ Step, rest string, _ error) {
	if t, ok := strings.CutPrefix(s, "."); ok {
		m := wordRE.FindString(t)
		if m == "" {
			return Step{}, s, errors.New("invalid member name")
		}
		return Step{Op: Member, Name: m}, t[len(m):], nil
	}
	if t, ok := strings.CutPrefix(s, "["); ok {
		if m := quoteRE.FindStringSubmatch(t); m != nil {
			u, ok := strings.CutPrefix(t[len(m[0]):], "]")
			if !ok {
				return Step{}, s, errors.New("missing close bracket")
			}
			return Step{Op: Member, Name: m[1]}, u, nil
		}
		m := indexRE.FindString(t)
		if m == "" {
			return Step{}, s, errors.New("invalid index")
		}
		u, ok := strings.CutPrefix(t[len(m):], "]")
		if !ok {
			return Step{}, s, errors.New("missing close bracket")
		}
		n, err := strconv.Atoi(m)
		if err != nil {
			return Step{}, s, fmt.Errorf("invalid index: %w", err)
		}
		return Step{Op: Index, Index: n}, u, nil
	}
	return Step{}, s, errors.New("invalid path step")
}

var (
	wordRE  = regexp.MustCompile(`^\w+`)
	indexRE = regexp.MustCompile(`^\d+`)
	quoteRE = regexp.MustCompile(`^'([^']*)'`)
	plainRE = regexp.MustCompile(`^\w+$`)
)

// An Op is a path operator.
type Op byte

const (
	Invalid Op = iota // invalid operator
	Member            // object member lookup
	Index             // array index lookup
)

var opText = map[Op]string{
	Invalid: "invalid",
	Member:  "member",
	Index:   "index",
}

func (o Op) String() string {
	if s, ok := opText[o]; ok {
		return s
	}
	return opText[Invalid]
}

// A Step is a single step of a path expression.
type Step struct {
	Op    Op
	Name  string // the member name, when Op == Member
	Index int    // the element index, when Op == Index
}

// Eval parses path and advances p to the value it addresses, as Seek.
func Eval(p *jcursor.Parser, path string) error {
	e, err := Parse(path)
	if err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	return Seek(p, e)
}

// Seek advances p to the value addressed by e, leaving the cursor on the
// opening event of that value. The parser must be fresh: Seek begins by
// advancing to the top-level value, so no events may have been consumed.
//
// If the input has no value at the addressed location, Seek reports an error
// naming the path step that failed. The parser is then mid-document and its
// position is unspecified, but it remains valid: the caller may continue to
// consume events or close it.
func Seek(p *jcursor.Parser, e Expr) error {
	if _, err := p.Next(); err != nil {
		return err
	}
	for i, step := range e {
		var err error
		switch step.Op {
		case Member:
			err = seekMember(p, step.Name)
		case Index:
			err = seekIndex(p, step.Index)
		default:
			err = errors.New("invalid path step")
		}
		if err != nil {
			return fmt.Errorf("step %s: %w", e[:i+1], err)
		}
	}
	return nil
}

// seekMember scans the object whose BeginObject event the cursor is on for
// the named member, leaving the cursor on the opening event of its value.
func seekMember(p *jcursor.Parser, name string) error {
	if p.Event() != jcursor.BeginObject {
		return errors.New("value is not an object")
	}
	for {
		ev, err := p.Next()
		if err != nil {
			return err
		}
		if ev == jcursor.EndObject {
			return fmt.Errorf("no member %q", name)
		}
		if p.String() == name {
			_, err := p.Next() // advance to the member value
			return err
		}

		// Skip the value of a non-matching member.
		if _, err := p.Next(); err != nil {
			return err
		} else if err := p.SkipChildren(); err != nil {
			return err
		}
	}
}

// seekIndex scans the array whose BeginArray event the cursor is on for the
// element at offset want, leaving the cursor on its opening event.
func seekIndex(p *jcursor.Parser, want int) error {
	if p.Event() != jcursor.BeginArray {
		return errors.New("value is not an array")
	}
	for i := 0; ; i++ {
		ev, err := p.Next()
		if err != nil {
			return err
		}
		if ev == jcursor.EndArray {
			return fmt.Errorf("index %d out of range (%d elements)", want, i)
		}
		if i == want {
			return nil
		}
		if err := p.SkipChildren(); err != nil {
			return err
		}
	}
}
