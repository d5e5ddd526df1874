package automata

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"psmc/expr"
)

var ErrNeverClaim = errors.New("automata: malformed never claim")

var (
	comments = regexp.MustCompile(`(?s)/\*.*?\*/`)
	label    = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*:$`)
	option   = regexp.MustCompile(`^::\s*(.*?)\s*->\s*goto\s+([A-Za-z_][A-Za-z0-9_]*)\s*;?$`)
)

// ParseNeverClaim reads an automaton in the never claim format of Spin, as printed by ltl2ba or ltl2tgba -s.
//
// States ending in "_init" are initial (the first state if there is none), states starting with "accept_" are accepting.
// Guards are compiled with scope.
func ParseNeverClaim(text string, scope *expr.Scope) (*Buchi, error) {
	text = comments.ReplaceAllString(text, "")
	lines := []string{}
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) < 2 || !strings.HasPrefix(lines[0], "never") || lines[len(lines)-1] != "}" {
		return nil, fmt.Errorf("%w: missing never { ... } block", ErrNeverClaim)
	}
	lines = lines[1 : len(lines)-1]
	if len(lines) > 0 && lines[0] == "{" {
		lines = lines[1:]
	}

	// Number the states first, edges may refer to states declared later
	states := map[string]int{}
	names := []string{}
	for _, l := range lines {
		if m := label.FindStringSubmatch(l); m != nil {
			if _, ok := states[m[1]]; ok {
				return nil, fmt.Errorf("%w: state %v declared twice", ErrNeverClaim, m[1])
			}
			states[m[1]] = len(names)
			names = append(names, m[1])
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no state", ErrNeverClaim)
	}

	b := New(len(names))
	for i, name := range names {
		if strings.HasSuffix(name, "_init") || name == "init" {
			b.AddInitState(i)
		}
		if strings.HasPrefix(name, "accept_") {
			b.AddAcceptingState(i)
		}
	}
	if b.Init.Cardinality() == 0 {
		b.AddInitState(0)
	}

	current := -1
	for _, l := range lines {
		if m := label.FindStringSubmatch(l); m != nil {
			current = states[m[1]]
			continue
		}
		if current < 0 {
			return nil, fmt.Errorf("%w: %q outside of a state", ErrNeverClaim, l)
		}
		switch {
		case l == "if" || l == "fi;" || l == "fi" || l == "do" || l == "od;" || l == "od":
		case l == "false;" || l == "false":
		case l == "skip" || l == "skip;":
			b.AddEdge(current, current, scope.Manager().True())
		case strings.HasPrefix(l, "::"):
			m := option.FindStringSubmatch(l)
			if m == nil {
				return nil, fmt.Errorf("%w: unexpected option %q", ErrNeverClaim, l)
			}
			to, ok := states[m[2]]
			if !ok {
				return nil, fmt.Errorf("%w: unknown state %v", ErrNeverClaim, m[2])
			}
			guard, err := scope.CompileString(m[1])
			if err != nil {
				return nil, fmt.Errorf("%w: guard %q: %v", ErrNeverClaim, m[1], err)
			}
			b.AddEdge(current, to, guard)
		default:
			return nil, fmt.Errorf("%w: unexpected line %q", ErrNeverClaim, l)
		}
	}
	return b, nil
}
