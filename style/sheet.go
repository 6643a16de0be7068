package style

import (
	"fmt"
	"image/color"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/rjkroege/mdedit/ast"
)

// rule is the set of properties given for one selector, already parsed.
type rule map[string]any

// Sheet is a parsed style sheet. Resolve is safe for concurrent use.
type Sheet struct {
	rules map[string]rule

	// nth lists, per selector name, the nth-child rules in selector order.
	nth map[string][]nthRule

	mu    sync.Mutex
	cache map[string]Style
}

type nthRule struct {
	expr nth
	key  string
}

// ParseError reports a malformed style sheet.
type ParseError struct {
	Source   string
	Selector string
	Property string
	Err      error
}

func (e *ParseError) Error() string {
	switch {
	case e.Property != "":
		return fmt.Sprintf("%s: [%s] %s: %v", e.Source, e.Selector, e.Property, e.Err)
	case e.Selector != "":
		return fmt.Sprintf("%s: [%s]: %v", e.Source, e.Selector, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load reads a style sheet from path.
func Load(path string) (*Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading style sheet %s: %w", path, err)
	}
	return parse(path, data)
}

// Parse parses a style sheet held in memory.
func Parse(data []byte) (*Sheet, error) {
	return parse("<sheet>", data)
}

func parse(source string, data []byte) (*Sheet, error) {
	var raw map[string]map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}

	s := &Sheet{
		rules: make(map[string]rule),
		nth:   make(map[string][]nthRule),
		cache: make(map[string]Style),
	}

	// Table order is lost in the map; sort so that later duplicate
	// properties win deterministically.
	sels := make([]string, 0, len(raw))
	for sel := range raw {
		sels = append(sels, sel)
	}
	sort.Strings(sels)

	for _, group := range sels {
		props := raw[group]
		for _, sel := range strings.Split(group, ",") {
			sel = strings.TrimSpace(sel)
			if sel == "" {
				continue
			}
			name, pseudo, _ := strings.Cut(sel, ":")
			if pseudo == "odd" || pseudo == "even" {
				pseudo = "nth-child(" + pseudo + ")"
			}
			key := name
			if pseudo != "" {
				key = name + ":" + pseudo
			}
			if arg, ok := nthArg(pseudo); ok {
				e, err := parseNth(arg)
				if err != nil {
					return nil, &ParseError{Source: source, Selector: sel, Err: err}
				}
				if _, seen := s.rules[key]; !seen {
					s.nth[name] = append(s.nth[name], nthRule{expr: e, key: key})
				}
			}
			r := s.rules[key]
			if r == nil {
				r = make(rule)
				s.rules[key] = r
			}
			for prop, v := range props {
				pv, err := parseProperty(prop, v)
				if err != nil {
					return nil, &ParseError{Source: source, Selector: sel, Property: prop, Err: err}
				}
				r[prop] = pv
			}
		}
	}
	return s, nil
}

// Resolve returns the style for a selector name and optional pseudo-class.
// Properties cascade from root, then name, then name:pseudo. An nth-child
// pseudo-class with a plain position, as made by NthChild, matches the first
// an+b rule for name, in selector order, that contains the position.
func (s *Sheet) Resolve(name, pseudo string) Style {
	key := name
	if pseudo != "" {
		key = name + ":" + pseudo
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.cache[key]; ok {
		return st
	}

	var st Style
	s.rules["root"].apply(&st)
	if name != "root" {
		s.rules[name].apply(&st)
	}
	if pseudo != "" {
		s.pseudoRule(name, pseudo).apply(&st)
	}
	s.cache[key] = st
	return st
}

// ResolveNode resolves the style of node id.
func (s *Sheet) ResolveNode(a *ast.Arena, id ast.NodeID, pseudo string) Style {
	return s.Resolve(Selector(a, id), pseudo)
}

func (s *Sheet) pseudoRule(name, pseudo string) rule {
	if r, ok := s.rules[name+":"+pseudo]; ok {
		return r
	}
	arg, ok := nthArg(pseudo)
	if !ok {
		return nil
	}
	k, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return nil
	}
	for _, nr := range s.nth[name] {
		if nr.expr.matches(k) {
			return s.rules[nr.key]
		}
	}
	return nil
}

func (r rule) apply(st *Style) {
	for prop, v := range r {
		switch prop {
		case "font-size":
			st.FontSize = v.(int)
		case "font-family":
			st.FontFamily = v.(string)
		case "font-style":
			st.Italic = v.(string) == "italic"
		case "font-weight":
			st.Bold = v.(string) == "bold"
		case "color":
			st.Color = v.(color.NRGBA)
		case "background-color":
			st.Background = v.(color.NRGBA)
		case "border-width":
			st.BorderWidth = v.(int)
		case "border-radius":
			st.BorderRadius = v.(int)
		case "padding":
			st.Padding = v.(Padding)
		case "indent":
			st.Indent = v.(int)
		case "text-align":
			st.Align = v.(ast.Align)
		}
	}
}

var pxPattern = regexp.MustCompile(`-?\d+`)

// parseProperty converts a raw TOML value to the typed value stored in a
// rule.
func parseProperty(prop string, v any) (any, error) {
	switch prop {
	case "font-size", "border-width", "border-radius", "indent":
		return pixels(v)

	case "font-family":
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("want a string, got %T", v)
		}
		return s, nil

	case "font-style", "font-weight":
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("want a string, got %T", v)
		}
		return strings.ToLower(s), nil

	case "color", "background-color":
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("want a color string, got %T", v)
		}
		return ParseColor(s)

	case "padding":
		return padding(v)

	case "text-align":
		s, _ := v.(string)
		switch strings.ToLower(s) {
		case "left":
			return ast.AlignLeft, nil
		case "center":
			return ast.AlignCenter, nil
		case "right":
			return ast.AlignRight, nil
		}
		return nil, fmt.Errorf("unknown alignment %v", v)
	}
	return nil, fmt.Errorf("unknown property")
}

// pixels accepts an integer, a float or a string such as "12px".
func pixels(v any) (int, error) {
	switch n := v.(type) {
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		m := pxPattern.FindString(n)
		if m == "" {
			return 0, fmt.Errorf("no length in %q", n)
		}
		return strconv.Atoi(m)
	}
	return 0, fmt.Errorf("want a length, got %T", v)
}

// padding accepts one, two or four lengths, as a string ("4px 8px"), an
// array or a single number, and expands them the way CSS does.
func padding(v any) (Padding, error) {
	var ps []int
	switch x := v.(type) {
	case string:
		for _, m := range pxPattern.FindAllString(x, -1) {
			n, err := strconv.Atoi(m)
			if err != nil {
				return Padding{}, err
			}
			ps = append(ps, n)
		}
	case []any:
		for _, e := range x {
			n, err := pixels(e)
			if err != nil {
				return Padding{}, err
			}
			ps = append(ps, n)
		}
	default:
		n, err := pixels(v)
		if err != nil {
			return Padding{}, err
		}
		ps = []int{n}
	}

	switch len(ps) {
	case 1:
		return Padding{ps[0], ps[0], ps[0], ps[0]}, nil
	case 2:
		return Padding{ps[0], ps[1], ps[0], ps[1]}, nil
	case 4:
		return Padding{ps[0], ps[1], ps[2], ps[3]}, nil
	}
	return Padding{}, fmt.Errorf("want 1, 2 or 4 lengths, got %d", len(ps))
}
