package style

import (
	"fmt"
	"strconv"
	"strings"
)

// nth is an an+b child position expression. Positions count from 1.
type nth struct {
	a, b int
}

func parseNth(s string) (nth, error) {
	s = strings.ReplaceAll(strings.ToLower(s), " ", "")
	switch s {
	case "odd":
		return nth{2, 1}, nil
	case "even":
		return nth{2, 0}, nil
	case "":
		return nth{}, fmt.Errorf("empty nth-child expression")
	}
	i := strings.IndexByte(s, 'n')
	if i < 0 {
		b, err := strconv.Atoi(s)
		if err != nil {
			return nth{}, fmt.Errorf("bad nth-child expression %q", s)
		}
		return nth{0, b}, nil
	}

	var e nth
	switch coef := s[:i]; coef {
	case "", "+":
		e.a = 1
	case "-":
		e.a = -1
	default:
		a, err := strconv.Atoi(coef)
		if err != nil {
			return nth{}, fmt.Errorf("bad nth-child expression %q", s)
		}
		e.a = a
	}
	if rest := s[i+1:]; rest != "" {
		b, err := strconv.Atoi(rest)
		if err != nil {
			return nth{}, fmt.Errorf("bad nth-child expression %q", s)
		}
		e.b = b
	}
	return e, nil
}

// matches reports whether position k equals a*n+b for some n >= 0.
func (e nth) matches(k int) bool {
	if e.a == 0 {
		return k == e.b
	}
	d := k - e.b
	return d%e.a == 0 && d/e.a >= 0
}

// NthChild returns the pseudo-class naming position k (1-based) among its
// siblings, for use with Sheet.Resolve.
func NthChild(k int) string {
	return "nth-child(" + strconv.Itoa(k) + ")"
}

// nthArg extracts the argument of an "nth-child(...)" pseudo-class.
func nthArg(pseudo string) (string, bool) {
	if !strings.HasPrefix(pseudo, "nth-child(") || !strings.HasSuffix(pseudo, ")") {
		return "", false
	}
	return pseudo[len("nth-child(") : len(pseudo)-1], true
}
