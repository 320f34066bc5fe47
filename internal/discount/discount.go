// Package discount evaluates promo codes against a cart subtotal.
package discount

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindPercent Kind = "percent"
	KindFixed   Kind = "fixed"
)

type Rule struct {
	Kind  Kind
	Value int64
}

// Result is what Evaluate decided for one code. Amount is zero when not accepted.
type Result struct {
	Accepted bool
	Code     string
	Amount   int64
}

type Engine struct {
	rules map[string]Rule
}

func NewEngine(rules map[string]Rule) *Engine {
	normalized := make(map[string]Rule, len(rules))
	for code, rule := range rules {
		normalized[Normalize(code)] = rule
	}
	return &Engine{rules: normalized}
}

// ParseRules reads entries of the form CODE:kind:value.
func ParseRules(entries []string) (map[string]Rule, error) {
	rules := make(map[string]Rule, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("discount rule %q: want CODE:kind:value", entry)
		}
		code := Normalize(parts[0])
		if code == "" {
			return nil, fmt.Errorf("discount rule %q: empty code", entry)
		}
		value, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
		if err != nil || value < 0 {
			return nil, fmt.Errorf("discount rule %q: invalid value", entry)
		}
		kind := Kind(strings.ToLower(strings.TrimSpace(parts[1])))
		switch kind {
		case KindPercent:
			if value > 100 {
				return nil, fmt.Errorf("discount rule %q: percent above 100", entry)
			}
		case KindFixed:
		default:
			return nil, fmt.Errorf("discount rule %q: unknown kind %q", entry, kind)
		}
		rules[code] = Rule{Kind: kind, Value: value}
	}
	return rules, nil
}

func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (e *Engine) Evaluate(code string, subtotal int64) Result {
	code = Normalize(code)
	rule, ok := e.rules[code]
	if code == "" || !ok {
		return Result{Code: code}
	}
	return Result{Accepted: true, Code: code, Amount: rule.amount(subtotal)}
}

func (r Rule) amount(subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}
	switch r.Kind {
	case KindPercent:
		// half-to-even, matching how the storefront has always rounded
		return decimal.NewFromInt(subtotal).
			Mul(decimal.NewFromInt(r.Value)).
			Div(decimal.NewFromInt(100)).
			RoundBank(0).
			IntPart()
	case KindFixed:
		return min(r.Value, subtotal)
	}
	return 0
}

// Clamp bounds a stored amount by the current subtotal.
func Clamp(amount, subtotal int64) int64 {
	if subtotal < 0 {
		subtotal = 0
	}
	return max(0, min(amount, subtotal))
}
