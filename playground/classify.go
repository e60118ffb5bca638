package playground

import (
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/caffeineduck/pyplay/locale"
)

// Rule turns one category of interpreter error into a one-line summary.
type Rule struct {
	Pattern *regexp.Regexp
	// Format receives the submatches of Pattern.
	Format func(l *locale.Localizer, m []string) string
}

// Classifier maps raw interpreter error text to a localized message. Rules
// are tried in order and the first match wins; the order matters because a
// message can satisfy several patterns.
type Classifier struct {
	rules []Rule
	loc   *locale.Localizer
}

// NewClassifier returns the standard rule set. limit is quoted in the
// time limit message.
func NewClassifier(loc *locale.Localizer, limit time.Duration) *Classifier {
	return &Classifier{rules: DefaultRules(limit), loc: loc}
}

// DefaultRules returns the built-in rules in match order.
func DefaultRules(limit time.Duration) []Rule {
	seconds := int(math.Round(limit.Seconds()))
	return []Rule{
		{
			Pattern: regexp.MustCompile(`SyntaxError:.*line (\d+)`),
			Format: func(l *locale.Localizer, m []string) string {
				return l.T(locale.ErrSyntax, map[string]any{"Line": m[1]})
			},
		},
		{
			Pattern: regexp.MustCompile(`NameError: name '(.+?)' is not defined`),
			Format: func(l *locale.Localizer, m []string) string {
				return l.T(locale.ErrName, map[string]any{"Name": m[1]})
			},
		},
		detailRule(`TypeError: (.+)`, locale.ErrType),
		detailRule(`IndexError: (.+)`, locale.ErrIndex),
		detailRule(`ValueError: (.+)`, locale.ErrValue),
		{
			Pattern: regexp.MustCompile(`ZeroDivisionError`),
			Format: func(l *locale.Localizer, m []string) string {
				return l.T(locale.ErrZeroDivision)
			},
		},
		{
			Pattern: regexp.MustCompile(`IndentationError:.*line (\d+)`),
			Format: func(l *locale.Localizer, m []string) string {
				return l.T(locale.ErrIndentation, map[string]any{"Line": m[1]})
			},
		},
		{
			Pattern: regexp.MustCompile(`TimeLimitError|time limit`),
			Format: func(l *locale.Localizer, m []string) string {
				return l.T(locale.ErrTimeLimit, map[string]any{"Limit": seconds})
			},
		},
	}
}

func detailRule(pattern, id string) Rule {
	return Rule{
		Pattern: regexp.MustCompile(pattern),
		Format: func(l *locale.Localizer, m []string) string {
			return l.T(id, map[string]any{"Detail": m[1]})
		},
	}
}

// Summary returns the summary of the first matching rule.
func (c *Classifier) Summary(raw string) (string, bool) {
	for _, r := range c.rules {
		if m := r.Pattern.FindStringSubmatch(raw); m != nil {
			return r.Format(c.loc, m), true
		}
	}
	return "", false
}

// Classify renders raw for the output pane: the summary, a blank line and
// the raw text, or the generic prefix followed by the raw text.
func (c *Classifier) Classify(raw string) string {
	if summary, ok := c.Summary(raw); ok {
		return fmt.Sprintf("%s\n\n%s", summary, raw)
	}
	return c.loc.T(locale.ErrGeneric) + raw
}
