package diagram

import (
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Rule is a pure rewrite of diagram source.
type Rule interface {
	Name() string
	Apply(src string) string
}

// RuleFunc adapts a plain function into a Rule.
type RuleFunc struct {
	RuleName string
	Fn       func(string) string
}

func (r RuleFunc) Name() string            { return r.RuleName }
func (r RuleFunc) Apply(src string) string { return r.Fn(src) }

// RegexRule replaces every match of Pattern line by line.
type RegexRule struct {
	RuleName    string
	Pattern     string
	Replacement string
	compiled    *regexp.Regexp
}

// NewRegexRule compiles pattern once; it panics on an invalid pattern, so
// it is meant for package-level rule tables.
func NewRegexRule(name, pattern, replacement string) RegexRule {
	return RegexRule{
		RuleName:    name,
		Pattern:     pattern,
		Replacement: replacement,
		compiled:    regexp.MustCompile(pattern),
	}
}

func (r RegexRule) Name() string { return r.RuleName }

func (r RegexRule) Apply(src string) string {
	if r.compiled == nil || src == "" {
		return src
	}
	return r.compiled.ReplaceAllString(src, r.Replacement)
}

// Chain applies rules in order.
type Chain []Rule

func (c Chain) Apply(src string) string {
	out := src
	for _, rule := range c {
		next := rule.Apply(out)
		if next != out {
			log.WithField("rule", rule.Name()).Debug("Applied diagram rewrite")
		}
		out = next
	}
	return out
}

// Names lists the rule names of the chain in order.
func (c Chain) Names() []string {
	names := make([]string, 0, len(c))
	for _, r := range c {
		names = append(names, r.Name())
	}
	return names
}

var (
	nodeLabel    = regexp.MustCompile(`(\w+)\[(.*?)\]`)
	specialChars = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	blankRun     = regexp.MustCompile(`[ \t]+`)
)

func isQuoted(label string) bool {
	return len(label) >= 2 && strings.HasPrefix(label, `"`) && strings.HasSuffix(label, `"`)
}

// isShapedLabel reports labels such as [(db)], [[sub]] or [/io/] whose
// leading delimiter selects a node shape and must not be quoted away.
func isShapedLabel(label string) bool {
	if label == "" {
		return false
	}
	switch label[0] {
	case '(', '[', '/', '\\':
		return true
	}
	return false
}

// quoteLabels rewrites id[label] to id["label"] for every label accepted by
// want. Inner double quotes become the #quot; entity.
func quoteLabels(src string, want func(label string) bool) string {
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		lines[i] = nodeLabel.ReplaceAllStringFunc(line, func(m string) string {
			sub := nodeLabel.FindStringSubmatch(m)
			id, label := sub[1], sub[2]
			if isQuoted(label) || isShapedLabel(label) || !want(label) {
				return m
			}
			return id + `["` + strings.ReplaceAll(label, `"`, "#quot;") + `"]`
		})
	}
	return strings.Join(lines, "\n")
}

// QuoteSpecialLabels quotes labels that contain anything besides ASCII
// letters, digits and whitespace.
var QuoteSpecialLabels Rule = RuleFunc{
	RuleName: "quote_special_labels",
	Fn: func(src string) string {
		return quoteLabels(src, specialChars.MatchString)
	},
}

// QuoteAllLabels quotes every label that is not already quoted.
var QuoteAllLabels Rule = RuleFunc{
	RuleName: "quote_all_labels",
	Fn: func(src string) string {
		return quoteLabels(src, func(string) bool { return true })
	},
}

// CollapseWhitespace squeezes blank runs inside each line and trims lines.
// Line breaks are kept since they separate diagram statements.
var CollapseWhitespace Rule = RuleFunc{
	RuleName: "collapse_whitespace",
	Fn: func(src string) string {
		lines := strings.Split(src, "\n")
		for i, line := range lines {
			lines[i] = strings.TrimSpace(blankRun.ReplaceAllString(line, " "))
		}
		return strings.Join(lines, "\n")
	},
}

// ArrowRules join arrow tokens that were split by stray blanks.
var ArrowRules = Chain{
	NewRegexRule("arrow_double_dash", `--[ \t]+>`, "-->"),
	NewRegexRule("arrow_single_dash", `-[ \t]+>`, "->"),
	NewRegexRule("arrow_async", `--[ \t]+>>`, "-->>"),
	NewRegexRule("arrow_reverse", `<[ \t]+--`, "<--"),
}

// TargetedRules is the first repair pass.
func TargetedRules() Chain {
	return append(Chain{QuoteSpecialLabels}, ArrowRules...)
}

// parserSignatures are fragments of parser errors caused by unquoted labels.
var parserSignatures = []string{
	"got 'PS'",
	"got 'PE'",
	"got 'SQS'",
	"Expecting 'SQE'",
}

// MatchesParserSignature reports whether a render error looks like a label
// tokenisation failure.
func MatchesParserSignature(errMsg string) bool {
	for _, sig := range parserSignatures {
		if strings.Contains(errMsg, sig) {
			return true
		}
	}
	return false
}

// AggressiveRules is the second repair pass. Labels are force-quoted only
// when the previous render failed with a known parser signature.
func AggressiveRules(errMsg string) Chain {
	if MatchesParserSignature(errMsg) {
		return Chain{QuoteAllLabels, CollapseWhitespace}
	}
	return Chain{CollapseWhitespace}
}
