package wildcards

import (
	"regexp"
	"strings"
)

// The normalization chain, applied in order. Wildcard values pasted into
// a prompt leave doubled spaces, stray commas, and run-on periods behind;
// these rules flatten the result into one tidy line.
var normalizeRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(` ,`), `,`},
	{regexp.MustCompile(`,([^ ])`), `, $1`},
	{regexp.MustCompile(` +`), ` `},
	{regexp.MustCompile(`\.([^ ])`), `. $1`},
	{regexp.MustCompile(`\. *\. *`), `. `},
	{regexp.MustCompile(` *\n`), ` `},
}

var sentenceStartRe = regexp.MustCompile(`\. [a-z]`)

// Normalize tidies the punctuation and spacing of an expanded prompt and
// capitalizes letters that start a new sentence.
func Normalize(text string) string {
	for _, rule := range normalizeRules {
		text = rule.re.ReplaceAllString(text, rule.repl)
	}
	text = sentenceStartRe.ReplaceAllStringFunc(text, strings.ToUpper)
	return strings.TrimSpace(text)
}
