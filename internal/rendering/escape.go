// Package rendering provides functionality to render resumes into LaTeX and
// compile them to PDF.
package rendering

import "strings"

// unicodeReplacements maps characters that pdflatex cannot typeset directly
// to their LaTeX equivalents. Applied before special-character escaping so
// the math-mode replacements keep their dollar signs.
var unicodeReplacements = map[rune]string{
	'≈': `$\approx$`,
	'±': `$\pm$`,
	'×': `$\times$`,
	'÷': `$\div$`,
	'≤': `$\leq$`,
	'≥': `$\geq$`,
	'≠': `$\neq$`,
	'→': `$\rightarrow$`,
	'←': `$\leftarrow$`,
	'−': `$-$`,
	'–': `--`,
	'—': `---`,
	'“': "``",
	'”': `''`,
	'‘': "`",
	'’': `'`,
	'…': `\ldots{}`,
}

// EscapeLaTeX escapes special LaTeX characters in text and replaces common
// unicode punctuation and math symbols with LaTeX equivalents.
// Special characters: \ { } $ & % # ^ _ ~
func EscapeLaTeX(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) * 2) // Pre-allocate space for potential escaping

	for _, r := range text {
		if replacement, ok := unicodeReplacements[r]; ok {
			result.WriteString(replacement)
			continue
		}
		switch r {
		case '\\':
			result.WriteString(`\textbackslash{}`)
		case '{':
			result.WriteString(`\{`)
		case '}':
			result.WriteString(`\}`)
		case '$':
			result.WriteString(`\$`)
		case '&':
			result.WriteString(`\&`)
		case '%':
			result.WriteString(`\%`)
		case '#':
			result.WriteString(`\#`)
		case '^':
			result.WriteString(`\textasciicircum{}`)
		case '_':
			result.WriteString(`\_`)
		case '~':
			result.WriteString(`\textasciitilde{}`)
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}
