package vectorizer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// analyzer turns preprocessed text into the terms that index the vocabulary.
type analyzer struct {
	lowercase    bool
	stripAccents string
	char         bool
	tokenRe      *regexp.Regexp // nil means the default word-run tokenizer
	minN, maxN   int
	stopWords    map[string]struct{}
}

func newAnalyzer(s settings) (*analyzer, error) {
	a := &analyzer{
		lowercase:    s.lowercase,
		stripAccents: s.stripAccents,
		char:         s.analyzer == "char",
		minN:         s.minN,
		maxN:         s.maxN,
		stopWords:    s.stopWords,
	}
	if s.tokenPattern != defaultTokenPattern {
		re, err := compileTokenPattern(s.tokenPattern)
		if err != nil {
			return nil, err
		}
		a.tokenRe = re
	}
	return a, nil
}

// compileTokenPattern accepts Python-style patterns. The (?u) flag is
// implied in Go and is dropped; at most one capture group is allowed and,
// when present, its submatch is the token.
func compileTokenPattern(pattern string) (*regexp.Regexp, error) {
	p := strings.TrimPrefix(pattern, "(?u)")
	re, err := regexp.Compile(p)
	if err != nil {
		return nil, fmt.Errorf("vectorizer: invalid token_pattern %q: %w", pattern, err)
	}
	if re.NumSubexp() > 1 {
		return nil, fmt.Errorf("vectorizer: token_pattern %q has more than one capture group", pattern)
	}
	return re, nil
}

// analyze calls emit once per term occurrence in text.
func (a *analyzer) analyze(text string, emit func(term string)) {
	text = a.preprocess(text)
	if a.char {
		a.charNgrams(text, emit)
		return
	}
	a.wordNgrams(a.tokenize(text), emit)
}

// preprocess lowercases and then strips accents.
func (a *analyzer) preprocess(text string) string {
	if a.lowercase {
		text = strings.ToLower(text)
	}
	switch a.stripAccents {
	case "unicode":
		text = stripAccents(text)
	case "ascii":
		text = stripAccentsASCII(text)
	}
	return text
}

func (a *analyzer) tokenize(text string) []string {
	if a.tokenRe == nil {
		return wordRuns(text)
	}
	if a.tokenRe.NumSubexp() == 1 {
		var tokens []string
		for _, m := range a.tokenRe.FindAllStringSubmatch(text, -1) {
			tokens = append(tokens, m[1])
		}
		return tokens
	}
	return a.tokenRe.FindAllString(text, -1)
}

func (a *analyzer) wordNgrams(tokens []string, emit func(string)) {
	if a.stopWords != nil {
		kept := tokens[:0]
		for _, tok := range tokens {
			if _, stop := a.stopWords[tok]; !stop {
				kept = append(kept, tok)
			}
		}
		tokens = kept
	}

	for n := a.minN; n <= a.maxN && n <= len(tokens); n++ {
		if n == 1 {
			for _, tok := range tokens {
				emit(tok)
			}
			continue
		}
		for i := 0; i+n <= len(tokens); i++ {
			emit(strings.Join(tokens[i:i+n], " "))
		}
	}
}

func (a *analyzer) charNgrams(text string, emit func(string)) {
	runes := []rune(collapseWhitespace(text))
	for n := a.minN; n <= a.maxN && n <= len(runes); n++ {
		for i := 0; i+n <= len(runes); i++ {
			emit(string(runes[i : i+n]))
		}
	}
}

// wordRuns is the default tokenizer: maximal runs of word characters that
// are at least two characters long.
func wordRuns(text string) []string {
	var tokens []string
	start, n := -1, 0
	for i, r := range text {
		if isWordChar(r) {
			if start < 0 {
				start, n = i, 0
			}
			n++
			continue
		}
		if start >= 0 && n >= 2 {
			tokens = append(tokens, text[start:i])
		}
		start = -1
	}
	if start >= 0 && n >= 2 {
		tokens = append(tokens, text[start:])
	}
	return tokens
}

// collapseWhitespace replaces every run of two or more whitespace characters
// with a single space. Lone whitespace characters are kept as they are.
func collapseWhitespace(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if unicode.IsSpace(runes[i]) {
			j := i
			for j+1 < len(runes) && unicode.IsSpace(runes[j+1]) {
				j++
			}
			if j > i {
				b.WriteRune(' ')
				i = j
				continue
			}
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

// stripAccents removes combining marks after NFKD normalization.
func stripAccents(text string) string {
	if isASCII(text) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range norm.NFKD.String(text) {
		if unicode.In(r, unicode.Mn) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// stripAccentsASCII decomposes with NFKD and drops everything outside ASCII.
func stripAccentsASCII(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range norm.NFKD.String(text) {
		if r < unicode.MaxASCII+1 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}

func isWordChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
