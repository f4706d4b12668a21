// Package tokenize turns a sentence into lowercase content tokens for the
// centrality signal.
//
// Two strategies exist. Unicode segments words per UAX #29, applies NFKC
// normalisation, keeps purely alphanumeric tokens and drops English
// stopwords. Regex extracts maximal runs of word characters with no stopword
// filtering. Adapter runs the first and falls back to the second; it never
// panics and never returns an error.
package tokenize

import (
	"bufio"
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// Tokenizer splits a sentence into tokens.
type Tokenizer interface {
	Tokenize(sentence string) ([]string, error)
}

//go:embed stopwords.txt
var stopwordsFile string

// Stopwords is the English stopword list used by Unicode.
var Stopwords = loadStopwords(stopwordsFile)

func loadStopwords(data string) map[string]struct{} {
	set := make(map[string]struct{}, 200)
	scan := bufio.NewScanner(strings.NewReader(data))
	for scan.Scan() {
		if w := strings.TrimSpace(scan.Text()); w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

// Unicode is the advanced strategy.
type Unicode struct {
	stopwords map[string]struct{}
}

// NewUnicode returns the advanced strategy with the given stopword set. A nil
// set uses Stopwords.
func NewUnicode(stopwords map[string]struct{}) *Unicode {
	if stopwords == nil {
		stopwords = Stopwords
	}
	return &Unicode{stopwords: stopwords}
}

// Tokenize implements Tokenizer.
func (u *Unicode) Tokenize(sentence string) ([]string, error) {
	text := strings.ToLower(norm.NFKC.String(sentence))

	tokens := make([]string, 0, 16)
	iter := words.FromString(text)
	for iter.Next() {
		tok := iter.Value()
		if !isAlnum(tok) {
			continue
		}
		if _, stop := u.stopwords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

var wordRun = regexp.MustCompile(`\w+`)

// Regex is the fallback strategy.
type Regex struct{}

// Tokenize implements Tokenizer.
func (Regex) Tokenize(sentence string) ([]string, error) {
	found := wordRun.FindAllString(strings.ToLower(sentence), -1)
	if found == nil {
		return []string{}, nil
	}
	return found, nil
}

// Adapter tries Primary and falls back to Fallback on error or panic.
type Adapter struct {
	Primary  Tokenizer
	Fallback Tokenizer
	logger   *zap.Logger
}

// New returns the default adapter: Unicode with Regex fallback.
func New(logger *zap.Logger) *Adapter {
	return NewAdapter(NewUnicode(nil), Regex{}, logger)
}

// NewAdapter builds an adapter over arbitrary strategies. Either may be nil.
func NewAdapter(primary, fallback Tokenizer, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{Primary: primary, Fallback: fallback, logger: logger}
}

// Tokenize returns the tokens of sentence. The worst case is an empty slice.
func (a *Adapter) Tokenize(sentence string) []string {
	if a.Primary != nil {
		tokens, err := safeTokenize(a.Primary, sentence)
		if err == nil {
			return tokens
		}
		a.logger.Debug("primary tokenizer failed, using fallback", zap.Error(err))
	}
	if a.Fallback != nil {
		tokens, err := safeTokenize(a.Fallback, sentence)
		if err == nil {
			return tokens
		}
		a.logger.Debug("fallback tokenizer failed", zap.Error(err))
	}
	return []string{}
}

func safeTokenize(t Tokenizer, sentence string) (tokens []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tokenizer panic: %v", r)
		}
	}()
	tokens, err = t.Tokenize(sentence)
	if err == nil && tokens == nil {
		tokens = []string{}
	}
	return tokens, err
}
