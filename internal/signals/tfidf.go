package signals

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/fyrsmithlabs/lexisum/internal/weights"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// tfidfToken matches runs of two or more word characters.
var tfidfToken = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// TFIDF vectorizes documents into L2-normalized TF-IDF rows over unigram and
// bigram terms with smooth idf.
type TFIDF struct {
	// MaxFeatures caps the vocabulary by corpus term frequency, ties broken
	// alphabetically. Zero means unlimited.
	MaxFeatures int
	// MaxNGram is the longest n-gram extracted. Values below 1 mean 1.
	MaxNGram int
}

// NewTFIDF returns a vectorizer with 5000 features and bigrams.
func NewTFIDF() *TFIDF {
	return &TFIDF{MaxFeatures: 5000, MaxNGram: 2}
}

// Analyze returns the lowercase n-gram terms of doc, unigrams first.
func (v *TFIDF) Analyze(doc string) []string {
	tokens := tfidfToken.FindAllString(strings.ToLower(doc), -1)
	maxN := v.MaxNGram
	if maxN < 1 {
		maxN = 1
	}

	terms := make([]string, 0, len(tokens)*maxN)
	for n := 1; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}

// FitTransform learns the vocabulary of docs and returns the document-term
// matrix (one row per doc) and the vocabulary in column order.
func (v *TFIDF) FitTransform(docs []string) (*mat.Dense, []string, error) {
	counts := make([]map[string]int, len(docs))
	total := make(map[string]int)
	df := make(map[string]int)

	for d, doc := range docs {
		counts[d] = make(map[string]int)
		for _, term := range v.Analyze(doc) {
			counts[d][term]++
			total[term]++
		}
		for term := range counts[d] {
			df[term]++
		}
	}
	if len(total) == 0 {
		return nil, nil, ErrEmptyVocabulary
	}

	vocab := v.limitFeatures(total)
	index := make(map[string]int, len(vocab))
	for i, term := range vocab {
		index[term] = i
	}

	nDocs := float64(len(docs))
	idf := make([]float64, len(vocab))
	for i, term := range vocab {
		idf[i] = math.Log((1+nDocs)/(1+float64(df[term]))) + 1
	}

	m := mat.NewDense(len(docs), len(vocab), nil)
	for d := range docs {
		row := m.RawRowView(d)
		for term, c := range counts[d] {
			if col, ok := index[term]; ok {
				row[col] = float64(c) * idf[col]
			}
		}
		if norm := floats.Norm(row, 2); norm > 0 {
			floats.Scale(1/norm, row)
		}
	}
	return m, vocab, nil
}

// limitFeatures keeps the MaxFeatures most frequent terms and returns them
// sorted alphabetically.
func (v *TFIDF) limitFeatures(total map[string]int) []string {
	vocab := make([]string, 0, len(total))
	for term := range total {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)

	if v.MaxFeatures > 0 && len(vocab) > v.MaxFeatures {
		sort.SliceStable(vocab, func(a, b int) bool {
			return total[vocab[a]] > total[vocab[b]]
		})
		vocab = vocab[:v.MaxFeatures]
		sort.Strings(vocab)
	}
	return vocab
}

// CentroidScores returns the cosine similarity of each row of m to the mean
// row. Zero rows score 0.
func CentroidScores(m mat.Matrix) []float64 {
	r, c := m.Dims()
	centroid := make([]float64, c)
	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		rows[i] = mat.Row(nil, i, m)
		floats.Add(centroid, rows[i])
	}
	if r > 0 {
		floats.Scale(1/float64(r), centroid)
	}

	scores := make([]float64, r)
	for i, row := range rows {
		scores[i] = weights.Cosine(row, centroid)
	}
	return scores
}
