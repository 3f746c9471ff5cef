package retrieval

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// englishStopWords drops function words before n-grams are formed.
var englishStopWords = toSet(strings.Fields(`
a about above after again against all also am an and any are as at be because
been before being below between both but by can cannot could did do does doing
down during each either else etc ever every few for from further get had has
have having he her here hers herself him himself his how however i if in into
is it its itself just least less me more most must my myself neither no nor not
now of off often on once only or other our ours ourselves out over own per
please rather same she should since so some still such than that the their
theirs them themselves then there these they this those though through thus to
too under until up upon us very via was we well were what whatever when where
whether which while who whom whose why will with within without would yet you
your yours yourself yourselves
`))

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

type weight struct {
	term  int
	value float64
}

// sparseVector holds non-zero weights sorted by term id.
type sparseVector []weight

// tfidfIndex is a unigram+bigram TF-IDF space with smoothed idf and L2
// normalised document vectors.
type tfidfIndex struct {
	vocabulary map[string]int
	idf        []float64
	documents  []sparseVector
}

func analyze(text string) []string {
	var words []string
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if _, stop := englishStopWords[tok]; stop {
			continue
		}
		words = append(words, tok)
	}

	terms := make([]string, 0, len(words)*2)
	terms = append(terms, words...)
	for i := 0; i+1 < len(words); i++ {
		terms = append(terms, words[i]+" "+words[i+1])
	}
	return terms
}

func buildTFIDF(texts []string) *tfidfIndex {
	idx := &tfidfIndex{vocabulary: map[string]int{}}

	counts := make([]map[int]int, len(texts))
	var df []int
	for d, text := range texts {
		tf := map[int]int{}
		for _, term := range analyze(text) {
			id, ok := idx.vocabulary[term]
			if !ok {
				id = len(idx.vocabulary)
				idx.vocabulary[term] = id
				df = append(df, 0)
			}
			if tf[id] == 0 {
				df[id]++
			}
			tf[id]++
		}
		counts[d] = tf
	}

	n := float64(len(texts))
	idx.idf = make([]float64, len(df))
	for id, f := range df {
		idx.idf[id] = math.Log((1+n)/(1+float64(f))) + 1
	}

	idx.documents = make([]sparseVector, len(texts))
	for d, tf := range counts {
		idx.documents[d] = idx.weigh(tf)
	}
	return idx
}

func (idx *tfidfIndex) weigh(tf map[int]int) sparseVector {
	vec := make(sparseVector, 0, len(tf))
	for id, c := range tf {
		vec = append(vec, weight{term: id, value: float64(c) * idx.idf[id]})
	}
	sort.Slice(vec, func(i, j int) bool { return vec[i].term < vec[j].term })

	var norm float64
	for _, w := range vec {
		norm += w.value * w.value
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i].value /= norm
	}
	return vec
}

// vectorize maps a query into the index space. Unknown terms are ignored.
func (idx *tfidfIndex) vectorize(text string) sparseVector {
	tf := map[int]int{}
	for _, term := range analyze(text) {
		if id, ok := idx.vocabulary[term]; ok {
			tf[id]++
		}
	}
	return idx.weigh(tf)
}

// cosine assumes both vectors are L2 normalised.
func cosine(a, b sparseVector) float64 {
	var dot float64
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i].term == b[j].term:
			dot += a[i].value * b[j].value
			i++
			j++
		case a[i].term < b[j].term:
			i++
		default:
			j++
		}
	}
	return dot
}
