package memory

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"sync"
)

// DefaultDims is the hashed-vector dimensionality.
const DefaultDims = 16

// maxTokens caps the influence of pathological inputs on a hashed vector.
const maxTokens = 256

var (
	vecCacheMu sync.Mutex
	vecCache   = map[string][]float64{}
)

// TextToVector returns a deterministic bag-of-tokens embedding: whitespace
// tokens, lower-cased, FNV-1a hashed into dims buckets, L2-normalized.
// Results are memoized per exact input text.
func TextToVector(text string, dims int) []float64 {
	if dims <= 0 {
		dims = DefaultDims
	}
	cacheKey := fmt.Sprintf("%d\x00%s", dims, text)

	vecCacheMu.Lock()
	cached, ok := vecCache[cacheKey]
	vecCacheMu.Unlock()
	if ok {
		return cached
	}

	vec := make([]float64, dims)
	for i, token := range strings.Fields(strings.ToLower(text)) {
		if i >= maxTokens {
			break
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vec[h.Sum32()%uint32(dims)]++
	}
	l2Normalize(vec)

	vecCacheMu.Lock()
	vecCache[cacheKey] = vec
	vecCacheMu.Unlock()
	return vec
}

// Cosine returns the cosine similarity of two vectors, 0 for mismatched or
// zero-magnitude inputs.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// tokenSet returns the distinct lower-cased whitespace tokens of text.
func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range strings.Fields(strings.ToLower(text)) {
		set[token] = struct{}{}
	}
	return set
}

// tokenOverlap scores two token sets as |intersection| / sqrt(|a|*|b|).
func tokenOverlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	var common float64
	for token := range small {
		if _, ok := large[token]; ok {
			common++
		}
	}
	return common / math.Sqrt(float64(len(a))*float64(len(b)))
}

func l2Normalize(vec []float64) {
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
}
