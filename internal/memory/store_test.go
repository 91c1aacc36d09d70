package memory

import (
	"context"
	"math"
	"testing"
)

func TestUpsertGetRoundTrip(t *testing.T) {
	s := NewStore()
	s.Upsert(Item{ID: "x", Text: "remember this", Metadata: map[string]any{"kind": "note"}})

	got, ok := s.Get("x")
	if !ok {
		t.Fatal("get after upsert should find the item")
	}
	if got.Text != "remember this" {
		t.Fatalf("text = %q", got.Text)
	}
	if got.Metadata["kind"] != "note" {
		t.Fatalf("metadata = %v", got.Metadata)
	}
}

func TestUpsertOverwritesByID(t *testing.T) {
	s := NewStore()
	s.Upsert(Item{ID: "x", Text: "first"})
	s.Upsert(Item{ID: "x", Text: "second"})

	got, _ := s.Get("x")
	if got.Text != "second" {
		t.Fatalf("text = %q, want overwrite", got.Text)
	}
	if len(s.List()) != 1 {
		t.Fatalf("list length = %d, want 1", len(s.List()))
	}
}

func TestDeleteThenGetNotFound(t *testing.T) {
	s := NewStore()
	s.Upsert(Item{ID: "x", Text: "gone soon"})

	if !s.Delete("x") {
		t.Fatal("delete of existing item should report true")
	}
	if _, ok := s.Get("x"); ok {
		t.Fatal("get after delete should report not found")
	}
	if s.Delete("x") {
		t.Fatal("second delete should report false")
	}
}

func TestListPreservesInsertionOrder(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"c", "a", "b"} {
		s.Upsert(Item{ID: id, Text: id})
	}
	got := s.List()
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("list[%d] = %q, want %q", i, got[i].ID, want[i])
		}
	}
}

func TestSimilarTokenOverlapMonotonicity(t *testing.T) {
	s := NewStore()
	s.Upsert(Item{ID: "close", Text: "alpha beta gamma"})
	s.Upsert(Item{ID: "far", Text: "alpha delta epsilon"})

	results := s.Similar(context.Background(), "alpha beta gamma", 10)
	if len(results) == 0 {
		t.Fatal("expected matches")
	}
	if results[0].Item.ID != "close" {
		t.Fatalf("top result = %q, want the item sharing more tokens", results[0].Item.ID)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Fatalf("results not sorted descending: %v", results)
		}
	}
}

func TestSimilarExcludesZeroScores(t *testing.T) {
	s := NewStore()
	s.Upsert(Item{ID: "empty", Text: ""})

	results := s.Similar(context.Background(), "anything at all", 5)
	for _, r := range results {
		if r.Score <= 0 {
			t.Fatalf("score %f should have been filtered", r.Score)
		}
	}
}

func TestSimilarRespectsK(t *testing.T) {
	s := NewStore()
	s.Upsert(Item{ID: "a", Text: "shared token one"})
	s.Upsert(Item{ID: "b", Text: "shared token two"})
	s.Upsert(Item{ID: "c", Text: "shared token three"})

	results := s.Similar(context.Background(), "shared token", 2)
	if len(results) > 2 {
		t.Fatalf("result count = %d, want at most 2", len(results))
	}
	if got := s.Similar(context.Background(), "shared token", 0); got != nil {
		t.Fatalf("k=0 should return nothing, got %v", got)
	}
}

func TestTextToVectorDeterministicAndNormalized(t *testing.T) {
	a := TextToVector("The quick brown fox", DefaultDims)
	b := TextToVector("The quick brown fox", DefaultDims)

	var norm float64
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("identical text must hash to identical vectors")
		}
		norm += a[i] * a[i]
	}
	if math.Abs(norm-1) > 1e-9 {
		t.Fatalf("vector norm = %f, want 1", norm)
	}
}

func TestTextToVectorCaseInsensitive(t *testing.T) {
	a := TextToVector("Alpha BETA", DefaultDims)
	b := TextToVector("alpha beta", DefaultDims)
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("tokenization must lower-case before hashing")
		}
	}
}

func TestTextToVectorEmptyInput(t *testing.T) {
	vec := TextToVector("", DefaultDims)
	for _, v := range vec {
		if v != 0 {
			t.Fatal("empty text should produce the zero vector")
		}
	}
}

func TestCosineBounds(t *testing.T) {
	a := TextToVector("one two three", DefaultDims)
	if got := Cosine(a, a); math.Abs(got-1) > 1e-9 {
		t.Fatalf("self-cosine = %f, want 1", got)
	}
	if got := Cosine(a, make([]float64, DefaultDims)); got != 0 {
		t.Fatalf("cosine against zero vector = %f, want 0", got)
	}
	if got := Cosine(a, []float64{1}); got != 0 {
		t.Fatalf("cosine of mismatched lengths = %f, want 0", got)
	}
}

func TestTokenOverlapFormula(t *testing.T) {
	a := tokenSet("alpha beta gamma delta")
	b := tokenSet("alpha beta")
	want := 2.0 / math.Sqrt(4*2)
	if got := tokenOverlap(a, b); math.Abs(got-want) > 1e-9 {
		t.Fatalf("overlap = %f, want %f", got, want)
	}
	if got := tokenOverlap(a, tokenSet("")); got != 0 {
		t.Fatalf("overlap with empty set = %f, want 0", got)
	}
}
