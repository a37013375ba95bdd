package sentiment

import (
	"math"
	"testing"
)

func TestScore_Range(t *testing.T) {
	a := New()
	texts := []string{
		"This professor is absolutely amazing, best lectures ever!",
		"Terrible class, the worst teaching I have ever experienced.",
		"The exam covers chapters one through five.",
		"ok",
	}
	for _, text := range texts {
		s := a.Score(text)
		if s < -1 || s > 1 {
			t.Errorf("Score(%q) = %v, out of [-1, 1]", text, s)
		}
	}
}

func TestScore_Empty(t *testing.T) {
	if s := New().Score(""); s != 0 {
		t.Fatalf("Score(\"\") = %v, want 0", s)
	}
}

func TestScore_Polarity(t *testing.T) {
	a := New()
	pos := a.Score("Great professor, wonderful and helpful, I loved this class!")
	neg := a.Score("Awful professor, boring and unfair, I hated every minute.")
	if pos <= 0 {
		t.Errorf("positive review scored %v, want > 0", pos)
	}
	if neg >= 0 {
		t.Errorf("negative review scored %v, want < 0", neg)
	}
}

func TestAverage(t *testing.T) {
	if avg := Average(nil); avg != 0 {
		t.Fatalf("Average(nil) = %v, want 0", avg)
	}
	if avg := Average([]float64{0.4}); avg != 0.4 {
		t.Fatalf("Average single = %v, want 0.4", avg)
	}
	avg := Average([]float64{0.5, -0.1, 0.2})
	if math.Abs(avg-0.2) > 1e-9 {
		t.Fatalf("Average = %v, want 0.2", avg)
	}
}

func TestAverage_SingleMatchesScore(t *testing.T) {
	a := New()
	text := "Engaging lectures and fair grading."
	if got := Average([]float64{a.Score(text)}); got != a.Score(text) {
		t.Fatalf("Average of one score = %v, want %v", got, a.Score(text))
	}
}
