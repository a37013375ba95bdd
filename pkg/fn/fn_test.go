package fn

import (
	"context"
	"errors"
	"strconv"
	"testing"
)

func TestResult(t *testing.T) {
	r := Ok(42)
	if !r.IsOk() || r.IsErr() {
		t.Fatal("Ok result misreports state")
	}
	v, err := r.Unwrap()
	if v != 42 || err != nil {
		t.Fatalf("Unwrap = (%v, %v)", v, err)
	}

	e := Err[int](errors.New("boom"))
	if e.IsOk() || !e.IsErr() {
		t.Fatal("Err result misreports state")
	}
	if got := e.UnwrapOr(7); got != 7 {
		t.Fatalf("UnwrapOr = %d, want 7", got)
	}
}

func TestFromPair(t *testing.T) {
	if r := FromPair(1, nil); r.IsErr() {
		t.Fatal("FromPair with nil error should be Ok")
	}
	if r := FromPair(0, errors.New("x")); r.IsOk() {
		t.Fatal("FromPair with error should be Err")
	}
}

func TestThen_Composes(t *testing.T) {
	parse := Stage[string, int](func(_ context.Context, s string) Result[int] {
		return FromPair(strconv.Atoi(s))
	})
	double := Stage[int, int](func(_ context.Context, n int) Result[int] {
		return Ok(n * 2)
	})

	v, err := Then(parse, double)(context.Background(), "21").Unwrap()
	if err != nil || v != 42 {
		t.Fatalf("Then = (%v, %v), want (42, nil)", v, err)
	}
}

func TestThen_ShortCircuits(t *testing.T) {
	called := false
	fail := Stage[int, int](func(_ context.Context, _ int) Result[int] {
		return Errf[int]("stage failed")
	})
	next := Stage[int, int](func(_ context.Context, n int) Result[int] {
		called = true
		return Ok(n)
	})

	r := Then(fail, next)(context.Background(), 1)
	if r.IsOk() {
		t.Fatal("expected error result")
	}
	if called {
		t.Fatal("second stage ran after first failed")
	}
}

func TestTap_PassesThrough(t *testing.T) {
	var seen int
	tap := Tap(func(_ context.Context, n int) { seen = n })
	v, err := tap(context.Background(), 9).Unwrap()
	if err != nil || v != 9 || seen != 9 {
		t.Fatalf("Tap = (%v, %v), seen %d", v, err, seen)
	}
}

func TestTraced_PreservesResult(t *testing.T) {
	ok := Traced("ok", Stage[int, int](func(_ context.Context, n int) Result[int] { return Ok(n + 1) }))
	if v, _ := ok(context.Background(), 1).Unwrap(); v != 2 {
		t.Fatalf("traced ok stage = %d, want 2", v)
	}

	fail := Traced("fail", Stage[int, int](func(_ context.Context, _ int) Result[int] {
		return Err[int](errors.New("boom"))
	}))
	if fail(context.Background(), 1).IsOk() {
		t.Fatal("traced failing stage should stay failed")
	}
}
