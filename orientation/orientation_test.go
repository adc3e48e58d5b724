package orientation

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 0},
		{90, 90},
		{360, 0},
		{450, 90},
		{-90, 270},
		{-180, 180},
		{-450, 270},
		{270, 270},
		{100, 90},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%d): got %d, want %d", c.in, got, c.want)
		}
	}
}

func TestRotateLeftFromZero(t *testing.T) {
	got := RotateLeft(State{})
	if got.Angle != 270 {
		t.Errorf("RotateLeft from 0: got %d, want 270", got.Angle)
	}
}

func TestRotateInverses(t *testing.T) {
	for _, angle := range []int{0, 90, 180, 270} {
		s := State{Angle: angle}
		if got := RotateLeft(RotateRight(s)); got != s {
			t.Errorf("rotateLeft(rotateRight(%d)): got %v", angle, got)
		}
		if got := RotateRight(RotateLeft(s)); got != s {
			t.Errorf("rotateRight(rotateLeft(%d)): got %v", angle, got)
		}
	}
}

func TestRotateNTimesRoundTrip(t *testing.T) {
	for n := 0; n <= 8; n++ {
		s := State{Angle: 90, FlipX: true}
		got := s
		for i := 0; i < n; i++ {
			got = RotateRight(got)
		}
		for i := 0; i < n; i++ {
			got = RotateLeft(got)
		}
		if got != s {
			t.Errorf("n=%d: got %v, want %v", n, got, s)
		}
	}
}

func TestResetIdempotent(t *testing.T) {
	s := State{Angle: 180, FlipX: true}
	once := Reset(s)
	twice := Reset(once)
	if once != twice {
		t.Errorf("reset not idempotent: %v vs %v", once, twice)
	}
	if once.Angle != 0 || once.FlipX {
		t.Errorf("reset: got %v, want zero state", once)
	}
}

func TestFlipSelfInverse(t *testing.T) {
	for _, s := range []State{{}, {Angle: 90}, {Angle: 270, FlipX: true}} {
		if got := Flip(Flip(s)); got != s {
			t.Errorf("flip(flip(%v)): got %v", s, got)
		}
	}
}

func TestCSS(t *testing.T) {
	cases := []struct {
		s    State
		want string
	}{
		{State{}, ""},
		{State{Angle: 90}, "rotate(90deg)"},
		{State{Angle: 270, FlipX: true}, "rotate(270deg) scaleX(-1)"},
		{State{FlipX: true}, "rotate(0deg) scaleX(-1)"},
	}
	for _, c := range cases {
		if got := c.s.CSS(); got != c.want {
			t.Errorf("CSS(%v): got %q, want %q", c.s, got, c.want)
		}
	}
}
