package core

import (
	"errors"
	"testing"
)

func TestNewMoney(t *testing.T) {
	cases := []struct {
		in int64
		ok bool
	}{
		{0, true},
		{1000, true},
		{-1, false},
		{-100, false},
	}
	for _, tc := range cases {
		m, err := NewMoney(tc.in)
		if tc.ok {
			if err != nil || m.Yen != tc.in {
				t.Fatalf("NewMoney(%d) = %v, %v", tc.in, m, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("NewMoney(%d) expected ErrInvalidArgument, got %v", tc.in, err)
		}
	}
}

func TestMoneyDivide(t *testing.T) {
	cases := []struct {
		amount, divisor, want int64
	}{
		{91789, 2, 45894},
		{1001, 2, 500},
		{1000, 2, 500},
		{0, 2, 0},
		{10, 3, 3},
	}
	for _, tc := range cases {
		got, err := Money{Yen: tc.amount}.Divide(tc.divisor)
		if err != nil {
			t.Fatalf("%d/%d unexpected error: %v", tc.amount, tc.divisor, err)
		}
		if got.Yen != tc.want {
			t.Fatalf("%d/%d = %d, want %d", tc.amount, tc.divisor, got.Yen, tc.want)
		}
	}

	for _, d := range []int64{0, -2} {
		if _, err := (Money{Yen: 1000}).Divide(d); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("divide by %d expected ErrInvalidArgument, got %v", d, err)
		}
	}
}

func TestMoneyDivideParity(t *testing.T) {
	for a := int64(0); a < 2000; a += 7 {
		half, err := Money{Yen: a}.Divide(2)
		if err != nil {
			t.Fatal(err)
		}
		rem := a - half.Yen*2
		if half.Yen*2 > a || (rem != 0 && rem != 1) {
			t.Fatalf("parity broken for %d: half=%d", a, half.Yen)
		}
	}
}

func TestMoneyFormat(t *testing.T) {
	cases := map[int64]string{
		0:       "0円",
		999:     "999円",
		45894:   "45,894円",
		100001:  "100,001円",
		1234567: "1,234,567円",
	}
	for in, want := range cases {
		if got := (Money{Yen: in}).Format(); got != want {
			t.Fatalf("Format(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestMoneyAddEqual(t *testing.T) {
	sum := Money{Yen: 45894}.Add(Money{Yen: 45895})
	if !sum.Equal(Money{Yen: 91789}) {
		t.Fatalf("unexpected sum: %v", sum)
	}
	if (Money{Yen: 1}).Equal(Money{Yen: 2}) {
		t.Fatalf("expected different amounts to differ")
	}
}
