package prompt

import (
	"bytes"
	"strings"
	"testing"
)

func TestConfirm_NonInteractive(t *testing.T) {
	c := Confirmer{
		In:            bytes.NewBufferString("y\n"),
		IsInteractive: func() bool { return false },
	}
	ok, err := c.Confirm("Delete key?", false)
	if err == nil {
		t.Fatalf("expected error for non-interactive confirm, got ok=%v", ok)
	}
}

func TestConfirm_Force(t *testing.T) {
	c := Confirmer{
		In:            bytes.NewBufferString("n\n"),
		IsInteractive: func() bool { return false },
	}
	ok, err := c.Confirm("Delete key?", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true when forced")
	}
}

func TestConfirm_Interactive(t *testing.T) {
	cases := []struct {
		answer string
		want   bool
	}{
		{answer: "y\n", want: true},
		{answer: "YES\n", want: true},
		{answer: "n\n", want: false},
		{answer: "\n", want: false},
		{answer: "y", want: true},
	}
	for _, tc := range cases {
		t.Run(strings.TrimSpace(tc.answer), func(t *testing.T) {
			out := &bytes.Buffer{}
			c := Confirmer{
				In:            bytes.NewBufferString(tc.answer),
				Out:           out,
				IsInteractive: func() bool { return true },
			}
			ok, err := c.Confirm("Delete key?", false)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tc.want {
				t.Fatalf("Confirm() = %v, want %v", ok, tc.want)
			}
			if !strings.Contains(out.String(), "Delete key? (y/n): ") {
				t.Fatalf("unexpected prompt: %q", out.String())
			}
		})
	}
}
