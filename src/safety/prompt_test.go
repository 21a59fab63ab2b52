package safety

import (
	"bytes"
	"strings"
	"testing"
)

func TestConfirm_YesFlagSkipsPrompt(t *testing.T) {
	var out bytes.Buffer
	ok, err := Confirm(Options{Yes: true}, strings.NewReader(""), &out, "Delete it?")
	if err != nil || !ok {
		t.Fatalf("Confirm = %v, %v, want true, nil", ok, err)
	}
	if out.Len() != 0 {
		t.Fatalf("prompted despite --yes: %q", out.String())
	}
}

func TestConfirm_ForceFlagSkipsPrompt(t *testing.T) {
	ok, err := Confirm(Options{Force: true}, strings.NewReader(""), nil, "Delete it?")
	if err != nil || !ok {
		t.Fatalf("Confirm = %v, %v, want true, nil", ok, err)
	}
}

func TestConfirm_DryRunDeclines(t *testing.T) {
	ok, err := Confirm(Options{DryRun: true, Yes: true}, strings.NewReader("y\n"), nil, "Delete it?")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if ok {
		t.Fatalf("dry run must decline")
	}
}

func TestConfirm_ReadsAnswer(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false}, // EOF without input
	}
	for _, tc := range cases {
		var out bytes.Buffer
		ok, err := Confirm(Options{}, strings.NewReader(tc.input), &out, "Proceed?")
		if err != nil {
			t.Fatalf("Confirm(%q): %v", tc.input, err)
		}
		if ok != tc.want {
			t.Fatalf("Confirm(%q) = %v, want %v", tc.input, ok, tc.want)
		}
		if !strings.Contains(out.String(), "Proceed? [y/N]:") {
			t.Fatalf("prompt output = %q", out.String())
		}
	}
}
