package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	// GitCommit and BuildDate are optional
	_ = GitCommit
	_ = BuildDate
}

func TestColored(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = orig }()

	cases := map[string]string{
		"0.3.0":                "0.3.0",
		"1.2.3-rc.1+build.123": "1.2.3-rc.1+build.123",
		"dev":                  "dev",
		"1..2":                 "1..2",
		"1.2":                  "1.2",
	}
	for in, want := range cases {
		if got := Colored(in); got != want {
			t.Errorf("Colored(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestColoredAddsEscapes(t *testing.T) {
	orig := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = orig }()

	if got := Colored("1.2.3"); got == "1.2.3" {
		t.Fatalf("expected colored output, got plain %q", got)
	}
}
