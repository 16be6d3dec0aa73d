package manifest

import (
	"slices"
	"testing"
)

func lib(name string, rules ...Rule) Library {
	l := Library{Name: name, Rules: rules}
	l.Downloads.Artifact = Artifact{Path: name + ".jar"}
	return l
}

func osRule(action, os string) Rule {
	r := Rule{Action: action}
	r.OS.Name = os
	return r
}

func names(libs []Library) []string {
	out := make([]string, len(libs))
	for i, l := range libs {
		out[i] = l.Name
	}
	return out
}

func TestApplicableNoRules(t *testing.T) {
	libs := []Library{lib("gson"), lib("guava")}

	got := slices.Collect(Applicable(libs, "linux"))
	if len(got) != 2 {
		t.Fatalf("expected 2 libraries, got %d", len(got))
	}
}

func TestApplicableFirstRuleMatches(t *testing.T) {
	libs := []Library{
		lib("lwjgl-natives-windows", osRule("allow", "windows")),
		lib("lwjgl-natives-osx", osRule("allow", "osx")),
		lib("gson"),
	}

	got := names(slices.Collect(Applicable(libs, "windows")))
	want := []string{"lwjgl-natives-windows", "gson"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestApplicableOnlyFirstRuleConsulted(t *testing.T) {
	// The second rule names the target platform, but only the first rule
	// is evaluated, so the entry is excluded.
	libs := []Library{
		lib("natives", osRule("allow", "osx"), osRule("allow", "windows")),
	}

	got := slices.Collect(Applicable(libs, "windows"))
	if len(got) != 0 {
		t.Errorf("expected entry excluded, got %v", names(got))
	}
}

func TestApplicableOrderPreserved(t *testing.T) {
	libs := []Library{lib("a"), lib("b", osRule("allow", "linux")), lib("c")}

	got := names(slices.Collect(Applicable(libs, "linux")))
	want := []string{"a", "b", "c"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestApplicableRestartable(t *testing.T) {
	libs := []Library{lib("a"), lib("b")}
	seq := Applicable(libs, "linux")

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if len(first) != 2 || len(second) != 2 {
		t.Errorf("sequence not restartable: %d then %d", len(first), len(second))
	}
}
