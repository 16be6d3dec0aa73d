package manifest

import "iter"

// Applicable yields the library entries that apply to the given target
// platform ("windows", "linux", "osx").
//
// An entry with no rules always applies. An entry with rules applies iff
// its first rule names the target platform; later rules are not consulted.
// Real manifests can carry multi-clause allow/disallow chains, but the only
// condition this launcher has ever needed is a single allow rule pinning a
// native library to one OS, so that is the grammar supported here.
func Applicable(libs []Library, platform string) iter.Seq[Library] {
	return func(yield func(Library) bool) {
		for _, lib := range libs {
			if len(lib.Rules) > 0 && lib.Rules[0].OS.Name != platform {
				continue
			}
			if !yield(lib) {
				return
			}
		}
	}
}
