package clip

import "strings"

// keymap is the per-level lookup index built once from an AppSpec: short
// rune, long name (including aliases), and positional slot each resolve to
// their declaration in O(1). Collisions and positional gaps are developer
// errors surfaced here so Parse never re-checks them.
type keymap struct {
	byShort    map[rune]*ArgSpec
	byLong     map[string]*ArgSpec
	positional []*ArgSpec // index i holds positional index i+1
}

func newKeymap(spec *AppSpec) (*keymap, error) {
	k := &keymap{
		byShort: make(map[rune]*ArgSpec),
		byLong:  make(map[string]*ArgSpec),
	}

	var positionals []*ArgSpec
	for _, arg := range spec.args {
		if arg.Short != 0 {
			if other, taken := k.byShort[arg.Short]; taken {
				return nil, specErrorf("spec %q: short -%c declared by both %q and %q",
					spec.name, arg.Short, other.ID, arg.ID)
			}
			k.byShort[arg.Short] = arg
		}
		for _, long := range longNames(arg) {
			if other, taken := k.byLong[long]; taken {
				return nil, specErrorf("spec %q: long --%s declared by both %q and %q",
					spec.name, long, other.ID, arg.ID)
			}
			k.byLong[long] = arg
		}
		if arg.positional() {
			positionals = append(positionals, arg)
		}
	}

	// Positional indices must be contiguous from 1, with at most one
	// variadic slot, and only at the end.
	k.positional = make([]*ArgSpec, len(positionals))
	for _, arg := range positionals {
		if arg.Index < 1 || arg.Index > len(positionals) {
			return nil, specErrorf("spec %q: positional %q index %d out of range 1..%d",
				spec.name, arg.ID, arg.Index, len(positionals))
		}
		if k.positional[arg.Index-1] != nil {
			return nil, specErrorf("spec %q: positionals %q and %q share index %d",
				spec.name, k.positional[arg.Index-1].ID, arg.ID, arg.Index)
		}
		k.positional[arg.Index-1] = arg
	}
	for i, arg := range k.positional {
		if arg.Variadic && i != len(k.positional)-1 {
			return nil, specErrorf("spec %q: variadic positional %q must occupy the last index",
				spec.name, arg.ID)
		}
	}
	return k, nil
}

func longNames(arg *ArgSpec) []string {
	if arg.Long == "" && len(arg.Aliases) == 0 {
		return nil
	}
	names := make([]string, 0, 1+len(arg.Aliases))
	if arg.Long != "" {
		names = append(names, arg.Long)
	}
	return append(names, arg.Aliases...)
}

// resolveShort looks up a short character.
func (k *keymap) resolveShort(r rune) *ArgSpec {
	return k.byShort[r]
}

// resolveLong looks up a long name. When infer is set an unambiguous prefix
// also resolves; an ambiguous prefix resolves to nothing so the caller
// reports an unknown argument.
func (k *keymap) resolveLong(name string, infer bool) *ArgSpec {
	if arg, ok := k.byLong[name]; ok {
		return arg
	}
	if !infer || name == "" {
		return nil
	}
	var match *ArgSpec
	for long, arg := range k.byLong {
		if strings.HasPrefix(long, name) {
			if match != nil && match != arg {
				return nil
			}
			match = arg
		}
	}
	return match
}

// resolvePositional looks up a 1-based slot index.
func (k *keymap) resolvePositional(n int) *ArgSpec {
	if n < 1 || n > len(k.positional) {
		return nil
	}
	return k.positional[n-1]
}

// longCandidates lists every long name at this level in declaration order,
// for suggestion lookups.
func (k *keymap) longCandidates(spec *AppSpec, inherited []*ArgSpec) []string {
	names := make([]string, 0, len(k.byLong))
	for _, arg := range spec.args {
		names = append(names, longNames(arg)...)
	}
	for _, arg := range inherited {
		names = append(names, longNames(arg)...)
	}
	return names
}
