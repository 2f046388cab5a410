package clip

// Build finalizes the spec tree: injects the help/version arguments, runs
// the structural self-check, and constructs each level's keymap index. The
// check runs once per spec; repeated Build and Parse calls reuse the result.
// A non-nil error is always a *SpecError and indicates a bug in the
// embedding application, never bad user input.
func (a *AppSpec) Build() (*AppSpec, error) {
	a.buildOnce.Do(func() {
		a.buildErr = a.build()
	})
	if a.buildErr != nil {
		return nil, a.buildErr
	}
	return a, nil
}

// MustBuild is Build for specs assembled from constants; it panics on a
// malformed spec.
func (a *AppSpec) MustBuild() *AppSpec {
	spec, err := a.Build()
	if err != nil {
		panic(err)
	}
	return spec
}

// ensureBuilt lets Parse run against a spec the caller never built
// explicitly, still validating at most once.
func (a *AppSpec) ensureBuilt() error {
	_, err := a.Build()
	return err
}

func (a *AppSpec) build() error {
	a.injectRequestArgs()

	if err := a.check(); err != nil {
		return err
	}

	keys, err := newKeymap(a)
	if err != nil {
		return err
	}
	a.keys = keys

	for _, sub := range a.subcommands {
		// Subcommands inherit the help/version suppression toggles so a
		// single setting at the root governs the whole tree.
		sub.settings |= a.settings & (DisableHelpArg | DisableVersionArg)
		if sub.version == "" {
			sub.version = a.version
		}
		if _, err := sub.Build(); err != nil {
			return err
		}
	}
	return nil
}

// injectRequestArgs adds the --help and --version arguments unless
// suppressed or shadowed by an explicit declaration. Short forms are only
// claimed when still free.
func (a *AppSpec) injectRequestArgs() {
	if !a.Has(DisableHelpArg) && a.findArg("help") == nil && !a.longTaken("help") {
		help := &ArgSpec{ID: "help", Long: "help", Help: "Print help information", request: HelpRequest}
		if !a.shortTaken('h') {
			help.Short = 'h'
		}
		a.args = append(a.args, help)
	}
	if a.version != "" && !a.Has(DisableVersionArg) && a.findArg("version") == nil && !a.longTaken("version") {
		version := &ArgSpec{ID: "version", Long: "version", Help: "Print version information", request: VersionRequest}
		if !a.shortTaken('V') {
			version.Short = 'V'
		}
		a.args = append(a.args, version)
	}
}

func (a *AppSpec) shortTaken(r rune) bool {
	for _, arg := range a.args {
		if arg.Short == r {
			return true
		}
	}
	return false
}

func (a *AppSpec) longTaken(name string) bool {
	for _, arg := range a.args {
		if arg.Long == name {
			return true
		}
		for _, alias := range arg.Aliases {
			if alias == name {
				return true
			}
		}
	}
	return false
}

// check applies the structural invariants of one level. Duplicate keys and
// positional gaps are reported by the keymap build; everything else lives
// here.
//
//nolint:gocognit // one linear pass per invariant reads better than helpers
func (a *AppSpec) check() error {
	seen := make(map[string]struct{}, len(a.args))
	for _, arg := range a.args {
		if arg.ID == "" {
			return specErrorf("spec %q: argument with empty id", a.name)
		}
		if _, dup := seen[arg.ID]; dup {
			return specErrorf("spec %q: duplicate argument id %q", a.name, arg.ID)
		}
		seen[arg.ID] = struct{}{}

		if arg.positional() && (arg.Short != 0 || arg.Long != "") {
			return specErrorf("spec %q: positional %q cannot carry short or long names", a.name, arg.ID)
		}
		if arg.Variadic && !arg.positional() {
			return specErrorf("spec %q: variadic %q must be positional", a.name, arg.ID)
		}
		if !arg.TakesValue && arg.Arity != (Arity{}) {
			return specErrorf("spec %q: argument %q declares an arity but takes no value", a.name, arg.ID)
		}
		if arg.TakesValue {
			if arg.Arity == (Arity{}) {
				arg.Arity = Arity{Min: 1, Max: 1}
			}
			if arg.Arity.Min < 0 || arg.Arity.Min == 0 && arg.Arity.Max == 0 ||
				arg.Arity.Max >= 0 && arg.Arity.Max < arg.Arity.Min {
				return specErrorf("spec %q: argument %q has invalid arity [%d, %d]",
					a.name, arg.ID, arg.Arity.Min, arg.Arity.Max)
			}
		}
	}

	// References must resolve within the same level.
	for _, arg := range a.args {
		for _, id := range arg.Requires {
			if _, ok := seen[id]; !ok {
				return specErrorf("spec %q: %q requires undeclared id %q", a.name, arg.ID, id)
			}
		}
		for _, id := range arg.ConflictsWith {
			if _, ok := seen[id]; !ok {
				return specErrorf("spec %q: %q conflicts with undeclared id %q", a.name, arg.ID, id)
			}
		}
		for _, id := range arg.RequiredUnless {
			if _, ok := seen[id]; !ok {
				return specErrorf("spec %q: %q required-unless undeclared id %q", a.name, arg.ID, id)
			}
		}
	}

	groupIDs := make(map[string]struct{}, len(a.groups))
	for _, g := range a.groups {
		if _, dup := groupIDs[g.ID]; dup {
			return specErrorf("spec %q: duplicate group id %q", a.name, g.ID)
		}
		groupIDs[g.ID] = struct{}{}
		if len(g.Members) == 0 {
			return specErrorf("spec %q: group %q has no members", a.name, g.ID)
		}
		for _, id := range g.Members {
			if _, ok := seen[id]; !ok {
				return specErrorf("spec %q: group %q references undeclared id %q", a.name, g.ID, id)
			}
		}
	}
	for _, g := range a.groups {
		for _, id := range g.ConflictsWith {
			if _, argOK := seen[id]; !argOK {
				if _, groupOK := groupIDs[id]; !groupOK {
					return specErrorf("spec %q: group %q conflicts with undeclared id %q", a.name, g.ID, id)
				}
			}
		}
	}

	subNames := make(map[string]struct{}, len(a.subcommands))
	for _, sub := range a.subcommands {
		names := append([]string{sub.name}, sub.aliases...)
		for _, n := range names {
			if _, dup := subNames[n]; dup {
				return specErrorf("spec %q: duplicate subcommand name %q", a.name, n)
			}
			subNames[n] = struct{}{}
		}
	}
	return nil
}
