package clip

import "sync"

// Settings is a bit-set of parse-time toggles on an AppSpec. Settings are
// resolved once at build time; subcommands inherit nothing implicitly except
// the auto-injected help/version arguments.
type Settings uint16

const (
	// AllowNegativeNumbers treats tokens like -5 or -1.5 as positionals
	// instead of short-flag clusters.
	AllowNegativeNumbers Settings = 1 << iota
	// SubcommandRequired makes a parse without a dispatched subcommand fail.
	SubcommandRequired
	// InferLongArgs resolves unambiguous prefixes of long names (--conf for
	// --config when nothing else starts with "conf").
	InferLongArgs
	// DisableHelpArg suppresses the auto-injected --help/-h argument.
	DisableHelpArg
	// DisableVersionArg suppresses the auto-injected --version/-V argument.
	DisableVersionArg
)

// Arity declares how many values an option consumes per occurrence.
// Max < 0 means unbounded (greedy until the next flag-like token).
// The zero value is normalized to exactly one value during Build.
type Arity struct {
	Min int
	Max int
}

// exact reports whether the arity is a fixed count.
func (a Arity) exact() bool { return a.Max >= 0 && a.Min == a.Max }

// ArgSpec declares one flag, option, or positional argument. Instances are
// created through Arg() builders and must not be mutated after the owning
// AppSpec is built.
type ArgSpec struct {
	ID        string
	Short     rune
	Long      string
	Aliases   []string
	Help      string
	ValueName string

	TakesValue     bool
	Arity          Arity
	MaxOccurrences int // 0 = once; < 0 = unbounded (stackable)

	PossibleValues []string
	Default        string
	HasDefault     bool
	Env            string

	Requires       []string
	ConflictsWith  []string
	Required       bool
	RequiredUnless []string

	Index    int // 1-based positional index; 0 for flags/options
	Variadic bool

	Global    bool
	Hidden    bool
	DenyEmpty bool

	// Validator runs against every captured value during validation;
	// a non-nil return surfaces as a value validation failure.
	Validator func(string) error

	// request marks the auto-injected help/version arguments.
	request RequestKind
}

// positional reports whether the argument fills an index slot.
func (a *ArgSpec) positional() bool { return a.Index > 0 }

// maxOccurrences normalizes the occurrence cap (0 means exactly once).
func (a *ArgSpec) maxOccurrences() int {
	if a.MaxOccurrences == 0 {
		return 1
	}
	return a.MaxOccurrences
}

// displayName renders the name users typed: --long, -s, or the bare id for
// positionals.
func (a *ArgSpec) displayName() string {
	switch {
	case a.Long != "":
		return "--" + a.Long
	case a.Short != 0:
		return "-" + string(a.Short)
	default:
		return a.ID
	}
}

// ArgGroup is a relational constraint over a set of ArgSpec ids.
type ArgGroup struct {
	ID            string
	Members       []string
	Required      bool
	Multiple      bool // when false, at most one member may be present
	ConflictsWith []string
}

// AppSpec is the immutable-after-build description of one command: its
// arguments, groups, settings, and child subcommand specs. Construct it with
// New and the fluent setters, then finalize with Build or MustBuild; the
// structural self-check runs exactly once per spec.
type AppSpec struct {
	name     string
	version  string
	about    string
	aliases  []string
	hidden   bool
	settings Settings

	args        []*ArgSpec
	groups      []*ArgGroup
	subcommands []*AppSpec

	keys *keymap

	buildOnce sync.Once
	buildErr  error
}

// New starts an AppSpec for a command with the given name. Subcommands are
// built with New as well and attached via Subcommand.
func New(name string) *AppSpec {
	return &AppSpec{name: name}
}

// Version records the version string and enables the auto-injected
// --version argument.
func (a *AppSpec) Version(version string) *AppSpec {
	a.version = version
	return a
}

// About sets the one-line description used by renderers.
func (a *AppSpec) About(about string) *AppSpec {
	a.about = about
	return a
}

// Alias adds alternative names under which this spec matches as a
// subcommand.
func (a *AppSpec) Alias(aliases ...string) *AppSpec {
	a.aliases = append(a.aliases, aliases...)
	return a
}

// Hidden excludes this subcommand from rendering. Matching is unaffected.
func (a *AppSpec) Hidden() *AppSpec {
	a.hidden = true
	return a
}

// Setting ORs toggles into the settings set.
func (a *AppSpec) Setting(s Settings) *AppSpec {
	a.settings |= s
	return a
}

// Arg appends an argument declaration.
func (a *AppSpec) Arg(b *ArgBuilder) *AppSpec {
	a.args = append(a.args, b.arg)
	return a
}

// Group appends a group constraint.
func (a *AppSpec) Group(b *GroupBuilder) *AppSpec {
	a.groups = append(a.groups, b.group)
	return a
}

// Subcommand attaches child command specs.
func (a *AppSpec) Subcommand(children ...*AppSpec) *AppSpec {
	a.subcommands = append(a.subcommands, children...)
	return a
}

// Read accessors for renderers and other collaborators.

// Name returns the command name.
func (a *AppSpec) Name() string { return a.name }

// VersionText returns the declared version string, if any.
func (a *AppSpec) VersionText() string { return a.version }

// AboutText returns the one-line description.
func (a *AppSpec) AboutText() string { return a.about }

// AliasList returns the subcommand aliases.
func (a *AppSpec) AliasList() []string { return a.aliases }

// IsHidden reports whether the subcommand is excluded from rendering.
func (a *AppSpec) IsHidden() bool { return a.hidden }

// Has reports whether a settings toggle is set.
func (a *AppSpec) Has(s Settings) bool { return a.settings&s != 0 }

// Args returns the declared arguments in declaration order.
func (a *AppSpec) Args() []*ArgSpec { return a.args }

// Groups returns the declared group constraints.
func (a *AppSpec) Groups() []*ArgGroup { return a.groups }

// Subcommands returns the child specs in declaration order.
func (a *AppSpec) Subcommands() []*AppSpec { return a.subcommands }

// findArg resolves an id to its declaration at this level.
func (a *AppSpec) findArg(id string) *ArgSpec {
	for _, arg := range a.args {
		if arg.ID == id {
			return arg
		}
	}
	return nil
}

// findSubcommand resolves a token against child names and aliases.
func (a *AppSpec) findSubcommand(name string) *AppSpec {
	for _, sub := range a.subcommands {
		if sub.name == name {
			return sub
		}
		for _, alias := range sub.aliases {
			if alias == name {
				return sub
			}
		}
	}
	return nil
}

// subcommandNames lists child names in declaration order, used for
// suggestions on unresolvable subcommand tokens.
func (a *AppSpec) subcommandNames() []string {
	names := make([]string, 0, len(a.subcommands))
	for _, sub := range a.subcommands {
		names = append(names, sub.name)
	}
	return names
}

// ArgBuilder configures one ArgSpec fluently. Pass the finished builder to
// AppSpec.Arg.
type ArgBuilder struct {
	arg *ArgSpec
}

// Arg starts an argument declaration with a stable identifier.
func Arg(id string) *ArgBuilder {
	return &ArgBuilder{arg: &ArgSpec{ID: id}}
}

// Short sets the single-character form (-c).
func (b *ArgBuilder) Short(r rune) *ArgBuilder {
	b.arg.Short = r
	return b
}

// Long sets the long form (--config).
func (b *ArgBuilder) Long(name string) *ArgBuilder {
	b.arg.Long = name
	return b
}

// Alias adds alternative long forms.
func (b *ArgBuilder) Alias(aliases ...string) *ArgBuilder {
	b.arg.Aliases = append(b.arg.Aliases, aliases...)
	return b
}

// Help sets the one-line help text.
func (b *ArgBuilder) Help(text string) *ArgBuilder {
	b.arg.Help = text
	return b
}

// ValueName sets the placeholder used in usage strings (e.g. FILE).
func (b *ArgBuilder) ValueName(name string) *ArgBuilder {
	b.arg.ValueName = name
	return b
}

// TakesValue makes the argument consume one value per occurrence.
func (b *ArgBuilder) TakesValue() *ArgBuilder {
	b.arg.TakesValue = true
	return b
}

// NumberOfValues sets an exact per-occurrence value count.
func (b *ArgBuilder) NumberOfValues(n int) *ArgBuilder {
	b.arg.TakesValue = true
	b.arg.Arity = Arity{Min: n, Max: n}
	return b
}

// ValueRange sets a bounded per-occurrence value count; consumption is
// greedy up to max or until the next recognized flag token.
func (b *ArgBuilder) ValueRange(min, max int) *ArgBuilder {
	b.arg.TakesValue = true
	b.arg.Arity = Arity{Min: min, Max: max}
	return b
}

// UnboundedValues consumes values greedily until the next flag token or end
// of input.
func (b *ArgBuilder) UnboundedValues() *ArgBuilder {
	b.arg.TakesValue = true
	b.arg.Arity = Arity{Min: 1, Max: -1}
	return b
}

// Stackable lifts the occurrence cap entirely (-v -v -v, -vvv).
func (b *ArgBuilder) Stackable() *ArgBuilder {
	b.arg.MaxOccurrences = -1
	return b
}

// MaxOccurrences caps repeated use at n.
func (b *ArgBuilder) MaxOccurrences(n int) *ArgBuilder {
	b.arg.MaxOccurrences = n
	return b
}

// PossibleValues restricts captured values to an ordered set.
func (b *ArgBuilder) PossibleValues(values ...string) *ArgBuilder {
	b.arg.PossibleValues = append(b.arg.PossibleValues, values...)
	return b
}

// Default declares the value materialized when the argument is absent.
func (b *ArgBuilder) Default(value string) *ArgBuilder {
	b.arg.Default = value
	b.arg.HasDefault = true
	return b
}

// Env names an environment variable consulted when no CLI value was given.
func (b *ArgBuilder) Env(name string) *ArgBuilder {
	b.arg.Env = name
	return b
}

// Requires lists ids that must be present whenever this argument is.
func (b *ArgBuilder) Requires(ids ...string) *ArgBuilder {
	b.arg.Requires = append(b.arg.Requires, ids...)
	return b
}

// ConflictsWith lists ids that must not appear together with this argument.
func (b *ArgBuilder) ConflictsWith(ids ...string) *ArgBuilder {
	b.arg.ConflictsWith = append(b.arg.ConflictsWith, ids...)
	return b
}

// Required makes absence an error unless a default or env value applies.
func (b *ArgBuilder) Required() *ArgBuilder {
	b.arg.Required = true
	return b
}

// RequiredUnless requires the argument unless any of the listed ids is
// present.
func (b *ArgBuilder) RequiredUnless(ids ...string) *ArgBuilder {
	b.arg.RequiredUnless = append(b.arg.RequiredUnless, ids...)
	return b
}

// Index declares a positional slot (1-based). Positionals always take a
// value.
func (b *ArgBuilder) Index(n int) *ArgBuilder {
	b.arg.Index = n
	b.arg.TakesValue = true
	return b
}

// Variadic marks the trailing positional as a catch-all for remaining
// tokens.
func (b *ArgBuilder) Variadic() *ArgBuilder {
	b.arg.Variadic = true
	return b
}

// Global makes the argument visible to every descendant subcommand.
func (b *ArgBuilder) Global() *ArgBuilder {
	b.arg.Global = true
	return b
}

// Hidden excludes the argument from rendering. Matching is unaffected.
func (b *ArgBuilder) Hidden() *ArgBuilder {
	b.arg.Hidden = true
	return b
}

// DenyEmpty rejects empty captured values (--opt="").
func (b *ArgBuilder) DenyEmpty() *ArgBuilder {
	b.arg.DenyEmpty = true
	return b
}

// Validate attaches a per-value validation function.
func (b *ArgBuilder) Validate(fn func(string) error) *ArgBuilder {
	b.arg.Validator = fn
	return b
}

// GroupBuilder configures one ArgGroup fluently. Pass the finished builder
// to AppSpec.Group.
type GroupBuilder struct {
	group *ArgGroup
}

// Group starts a group constraint with the given identifier.
func Group(id string) *GroupBuilder {
	return &GroupBuilder{group: &ArgGroup{ID: id}}
}

// Members lists the ArgSpec ids covered by the group.
func (b *GroupBuilder) Members(ids ...string) *GroupBuilder {
	b.group.Members = append(b.group.Members, ids...)
	return b
}

// Required makes an all-absent group an error.
func (b *GroupBuilder) Required() *GroupBuilder {
	b.group.Required = true
	return b
}

// Multiple allows more than one member to be present.
func (b *GroupBuilder) Multiple() *GroupBuilder {
	b.group.Multiple = true
	return b
}

// ConflictsWith lists group or argument ids incompatible with any member.
func (b *GroupBuilder) ConflictsWith(ids ...string) *GroupBuilder {
	b.group.ConflictsWith = append(b.group.ConflictsWith, ids...)
	return b
}
