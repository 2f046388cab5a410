package clip

import (
	"os"
	"strconv"
	"strings"

	"github.com/clipkit/clip/internal/fuzzy"
)

// validate runs this level's constraint pass over the raw matches, then
// materializes env and default values for whatever the command line left
// absent. Constraint checks only see what the user actually supplied, so a
// default never triggers a conflict and an env value never satisfies a
// "requires" edge against a flag typed on the command line.
func (mt *matcher) validate() error {
	v := &levelValidator{spec: mt.spec, m: mt.m, seenPair: make(map[string]bool)}

	for _, arg := range mt.spec.args {
		if v.provided(arg.ID) {
			v.checkRelations(arg)
		} else {
			v.checkRequired(arg)
		}
	}
	for _, arg := range mt.spec.args {
		v.checkValues(arg)
	}
	for _, arg := range mt.inherited {
		if mt.spec.findArg(arg.ID) != nil {
			continue
		}
		v.checkValues(arg)
	}
	for _, g := range mt.spec.groups {
		v.checkGroup(g)
	}
	if mt.dispatch == nil && mt.spec.Has(SubcommandRequired) && len(mt.spec.subcommands) > 0 {
		v.report(&ParseError{
			Kind:    KindInvalidSubcommand,
			Message: quote(mt.spec.name) + " requires a subcommand",
		})
	}

	v.materialize(mt.spec)
	return aggregate(v.violations)
}

type levelValidator struct {
	spec       *AppSpec
	m          *ArgMatches
	violations []*ParseError
	seenPair   map[string]bool // dedupes symmetric conflict reports
}

func (v *levelValidator) report(pe *ParseError) {
	v.violations = append(v.violations, pe)
}

// provided reports whether the user supplied the argument on the command
// line. Env and default materialization happens after every check and never
// counts here.
func (v *levelValidator) provided(id string) bool {
	rec := v.m.matched[id]
	return rec != nil && rec.occurrences > 0
}

func (v *levelValidator) checkRelations(arg *ArgSpec) {
	for _, dep := range arg.Requires {
		if v.provided(dep) {
			continue
		}
		v.report(&ParseError{
			Kind:    KindMissingRequiredArgument,
			Name:    v.display(dep),
			Other:   arg.displayName(),
			Message: arg.displayName() + " requires " + v.display(dep) + " to be supplied as well",
		})
	}
	for _, other := range arg.ConflictsWith {
		if !v.provided(other) || v.pairSeen(arg.ID, other) {
			continue
		}
		v.report(&ParseError{
			Kind:    KindArgumentConflict,
			Name:    arg.displayName(),
			Other:   v.display(other),
			Message: arg.displayName() + " cannot be used together with " + v.display(other),
		})
	}
	if arg.TakesValue {
		v.checkArity(arg)
	}
}

// checkArity re-counts collected values against the declared arity across
// all occurrences. The scan enforces consumption, so the only way to land
// here is an inline =value on an option wanting more than one.
func (v *levelValidator) checkArity(arg *ArgSpec) {
	rec := v.m.matched[arg.ID]
	min := rec.occurrences * arg.Arity.Min
	if len(rec.values) < min {
		v.report(&ParseError{
			Kind: KindWrongNumberOfValues,
			Name: arg.displayName(),
			Message: arg.displayName() + " requires " + strconv.Itoa(min) +
				" values, got " + strconv.Itoa(len(rec.values)),
		})
		return
	}
	if arg.Arity.Max >= 0 {
		if max := rec.occurrences * arg.Arity.Max; len(rec.values) > max {
			v.report(&ParseError{
				Kind: KindWrongNumberOfValues,
				Name: arg.displayName(),
				Message: arg.displayName() + " accepts at most " + strconv.Itoa(max) +
					" values, got " + strconv.Itoa(len(rec.values)),
			})
		}
	}
}

func (v *levelValidator) checkRequired(arg *ArgSpec) {
	required := arg.Required
	if !required && len(arg.RequiredUnless) > 0 {
		required = true
		for _, id := range arg.RequiredUnless {
			if v.provided(id) {
				required = false
				break
			}
		}
	}
	if !required {
		return
	}
	if _, ok := envValue(arg); ok || arg.HasDefault {
		return
	}
	v.report(&ParseError{
		Kind:    KindMissingRequiredArgument,
		Name:    arg.displayName(),
		Message: "required argument " + arg.displayName() + " was not supplied",
	})
}

// checkValues validates every collected value: possible-value sets, empty
// rejection, and the custom validator, in that order per value.
func (v *levelValidator) checkValues(arg *ArgSpec) {
	rec := v.m.matched[arg.ID]
	if rec == nil || rec.occurrences == 0 {
		return
	}
	for _, val := range rec.values {
		if arg.DenyEmpty && val == "" {
			v.report(&ParseError{
				Kind:    KindEmptyValue,
				Name:    arg.displayName(),
				Message: arg.displayName() + " does not accept an empty value",
			})
			continue
		}
		if len(arg.PossibleValues) > 0 && !contains(arg.PossibleValues, val) {
			v.report(&ParseError{
				Kind:       KindInvalidValue,
				Name:       arg.displayName(),
				Value:      val,
				Suggestion: fuzzy.Best(val, arg.PossibleValues),
				Message: quote(val) + " is not a valid value for " + arg.displayName() +
					" (possible values: " + strings.Join(arg.PossibleValues, ", ") + ")",
			})
			continue
		}
		if arg.Validator != nil {
			if err := arg.Validator(val); err != nil {
				v.report(&ParseError{
					Kind:    KindValueValidationFailure,
					Name:    arg.displayName(),
					Value:   val,
					Message: "invalid value " + quote(val) + " for " + arg.displayName() + ": " + err.Error(),
				})
			}
		}
	}
}

func (v *levelValidator) checkGroup(g *ArgGroup) {
	var present []string
	for _, id := range g.Members {
		if v.provided(id) {
			present = append(present, v.display(id))
		}
	}
	if g.Required && len(present) == 0 {
		v.report(&ParseError{
			Kind:    KindMissingRequiredArgument,
			Name:    g.ID,
			Message: "one of the arguments in group " + quote(g.ID) + " is required",
		})
	}
	if !g.Multiple && len(present) > 1 {
		v.report(&ParseError{
			Kind:    KindArgumentConflict,
			Name:    present[0],
			Other:   present[1],
			Message: "only one of " + strings.Join(present, ", ") + " may be used",
		})
	}
	if len(present) == 0 {
		return
	}
	for _, other := range g.ConflictsWith {
		for _, offender := range v.expand(other) {
			if !v.provided(offender) || v.pairSeen(g.ID, offender) {
				continue
			}
			v.report(&ParseError{
				Kind:    KindArgumentConflict,
				Name:    present[0],
				Other:   v.display(offender),
				Message: present[0] + " cannot be used together with " + v.display(offender),
			})
		}
	}
}

// expand resolves a conflict target to argument ids: a group id fans out to
// its members, anything else is an argument id already.
func (v *levelValidator) expand(id string) []string {
	for _, g := range v.spec.groups {
		if g.ID == id {
			return g.Members
		}
	}
	return []string{id}
}

func (v *levelValidator) pairSeen(a, b string) bool {
	if a > b {
		a, b = b, a
	}
	key := a + "\x00" + b
	if v.seenPair[key] {
		return true
	}
	v.seenPair[key] = true
	return false
}

func (v *levelValidator) display(id string) string {
	if arg := v.spec.findArg(id); arg != nil {
		return arg.displayName()
	}
	return id
}

// materialize fills absent configured arguments from the environment, then
// from declared defaults. Command line beats env beats default; an env value
// is user input and passes through the same value checks, a default is
// trusted as declared.
func (v *levelValidator) materialize(spec *AppSpec) {
	for _, arg := range spec.args {
		if rec := v.m.matched[arg.ID]; rec != nil && rec.occurrences > 0 {
			continue
		}
		if val, ok := envValue(arg); ok {
			if pe := v.checkEnvValue(arg, val); pe != nil {
				v.report(pe)
				continue
			}
			v.m.materialize(arg, val, SourceEnv)
			continue
		}
		if arg.HasDefault {
			v.m.materialize(arg, arg.Default, SourceDefault)
		}
	}
}

func (v *levelValidator) checkEnvValue(arg *ArgSpec, val string) *ParseError {
	if arg.DenyEmpty && val == "" {
		return &ParseError{
			Kind:    KindEmptyValue,
			Name:    arg.displayName(),
			Message: arg.displayName() + " does not accept an empty value (from " + arg.Env + ")",
		}
	}
	if len(arg.PossibleValues) > 0 && !contains(arg.PossibleValues, val) {
		return &ParseError{
			Kind:       KindInvalidValue,
			Name:       arg.displayName(),
			Value:      val,
			Suggestion: fuzzy.Best(val, arg.PossibleValues),
			Message: quote(val) + " from " + arg.Env + " is not a valid value for " +
				arg.displayName(),
		}
	}
	if arg.Validator != nil {
		if err := arg.Validator(val); err != nil {
			return &ParseError{
				Kind:    KindValueValidationFailure,
				Name:    arg.displayName(),
				Value:   val,
				Message: "invalid value " + quote(val) + " from " + arg.Env + ": " + err.Error(),
			}
		}
	}
	return nil
}

// envValue reads the argument's env binding once per parse.
func envValue(arg *ArgSpec) (string, bool) {
	if arg.Env == "" {
		return "", false
	}
	return os.LookupEnv(arg.Env)
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
