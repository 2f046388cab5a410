package clip

import (
	"strconv"
	"strings"

	"github.com/clipkit/clip/internal/fuzzy"
)

// matchState tracks where the token-stream state machine is.
type matchState int

const (
	stateStart matchState = iota
	stateAwaitingValue
	stateCollectingPositional // after a bare --, everything is raw positional
	stateDispatching
	stateDone
)

// matcher consumes one level's token list against one AppSpec. Subcommand
// dispatch hands the remaining tokens to a fresh matcher for the child spec,
// with ancestor globals merged into the lookup.
type matcher struct {
	spec      *AppSpec
	keys      *keymap
	path      []string
	inherited []*ArgSpec // globals declared on ancestors, in declaration order

	inheritedShort map[rune]*ArgSpec
	inheritedLong  map[string]*ArgSpec

	tokens []string
	pos    int
	state  matchState

	m        *ArgMatches
	nextSlot int // next unfilled positional index (1-based)

	dispatch     *AppSpec
	dispatchArgs []string
}

func newMatcher(spec *AppSpec, inherited []*ArgSpec, path, tokens []string) *matcher {
	known := make(map[string]*ArgSpec, len(spec.args)+len(inherited))
	for _, arg := range spec.args {
		known[arg.ID] = arg
	}
	inheritedShort := make(map[rune]*ArgSpec)
	inheritedLong := make(map[string]*ArgSpec)
	for _, arg := range inherited {
		if _, shadowed := known[arg.ID]; shadowed {
			continue
		}
		known[arg.ID] = arg
		if arg.Short != 0 {
			inheritedShort[arg.Short] = arg
		}
		for _, long := range longNames(arg) {
			inheritedLong[long] = arg
		}
	}
	return &matcher{
		spec:           spec,
		keys:           spec.keys,
		path:           path,
		inherited:      inherited,
		inheritedShort: inheritedShort,
		inheritedLong:  inheritedLong,
		tokens:         tokens,
		m:              newMatches(spec.name, known),
		nextSlot:       1,
	}
}

// run drives one level to completion: scan, validate, then recurse into the
// dispatched subcommand, if any. A *Request from any depth short-circuits
// unvalidated.
func (mt *matcher) run() (*ArgMatches, error) {
	if err := mt.scan(); err != nil {
		return nil, err
	}

	// The child level runs before this level's validation so a help or
	// version request typed anywhere in argv wins over a violation here.
	// Ordinary child violations still report after this level's own.
	var sub *ArgMatches
	var subErr error
	if mt.dispatch != nil {
		globals := mt.childGlobals()
		child := newMatcher(mt.dispatch, globals, append(mt.path, mt.dispatch.name), mt.dispatchArgs)
		sub, subErr = child.run()
		if _, isRequest := subErr.(*Request); isRequest {
			return nil, subErr
		}
	}

	if err := mt.validate(); err != nil {
		return nil, err
	}
	if subErr != nil {
		return nil, subErr
	}
	if mt.dispatch != nil {
		mt.m.subName = mt.dispatch.name
		mt.m.sub = sub
	}
	return mt.m, nil
}

// childGlobals extends the inherited globals with this level's own, so one
// declaration is recognized at any depth.
func (mt *matcher) childGlobals() []*ArgSpec {
	globals := append([]*ArgSpec(nil), mt.inherited...)
	for _, arg := range mt.spec.args {
		if arg.Global && arg.request == "" {
			globals = append(globals, arg)
		}
	}
	return globals
}

// scan is the single left-to-right pass over the tokens.
func (mt *matcher) scan() error {
	for mt.pos < len(mt.tokens) {
		tok := mt.tokens[mt.pos]

		var err error
		switch {
		case mt.state == stateCollectingPositional:
			err = mt.pushPositional(tok)
			mt.pos++
		case tok == "--":
			mt.state = stateCollectingPositional
			mt.pos++
		case strings.HasPrefix(tok, "--"):
			err = mt.matchLong(tok)
			mt.pos++
		case mt.shortLike(tok):
			err = mt.matchShorts(tok)
			mt.pos++
		default:
			err = mt.matchBare(tok)
			mt.pos++
		}
		if err != nil {
			return err
		}
		if mt.state == stateDispatching {
			mt.dispatchArgs = mt.tokens[mt.pos:]
			mt.state = stateDone
			return nil
		}
	}
	mt.state = stateDone
	return nil
}

// shortLike reports whether a token is a short flag or cluster rather than
// a positional. A lone dash is the conventional stdin placeholder, and
// negative numbers are positionals when the setting allows.
func (mt *matcher) shortLike(tok string) bool {
	if len(tok) < 2 || tok[0] != '-' {
		return false
	}
	if mt.spec.Has(AllowNegativeNumbers) && isNegativeNumber(tok) {
		return false
	}
	return true
}

func isNegativeNumber(tok string) bool {
	body := tok[1:]
	dot := false
	for i, c := range body {
		if c == '.' {
			if dot || i == 0 || i == len(body)-1 {
				return false
			}
			dot = true
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return body != ""
}

// matchLong handles --name and --name=value.
func (mt *matcher) matchLong(tok string) error {
	name, inline, hasInline := strings.Cut(tok[2:], "=")

	arg := mt.resolveLong(name)
	if arg == nil {
		return mt.unknownLong(name)
	}
	if err := mt.bump(arg); err != nil {
		return err
	}
	if arg.request != "" {
		return &Request{Kind: arg.request, Path: mt.path}
	}

	switch {
	case hasInline:
		if !arg.TakesValue {
			return &ParseError{
				Kind:    KindWrongNumberOfValues,
				Name:    arg.displayName(),
				Value:   inline,
				Message: "flag " + arg.displayName() + " does not take a value",
			}
		}
		mt.m.record(arg, inline)
	case arg.TakesValue:
		values, err := mt.consumeValues(arg)
		if err != nil {
			return err
		}
		mt.m.record(arg, values...)
	default:
		mt.m.record(arg)
	}
	return nil
}

// matchShorts handles -f and clusters like -vvv or -oFILE. Every rune
// before the last must be a flag taking no value; the first value-taking
// rune treats the rest of the token as its inline value, or consumes
// following tokens when nothing remains.
func (mt *matcher) matchShorts(tok string) error {
	runes := []rune(tok[1:])
	for i := 0; i < len(runes); i++ {
		arg := mt.resolveShort(runes[i])
		if arg == nil {
			return mt.unknownShort(runes[i])
		}
		if err := mt.bump(arg); err != nil {
			return err
		}
		if arg.request != "" {
			return &Request{Kind: arg.request, Path: mt.path}
		}

		if !arg.TakesValue {
			mt.m.record(arg)
			continue
		}
		if rest := string(runes[i+1:]); rest != "" {
			mt.m.record(arg, strings.TrimPrefix(rest, "="))
			return nil
		}
		values, err := mt.consumeValues(arg)
		if err != nil {
			return err
		}
		mt.m.record(arg, values...)
		return nil
	}
	return nil
}

// matchBare handles tokens with no dash prefix: positional slots first,
// then subcommand dispatch. A still-unfilled non-variadic slot always
// claims the token, even when its text coincides with a subcommand name.
func (mt *matcher) matchBare(tok string) error {
	if slot := mt.keys.resolvePositional(mt.nextSlot); slot != nil && !slot.Variadic {
		mt.m.record(slot, tok)
		mt.nextSlot++
		return nil
	}
	if sub := mt.spec.findSubcommand(tok); sub != nil {
		mt.dispatch = sub
		mt.state = stateDispatching
		return nil
	}
	return mt.pushPositional(tok)
}

// pushPositional fills the current slot or the trailing variadic; used for
// every token once -- has been seen.
func (mt *matcher) pushPositional(tok string) error {
	slot := mt.keys.resolvePositional(mt.nextSlot)
	if slot == nil {
		if mt.state != stateCollectingPositional && len(mt.spec.subcommands) > 0 {
			return &ParseError{
				Kind:       KindInvalidSubcommand,
				Name:       tok,
				Suggestion: fuzzy.Best(tok, mt.spec.subcommandNames()),
				Message:    "unrecognized subcommand " + quote(tok),
			}
		}
		return &ParseError{
			Kind:    KindUnknownArgument,
			Name:    tok,
			Message: "unexpected argument " + quote(tok),
		}
	}
	mt.m.record(slot, tok)
	if !slot.Variadic {
		mt.nextSlot++
	}
	return nil
}

// consumeValues pulls the following tokens an option's arity allows:
// exactly n for an exact arity, otherwise greedily until the bound, the
// next flag-like token, or end of input.
func (mt *matcher) consumeValues(arg *ArgSpec) ([]string, error) {
	mt.state = stateAwaitingValue
	defer func() { mt.state = stateStart }()

	var values []string
	for {
		if arg.Arity.Max >= 0 && len(values) == arg.Arity.Max {
			break
		}
		next := mt.pos + 1
		if next >= len(mt.tokens) || mt.flagBoundary(mt.tokens[next]) {
			break
		}
		values = append(values, mt.tokens[next])
		mt.pos = next
	}

	if len(values) < arg.Arity.Min {
		if len(values) == 0 {
			return nil, &ParseError{
				Kind:    KindEmptyValue,
				Name:    arg.displayName(),
				Message: arg.displayName() + " requires a value but none was supplied",
			}
		}
		return nil, &ParseError{
			Kind: KindWrongNumberOfValues,
			Name: arg.displayName(),
			Message: arg.displayName() + " requires at least " +
				strconv.Itoa(arg.Arity.Min) + " values, got " + strconv.Itoa(len(values)),
		}
	}
	return values, nil
}

// flagBoundary reports whether a token ends greedy value consumption.
func (mt *matcher) flagBoundary(tok string) bool {
	if tok == "--" {
		return true
	}
	return mt.shortLike(tok) || strings.HasPrefix(tok, "--")
}

// bump enforces the occurrence cap before a new occurrence is recorded.
func (mt *matcher) bump(arg *ArgSpec) error {
	limit := arg.maxOccurrences()
	if limit < 0 {
		return nil
	}
	if rec := mt.m.matched[arg.ID]; rec != nil && rec.occurrences+1 > limit {
		return &ParseError{
			Kind:    KindTooManyOccurrences,
			Name:    arg.displayName(),
			Message: arg.displayName() + " may be used at most " + strconv.Itoa(limit) + " times",
		}
	}
	return nil
}

// Lookup across the level's own keymap and inherited globals.

func (mt *matcher) resolveLong(name string) *ArgSpec {
	if arg := mt.keys.resolveLong(name, mt.spec.Has(InferLongArgs)); arg != nil {
		return arg
	}
	return mt.inheritedLong[name]
}

func (mt *matcher) resolveShort(r rune) *ArgSpec {
	if arg := mt.keys.resolveShort(r); arg != nil {
		return arg
	}
	return mt.inheritedShort[r]
}

func (mt *matcher) unknownLong(name string) error {
	suggestion := fuzzy.Best(name, mt.keys.longCandidates(mt.spec, mt.inherited))
	if suggestion != "" {
		suggestion = "--" + suggestion
	}
	return &ParseError{
		Kind:       KindUnknownArgument,
		Name:       "--" + name,
		Suggestion: suggestion,
		Message:    "unknown argument --" + name,
	}
}

func (mt *matcher) unknownShort(r rune) error {
	suggestion := fuzzy.Best(string(r), mt.keys.longCandidates(mt.spec, mt.inherited))
	if suggestion != "" {
		suggestion = "--" + suggestion
	}
	return &ParseError{
		Kind:       KindUnknownArgument,
		Name:       "-" + string(r),
		Suggestion: suggestion,
		Message:    "unknown argument -" + string(r),
	}
}

func quote(s string) string { return "'" + s + "'" }

