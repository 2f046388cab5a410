package clip

import "fmt"

// ValueSource records where a materialized value came from. Explicit CLI
// values always win over the environment, which wins over declared defaults.
type ValueSource uint8

const (
	SourceNone ValueSource = iota
	SourceCommandLine
	SourceEnv
	SourceDefault
)

// matchedArg is the per-argument record: how often it was seen and every
// captured value in encounter order.
type matchedArg struct {
	occurrences int
	values      []string
	source      ValueSource
}

// ArgMatches is the queryable outcome of one parse call. A fresh tree is
// produced per call, owned exclusively by the caller, and never mutated
// after being returned. Queries for ids never declared in the spec are
// developer errors and panic with a *SpecError.
type ArgMatches struct {
	name    string
	known   map[string]*ArgSpec
	matched map[string]*matchedArg

	subName string
	sub     *ArgMatches
}

func newMatches(name string, known map[string]*ArgSpec) *ArgMatches {
	return &ArgMatches{
		name:    name,
		known:   known,
		matched: make(map[string]*matchedArg),
	}
}

// lookup enforces the declared-id invariant shared by all queries.
func (m *ArgMatches) lookup(id string) *matchedArg {
	if _, ok := m.known[id]; !ok {
		panic(&SpecError{
			Kind:    KindArgumentNotFound,
			Message: fmt.Sprintf("clip: %q queried on matches for %q but was never declared", id, m.name),
		})
	}
	return m.matched[id]
}

// Present reports whether the argument was supplied or materialized from an
// environment fallback or default.
func (m *ArgMatches) Present(id string) bool {
	return m.lookup(id) != nil
}

// Occurrences returns how many times the argument appeared in the token
// stream. Materialized values count zero occurrences.
func (m *ArgMatches) Occurrences(id string) int {
	if rec := m.lookup(id); rec != nil {
		return rec.occurrences
	}
	return 0
}

// Values returns every captured value in encounter order.
func (m *ArgMatches) Values(id string) []string {
	if rec := m.lookup(id); rec != nil {
		return rec.values
	}
	return nil
}

// Value returns the first captured value.
func (m *ArgMatches) Value(id string) (string, bool) {
	if rec := m.lookup(id); rec != nil && len(rec.values) > 0 {
		return rec.values[0], true
	}
	return "", false
}

// Source reports where the argument's value came from.
func (m *ArgMatches) Source(id string) ValueSource {
	if rec := m.lookup(id); rec != nil {
		return rec.source
	}
	return SourceNone
}

// Subcommand returns the dispatched subcommand's name and nested matches,
// if one was selected.
func (m *ArgMatches) Subcommand() (string, *ArgMatches, bool) {
	if m.sub == nil {
		return "", nil, false
	}
	return m.subName, m.sub, true
}

// record adds one occurrence with any values captured alongside it.
func (m *ArgMatches) record(arg *ArgSpec, values ...string) {
	rec := m.matched[arg.ID]
	if rec == nil {
		rec = &matchedArg{source: SourceCommandLine}
		m.matched[arg.ID] = rec
	}
	rec.occurrences++
	rec.values = append(rec.values, values...)
}

// materialize installs an env or default value for an absent argument.
func (m *ArgMatches) materialize(arg *ArgSpec, value string, source ValueSource) {
	m.matched[arg.ID] = &matchedArg{values: []string{value}, source: source}
}
