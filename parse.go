package clip

import "unicode/utf8"

// Parse matches argv against the spec and returns a fresh ArgMatches. Every
// token must be valid UTF-8; use ParseRaw to accept arbitrary byte strings.
// Pass the arguments after the program name, i.e. os.Args[1:].
//
// A help or version flag anywhere in argv short-circuits the parse: the
// returned error is a *Request and the matches are nil. Check with
// HelpRequested or VersionRequested before treating the error as a failure.
//
// Parse never mutates the spec, so one built spec may serve concurrent
// callers.
func (a *AppSpec) Parse(argv []string) (*ArgMatches, error) {
	if err := a.ensureBuilt(); err != nil {
		return nil, err
	}
	for _, tok := range argv {
		if !utf8.ValidString(tok) {
			return nil, &ParseError{
				Kind:    KindInvalidUTF8,
				Value:   tok,
				Message: "argument is not valid UTF-8",
			}
		}
	}
	return a.parseFrom(argv)
}

// ParseRaw is Parse without the UTF-8 requirement. Tokens are treated as
// opaque byte strings; anything os supplies in os.Args round-trips through
// the matches untouched.
func (a *AppSpec) ParseRaw(argv []string) (*ArgMatches, error) {
	if err := a.ensureBuilt(); err != nil {
		return nil, err
	}
	return a.parseFrom(argv)
}

func (a *AppSpec) parseFrom(argv []string) (*ArgMatches, error) {
	mt := newMatcher(a, nil, []string{a.name}, argv)
	return mt.run()
}
