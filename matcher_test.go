//nolint:testpackage // using package name 'clip' to access unexported fields for testing
package clip

import (
	"errors"
	"reflect"
	"testing"
)

func mustParse(t *testing.T, spec *AppSpec, argv []string) *ArgMatches {
	t.Helper()
	m, err := spec.Parse(argv)
	if err != nil {
		t.Fatalf("Parse(%v) = %v", argv, err)
	}
	return m
}

func parseErr(t *testing.T, spec *AppSpec, argv []string) *ParseError {
	t.Helper()
	_, err := spec.Parse(argv)
	if err == nil {
		t.Fatalf("Parse(%v) succeeded, want error", argv)
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Parse(%v) = %T, want *ParseError", argv, err)
	}
	return pe
}

func TestLongOptionForms(t *testing.T) {
	spec := New("app").
		Arg(Arg("config").Long("config").TakesValue()).
		MustBuild()

	t.Run("space separated", func(t *testing.T) {
		m := mustParse(t, spec, []string{"--config", "app.toml"})
		if v, _ := m.Value("config"); v != "app.toml" {
			t.Errorf("Value(config) = %q", v)
		}
		if m.Source("config") != SourceCommandLine {
			t.Errorf("Source(config) = %v", m.Source("config"))
		}
	})

	t.Run("equals form", func(t *testing.T) {
		m := mustParse(t, spec, []string{"--config=app.toml"})
		if v, _ := m.Value("config"); v != "app.toml" {
			t.Errorf("Value(config) = %q", v)
		}
	})

	t.Run("equals form keeps embedded equals", func(t *testing.T) {
		m := mustParse(t, spec, []string{"--config=key=value"})
		if v, _ := m.Value("config"); v != "key=value" {
			t.Errorf("Value(config) = %q", v)
		}
	})

	t.Run("missing value", func(t *testing.T) {
		pe := parseErr(t, spec, []string{"--config"})
		if pe.Kind != KindEmptyValue {
			t.Errorf("Kind = %q, want %q", pe.Kind, KindEmptyValue)
		}
	})

	t.Run("inline value on plain flag", func(t *testing.T) {
		flagged := New("app2").Arg(Arg("force").Long("force")).MustBuild()
		pe := parseErr(t, flagged, []string{"--force=yes"})
		if pe.Kind != KindWrongNumberOfValues {
			t.Errorf("Kind = %q, want %q", pe.Kind, KindWrongNumberOfValues)
		}
	})
}

func TestShortOptionForms(t *testing.T) {
	spec := New("app").
		Arg(Arg("verbose").Short('v').Stackable()).
		Arg(Arg("output").Short('o').TakesValue()).
		MustBuild()

	t.Run("separate value", func(t *testing.T) {
		m := mustParse(t, spec, []string{"-o", "out.txt"})
		if v, _ := m.Value("output"); v != "out.txt" {
			t.Errorf("Value(output) = %q", v)
		}
	})

	t.Run("attached value", func(t *testing.T) {
		m := mustParse(t, spec, []string{"-oout.txt"})
		if v, _ := m.Value("output"); v != "out.txt" {
			t.Errorf("Value(output) = %q", v)
		}
	})

	t.Run("attached value with equals", func(t *testing.T) {
		m := mustParse(t, spec, []string{"-o=out.txt"})
		if v, _ := m.Value("output"); v != "out.txt" {
			t.Errorf("Value(output) = %q", v)
		}
	})

	t.Run("cluster of flags", func(t *testing.T) {
		m := mustParse(t, spec, []string{"-vvv"})
		if n := m.Occurrences("verbose"); n != 3 {
			t.Errorf("Occurrences(verbose) = %d, want 3", n)
		}
	})

	t.Run("cluster ending in value option", func(t *testing.T) {
		m := mustParse(t, spec, []string{"-vvo", "out.txt"})
		if n := m.Occurrences("verbose"); n != 2 {
			t.Errorf("Occurrences(verbose) = %d, want 2", n)
		}
		if v, _ := m.Value("output"); v != "out.txt" {
			t.Errorf("Value(output) = %q", v)
		}
	})

	t.Run("repeated separate shorts equal cluster", func(t *testing.T) {
		single := mustParse(t, spec, []string{"-v", "-v", "-v"})
		cluster := mustParse(t, spec, []string{"-vvv"})
		if single.Occurrences("verbose") != cluster.Occurrences("verbose") {
			t.Error("-v -v -v and -vvv should count identically")
		}
	})
}

func TestOccurrenceCap(t *testing.T) {
	spec := New("app").
		Arg(Arg("force").Short('f').Long("force")).
		Arg(Arg("include").Short('I').Long("include").TakesValue().MaxOccurrences(2)).
		MustBuild()

	t.Run("default cap is one", func(t *testing.T) {
		pe := parseErr(t, spec, []string{"--force", "--force"})
		if pe.Kind != KindTooManyOccurrences {
			t.Errorf("Kind = %q, want %q", pe.Kind, KindTooManyOccurrences)
		}
		if pe.Name != "--force" {
			t.Errorf("Name = %q, want --force", pe.Name)
		}
	})

	t.Run("explicit cap honored", func(t *testing.T) {
		m := mustParse(t, spec, []string{"-I", "a", "-I", "b"})
		if got := m.Values("include"); !reflect.DeepEqual(got, []string{"a", "b"}) {
			t.Errorf("Values(include) = %v", got)
		}
		if m.Occurrences("include") != 2 {
			t.Errorf("Occurrences(include) = %d", m.Occurrences("include"))
		}
	})

	t.Run("cap exceeded stops immediately", func(t *testing.T) {
		pe := parseErr(t, spec, []string{"-I", "a", "-I", "b", "-I", "c"})
		if pe.Kind != KindTooManyOccurrences {
			t.Errorf("Kind = %q, want %q", pe.Kind, KindTooManyOccurrences)
		}
	})
}

func TestValueArity(t *testing.T) {
	spec := New("app").
		Arg(Arg("point").Long("point").NumberOfValues(2)).
		Arg(Arg("tags").Long("tags").UnboundedValues()).
		Arg(Arg("force").Short('f')).
		MustBuild()

	t.Run("exact count", func(t *testing.T) {
		m := mustParse(t, spec, []string{"--point", "3", "4"})
		if got := m.Values("point"); !reflect.DeepEqual(got, []string{"3", "4"}) {
			t.Errorf("Values(point) = %v", got)
		}
	})

	t.Run("exact count starves", func(t *testing.T) {
		pe := parseErr(t, spec, []string{"--point", "3"})
		if pe.Kind != KindWrongNumberOfValues {
			t.Errorf("Kind = %q, want %q", pe.Kind, KindWrongNumberOfValues)
		}
	})

	t.Run("greedy stops at flag", func(t *testing.T) {
		m := mustParse(t, spec, []string{"--tags", "a", "b", "c", "-f"})
		if got := m.Values("tags"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
			t.Errorf("Values(tags) = %v", got)
		}
		if !m.Present("force") {
			t.Error("trailing -f should still match")
		}
	})

	t.Run("greedy stops at terminator", func(t *testing.T) {
		varspec := New("app2").
			Arg(Arg("tags").Long("tags").UnboundedValues()).
			Arg(Arg("rest").Index(1).Variadic()).
			MustBuild()
		m := mustParse(t, varspec, []string{"--tags", "a", "--", "b", "c"})
		if got := m.Values("tags"); !reflect.DeepEqual(got, []string{"a"}) {
			t.Errorf("Values(tags) = %v", got)
		}
		if got := m.Values("rest"); !reflect.DeepEqual(got, []string{"b", "c"}) {
			t.Errorf("Values(rest) = %v", got)
		}
	})

	t.Run("inline equals feeds exactly one value", func(t *testing.T) {
		pe := parseErr(t, spec, []string{"--point=3"})
		if pe.Kind != KindWrongNumberOfValues {
			t.Errorf("Kind = %q, want %q", pe.Kind, KindWrongNumberOfValues)
		}
	})
}

func TestPositionals(t *testing.T) {
	spec := New("app").
		Arg(Arg("source").Index(1).Required()).
		Arg(Arg("dest").Index(2)).
		MustBuild()

	t.Run("slots fill in order", func(t *testing.T) {
		m := mustParse(t, spec, []string{"a.txt", "b.txt"})
		if v, _ := m.Value("source"); v != "a.txt" {
			t.Errorf("Value(source) = %q", v)
		}
		if v, _ := m.Value("dest"); v != "b.txt" {
			t.Errorf("Value(dest) = %q", v)
		}
	})

	t.Run("interleaved with options", func(t *testing.T) {
		flagged := New("app2").
			Arg(Arg("verbose").Short('v')).
			Arg(Arg("input").Index(1)).
			MustBuild()
		m := mustParse(t, flagged, []string{"-v", "in.txt"})
		if v, _ := m.Value("input"); v != "in.txt" {
			t.Errorf("Value(input) = %q", v)
		}
	})

	t.Run("excess token rejected", func(t *testing.T) {
		pe := parseErr(t, spec, []string{"a", "b", "c"})
		if pe.Kind != KindUnknownArgument {
			t.Errorf("Kind = %q, want %q", pe.Kind, KindUnknownArgument)
		}
	})

	t.Run("variadic collects the tail", func(t *testing.T) {
		varspec := New("app3").
			Arg(Arg("cmd").Index(1)).
			Arg(Arg("args").Index(2).Variadic()).
			MustBuild()
		m := mustParse(t, varspec, []string{"run", "x", "y", "z"})
		if v, _ := m.Value("cmd"); v != "run" {
			t.Errorf("Value(cmd) = %q", v)
		}
		if got := m.Values("args"); !reflect.DeepEqual(got, []string{"x", "y", "z"}) {
			t.Errorf("Values(args) = %v", got)
		}
	})
}

func TestTerminator(t *testing.T) {
	spec := New("app").
		Arg(Arg("verbose").Short('v')).
		Arg(Arg("files").Index(1).Variadic()).
		MustBuild()

	m := mustParse(t, spec, []string{"-v", "--", "-x", "--whatever", "plain"})
	if !m.Present("verbose") {
		t.Error("verbose before -- should match")
	}
	want := []string{"-x", "--whatever", "plain"}
	if got := m.Values("files"); !reflect.DeepEqual(got, want) {
		t.Errorf("Values(files) = %v, want %v", got, want)
	}
}

func TestNegativeNumbers(t *testing.T) {
	t.Run("rejected by default", func(t *testing.T) {
		spec := New("app").Arg(Arg("n").Index(1)).MustBuild()
		pe := parseErr(t, spec, []string{"-5"})
		if pe.Kind != KindUnknownArgument {
			t.Errorf("Kind = %q, want %q", pe.Kind, KindUnknownArgument)
		}
	})

	t.Run("positional when allowed", func(t *testing.T) {
		spec := New("app").
			Setting(AllowNegativeNumbers).
			Arg(Arg("n").Index(1)).
			Arg(Arg("f").Index(2)).
			MustBuild()
		m := mustParse(t, spec, []string{"-5", "-2.5"})
		if v, _ := m.Value("n"); v != "-5" {
			t.Errorf("Value(n) = %q", v)
		}
		if v, _ := m.Value("f"); v != "-2.5" {
			t.Errorf("Value(f) = %q", v)
		}
	})
}

func TestLongPrefixInference(t *testing.T) {
	spec := New("app").
		Setting(InferLongArgs).
		Arg(Arg("verbose").Long("verbose")).
		Arg(Arg("version-check").Long("version-check")).
		Arg(Arg("output").Long("output").TakesValue()).
		MustBuild()

	t.Run("unambiguous prefix resolves", func(t *testing.T) {
		m := mustParse(t, spec, []string{"--out", "x"})
		if v, _ := m.Value("output"); v != "x" {
			t.Errorf("Value(output) = %q", v)
		}
	})

	t.Run("exact match beats prefix", func(t *testing.T) {
		// --verbose is exact even though it prefixes nothing else here.
		m := mustParse(t, spec, []string{"--verbose"})
		if !m.Present("verbose") {
			t.Error("exact long should match")
		}
	})

	t.Run("ambiguous prefix is unknown", func(t *testing.T) {
		pe := parseErr(t, spec, []string{"--ver"})
		if pe.Kind != KindUnknownArgument {
			t.Errorf("Kind = %q, want %q", pe.Kind, KindUnknownArgument)
		}
	})

	t.Run("disabled without the setting", func(t *testing.T) {
		strict := New("app2").Arg(Arg("output").Long("output").TakesValue()).MustBuild()
		pe := parseErr(t, strict, []string{"--out", "x"})
		if pe.Kind != KindUnknownArgument {
			t.Errorf("Kind = %q, want %q", pe.Kind, KindUnknownArgument)
		}
	})
}

func TestUnknownArgumentSuggestion(t *testing.T) {
	spec := New("app").
		Arg(Arg("config").Long("config").TakesValue()).
		Arg(Arg("verbose").Long("verbose")).
		MustBuild()

	pe := parseErr(t, spec, []string{"--cofnig", "x"})
	if pe.Kind != KindUnknownArgument {
		t.Fatalf("Kind = %q, want %q", pe.Kind, KindUnknownArgument)
	}
	if pe.Name != "--cofnig" {
		t.Errorf("Name = %q", pe.Name)
	}
	if pe.Suggestion != "--config" {
		t.Errorf("Suggestion = %q, want --config", pe.Suggestion)
	}

	t.Run("no suggestion when nothing is close", func(t *testing.T) {
		pe := parseErr(t, spec, []string{"--zzzzzz"})
		if pe.Suggestion != "" {
			t.Errorf("Suggestion = %q, want empty", pe.Suggestion)
		}
	})
}

func TestSubcommandDispatch(t *testing.T) {
	spec := New("app").
		Arg(Arg("verbose").Short('v').Long("verbose").Global().Stackable()).
		Subcommand(
			New("run").
				Arg(Arg("jobs").Short('j').TakesValue()),
			New("status").Alias("st"),
		).
		MustBuild()

	t.Run("dispatch with child args", func(t *testing.T) {
		m := mustParse(t, spec, []string{"run", "-j", "4"})
		name, sub, ok := m.Subcommand()
		if !ok || name != "run" {
			t.Fatalf("Subcommand() = %q, %v", name, ok)
		}
		if v, _ := sub.Value("jobs"); v != "4" {
			t.Errorf("Value(jobs) = %q", v)
		}
	})

	t.Run("alias resolves to canonical name", func(t *testing.T) {
		m := mustParse(t, spec, []string{"st"})
		if name, _, _ := m.Subcommand(); name != "status" {
			t.Errorf("Subcommand() = %q, want status", name)
		}
	})

	t.Run("global matches after dispatch", func(t *testing.T) {
		m := mustParse(t, spec, []string{"run", "--verbose", "-j", "2"})
		_, sub, ok := m.Subcommand()
		if !ok {
			t.Fatal("expected dispatch")
		}
		if !sub.Present("verbose") {
			t.Error("global --verbose should match at child level")
		}
	})

	t.Run("global matches before dispatch", func(t *testing.T) {
		m := mustParse(t, spec, []string{"-v", "run"})
		if !m.Present("verbose") {
			t.Error("verbose should match at root level")
		}
		if _, _, ok := m.Subcommand(); !ok {
			t.Error("expected dispatch")
		}
	})

	t.Run("unknown subcommand suggests", func(t *testing.T) {
		pe := parseErr(t, spec, []string{"stats"})
		if pe.Kind != KindInvalidSubcommand {
			t.Fatalf("Kind = %q, want %q", pe.Kind, KindInvalidSubcommand)
		}
		if pe.Suggestion != "status" {
			t.Errorf("Suggestion = %q, want status", pe.Suggestion)
		}
	})

	t.Run("tokens after dispatch belong to the child", func(t *testing.T) {
		pe := parseErr(t, spec, []string{"run", "--jobs", "4"})
		// run declares -j only; --jobs is unknown at the child level.
		if pe.Kind != KindUnknownArgument {
			t.Errorf("Kind = %q, want %q", pe.Kind, KindUnknownArgument)
		}
	})
}

func TestPositionalSlotBeatsSubcommand(t *testing.T) {
	t.Run("unfilled slot claims the token", func(t *testing.T) {
		spec := New("app").
			Arg(Arg("input").Index(1)).
			Subcommand(New("status")).
			MustBuild()
		m := mustParse(t, spec, []string{"status"})
		if v, _ := m.Value("input"); v != "status" {
			t.Errorf("Value(input) = %q, want status", v)
		}
		if _, _, ok := m.Subcommand(); ok {
			t.Error("no dispatch should happen while a slot is unfilled")
		}
	})

	t.Run("filled slots release dispatch", func(t *testing.T) {
		spec := New("app").
			Arg(Arg("input").Index(1)).
			Subcommand(New("status")).
			MustBuild()
		m := mustParse(t, spec, []string{"in.txt", "status"})
		if v, _ := m.Value("input"); v != "in.txt" {
			t.Errorf("Value(input) = %q", v)
		}
		if name, _, ok := m.Subcommand(); !ok || name != "status" {
			t.Errorf("Subcommand() = %q, %v, want status dispatch", name, ok)
		}
	})
}

func TestRequests(t *testing.T) {
	spec := New("app").Version("2.0.0").
		Subcommand(New("run")).
		MustBuild()

	t.Run("help long", func(t *testing.T) {
		m, err := spec.Parse([]string{"--help"})
		if m != nil {
			t.Error("matches must be nil on a request")
		}
		if !HelpRequested(err) {
			t.Fatalf("err = %v, want help request", err)
		}
		req := err.(*Request)
		if !reflect.DeepEqual(req.Path, []string{"app"}) {
			t.Errorf("Path = %v", req.Path)
		}
	})

	t.Run("help short", func(t *testing.T) {
		_, err := spec.Parse([]string{"-h"})
		if !HelpRequested(err) {
			t.Errorf("err = %v, want help request", err)
		}
	})

	t.Run("version", func(t *testing.T) {
		_, err := spec.Parse([]string{"--version"})
		if !VersionRequested(err) {
			t.Errorf("err = %v, want version request", err)
		}
	})

	t.Run("help at subcommand level", func(t *testing.T) {
		_, err := spec.Parse([]string{"run", "--help"})
		if !HelpRequested(err) {
			t.Fatalf("err = %v, want help request", err)
		}
		req := err.(*Request)
		if !reflect.DeepEqual(req.Path, []string{"app", "run"}) {
			t.Errorf("Path = %v", req.Path)
		}
	})

	t.Run("child help wins over parent violation", func(t *testing.T) {
		deep := New("app3").
			Arg(Arg("config").Long("config").TakesValue().Required()).
			Subcommand(New("run")).
			MustBuild()
		_, err := deep.Parse([]string{"run", "--help"})
		if !HelpRequested(err) {
			t.Errorf("err = %v, want help request", err)
		}
	})

	t.Run("request skips validation", func(t *testing.T) {
		strict := New("app2").
			Arg(Arg("input").Index(1).Required()).
			MustBuild()
		_, err := strict.Parse([]string{"--help"})
		if !HelpRequested(err) {
			t.Errorf("err = %v; help must win over a missing required argument", err)
		}
	})
}

func TestStrictUTF8(t *testing.T) {
	spec := New("app").Arg(Arg("input").Index(1)).MustBuild()
	bad := string([]byte{0xff, 0xfe})

	t.Run("Parse rejects", func(t *testing.T) {
		_, err := spec.Parse([]string{bad})
		var pe *ParseError
		if !errors.As(err, &pe) || pe.Kind != KindInvalidUTF8 {
			t.Errorf("Parse = %v, want %q", err, KindInvalidUTF8)
		}
	})

	t.Run("ParseRaw accepts", func(t *testing.T) {
		m, err := spec.ParseRaw([]string{bad})
		if err != nil {
			t.Fatalf("ParseRaw = %v", err)
		}
		if v, _ := m.Value("input"); v != bad {
			t.Error("raw bytes must round-trip untouched")
		}
	})
}

func TestParseDeterministic(t *testing.T) {
	spec := New("app").
		Arg(Arg("verbose").Short('v').Stackable()).
		Arg(Arg("files").Index(1).Variadic()).
		MustBuild()
	argv := []string{"-vv", "a", "b"}

	first := mustParse(t, spec, argv)
	second := mustParse(t, spec, argv)
	if first == second {
		t.Error("each parse must return a fresh matches tree")
	}
	if first.Occurrences("verbose") != second.Occurrences("verbose") ||
		!reflect.DeepEqual(first.Values("files"), second.Values("files")) {
		t.Error("identical argv must produce identical results")
	}
}
