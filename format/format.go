// Package format renders usage, help, and error text for clip specs. It
// only consumes the public AppSpec surface, so applications that want a
// different look can replace it wholesale.
package format

import (
	"errors"
	"sort"
	"strings"

	"github.com/clipkit/clip"
)

// Help renders the full help screen for a spec: about text, usage line,
// options, positionals, and visible subcommands.
func Help(spec *clip.AppSpec) string {
	var b strings.Builder

	if about := spec.AboutText(); about != "" {
		b.WriteString(about)
		b.WriteString("\n\n")
	}

	b.WriteString("Usage:\n  ")
	b.WriteString(Usage(spec))
	b.WriteString("\n")

	if version := spec.VersionText(); version != "" {
		b.WriteString("\nVersion: ")
		b.WriteString(version)
		b.WriteString("\n")
	}

	writeOptions(&b, spec)
	writePositionals(&b, spec)
	writeSubcommands(&b, spec)

	if len(spec.Subcommands()) > 0 {
		b.WriteString("\nUse \"" + spec.Name() + " COMMAND --help\" for more information about a command.\n")
	}
	return b.String()
}

// Usage renders the one-line usage synopsis.
func Usage(spec *clip.AppSpec) string {
	var b strings.Builder
	b.WriteString(spec.Name())

	hasOptions := false
	for _, arg := range spec.Args() {
		if !isPositional(arg) && !arg.Hidden {
			hasOptions = true
			break
		}
	}
	if hasOptions {
		b.WriteString(" [OPTIONS]")
	}
	for _, arg := range positionals(spec) {
		if arg.Hidden {
			continue
		}
		name := valueName(arg)
		switch {
		case arg.Variadic:
			b.WriteString(" [" + name + "...]")
		case arg.Required:
			b.WriteString(" <" + name + ">")
		default:
			b.WriteString(" [" + name + "]")
		}
	}
	if len(spec.Subcommands()) > 0 {
		b.WriteString(" COMMAND")
	}
	return b.String()
}

// Version renders the version line.
func Version(spec *clip.AppSpec) string {
	return spec.Name() + " " + spec.VersionText()
}

// Error renders a parse failure for the terminal, with a "did you mean"
// line when a suggestion is available and a usage reminder.
func Error(spec *clip.AppSpec, err error) string {
	var b strings.Builder
	b.WriteString("error: ")
	b.WriteString(err.Error())
	b.WriteString("\n")

	var pe *clip.ParseError
	if errors.As(err, &pe) && pe.Suggestion != "" {
		b.WriteString("\n  did you mean " + pe.Suggestion + "?\n")
	}

	b.WriteString("\nUsage:\n  ")
	b.WriteString(Usage(spec))
	b.WriteString("\n")
	return b.String()
}

func writeOptions(b *strings.Builder, spec *clip.AppSpec) {
	var lines [][2]string
	for _, arg := range spec.Args() {
		if isPositional(arg) || arg.Hidden {
			continue
		}
		lines = append(lines, [2]string{optionSynopsis(arg), arg.Help})
	}
	if len(lines) == 0 {
		return
	}
	b.WriteString("\nOptions:\n")
	writeAligned(b, lines)
}

func writePositionals(b *strings.Builder, spec *clip.AppSpec) {
	var lines [][2]string
	for _, arg := range positionals(spec) {
		if arg.Hidden {
			continue
		}
		lines = append(lines, [2]string{valueName(arg), arg.Help})
	}
	if len(lines) == 0 {
		return
	}
	b.WriteString("\nArguments:\n")
	writeAligned(b, lines)
}

func writeSubcommands(b *strings.Builder, spec *clip.AppSpec) {
	var lines [][2]string
	subs := append([]*clip.AppSpec(nil), spec.Subcommands()...)
	sort.Slice(subs, func(i, j int) bool { return subs[i].Name() < subs[j].Name() })
	for _, sub := range subs {
		if sub.IsHidden() {
			continue
		}
		name := sub.Name()
		if aliases := sub.AliasList(); len(aliases) > 0 {
			name += " (" + strings.Join(aliases, ", ") + ")"
		}
		lines = append(lines, [2]string{name, sub.AboutText()})
	}
	if len(lines) == 0 {
		return
	}
	b.WriteString("\nCommands:\n")
	writeAligned(b, lines)
}

// writeAligned pads the left column so descriptions line up.
func writeAligned(b *strings.Builder, lines [][2]string) {
	width := 0
	for _, line := range lines {
		if len(line[0]) > width {
			width = len(line[0])
		}
	}
	for _, line := range lines {
		b.WriteString("  ")
		b.WriteString(line[0])
		if line[1] != "" {
			b.WriteString(strings.Repeat(" ", width-len(line[0])+2))
			b.WriteString(line[1])
		}
		b.WriteString("\n")
	}
}

func optionSynopsis(arg *clip.ArgSpec) string {
	var b strings.Builder
	switch {
	case arg.Short != 0 && arg.Long != "":
		b.WriteString("-" + string(arg.Short) + ", --" + arg.Long)
	case arg.Short != 0:
		b.WriteString("-" + string(arg.Short))
	default:
		b.WriteString("    --" + arg.Long)
	}
	if arg.TakesValue {
		b.WriteString(" <" + valueName(arg) + ">")
		if arg.Arity.Max < 0 || arg.Arity.Max > 1 {
			b.WriteString("...")
		}
	}
	return b.String()
}

func valueName(arg *clip.ArgSpec) string {
	if arg.ValueName != "" {
		return arg.ValueName
	}
	return strings.ToUpper(arg.ID)
}

func isPositional(arg *clip.ArgSpec) bool { return arg.Index > 0 }

func positionals(spec *clip.AppSpec) []*clip.ArgSpec {
	out := make([]*clip.ArgSpec, 0)
	for _, arg := range spec.Args() {
		if isPositional(arg) {
			out = append(out, arg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
