//nolint:testpackage // rendering is deterministic text; test through the public API
package format

import (
	"strings"
	"testing"

	"github.com/clipkit/clip"
)

func demoSpec(t *testing.T) *clip.AppSpec {
	t.Helper()
	spec, err := clip.New("deploy").
		Version("1.4.0").
		About("Deploys services to a cluster").
		Arg(clip.Arg("verbose").Short('v').Long("verbose").Help("enable verbose output")).
		Arg(clip.Arg("config").Short('c').Long("config").TakesValue().ValueName("FILE").Help("config file path")).
		Arg(clip.Arg("secret").Long("secret").Hidden()).
		Arg(clip.Arg("target").Index(1).Required().Help("deployment target")).
		Subcommand(
			clip.New("status").About("Show deployment status").Alias("st"),
			clip.New("internal-sync").Hidden(),
		).
		Build()
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	return spec
}

func TestUsage(t *testing.T) {
	got := Usage(demoSpec(t))
	want := "deploy [OPTIONS] <TARGET> COMMAND"
	if got != want {
		t.Errorf("Usage() = %q, want %q", got, want)
	}
}

func TestHelp(t *testing.T) {
	out := Help(demoSpec(t))

	for _, want := range []string{
		"Deploys services to a cluster",
		"Usage:\n  deploy [OPTIONS] <TARGET> COMMAND",
		"Version: 1.4.0",
		"-v, --verbose",
		"-c, --config <FILE>",
		"TARGET",
		"status (st)",
		"Show deployment status",
		`Use "deploy COMMAND --help"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Help() missing %q in:\n%s", want, out)
		}
	}

	for _, absent := range []string{"secret", "internal-sync"} {
		if strings.Contains(out, absent) {
			t.Errorf("Help() should hide %q:\n%s", absent, out)
		}
	}
}

func TestVersion(t *testing.T) {
	if got := Version(demoSpec(t)); got != "deploy 1.4.0" {
		t.Errorf("Version() = %q", got)
	}
}

func TestErrorWithSuggestion(t *testing.T) {
	spec := demoSpec(t)
	_, err := spec.Parse([]string{"x", "--cofnig", "a.toml"})
	if err == nil {
		t.Fatal("expected parse error")
	}
	out := Error(spec, err)
	if !strings.Contains(out, "did you mean --config?") {
		t.Errorf("Error() missing suggestion:\n%s", out)
	}
	if !strings.Contains(out, "Usage:") {
		t.Errorf("Error() missing usage reminder:\n%s", out)
	}
}
