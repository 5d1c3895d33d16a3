package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/stuart/pkg"
)

// TestMain points the per-user directories at a scratch directory before
// anything caches them.
func TestMain(m *testing.M) {
	home, err := os.MkdirTemp("", pkg.Name+"-cli-")
	if err != nil {
		panic(err)
	}

	os.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	os.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))
	os.Setenv("HOME", home)

	code := m.Run()

	os.RemoveAll(home)
	os.Exit(code)
}

func noExit(t *testing.T) func(int) {
	return func(code int) { t.Fatalf("unexpected exit(%d)", code) }
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer

	err := run(t.Context(), &out, noExit(t), "version")
	if err != nil {
		t.Fatal(err)
	}

	if got := out.String(); got != pkg.Name+" "+pkg.Version()+"\n" {
		t.Errorf("version = %q", got)
	}
}

func TestRun_Build(t *testing.T) {
	dir := t.TempDir()
	content := filepath.Join(dir, "content")

	err := os.MkdirAll(content, 0o755)
	if err != nil {
		t.Fatal(err)
	}

	for name, body := range map[string]string{
		"root.html":  `<main>{{insert("body")}}</main>`,
		"about.html": `{{begin("body")}}about{{end("body")}}`,
	} {
		err = os.WriteFile(filepath.Join(content, name), []byte(body), 0o644)
		if err != nil {
			t.Fatal(err)
		}
	}

	var out bytes.Buffer

	err = run(t.Context(), &out, noExit(t), "--no-log-pretty", "build", "-C", dir)
	if err != nil {
		t.Fatalf("build: %v\n%s", err, out.String())
	}

	data, err := os.ReadFile(filepath.Join(dir, "dist", "about", "index.html"))
	if err != nil || string(data) != "<main>about</main>" {
		t.Errorf("about = %q, %v", data, err)
	}

	// Defaults from the user configuration file apply to the build command.
	public := filepath.Join(dir, "public")
	configFile := filepath.Join(pkg.ConfigDir(), ConfigName)

	err = os.WriteFile(configFile, []byte("build:\n  output: "+public+"\n"), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { os.Remove(configFile) })

	err = run(t.Context(), &out, noExit(t), "build", "--project", dir)
	if err != nil {
		t.Fatalf("configured build: %v", err)
	}

	if _, err := os.Stat(filepath.Join(public, "about", "index.html")); err != nil {
		t.Errorf("configured output: %v", err)
	}
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer

	err := run(t.Context(), &out, func(int) {}, "build", "--no-such-flag")
	if err == nil || !strings.Contains(err.Error(), "no-such-flag") {
		t.Errorf("unknown flag: %v", err)
	}

	err = run(t.Context(), &out, func(int) {}, "check", "-C", filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("missing project directory accepted")
	}
}
