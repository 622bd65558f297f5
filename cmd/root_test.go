package cmd

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matheuskafuri/articles/internal/apitest"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		input string
		want  int
		err   bool
	}{
		{"1", 1, false},
		{"42", 42, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := parseID(tt.input)
		if tt.err {
			if err == nil {
				t.Errorf("parseID(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseID(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseID(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.input); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestHeadlessCommands(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf("api:\n  base_url: %s\n  timeout: 2s\nlog_level: debug\n", srv.BaseURL())
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs(append([]string{
			"--config", cfgPath,
			"--store", filepath.Join(dir, "local.db"),
			"--log-file", filepath.Join(dir, "articles.log"),
		}, args...))
		err := rootCmd.Execute()
		return out.String(), err
	}

	steps := []struct {
		args    []string
		want    string
		wantErr bool
	}{
		{[]string{"list"}, "", true},
		{[]string{"login", "-u", "ab", "-p", "12345678"}, "", true},
		{[]string{"login", "-u", "Foo", "-p", "12345678"}, "Here are your articles, Foo!", false},
		{[]string{"status"}, "Session: logged in", false},
		{[]string{"list"}, "#1  Closures  [JavaScript]", false},
		{[]string{"update", "2", "--title", "Custom hooks"}, "Nice update, Foo!", false},
		{[]string{"delete", "1"}, "Article 1 was deleted, Foo!", false},
		{[]string{"delete", "x"}, "", true},
		{[]string{"create", "--title", "Streams", "--text", "Data in chunks", "--topic", "Node"}, "Well done, Foo. Great article!", false},
		{[]string{"create", "--title", "Bad", "--text", "topic", "--topic", "Go"}, "", true},
		{[]string{"list"}, "#2  Custom hooks  [React]", false},
		{[]string{"logout"}, "Goodbye!", false},
		{[]string{"status"}, "Session: logged out", false},
		{[]string{"version"}, "articles dev", false},
	}

	for _, st := range steps {
		out, err := run(st.args...)
		if st.wantErr != (err != nil) {
			t.Fatalf("%v: err = %v, wantErr %v (output %q)", st.args, err, st.wantErr, out)
		}
		if !strings.Contains(out, st.want) {
			t.Errorf("%v: output %q, want %q", st.args, out, st.want)
		}
	}

	releases := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tag_name":"v9.9.9"}`)
	}))
	defer releases.Close()
	out, err := run("version", "--check", "--releases-url", releases.URL)
	if err != nil {
		t.Fatalf("version --check: %v", err)
	}
	if !strings.Contains(out, "A newer release is available: 9.9.9") {
		t.Errorf("version --check output %q", out)
	}

	if got := len(srv.Articles()); got != 3 {
		t.Errorf("server holds %d articles, want 3", got)
	}
}
