package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"Kilnworld/internal/persist"
	"Kilnworld/internal/store/sqlite"
	"Kilnworld/internal/world"
)

func execute(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out.String()
}

func TestHashPasswordMatchesInput(t *testing.T) {
	hash := strings.TrimSpace(execute(t, "open sesame\n", "hash-password"))
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("open sesame")); err != nil {
		t.Fatalf("hash %q does not match: %v", hash, err)
	}
}

func TestImportThenExport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "world.db")
	t.Setenv("KILN_STORE_PATH", dbPath)
	t.Setenv("KILN_LOG_LEVEL", "error")

	st, err := sqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := persist.SaveUser(context.Background(), st, &world.User{Name: "ana"}); err != nil {
		t.Fatalf("SaveUser() error = %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	file := filepath.Join(dir, "cellar.json")
	payload := `{"starting_room": {"name": "Cellar", "alias": "cellar", "description": "Damp.",
		"items": [{"name": "cask", "description": "An oak cask.", "visible": true}]}}`
	if err := os.WriteFile(file, []byte(payload), 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}

	out := execute(t, "", "import", "--name", "Wine Cellar", "--creator", "ana", file)
	if !strings.Contains(out, "Imported Wine Cellar for ana.") {
		t.Fatalf("import output = %q", out)
	}

	out = execute(t, "", "export", "--world", "wine cellar")
	for _, want := range []string{`"starting_room"`, `"Cellar"`, `"cask"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("export output = %q, missing %s", out, want)
		}
	}
}
