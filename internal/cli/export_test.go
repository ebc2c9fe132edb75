package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExportLeaderboardFromDemoData(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_ADDR", "")
	dir := t.TempDir()
	out := filepath.Join(dir, "board.csv")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"export-leaderboard", "--config", filepath.Join(dir, "none.yaml"), "--grade", "7", "--section", "a", "-o", out})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("export: %v", err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two section A students, got %d lines:\n%s", len(lines), raw)
	}
	// Diya: 9 assignment + 10 lesson + 8 participation beats Aarav's 8 + 10 + 8.
	if !strings.HasPrefix(lines[1], "1,Diya Nair,7,A,27,") {
		t.Fatalf("unexpected first row %q", lines[1])
	}
}
