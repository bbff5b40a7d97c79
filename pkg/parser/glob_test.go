package parser

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandGlobs_SingleFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.log")
	if err := os.WriteFile(file, []byte("test"), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := ExpandGlobs([]string{file})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	if len(result) != 1 || result[0] != file {
		t.Errorf("ExpandGlobs() = %v, want [%s]", result, file)
	}
}

func TestExpandGlobs_GlobPattern(t *testing.T) {
	dir := t.TempDir()
	files := []string{"a.log", "b.log", "c.txt"}
	for _, f := range files {
		path := filepath.Join(dir, f)
		if err := os.WriteFile(path, []byte("test"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	pattern := filepath.Join(dir, "*.log")
	result, err := ExpandGlobs([]string{pattern})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	if len(result) != 2 {
		t.Errorf("ExpandGlobs() returned %d files, want 2", len(result))
	}
}

func TestExpandGlobs_NoMatch(t *testing.T) {
	dir := t.TempDir()
	pattern := filepath.Join(dir, "*.nonexistent")

	result, err := ExpandGlobs([]string{pattern})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	// Should return the pattern as-is when no match
	if len(result) != 1 || result[0] != pattern {
		t.Errorf("ExpandGlobs() = %v, want [%s]", result, pattern)
	}
}

func TestExpandGlobs_Deduplication(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.log")
	if err := os.WriteFile(file, []byte("test"), 0644); err != nil {
		t.Fatal(err)
	}

	// Same file via different paths/patterns
	result, err := ExpandGlobs([]string{file, file})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	if len(result) != 1 {
		t.Errorf("ExpandGlobs() returned %d files, want 1 (deduplicated)", len(result))
	}
}

func TestExpandGlobs_InvalidPattern(t *testing.T) {
	_, err := ExpandGlobs([]string{"[invalid"})
	if err == nil {
		t.Error("ExpandGlobs() expected error for invalid pattern")
	}
}

func TestMatchFilter(t *testing.T) {
	tests := []struct {
		filter string
		path   string
		want   bool
	}{
		{"*.log", "/var/log/app/service.log", true},
		{"*.log", "/var/log/app/service.log.1", false},
		{"service.log*", "/var/log/app/service.log.1", true},
		{"", "/anything", true},
		{"app-??.log", "app-01.log", true},
	}

	for _, tt := range tests {
		got, err := MatchFilter(tt.filter, tt.path)
		if err != nil {
			t.Fatalf("MatchFilter(%q, %q) error = %v", tt.filter, tt.path, err)
		}
		if got != tt.want {
			t.Errorf("MatchFilter(%q, %q) = %v, want %v", tt.filter, tt.path, got, tt.want)
		}
	}

	if _, err := MatchFilter("[invalid", "a.log"); err == nil {
		t.Error("MatchFilter() expected error for invalid filter")
	}
}

func TestMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"b.log", "a.log", "c.txt"} {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "d.log"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := MatchingFiles(dir, "*.log")
	if err != nil {
		t.Fatalf("MatchingFiles() error = %v", err)
	}

	want := []string{filepath.Join(dir, "a.log"), filepath.Join(dir, "b.log")}
	if len(got) != len(want) {
		t.Fatalf("MatchingFiles() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("MatchingFiles()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMatchingFiles_MissingDir(t *testing.T) {
	if _, err := MatchingFiles(filepath.Join(t.TempDir(), "missing"), "*.log"); err == nil {
		t.Error("MatchingFiles() expected error for missing directory")
	}
}
