package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFSStoreRoundTrip(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key, err := s.Put("imports/doc1/page-1.png", strings.NewReader("pngbytes"))
	if err != nil {
		t.Fatal(err)
	}
	rc, err := s.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "pngbytes" {
		t.Errorf("read back %q", got)
	}

	url, err := s.PublicURL(key)
	if err != nil || url != "/assets/imports/doc1/page-1.png" {
		t.Errorf("url = %q, err = %v", url, err)
	}
}

func TestFSStoreRejectsEscapingKeys(t *testing.T) {
	base := t.TempDir()
	s, err := NewFSStore(base)
	if err != nil {
		t.Fatal(err)
	}
	outside := filepath.Join(filepath.Dir(base), "secret.txt")
	if err := os.WriteFile(outside, []byte("secret"), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{
		"../secret.txt",
		"a/../../secret.txt",
		"..",
		"/etc/passwd",
		"",
	} {
		if _, err := s.Get(key); err == nil {
			t.Errorf("Get(%q) did not reject the key", key)
		}
		if _, err := s.Put(key, strings.NewReader("x")); err == nil {
			t.Errorf("Put(%q) did not reject the key", key)
		}
	}

	// In-tree dot segments that do not escape stay legal.
	if _, err := s.Put("a/./b.txt", strings.NewReader("x")); err != nil {
		t.Errorf("clean in-tree key rejected: %v", err)
	}
}
