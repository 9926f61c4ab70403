package db

import (
	"io"
	"strings"
	"testing"
)

func TestEmbeddedMigrations(t *testing.T) {
	src, err := Source()
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	defer src.Close()

	v, err := src.First()
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	var versions []uint
	for {
		versions = append(versions, v)
		up, _, err := src.ReadUp(v)
		if err != nil {
			t.Fatalf("ReadUp(%d): %v", v, err)
		}
		body, _ := io.ReadAll(up)
		up.Close()
		if len(strings.TrimSpace(string(body))) == 0 {
			t.Fatalf("migration %d is empty", v)
		}
		if _, _, err := src.ReadDown(v); err != nil {
			t.Fatalf("migration %d has no down file: %v", v, err)
		}
		next, err := src.Next(v)
		if err != nil {
			break
		}
		v = next
	}
	if len(versions) != 3 {
		t.Fatalf("versions = %v, want 3 migrations", versions)
	}
}
