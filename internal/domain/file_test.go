package domain

import (
	"testing"
	"time"
)

func TestStableKeyDeterministic(t *testing.T) {
	mtime := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	a := FileIdentity{Path: "/data/in/a.csv", SizeBytes: 100, ModifiedTime: mtime}
	b := FileIdentity{Path: "/other/dir/a.csv", SizeBytes: 100, ModifiedTime: mtime}

	if a.StableKey() != a.StableKey() {
		t.Fatalf("stable key not deterministic")
	}
	if a.StableKey() != b.StableKey() {
		t.Fatalf("stable key should ignore the directory: %s vs %s", a.StableKey(), b.StableKey())
	}
	if a.Name() != "a.csv" {
		t.Fatalf("unexpected name %q", a.Name())
	}
}

func TestStableKeyChangesWithEachComponent(t *testing.T) {
	mtime := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	base := FileIdentity{Path: "/data/in/a.csv", SizeBytes: 100, ModifiedTime: mtime}

	cases := map[string]FileIdentity{
		"name": {Path: "/data/in/b.csv", SizeBytes: 100, ModifiedTime: mtime},
		"size": {Path: "/data/in/a.csv", SizeBytes: 101, ModifiedTime: mtime},
		"time": {Path: "/data/in/a.csv", SizeBytes: 100, ModifiedTime: mtime.Add(time.Second)},
	}
	for field, other := range cases {
		if base.StableKey() == other.StableKey() {
			t.Fatalf("changing %s should change the key", field)
		}
	}
}

func TestStableKeyTruncatesToSeconds(t *testing.T) {
	mtime := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	a := FileIdentity{Path: "a.csv", SizeBytes: 1, ModifiedTime: mtime}
	b := FileIdentity{Path: "a.csv", SizeBytes: 1, ModifiedTime: mtime.Add(500 * time.Millisecond)}

	if a.StableKey() != b.StableKey() {
		t.Fatalf("sub-second precision must not change the key")
	}
}
