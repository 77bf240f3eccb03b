package featureflag

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

func TestPrecedenceChain(t *testing.T) {
	id := Identity{UserID: "u-1", Role: "Member"}

	tests := []struct {
		name string
		flag Flag
		want bool
	}{
		{
			name: "default only",
			flag: Flag{Key: "f", Default: true},
			want: true,
		},
		{
			name: "percentage beats default",
			flag: Flag{Key: "f", Default: true, Percentage: intPtr(0)},
			want: false,
		},
		{
			name: "role rule beats percentage",
			flag: Flag{Key: "f", Percentage: intPtr(0), Roles: []RoleRule{{Role: "Member", Enabled: true}}},
			want: true,
		},
		{
			name: "user rule beats role rule",
			flag: Flag{Key: "f",
				Roles: []RoleRule{{Role: "Member", Enabled: true}},
				Users: []UserRule{{ID: "u-1", Enabled: false}}},
			want: false,
		},
		{
			name: "override beats everything",
			flag: Flag{Key: "f", Default: false, Override: boolPtr(true),
				Users: []UserRule{{ID: "u-1", Enabled: false}},
				Roles: []RoleRule{{Role: "Member", Enabled: false}}},
			want: true,
		},
		{
			name: "non-matching rules fall through",
			flag: Flag{Key: "f", Default: true,
				Users: []UserRule{{ID: "someone-else", Enabled: false}},
				Roles: []RoleRule{{Role: "Team Lead", Enabled: false}}},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New([]Flag{tt.flag}, 0)
			if got := s.Evaluate("f", id); got != tt.want {
				t.Errorf("Evaluate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnknownFlagIsFalse(t *testing.T) {
	s := New(nil, 0)
	if s.Evaluate("missing", Identity{UserID: "u"}) {
		t.Error("unknown flag should evaluate false")
	}
}

func TestBucketDeterministic(t *testing.T) {
	first := Bucket("new-ui", "u-1")
	for i := 0; i < 10; i++ {
		if got := Bucket("new-ui", "u-1"); got != first {
			t.Fatalf("bucket changed between evaluations: %d vs %d", got, first)
		}
	}
	if first < 0 || first >= 100 {
		t.Errorf("bucket %d out of [0,100)", first)
	}

	// Different flags bucket the same user independently.
	same := true
	for _, key := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		if Bucket(key, "u-1") != first {
			same = false
			break
		}
	}
	if same {
		t.Error("expected per-flag buckets to differ for at least one key")
	}
}

func TestPercentageRollout(t *testing.T) {
	s := New([]Flag{
		{Key: "all", Percentage: intPtr(100)},
		{Key: "none", Percentage: intPtr(0)},
	}, 0)

	for _, user := range []string{"u-1", "u-2", "u-3", "u-4"} {
		id := Identity{UserID: user}
		if !s.Evaluate("all", id) {
			t.Errorf("100%% rollout excluded %s", user)
		}
		if s.Evaluate("none", id) {
			t.Errorf("0%% rollout admitted %s", user)
		}
	}
}

func TestEvaluateAll(t *testing.T) {
	s := New([]Flag{
		{Key: "b-flag", Default: true},
		{Key: "a-flag", Default: false},
	}, 0)

	got := s.EvaluateAll(Identity{UserID: "u-1"})
	if len(got) != 2 {
		t.Fatalf("got %d flags, want 2", len(got))
	}
	if !got["b-flag"] || got["a-flag"] {
		t.Errorf("unexpected values: %v", got)
	}
}

func TestCacheTTL(t *testing.T) {
	s := New([]Flag{{Key: "f", Default: false}}, time.Minute)

	base := time.Unix(1000, 0)
	s.now = func() time.Time { return base }

	if s.Evaluate("f", Identity{UserID: "u-1"}) {
		t.Fatal("expected false")
	}

	// Mutating the rules does not show through while the entry is fresh.
	f := s.flags["f"]
	f.Default = true
	s.flags["f"] = f

	if s.Evaluate("f", Identity{UserID: "u-1"}) {
		t.Error("cached value should still be served inside the TTL")
	}

	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	if !s.Evaluate("f", Identity{UserID: "u-1"}) {
		t.Error("expired entry should be re-evaluated")
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flags.yaml")
	content := []byte(`flags:
  - key: new-vault-ui
    description: redesigned vault screens
    default: false
    percentage: 50
    roles:
      - role: Team Lead
        enabled: true
  - key: kill-switch
    default: true
    override: false
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, err := Load(path, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Keys()) != 2 {
		t.Fatalf("got %d flags, want 2", len(s.Keys()))
	}

	if !s.Evaluate("new-vault-ui", Identity{UserID: "u", Role: "Team Lead"}) {
		t.Error("role rule from YAML not applied")
	}
	if s.Evaluate("kill-switch", Identity{UserID: "u"}) {
		t.Error("override from YAML not applied")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), 0); err == nil {
		t.Error("expected error for missing file")
	}
}
