package featureflag

import (
	"fmt"
	"hash/fnv"
	"os"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Identity is the caller a flag is evaluated for. UserID feeds the rollout
// bucket; Role feeds role rules.
type Identity struct {
	UserID string
	Role   string
}

// UserRule pins a flag value for one user.
type UserRule struct {
	ID      string `yaml:"id"`
	Enabled bool   `yaml:"enabled"`
}

// RoleRule pins a flag value for every user holding a role.
type RoleRule struct {
	Role    string `yaml:"role"`
	Enabled bool   `yaml:"enabled"`
}

// Flag is one feature gate. The fields form an explicit precedence chain:
// override, then a matching user rule, then a matching role rule, then the
// percentage bucket, then the default.
type Flag struct {
	Key         string     `yaml:"key"`
	Description string     `yaml:"description"`
	Default     bool       `yaml:"default"`
	Override    *bool      `yaml:"override"`
	Percentage  *int       `yaml:"percentage"`
	Users       []UserRule `yaml:"users"`
	Roles       []RoleRule `yaml:"roles"`
}

type rulesFile struct {
	Flags []Flag `yaml:"flags"`
}

type cacheEntry struct {
	value   bool
	expires time.Time
}

// Service evaluates feature flags against a fixed rule set. Evaluations are
// memoized per (flag, user) with a bounded TTL; the cache is an explicit
// object here, not ambient package state.
type Service struct {
	flags map[string]Flag
	keys  []string

	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// New builds a service from parsed flags. A zero ttl disables caching.
func New(flags []Flag, ttl time.Duration) *Service {
	byKey := make(map[string]Flag, len(flags))
	keys := make([]string, 0, len(flags))
	for _, f := range flags {
		byKey[f.Key] = f
		keys = append(keys, f.Key)
	}
	sort.Strings(keys)
	return &Service{
		flags: byKey,
		keys:  keys,
		ttl:   ttl,
		now:   time.Now,
		cache: map[string]cacheEntry{},
	}
}

// Load reads a YAML rules file and builds a service from it.
func Load(path string, ttl time.Duration) (*Service, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read flags file: %w", err)
	}
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse flags file: %w", err)
	}
	return New(file.Flags, ttl), nil
}

// Keys returns all configured flag keys, sorted.
func (s *Service) Keys() []string {
	return s.keys
}

// Evaluate resolves one flag for an identity. Unknown flags are false.
func (s *Service) Evaluate(key string, id Identity) bool {
	f, ok := s.flags[key]
	if !ok {
		return false
	}

	cacheKey := key + "\x00" + id.UserID + "\x00" + id.Role
	if s.ttl > 0 {
		s.mu.Lock()
		entry, hit := s.cache[cacheKey]
		s.mu.Unlock()
		if hit && s.now().Before(entry.expires) {
			return entry.value
		}
	}

	value := resolve(f, id)

	if s.ttl > 0 {
		s.mu.Lock()
		s.cache[cacheKey] = cacheEntry{value: value, expires: s.now().Add(s.ttl)}
		s.mu.Unlock()
	}
	return value
}

// EvaluateAll resolves every configured flag for an identity.
func (s *Service) EvaluateAll(id Identity) map[string]bool {
	out := make(map[string]bool, len(s.keys))
	for _, key := range s.keys {
		out[key] = s.Evaluate(key, id)
	}
	return out
}

// resolve walks the precedence chain.
func resolve(f Flag, id Identity) bool {
	if f.Override != nil {
		return *f.Override
	}
	for _, u := range f.Users {
		if u.ID == id.UserID {
			return u.Enabled
		}
	}
	for _, r := range f.Roles {
		if r.Role == id.Role {
			return r.Enabled
		}
	}
	if f.Percentage != nil {
		return Bucket(f.Key, id.UserID) < *f.Percentage
	}
	return f.Default
}

// Bucket maps a (flag, user) pair deterministically onto [0,100) with FNV-1a,
// so a 25% rollout admits the same users on every evaluation.
func Bucket(flagKey, userID string) int {
	h := fnv.New32a()
	h.Write([]byte(flagKey + ":" + userID)) //nolint:errcheck
	return int(h.Sum32() % 100)
}
