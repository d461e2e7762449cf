// Package featureflags resolves opt-in behaviour toggled by --feature or
// HUBBEN_FEATURE_* environment variables.
package featureflags

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Stage indicates the lifecycle of a feature flag.
type Stage string

const (
	StageExperimental Stage = "experimental"
	StageBeta         Stage = "beta"
)

// Name is the canonical identifier for a feature flag (kebab-case).
type Name string

const (
	// FeatureOfflineFallback serves the last cached response when the backend
	// is unreachable or failing.
	FeatureOfflineFallback Name = "offline-fallback"
)

const envPrefix = "HUBBEN_FEATURE_"

// Definition tracks the metadata for a feature flag.
type Definition struct {
	Name        Name
	Description string
	Stage       Stage
}

var registry = map[Name]Definition{
	FeatureOfflineFallback: {
		Name:        FeatureOfflineFallback,
		Description: "Serve the last cached response (any age) when the backend fails; needs --cache-db.",
		Stage:       StageExperimental,
	},
}

// ErrUnknownFeature is returned when a caller references a flag that has not been registered.
var ErrUnknownFeature = errors.New("unknown feature flag")

// Definitions returns the registered flags in alphabetical order.
func Definitions() []Definition {
	defs := make([]Definition, 0, len(registry))
	for _, def := range registry {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// EnvVar returns the variable that toggles the flag, e.g. HUBBEN_FEATURE_OFFLINE_FALLBACK.
func (d Definition) EnvVar() string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(string(d.Name), "-", "_"))
}

// Flags is the resolved flag set of one invocation.
type Flags struct {
	values map[Name]bool
}

// Enabled reports whether name is on.
func (f Flags) Enabled(name Name) bool {
	return f.values[name]
}

// EnabledNames returns the enabled flags in alphabetical order.
func (f Flags) EnabledNames() []Name {
	var names []Name
	for name, on := range f.values {
		if on {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Resolve merges flag names from several sources (CLI, config, env). Entries
// may be comma separated.
func Resolve(sources ...[]string) (Flags, error) {
	values := make(map[Name]bool, len(registry))
	for _, source := range sources {
		for _, value := range source {
			for _, token := range strings.Split(value, ",") {
				token = strings.TrimSpace(token)
				if token == "" {
					continue
				}
				name := Name(strings.ReplaceAll(strings.ToLower(token), "_", "-"))
				if _, ok := registry[name]; !ok {
					return Flags{}, fmt.Errorf("%w: %s", ErrUnknownFeature, token)
				}
				values[name] = true
			}
		}
	}
	return Flags{values: values}, nil
}

// EnabledFromEnv scans environ (os.Environ when nil) for truthy HUBBEN_FEATURE_* values.
// Registered names are returned in enabled; variables naming no registered
// feature are returned in unknown so callers can report them without failing.
func EnabledFromEnv(environ []string) (enabled, unknown []string) {
	if environ == nil {
		environ = os.Environ()
	}
	for _, entry := range environ {
		key, val, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(key, envPrefix) || !isTruthy(val) {
			continue
		}
		name := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(key, envPrefix), "_", "-"))
		if _, known := registry[Name(name)]; !known {
			unknown = append(unknown, key)
			continue
		}
		enabled = append(enabled, name)
	}
	return enabled, unknown
}

type ctxKey struct{}

// ContextWithFlags stores flags on ctx.
func ContextWithFlags(ctx context.Context, flags Flags) context.Context {
	return context.WithValue(ctx, ctxKey{}, flags)
}

// FromContext returns the flags stored on ctx, or an empty set.
func FromContext(ctx context.Context) Flags {
	if ctx == nil {
		return Flags{}
	}
	flags, _ := ctx.Value(ctxKey{}).(Flags)
	return flags
}

func isTruthy(val string) bool {
	switch strings.TrimSpace(strings.ToLower(val)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}
