package marshal

import (
	"sort"

	"github.com/wippyai/clr-host/errors"
)

// Runtime property keys understood by the hosting library.
const (
	TrustedPlatformAssemblies  = "TRUSTED_PLATFORM_ASSEMBLIES"
	AppPaths                   = "APP_PATHS"
	AppNIPaths                 = "APP_NI_PATHS"
	NativeDLLSearchDirectories = "NATIVE_DLL_SEARCH_DIRECTORIES"
	PlatformResourceRoots      = "PLATFORM_RESOURCE_ROOTS"
	AppContextBaseDirectory    = "APP_CONTEXT_BASE_DIRECTORY"
	AppContextDepsFile         = "APP_CONTEXT_DEPS_FILES"
	GCServer                   = "System.GC.Server"
	GlobalizationInvariant     = "System.Globalization.Invariant"
)

// Property is one key/value pair passed to the runtime at initialization.
type Property struct {
	Key   string
	Value string
}

// Properties is an ordered property list.
// The runtime treats it as a set; order only matters for reproducibility.
type Properties []Property

// FromMap builds Properties from m, sorted by key.
func FromMap(m map[string]string) Properties {
	props := make(Properties, 0, len(m))
	for k, v := range m {
		props = append(props, Property{Key: k, Value: v})
	}
	sort.Slice(props, func(i, j int) bool { return props[i].Key < props[j].Key })
	return props
}

// Get returns the value for key.
func (p Properties) Get(key string) (string, bool) {
	for _, prop := range p {
		if prop.Key == key {
			return prop.Value, true
		}
	}
	return "", false
}

// Set replaces the value for key, appending it if absent.
func (p Properties) Set(key, value string) Properties {
	for i := range p {
		if p[i].Key == key {
			p[i].Value = value
			return p
		}
	}
	return append(p, Property{Key: key, Value: value})
}

// Keys returns the keys in list order.
func (p Properties) Keys() []string {
	keys := make([]string, len(p))
	for i, prop := range p {
		keys[i] = prop.Key
	}
	return keys
}

// Validate checks that every key is non-empty and unique and that no key or
// value contains a NUL byte.
func (p Properties) Validate() error {
	seen := make(map[string]struct{}, len(p))
	for _, prop := range p {
		if prop.Key == "" {
			return errors.InvalidInput(errors.PhaseMarshal, "empty property key")
		}
		if err := checkText(prop.Key, []string{"properties", "key"}); err != nil {
			return err
		}
		if err := checkText(prop.Value, []string{"properties", prop.Key}); err != nil {
			return err
		}
		if _, dup := seen[prop.Key]; dup {
			return errors.DuplicateKey(errors.PhaseMarshal, prop.Key)
		}
		seen[prop.Key] = struct{}{}
	}
	return nil
}
