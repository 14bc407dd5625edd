package api

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"dario.cat/mergo"
)

// Params holds the free-form parameters of a step or a service.
type Params map[string]any

// Services maps a service name to its configuration.
type Services map[string]Params

// Has reports whether key is present with a non-nil value.
func (p Params) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// String returns the value of key as a string, or "" when absent.
func (p Params) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Int returns the value of key as an int. Absent keys yield 0.
func (p Params) Int(key string) (int, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("%s: %q is not an integer", key, n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%s: unexpected type %T", key, v)
	}
}

// Bool returns the value of key as a bool. Absent or unparsable keys yield false.
func (p Params) Bool(key string) bool {
	switch b := p[key].(type) {
	case bool:
		return b
	case string:
		v, _ := strconv.ParseBool(b)
		return v
	default:
		return false
	}
}

// Map returns the nested params under key, or nil.
func (p Params) Map(key string) Params {
	switch m := p[key].(type) {
	case Params:
		return m
	case map[string]any:
		return Params(m)
	default:
		return nil
	}
}

// Get returns the configuration of the named service.
func (s Services) Get(name string) (Params, bool) {
	p, ok := s[name]
	return p, ok
}

// Resolve returns the configuration of the named service with overrides
// merged on top. The stored configuration is never modified.
func (s Services) Resolve(name string, overrides Params) (Params, error) {
	merged := cloneParams(s[name])
	if len(overrides) == 0 {
		return merged, nil
	}
	if err := mergo.Merge(&merged, cloneParams(overrides), mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merging %s configuration: %w", name, err)
	}
	return merged, nil
}

// cloneParams copies p including nested maps and lists.
func cloneParams(p Params) Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Params:
		return cloneParams(val)
	case map[string]any:
		return map[string]any(cloneParams(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

var envReference = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${NAME} references in string values. A bare $ is kept.
func expandEnv(p Params) {
	for k, v := range p {
		switch val := v.(type) {
		case string:
			p[k] = expandString(val)
		case map[string]any:
			expandEnv(Params(val))
		}
	}
}

func expandString(s string) string {
	return envReference.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(envReference.FindStringSubmatch(ref)[1])
	})
}
