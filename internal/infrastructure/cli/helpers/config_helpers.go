package helpers

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/persona-go/internal/app"
	configapp "github.com/doeshing/persona-go/internal/application/config"
	"github.com/doeshing/persona-go/internal/domain"
	configinfra "github.com/doeshing/persona-go/internal/infrastructure/config"
)

// ErrUnknownKey is returned when a dotted key path names nothing in config.yaml.
var ErrUnknownKey = errors.New("unknown configuration key")

// GetConfigLoader extracts the config loader from container with error handling
func GetConfigLoader(container *app.Container) (*configinfra.FileLoader, error) {
	if container.ConfigLoader == nil {
		return nil, errors.New("config loader unavailable")
	}
	return container.ConfigLoader, nil
}

// SaveConfigWithValidation validates cfg, backs up the current file and
// writes the new one. The container keeps the saved copy.
func SaveConfigWithValidation(container *app.Container, cfg domain.Config) error {
	loader, err := GetConfigLoader(container)
	if err != nil {
		return err
	}

	if err := configapp.Validate(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if _, err := os.Stat(loader.Path()); err == nil {
		if _, err := loader.Backup(); err != nil {
			return fmt.Errorf("failed to create configuration backup: %w", err)
		}
	}

	if err := loader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	container.Config = cfg
	return nil
}

// ConfigTree converts cfg to the generic tree addressed by yaml key paths
// such as "preferences.user_name" or "models.0.temperature".
func ConfigTree(cfg domain.Config) (map[string]interface{}, error) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	tree := map[string]interface{}{}
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config tree: %w", err)
	}
	return tree, nil
}

// ConfigFromTree decodes a tree produced by ConfigTree back into a Config.
func ConfigFromTree(tree map[string]interface{}) (domain.Config, error) {
	raw, err := yaml.Marshal(tree)
	if err != nil {
		return domain.Config{}, fmt.Errorf("failed to marshal config tree: %w", err)
	}
	var cfg domain.Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// LookupKey returns the node at path.
func LookupKey(tree map[string]interface{}, path string) (interface{}, error) {
	var node interface{} = tree
	keys := splitKey(path)
	for i, key := range keys {
		next, err := child(node, key)
		if err != nil {
			return nil, keyError(path, keys[:i], node)
		}
		node = next
	}
	return node, nil
}

// AssignKey replaces the existing node at path with raw parsed as YAML.
// Only keys already present can be assigned; a new model is added with
// "models add" instead.
func AssignKey(tree map[string]interface{}, path, raw string) error {
	keys := splitKey(path)
	if len(keys) == 0 {
		return fmt.Errorf("%w: empty key", ErrUnknownKey)
	}
	var parent interface{} = tree
	for i, key := range keys[:len(keys)-1] {
		next, err := child(parent, key)
		if err != nil {
			return keyError(path, keys[:i], parent)
		}
		parent = next
	}

	last := keys[len(keys)-1]
	if _, err := child(parent, last); err != nil {
		return keyError(path, keys[:len(keys)-1], parent)
	}
	value := ParseYAMLValue(raw)
	switch node := parent.(type) {
	case map[string]interface{}:
		node[last] = value
	case []interface{}:
		idx, _ := strconv.Atoi(last)
		node[idx] = value
	}
	return nil
}

// ParseYAMLValue parses input as a YAML scalar or collection, falling back to
// the literal string.
func ParseYAMLValue(input string) interface{} {
	var parsed interface{}
	if err := yaml.Unmarshal([]byte(input), &parsed); err != nil || parsed == nil {
		return input
	}
	return parsed
}

func splitKey(path string) []string {
	path = strings.Trim(strings.TrimSpace(path), ".")
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

func child(node interface{}, key string) (interface{}, error) {
	switch n := node.(type) {
	case map[string]interface{}:
		if v, ok := n[key]; ok {
			return v, nil
		}
	case []interface{}:
		if idx, err := strconv.Atoi(key); err == nil && idx >= 0 && idx < len(n) {
			return n[idx], nil
		}
	}
	return nil, ErrUnknownKey
}

func keyError(path string, prefix []string, node interface{}) error {
	var known []string
	switch n := node.(type) {
	case map[string]interface{}:
		for k := range n {
			known = append(known, k)
		}
		sort.Strings(known)
	case []interface{}:
		if len(n) > 0 {
			known = []string{fmt.Sprintf("0-%d", len(n)-1)}
		}
	}
	where := "top level"
	if len(prefix) > 0 {
		where = strings.Join(prefix, ".")
	}
	if len(known) == 0 {
		return fmt.Errorf("%w: %s (%s has no children)", ErrUnknownKey, path, where)
	}
	return fmt.Errorf("%w: %s (under %s: %s)", ErrUnknownKey, path, where, strings.Join(known, ", "))
}
