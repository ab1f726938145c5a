// Package security keeps credentials typed at the console out of durable storage.
package security

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/persona-go/assets"
	"github.com/doeshing/persona-go/internal/pkg/filesystem"
	"github.com/doeshing/persona-go/internal/ports"
)

// SensitivePattern is one regex rule from the privacy rules file.
type SensitivePattern struct {
	Pattern string `yaml:"pattern"`
	Message string `yaml:"message"`
	// MaskFrom is the capture group whose text is replaced when masking. Zero masks nothing.
	MaskFrom int `yaml:"mask_group"`
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	Rules struct {
		SensitivePatterns []SensitivePattern `yaml:"sensitive_patterns"`
	} `yaml:"rules"`
}

// Filter implements ports.SensitiveMatcher with regex rules.
type Filter struct {
	patterns []compiledPattern
}

type compiledPattern struct {
	re   *regexp.Regexp
	rule SensitivePattern
}

// NewFilter loads rules from path, or the embedded defaults when path is
// empty or missing. A rules file without patterns also uses the defaults.
func NewFilter(path string) (*Filter, error) {
	rules, err := loadRules(path)
	if err != nil {
		return nil, err
	}
	f := &Filter{}
	for _, p := range rules.Rules.SensitivePatterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile sensitive pattern %q: %w", p.Pattern, err)
		}
		if p.MaskFrom > re.NumSubexp() {
			return nil, fmt.Errorf("pattern %q has no group %d", p.Pattern, p.MaskFrom)
		}
		f.patterns = append(f.patterns, compiledPattern{re: re, rule: p})
	}
	return f, nil
}

func loadRules(path string) (RulesFile, error) {
	var rules RulesFile
	data := assets.DefaultPrivacyYAML
	if path = filesystem.ExpandPath(path); path != "" {
		custom, err := os.ReadFile(path)
		switch {
		case err == nil:
			data = custom
		case !os.IsNotExist(err):
			return RulesFile{}, fmt.Errorf("read privacy rules: %w", err)
		}
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RulesFile{}, fmt.Errorf("parse privacy rules: %w", err)
	}
	if len(rules.Rules.SensitivePatterns) == 0 {
		if err := yaml.Unmarshal(assets.DefaultPrivacyYAML, &rules); err != nil {
			return RulesFile{}, fmt.Errorf("parse default privacy rules: %w", err)
		}
	}
	return rules, nil
}

// IsSensitive reports whether command matches any rule.
func (f *Filter) IsSensitive(command string) bool {
	_, ok := f.Match(command)
	return ok
}

// Match returns the first rule matching command.
func (f *Filter) Match(command string) (SensitivePattern, bool) {
	if f == nil {
		return SensitivePattern{}, false
	}
	command = strings.TrimSpace(command)
	for _, p := range f.patterns {
		if p.re.MatchString(command) {
			return p.rule, true
		}
	}
	return SensitivePattern{}, false
}

// Mask hides the credential portion of a sensitive command for display.
func (f *Filter) Mask(command string) string {
	if f == nil {
		return command
	}
	for _, p := range f.patterns {
		loc := p.re.FindStringSubmatchIndex(command)
		if loc == nil {
			continue
		}
		group := p.rule.MaskFrom
		start, end := loc[2*group], loc[2*group+1]
		if group == 0 || start < 0 {
			return command
		}
		return command[:start] + strings.Repeat("*", 8) + command[end:]
	}
	return command
}

// Count returns the number of loaded rules.
func (f *Filter) Count() int {
	return len(f.patterns)
}

var _ ports.SensitiveMatcher = (*Filter)(nil)
