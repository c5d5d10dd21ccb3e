package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/schema"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// File is a parsed scenario.
type File struct {
	Name        string                    `yaml:"name" json:"name"`
	Description string                    `yaml:"description" json:"description"`
	Object      map[string]any            `yaml:"object" json:"object"`
	Descriptors map[string]DescriptorSpec `yaml:"-" json:"-"`
	Inherited   map[string]any            `yaml:"inherited" json:"inherited"`
	Properties  []string                  `yaml:"properties" json:"properties"`
	Schema      schema.Schema             `yaml:"schema" json:"schema"`
	Rules       []Rule                    `yaml:"rules" json:"rules"`
	Steps       []Step                    `yaml:"steps" json:"steps"`
}

// DescriptorSpec declares a property with an explicit shape. Unset flags default to true.
// Method names a registry function to install as the value. ReadOnly installs a getter-only
// accessor returning Value.
type DescriptorSpec struct {
	Value        any    `mapstructure:"value"`
	Writable     *bool  `mapstructure:"writable"`
	Enumerable   *bool  `mapstructure:"enumerable"`
	Configurable *bool  `mapstructure:"configurable"`
	Method       string `mapstructure:"method"`
	ReadOnly     bool   `mapstructure:"readonly"`
}

// Rule installs a listener on a channel. Veto returns false, Override returns its value;
// Log writes every firing to the run logger.
type Rule struct {
	On       string `yaml:"on" json:"on"`
	Veto     bool   `yaml:"veto" json:"veto"`
	Override any    `yaml:"override" json:"override"`
	Log      bool   `yaml:"log" json:"log"`
}

// Step is one access. Exactly one of Get, Set, Call or Unobserve is expected.
type Step struct {
	Get         string `yaml:"get" json:"get"`
	Set         string `yaml:"set" json:"set"`
	Value       any    `yaml:"value" json:"value"`
	Call        string `yaml:"call" json:"call"`
	Args        []any  `yaml:"args" json:"args"`
	Unobserve   bool   `yaml:"unobserve" json:"unobserve"`
	ExpectError bool   `yaml:"expect_error" json:"expect_error"`
}

// Op returns the step's operation name.
func (s Step) Op() string {
	switch {
	case s.Unobserve:
		return "unobserve"
	case s.Call != "":
		return "call"
	case s.Set != "":
		return "set"
	case s.Get != "":
		return "get"
	}
	return ""
}

// Property returns the property the step accesses.
func (s Step) Property() string {
	switch s.Op() {
	case "call":
		return s.Call
	case "set":
		return s.Set
	case "get":
		return s.Get
	}
	return ""
}

// raw mirrors File with descriptors left undecoded.
type raw struct {
	File        `yaml:",inline"`
	Descriptors map[string]map[string]any `yaml:"descriptors" json:"descriptors"`
}

// Load reads a scenario from a YAML or JSON file, chosen by extension.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	f, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if f.Name == "" {
		f.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return f, nil
}

// Parse decodes a scenario. ext selects JSON for ".json"; anything else is read as YAML.
func Parse(data []byte, ext string) (*File, error) {
	var r raw
	if strings.EqualFold(ext, ".json") {
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("failed to parse scenario json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("failed to parse scenario yaml: %w", err)
		}
	}

	f := r.File
	f.Descriptors = make(map[string]DescriptorSpec, len(r.Descriptors))
	for name, fields := range r.Descriptors {
		spec, err := decodeDescriptor(fields)
		if err != nil {
			return nil, fmt.Errorf("descriptor %q: %w", name, err)
		}
		f.Descriptors[name] = spec
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func decodeDescriptor(fields map[string]any) (DescriptorSpec, error) {
	var spec DescriptorSpec
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &spec,
	})
	if err != nil {
		return spec, err
	}
	if err := decoder.Decode(fields); err != nil {
		return spec, err
	}
	if spec.Method != "" && spec.ReadOnly {
		return spec, fmt.Errorf("method and readonly are exclusive")
	}
	return spec, nil
}

// Validate checks rules and steps for structural errors.
func (f *File) Validate() error {
	for i, rule := range f.Rules {
		if _, _, ok := domain.ParseChannel(rule.On); !ok {
			return fmt.Errorf("rule %d: unknown channel %q", i, rule.On)
		}
		if rule.Veto && rule.Override != nil {
			return fmt.Errorf("rule %d: veto and override are exclusive", i)
		}
	}
	for i, step := range f.Steps {
		n := 0
		for _, set := range []bool{step.Get != "", step.Set != "", step.Call != "", step.Unobserve} {
			if set {
				n++
			}
		}
		if n != 1 {
			return fmt.Errorf("step %d: expected exactly one of get, set, call or unobserve", i)
		}
	}
	return nil
}
