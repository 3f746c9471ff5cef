package flow

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// FallbackKey is the category used when no keyword group matches.
const FallbackKey = "fallback"

const defaultMaxSteps = 6

var ErrInvalidFlowConfig = errors.New("invalid flow configuration")

var fieldNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{1,40}$`)

// Flow describes the slots a support category needs before answering.
type Flow struct {
	Key            string
	Description    string
	RequiredFields []string
	Questions      map[string]string
	MaxSteps       int
}

// KeywordGroup routes a message to Category when any keyword is a substring
// of the lowercased message.
type KeywordGroup struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// DefaultKeywordGroups is evaluated in order; the first match wins.
var DefaultKeywordGroups = []KeywordGroup{
	{Category: "vpn", Keywords: []string{"vpn", "pulse", "anyconnect", "tunnel"}},
	{Category: "email", Keywords: []string{"outlook", "email", "mailbox", "owa", "exchange"}},
	{Category: "wifi", Keywords: []string{"wifi", "wi-fi", "wireless", "ssid"}},
}

// Registry holds the category definitions loaded at startup. It is immutable
// after construction and safe for concurrent use.
type Registry struct {
	flows    map[string]*Flow
	fallback *Flow
	groups   []KeywordGroup
}

type flowDocument struct {
	Description    string            `yaml:"description"`
	RequiredFields []string          `yaml:"required_fields"`
	Questions      map[string]string `yaml:"questions"`
	MaxSteps       int               `yaml:"max_steps"`
}

type registryDocument struct {
	Categories map[string]flowDocument `yaml:"categories"`
	Fallback   *flowDocument           `yaml:"fallback"`
	Classifier []KeywordGroup          `yaml:"classifier"`
}

// LoadRegistry reads category definitions from a YAML file.
func LoadRegistry(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: flow config not found: %v", ErrInvalidFlowConfig, err)
	}
	return ParseRegistry(raw)
}

// ParseRegistry builds a registry from YAML bytes.
func ParseRegistry(raw []byte) (*Registry, error) {
	var doc registryDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFlowConfig, err)
	}
	if doc.Fallback == nil {
		return nil, fmt.Errorf("%w: missing fallback definition", ErrInvalidFlowConfig)
	}

	flows := make(map[string]*Flow, len(doc.Categories))
	for key, cfg := range doc.Categories {
		f, err := newFlow(key, cfg)
		if err != nil {
			return nil, err
		}
		flows[key] = f
	}

	fallback, err := newFlow(FallbackKey, *doc.Fallback)
	if err != nil {
		return nil, err
	}

	groups := DefaultKeywordGroups
	if len(doc.Classifier) > 0 {
		groups = doc.Classifier
	}

	return NewRegistry(flows, fallback, groups), nil
}

// NewRegistry assembles a registry from already-built flows.
func NewRegistry(flows map[string]*Flow, fallback *Flow, groups []KeywordGroup) *Registry {
	normalized := make([]KeywordGroup, len(groups))
	for i, g := range groups {
		kws := make([]string, len(g.Keywords))
		for j, k := range g.Keywords {
			kws[j] = strings.ToLower(k)
		}
		normalized[i] = KeywordGroup{Category: g.Category, Keywords: kws}
	}
	if flows == nil {
		flows = map[string]*Flow{}
	}
	return &Registry{flows: flows, fallback: fallback, groups: normalized}
}

func newFlow(key string, cfg flowDocument) (*Flow, error) {
	fields := make([]string, 0, len(cfg.RequiredFields))
	for _, f := range cfg.RequiredFields {
		name := strings.ToLower(strings.TrimSpace(f))
		if !fieldNamePattern.MatchString(name) {
			return nil, fmt.Errorf("%w: category %q has invalid required field %q", ErrInvalidFlowConfig, key, f)
		}
		fields = append(fields, name)
	}

	questions := make(map[string]string, len(cfg.Questions))
	for field, q := range cfg.Questions {
		questions[strings.ToLower(field)] = q
	}

	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}

	return &Flow{
		Key:            key,
		Description:    cfg.Description,
		RequiredFields: fields,
		Questions:      questions,
		MaxSteps:       maxSteps,
	}, nil
}

// Classify returns the category of the first keyword group matching message,
// or FallbackKey.
func (r *Registry) Classify(message string) string {
	m := strings.ToLower(message)
	for _, g := range r.groups {
		for _, k := range g.Keywords {
			if strings.Contains(m, k) {
				return g.Category
			}
		}
	}
	return FallbackKey
}

// Get never fails: unknown keys resolve to the fallback flow.
func (r *Registry) Get(key string) *Flow {
	if f, ok := r.flows[key]; ok {
		return f
	}
	return r.fallback
}

// Categories lists the configured category keys (fallback excluded).
func (r *Registry) Categories() []string {
	keys := make([]string, 0, len(r.flows))
	for k := range r.flows {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NextMissingField returns the first required field, in declared order, that is
// absent, nil, or a blank string.
func NextMissingField(f *Flow, collected map[string]any) (string, bool) {
	for _, field := range f.RequiredFields {
		if !isSet(collected, field) {
			return field, true
		}
	}
	return "", false
}

// isSet reports whether key holds a usable value: present, non-nil and not a
// blank string.
func isSet(collected map[string]any, key string) bool {
	v, ok := collected[key]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return false
	}
	return true
}

// QuestionFor returns the configured question for field or a generic prompt.
func QuestionFor(f *Flow, field string) string {
	if q, ok := f.Questions[field]; ok && q != "" {
		return q
	}
	return fmt.Sprintf("Please provide: %s", field)
}
