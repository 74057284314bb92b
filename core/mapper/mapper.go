// Package mapper decides which operations are served and with which extra
// tags, from an ordered list of matching rules.
package mapper

import (
	"regexp"
	"strings"

	"github.com/specx2/apimarshal/core/ir"
)

// OperationMap is one rule. An operation matches when its method is listed
// (or Methods contains "*"), PathPattern matches its path and it carries
// every tag in Tags. Empty Methods and a nil PathPattern match anything.
type OperationMap struct {
	Methods     []string
	PathPattern *regexp.Regexp
	Tags        []string
	Exclude     bool
	// ExtraTags are added to matched operations.
	ExtraTags []string
}

// ExcludePaths returns rules excluding every operation whose path matches
// one of patterns.
func ExcludePaths(patterns ...string) ([]OperationMap, error) {
	maps := make([]OperationMap, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		maps = append(maps, OperationMap{PathPattern: re, Exclude: true})
	}
	return maps, nil
}

type MapFunc func(op ir.Operation, decision Decision) *Decision

type Decision struct {
	Exclude bool
	Tags    []string
}

type OperationMapper struct {
	maps       []OperationMap
	mapFunc    MapFunc
	globalTags []string
}

func NewOperationMapper(maps []OperationMap) *OperationMapper {
	clone := make([]OperationMap, len(maps))
	copy(clone, maps)
	return &OperationMapper{maps: clone}
}

func (m *OperationMapper) WithMapFunc(fn MapFunc) *OperationMapper {
	m.mapFunc = fn
	return m
}

func (m *OperationMapper) WithGlobalTags(tags ...string) *OperationMapper {
	m.globalTags = uniqueStrings(tags)
	return m
}

// Map returns the served operations in order with their tags merged. The
// first matching rule decides; the map func may override it.
func (m *OperationMapper) Map(operations []ir.Operation) []ir.Operation {
	var mapped []ir.Operation
	for _, op := range operations {
		decision := m.Decide(op)
		if decision.Exclude {
			continue
		}
		op.Tags = decision.Tags
		mapped = append(mapped, op)
	}
	return mapped
}

func (m *OperationMapper) Decide(op ir.Operation) Decision {
	decision := Decision{Tags: m.combineTags(op, nil)}

	for i := range m.maps {
		rule := m.maps[i]
		if !matches(op, rule) {
			continue
		}
		decision.Exclude = rule.Exclude
		decision.Tags = m.combineTags(op, &rule)
		break
	}

	if m.mapFunc != nil {
		if override := m.mapFunc(op, decision); override != nil {
			decision = *override
		}
	}
	decision.Tags = uniqueStrings(decision.Tags)
	return decision
}

func matches(op ir.Operation, rule OperationMap) bool {
	if !matchesMethod(op.Method, rule.Methods) {
		return false
	}
	if rule.PathPattern != nil && !rule.PathPattern.MatchString(op.Path) {
		return false
	}
	return hasTags(op.Tags, rule.Tags)
}

func matchesMethod(method string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, method) {
			return true
		}
	}
	return false
}

func hasTags(tags, required []string) bool {
	set := make(map[string]bool, len(tags))
	for _, tag := range tags {
		set[tag] = true
	}
	for _, r := range required {
		if !set[r] {
			return false
		}
	}
	return true
}

func (m *OperationMapper) combineTags(op ir.Operation, rule *OperationMap) []string {
	var combined []string
	combined = append(combined, op.Tags...)
	if rule != nil {
		combined = append(combined, rule.ExtraTags...)
	}
	combined = append(combined, m.globalTags...)
	return uniqueStrings(combined)
}

func uniqueStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
