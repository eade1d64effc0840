// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/unrar

package unrar

import (
	"fmt"

	"github.com/woozymasta/pathrules"
)

// entryFilter holds compiled include/exclude rules for extraction.
type entryFilter struct {
	matcher *pathrules.Matcher
}

// newEntryFilter compiles extraction filter rules; nil filter includes everything.
func newEntryFilter(rules []pathrules.Rule, opts pathrules.MatcherOptions) (*entryFilter, error) {
	rules = normalizeFilterRules(rules)
	if len(rules) == 0 {
		return nil, nil
	}

	matcher, err := pathrules.NewMatcher(rules, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: compile rules: %w", ErrInvalidFilterRules, err)
	}

	return &entryFilter{matcher: matcher}, nil
}

// normalizeFilterRules normalizes rule patterns and drops empty patterns.
func normalizeFilterRules(rules []pathrules.Rule) []pathrules.Rule {
	normalized := make([]pathrules.Rule, 0, len(rules))
	for _, rule := range rules {
		pattern := NormalizeSeparators(rule.Pattern)
		if pattern == "" {
			continue
		}

		normalized = append(normalized, pathrules.Rule{
			Action:  rule.Action,
			Pattern: pattern,
		})
	}

	return normalized
}

// Included reports whether the full archive entry name passes the rules.
func (f *entryFilter) Included(name string, isDir bool) bool {
	if f == nil || f.matcher == nil {
		return true
	}

	candidate := NormalizePath(name)
	if candidate == "" {
		return false
	}

	return f.matcher.Included(candidate, isDir)
}

// IncludeRules builds include rules from raw patterns.
func IncludeRules(patterns ...string) []pathrules.Rule {
	rules := make([]pathrules.Rule, 0, len(patterns))
	for _, pattern := range patterns {
		if pattern != "" {
			rules = append(rules, pathrules.Rule{Action: pathrules.ActionInclude, Pattern: pattern})
		}
	}

	return rules
}

// ExcludeRules builds exclude rules from raw patterns.
func ExcludeRules(patterns ...string) []pathrules.Rule {
	rules := make([]pathrules.Rule, 0, len(patterns))
	for _, pattern := range patterns {
		if pattern != "" {
			rules = append(rules, pathrules.Rule{Action: pathrules.ActionExclude, Pattern: pattern})
		}
	}

	return rules
}
