// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"encoding/json"
	"os"
	"regexp"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/tfdriftgo/internal/state"
)

// filterRegex is the pattern used to parse filter expressions into key,
// operator, and target components. Operators are one of = ^ or ~, optionally
// prefixed with '!'. This allows forms like '=', '!=', '^', '!^', etc.
var filterRegex = regexp.MustCompile(`^(.*?)(!?[=^~])(.*)$`)

// Filter represents a single parsed --filter expression including the key,
// operand, optional negation and target value.
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string
}

// BuildFilters parses a filter specification string into a slice of Filter.
// Invalid specs (unsupported operand or malformed expression) are skipped.
func BuildFilters(spec string) []Filter {
	//nolint:prealloc
	var filters []Filter

	// If there are no filters specified, go home early.
	if spec == "" {
		return filters
	}

	// Default delimiter is ",", allow an override.
	delim := ","
	if d, ok := os.LookupEnv("TFDRIFT_FILTER_DELIM"); ok {
		delim = d
	}

	filterSpecs := strings.Split(spec, delim)
	for _, filterSpec := range filterSpecs {
		parts := filterRegex.FindStringSubmatch(filterSpec)

		// If a supported operand was not found, log an error and throw it away.
		if parts == nil {
			log.Error("invalid filter: " + filterSpec)
			continue
		}

		// parts[2] is the operand. It may have a leading negation. If so, trim
		// it and just use the remainder as the working operand.
		negate := strings.HasPrefix(parts[2], "!")
		if negate {
			parts[2] = strings.TrimPrefix(parts[2], "!")
		}

		filters = append(filters, Filter{
			Key:     parts[1],
			Negate:  negate,
			Operand: parts[2],
			Target:  parts[3],
		})
	}

	return filters
}

// Matches evaluates one filter against a resource. The key is one of the
// resource identity fields or a dotted path into its attributes.
func (f Filter) Matches(res state.Resource) bool {
	var value string
	switch f.Key {
	case "address":
		value = res.Address
	case "module":
		value = res.Module
	case "mode":
		value = res.Mode
	case "type":
		value = res.Type
	case "name":
		value = res.Name
	case "provider":
		value = res.Provider
	default:
		raw, err := json.Marshal(res.Attributes)
		if err != nil {
			return false
		}
		value = gjson.GetBytes(raw, f.Key).String()
	}

	var matched bool
	switch f.Operand {
	case "=":
		matched = value == f.Target
	case "^":
		matched = strings.HasPrefix(value, f.Target)
	case "~":
		re, err := regexp.Compile(f.Target)
		if err != nil {
			log.Error("invalid filter regex: " + f.Target)
			return false
		}
		matched = re.MatchString(value)
	}

	if f.Negate {
		return !matched
	}
	return matched
}

// Apply keeps only the resources matching every filter. With no filters the
// document passes through untouched.
func Apply(doc *state.Document, filters []Filter) *state.Document {
	if len(filters) == 0 {
		return doc
	}

	filtered := &state.Document{
		Kind:             doc.Kind,
		TerraformVersion: doc.TerraformVersion,
		Serial:           doc.Serial,
		Lineage:          doc.Lineage,
		Resources:        map[string]state.Resource{},
	}

outer:
	for addr, res := range doc.Resources {
		for _, f := range filters {
			if !f.Matches(res) {
				continue outer
			}
		}
		filtered.Resources[addr] = res
	}

	log.Debugf("filters kept %d of %d resources", len(filtered.Resources), len(doc.Resources))
	return filtered
}
