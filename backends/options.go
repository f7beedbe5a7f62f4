// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package backends

import (
	"strconv"
	"strings"

	"github.com/gomlx/bitonic/pkg/support/sets"
	"github.com/pkg/errors"
)

// Options parsed from a backend configuration string, see ParseOptions.
type Options map[string]string

// ParseOptions parses a backend configuration formatted as comma-separated "key=value" or "key"
// entries. A "key" without value is stored with an empty value.
//
// Keys not present in known return an error, so typos are not silently ignored.
func ParseOptions(config string, known ...string) (Options, error) {
	options := make(Options)
	knownKeys := sets.MakeWith(known...)
	for _, part := range strings.Split(config, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		if !knownKeys.Has(key) {
			return nil, errors.Errorf("unknown option %q in configuration %q, valid options are %q",
				key, config, sets.Sorted(knownKeys))
		}
		options[key] = strings.TrimSpace(value)
	}
	return options, nil
}

// Has returns whether the key was given.
func (o Options) Has(key string) bool {
	_, found := o[key]
	return found
}

// Int returns the value of key converted to int, or defaultValue if key was not given.
func (o Options) Int(key string, defaultValue int) (int, error) {
	value, found := o[key]
	if !found {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "option %q requires an integer value, got %q", key, value)
	}
	return v, nil
}

// String returns the value of key, or defaultValue if key was not given.
func (o Options) String(key, defaultValue string) string {
	if value, found := o[key]; found {
		return value
	}
	return defaultValue
}
