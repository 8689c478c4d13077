// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package config

import (
	"fmt"
	"net/url"
)

// validateHTTPURL checks that rawURL is a well-formed base URL: http or
// https scheme, a host, and at most a bare "/" path. Query strings and
// fragments are rejected because the value is used as a prefix for
// generated links.
func validateHTTPURL(rawURL, fieldName string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", fieldName, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must use http or https scheme, got %q", fieldName, parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host", fieldName)
	}

	if parsed.Path != "" && parsed.Path != "/" {
		return fmt.Errorf("%s must not include a path, got %q", fieldName, parsed.Path)
	}

	if parsed.RawQuery != "" {
		return fmt.Errorf("%s must not include a query string", fieldName)
	}

	if parsed.Fragment != "" {
		return fmt.Errorf("%s must not include a fragment", fieldName)
	}

	return nil
}
