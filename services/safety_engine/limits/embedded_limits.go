// Copyright (C) 2026 Seedpost Labs (eng@seedpost.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
This file bridges the build system and the runtime configuration. It uses the
Go embed package to bake the default_limits.yaml file directly into the
compiled binary, so every deployment starts from a known-good threshold set
even when no environment overrides are present.
*/

package limits

import (
	_ "embed"
)

// DefaultLimitsYAML holds the raw byte content of the 'default_limits.yaml' file.
//
// This variable is populated at compile-time using the Go 'embed' directive.
// The defaults ship with the binary; deployments override individual values
// through SENTINEL_* environment variables (see Load).
//
//go:embed default_limits.yaml
var DefaultLimitsYAML []byte
