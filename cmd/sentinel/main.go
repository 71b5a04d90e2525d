// Copyright (C) 2026 Seedpost Labs (eng@seedpost.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command sentinel validates a scheduled conversation batch offline.
//
// The same engine the validator service hosts, run against a local batch
// file for pipeline pre-flight checks and CI gates:
//
//	sentinel validate --batch batch.yaml
//	sentinel validate --batch batch.yaml --pretty
//
// Thresholds come from embedded defaults plus SENTINEL_* environment
// overrides, exactly as in the service:
//
//	SENTINEL_MAX_REPEATED_PHRASES=5 sentinel validate --batch batch.yaml
//
// Exit code is 0 when the batch passes, 1 when it fails validation or
// the report verdict is fail.
package main

import (
	"log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}
