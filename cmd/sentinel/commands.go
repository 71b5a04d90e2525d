// Copyright (C) 2026 Seedpost Labs (eng@seedpost.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sentinel",
	Short: "Safety and quality validation for scheduled conversation batches",
	Long: `Sentinel inspects a batch of scheduled synthetic conversations and
their authoring personas, and reports policy violations (content
repetition, cross-conversation similarity, persona collusion, volume
caps, timing windows) together with a weighted quality score.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
