// Copyright (C) 2026 Seedpost Labs (eng@seedpost.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/seedpost/sentinel/services/safety_engine"
	"github.com/seedpost/sentinel/services/safety_engine/limits"
)

// batchFile is the on-disk shape consumed by `sentinel validate`.
type batchFile struct {
	Conversations []safety_engine.ScheduledConversation `yaml:"conversations"`
	Personas      []safety_engine.Persona               `yaml:"personas"`
}

var (
	batchPath   string
	prettyPrint bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a batch file and print the safety report",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(batchPath)
		if err != nil {
			return fmt.Errorf("failed to read batch file: %w", err)
		}
		var batch batchFile
		if err := yaml.Unmarshal(raw, &batch); err != nil {
			return fmt.Errorf("failed to parse batch file: %w", err)
		}
		if len(batch.Conversations) == 0 {
			return fmt.Errorf("batch file contains no conversations")
		}
		if len(batch.Personas) == 0 {
			return fmt.Errorf("batch file contains no personas")
		}

		limitSet, err := limits.Load()
		if err != nil {
			return fmt.Errorf("failed to load validation limits: %w", err)
		}
		engine, err := safety_engine.NewEngine(limitSet)
		if err != nil {
			return fmt.Errorf("failed to construct the safety engine: %w", err)
		}

		report, err := engine.Validate(cmd.Context(), batch.Conversations, batch.Personas)
		if err != nil {
			return err
		}

		var out []byte
		if prettyPrint {
			out, err = json.MarshalIndent(report, "", "  ")
		} else {
			out, err = json.Marshal(report)
		}
		if err != nil {
			return fmt.Errorf("failed to serialize the report: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		if !report.Passed {
			return fmt.Errorf("batch failed validation (risk level %s)", report.RiskLevel)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&batchPath, "batch", "", "path to the batch YAML file (required)")
	validateCmd.Flags().BoolVar(&prettyPrint, "pretty", false, "indent the JSON report")
	_ = validateCmd.MarkFlagRequired("batch")
}
