// Copyright (C) 2026 Seedpost Labs (eng@seedpost.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/seedpost/sentinel/services/safety_engine"
	"github.com/seedpost/sentinel/services/validator/datatypes"
	"github.com/seedpost/sentinel/services/validator/observability"
)

var validateTracer = otel.Tracer("sentinel.validator.handlers")

// HandleValidateBatch runs the safety engine over a submitted batch and
// returns the safety report.
//
// Error surface: malformed bodies, failed structural validation, and
// unparseable timestamps are 400s; a dangling persona reference is a 422
// (the batch is well-formed JSON but cannot be validated meaningfully);
// anything else is a 500 with a generic message, with the diagnostic
// detail kept in the logs.
func HandleValidateBatch(engine *safety_engine.Engine, metrics *observability.ValidatorMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := validateTracer.Start(c.Request.Context(), "HandleValidateBatch")
		defer span.End()

		start := time.Now()
		requestID := uuid.NewString()

		var request datatypes.ValidateBatchRequest
		if err := c.BindJSON(&request); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to bind validate request JSON", "request_id", requestID, "error", err)
			metrics.RecordRequest("validate", "client_error")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if err := request.Validate(); err != nil {
			slog.Warn("Validate request failed structural validation", "request_id", requestID, "error", err)
			metrics.RecordRequest("validate", "client_error")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		convs, personas, err := request.ToEngine()
		if err != nil {
			slog.Warn("Validate request has unparseable timestamps", "request_id", requestID, "error", err)
			metrics.RecordRequest("validate", "client_error")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid timestamp", "details": err.Error()})
			return
		}

		report, err := engine.Validate(ctx, convs, personas)
		if err != nil {
			var dangling *safety_engine.DanglingReferenceError
			if errors.As(err, &dangling) {
				slog.Warn("Batch references unknown persona",
					"request_id", requestID,
					"persona_id", dangling.PersonaID,
					"conversation_id", dangling.ConversationID)
				metrics.RecordRequest("validate", "client_error")
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Unknown persona reference", "details": err.Error()})
				return
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Validation failed unexpectedly", "request_id", requestID, "error", err)
			metrics.RecordRequest("validate", "server_error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Validation failed"})
			return
		}

		for _, f := range report.Findings {
			metrics.RecordFinding(string(f.Kind), f.Severity.String())
		}
		metrics.RecordRequest("validate", "success")
		metrics.ObserveDuration("validate", time.Since(start))

		slog.Info("Batch validated",
			"request_id", requestID,
			"conversations", len(convs),
			"findings", len(report.Findings),
			"risk_level", report.RiskLevel.String(),
			"passed", report.Passed)

		c.JSON(http.StatusOK, datatypes.ValidateBatchResponse{
			RequestID:   requestID,
			ValidatedAt: time.Now().UTC(),
			Report:      report,
		})
	}
}
