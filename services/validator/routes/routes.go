// Copyright (C) 2026 Seedpost Labs (eng@seedpost.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seedpost/sentinel/services/safety_engine"
	"github.com/seedpost/sentinel/services/validator/handlers"
	"github.com/seedpost/sentinel/services/validator/middleware"
	"github.com/seedpost/sentinel/services/validator/observability"
)

// SetupRoutes wires the validator endpoints onto the router. The rate
// limiter guards the v1 API group only; health and metrics stay open for
// probes and scrapers.
func SetupRoutes(router *gin.Engine, engine *safety_engine.Engine,
	metrics *observability.ValidatorMetrics, limiter *middleware.RateLimiter) {

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	v1.Use(limiter.Middleware(metrics))
	{
		v1.POST("/validate", handlers.HandleValidateBatch(engine, metrics))
	}
}
