// Copyright (C) 2026 Seedpost Labs (eng@seedpost.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/seedpost/sentinel/services/safety_engine"
	"github.com/seedpost/sentinel/services/safety_engine/limits"
	"github.com/seedpost/sentinel/services/validator/middleware"
	"github.com/seedpost/sentinel/services/validator/observability"
	"github.com/seedpost/sentinel/services/validator/routes"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "sentinel-otel-collector:4317"
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("validator-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func main() {
	port := os.Getenv("VALIDATOR_PORT")
	if port == "" {
		port = "12310"
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	// Thresholds are injected configuration: embedded defaults plus
	// SENTINEL_* env overrides. A bad weight table is fatal here, before
	// any request is accepted.
	limitSet, err := limits.Load()
	if err != nil {
		log.Fatalf("failed to load validation limits: %v", err)
	}
	engine, err := safety_engine.NewEngine(limitSet)
	if err != nil {
		log.Fatalf("failed to construct the safety engine: %v", err)
	}

	metrics := observability.NewValidatorMetrics(prometheus.DefaultRegisterer)

	rateLimit := 60
	if raw := os.Getenv("SENTINEL_RATE_LIMIT_PER_MINUTE"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			log.Fatalf("invalid SENTINEL_RATE_LIMIT_PER_MINUTE: %q", raw)
		}
		rateLimit = v
	}
	limiter := middleware.NewRateLimiter(rateLimit, time.Minute)

	router := gin.Default()
	router.Use(otelgin.Middleware("validator-service"))
	routes.SetupRoutes(router, engine, metrics, limiter)

	slog.Info("Validator service starting",
		"port", port,
		"rate_limit_per_minute", rateLimit,
		"max_repeated_phrases", limitSet.MaxRepeatedPhrases,
		"max_similarity_percent", limitSet.MaxSimilarityPercent)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("validator service exited: %v", err)
	}
}
