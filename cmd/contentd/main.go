// Copyright 2025 Aura Wellness Engine Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/your-org/aura-wellness-engine/internal/config"
	"github.com/your-org/aura-wellness-engine/internal/features"
	"github.com/your-org/aura-wellness-engine/internal/gateway"
	"github.com/your-org/aura-wellness-engine/internal/health"
	"github.com/your-org/aura-wellness-engine/internal/media"
	"github.com/your-org/aura-wellness-engine/internal/orchestrator"
	"github.com/your-org/aura-wellness-engine/internal/prompt"
	"github.com/your-org/aura-wellness-engine/internal/resilience"
	"github.com/your-org/aura-wellness-engine/internal/usage"
)

const serviceVersion = "1.0.0"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initializeLogger(cfg)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Refuse to start with broken fallback content: the resilience story
	// depends on synthesis always being able to produce valid output
	if err := features.CheckPools(); err != nil {
		logger.Fatal("Fallback pool validation failed", zap.Error(err))
	}

	maskedConfig := cfg.MaskSensitiveValues()
	logger.Info("Configuration loaded successfully",
		zap.String("service", "contentd"),
		zap.String("environment", os.Getenv("ENVIRONMENT")),
		zap.String("model", maskedConfig.Pipeline.Model),
		zap.String("vision_model", maskedConfig.Pipeline.VisionModel),
		zap.Int("max_tokens", maskedConfig.Pipeline.MaxTokens),
		zap.Float64("temperature", maskedConfig.Pipeline.Temperature),
		zap.String("openai_api_key", maskedConfig.OpenAI.APIKey),
		zap.String("youtube_api_key", maskedConfig.YouTube.APIKey),
		zap.String("usage_storage", maskedConfig.Usage.StorageType),
	)

	app, err := buildApp(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build application", zap.Error(err))
	}
	defer app.close()

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	registerRoutes(router, app, logger)

	port := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Starting content service",
		zap.String("port", port),
		zap.String("model", cfg.Pipeline.Model),
	)

	if err := router.Run(port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

// app bundles the wired pipelines behind the HTTP surface
type app struct {
	horoscope *orchestrator.Orchestrator[features.HoroscopeReading]
	videos    *orchestrator.Orchestrator[features.TherapyPlan]
	angel     *orchestrator.Orchestrator[features.AngelGuidance]
	palm      *orchestrator.Orchestrator[features.PalmAnalysis]
	kundli    *orchestrator.Orchestrator[features.KundliAnalysis]
	diet      *orchestrator.Orchestrator[features.DietPlan]
	puja      *orchestrator.Orchestrator[features.PujaRecommendation]
	health    *health.Manager
	loc       *time.Location
	closers   []func() error
}

// today renders the current date in the configured timezone, for templates
// that center a reading on a calendar day
func (a *app) today() string {
	return time.Now().In(a.loc).Format("January 2, 2006")
}

func (a *app) close() {
	for _, fn := range a.closers {
		_ = fn()
	}
}

// buildApp wires configuration into the gateway, resolver, usage gates and
// one orchestrator per feature
func buildApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	gatewayOpts := []gateway.Option{
		gateway.WithLogger(logger),
		gateway.WithTimeout(time.Duration(cfg.Pipeline.TimeoutSeconds) * time.Second),
	}
	if len(cfg.Pipeline.RefusalPhrases) > 0 {
		gatewayOpts = append(gatewayOpts, gateway.WithRefusalPhrases(cfg.Pipeline.RefusalPhrases))
	}
	model, err := gateway.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Endpoint, gatewayOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize model gateway: %w", err)
	}

	youtube := media.NewYouTubeClient(cfg.YouTube.Endpoint, cfg.YouTube.APIKey, logger)
	breaker := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("youtube"), logger)
	resolver := media.NewResolver(youtube,
		media.WithMaxConcurrent(cfg.YouTube.MaxConcurrent),
		media.WithBreaker(breaker),
		media.WithResolverLogger(logger),
	)
	therapyResolver := media.NewResolver(youtube,
		media.WithMaxConcurrent(cfg.YouTube.MaxConcurrent),
		media.WithBreaker(breaker),
		media.WithBroadener(features.TherapyBroadener),
		media.WithResolverLogger(logger),
	)

	a := &app{loc: cfg.Location()}

	var store usage.Store
	var pingStore func(ctx context.Context) error
	switch cfg.Usage.StorageType {
	case "sqlite":
		sqlStore, err := usage.NewSQLiteStore(cfg.Usage.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open usage store: %w", err)
		}
		a.closers = append(a.closers, sqlStore.Close)
		store = sqlStore
		pingStore = func(ctx context.Context) error {
			_, err := sqlStore.Read(ctx, "health", "probe")
			return err
		}
	default:
		store = usage.NewMemoryStore()
		pingStore = func(context.Context) error { return nil }
	}

	loc := cfg.Location()
	gateFor := func(featureKey string) orchestrator.Gate {
		limit, ok := cfg.Usage.DailyLimits[featureKey]
		if !ok || limit <= 0 {
			return usage.NopGate{}
		}
		return usage.NewGate(store, featureKey, limit, usage.WithLocation(loc))
	}

	params := features.Params{
		Model:       cfg.Pipeline.Model,
		VisionModel: cfg.Pipeline.VisionModel,
		MaxTokens:   cfg.Pipeline.MaxTokens,
		Temperature: float32(cfg.Pipeline.Temperature),
		Retry:       resilience.DefaultBackoffConfig(),
	}
	params.Retry.MaxAttempts = cfg.Pipeline.MaxAttempts

	if a.horoscope, err = orchestrator.New(features.Horoscope(params), model, nil, gateFor(features.KeyHoroscope), logger); err != nil {
		return nil, err
	}
	if a.videos, err = orchestrator.New(features.VideoTherapy(params), model, therapyResolver, gateFor(features.KeyVideoTherapy), logger); err != nil {
		return nil, err
	}
	if a.angel, err = orchestrator.New(features.Angel(params), model, nil, gateFor(features.KeyAngelGuidance), logger); err != nil {
		return nil, err
	}
	if a.palm, err = orchestrator.New(features.Palm(params), model, nil, gateFor(features.KeyPalmAnalysis), logger); err != nil {
		return nil, err
	}
	if a.kundli, err = orchestrator.New(features.Kundli(params), model, nil, gateFor(features.KeyKundli), logger); err != nil {
		return nil, err
	}
	if a.diet, err = orchestrator.New(features.Diet(params), model, nil, gateFor(features.KeyDietPlan), logger); err != nil {
		return nil, err
	}
	if a.puja, err = orchestrator.New(features.Puja(params), model, resolver, gateFor(features.KeyPuja), logger); err != nil {
		return nil, err
	}

	a.health = health.NewManager("contentd", serviceVersion, logger)
	a.health.AddChecker("model_gateway", health.ModelGatewayChecker(cfg.OpenAI.Endpoint, nil))
	a.health.AddChecker("media_api", health.MediaAPIChecker(cfg.YouTube.Endpoint, nil))
	a.health.AddChecker("usage_store", health.UsageStoreChecker(cfg.Usage.StorageType, pingStore))

	return a, nil
}

// HoroscopeRequest represents the incoming horoscope request
type HoroscopeRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Sign   string `json:"sign" binding:"required"`
}

// TherapyRequest represents the incoming video therapy request
type TherapyRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Feeling string `json:"feeling" binding:"required"`
}

// AngelRequest represents the incoming angel guidance request
type AngelRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Concern string `json:"concern" binding:"required"`
}

// PalmRequest represents the incoming palm analysis request
type PalmRequest struct {
	UserID         string `json:"user_id" binding:"required"`
	ImageBase64    string `json:"image_base64" binding:"required"`
	ImageMediaType string `json:"image_media_type"`
}

// KundliRequest represents the incoming kundli analysis request. The image
// fields are optional; when present they carry a photograph of an existing
// birth chart and the reading uses the vision model.
type KundliRequest struct {
	UserID         string `json:"user_id" binding:"required"`
	Name           string `json:"name" binding:"required"`
	BirthDate      string `json:"birth_date" binding:"required"`
	BirthTime      string `json:"birth_time" binding:"required"`
	BirthPlace     string `json:"birth_place" binding:"required"`
	ImageBase64    string `json:"image_base64"`
	ImageMediaType string `json:"image_media_type"`
}

// DietRequest represents the incoming diet plan request
type DietRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	Goal       string `json:"goal" binding:"required"`
	Preference string `json:"preference" binding:"required"`
}

// PujaRequest represents the incoming puja recommendation request
type PujaRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	Intention string `json:"intention" binding:"required"`
}

func registerRoutes(router *gin.Engine, a *app, logger *zap.Logger) {
	router.GET("/health", func(c *gin.Context) {
		resp := a.health.Check(c.Request.Context())
		c.JSON(health.StatusCode(resp.Status), resp)
	})

	v1 := router.Group("/v1")

	v1.POST("/horoscope", func(c *gin.Context) {
		var req HoroscopeRequest
		if !bindJSON(c, &req, logger) {
			return
		}
		serve(c, a.horoscope, orchestrator.Request{
			UserID: req.UserID,
			Fields: map[string]string{"sign": req.Sign, "date": a.today()},
		}, logger)
	})

	v1.POST("/videos", func(c *gin.Context) {
		var req TherapyRequest
		if !bindJSON(c, &req, logger) {
			return
		}
		serve(c, a.videos, orchestrator.Request{
			UserID: req.UserID,
			Fields: map[string]string{"feeling": req.Feeling},
		}, logger)
	})

	v1.POST("/angel", func(c *gin.Context) {
		var req AngelRequest
		if !bindJSON(c, &req, logger) {
			return
		}
		serve(c, a.angel, orchestrator.Request{
			UserID: req.UserID,
			Fields: map[string]string{"concern": req.Concern},
		}, logger)
	})

	v1.POST("/palm", func(c *gin.Context) {
		var req PalmRequest
		if !bindJSON(c, &req, logger) {
			return
		}
		mediaType := req.ImageMediaType
		if mediaType == "" {
			mediaType = "image/jpeg"
		}
		serve(c, a.palm, orchestrator.Request{
			UserID: req.UserID,
			Fields: map[string]string{},
			Image:  &prompt.Image{MediaType: mediaType, Base64: req.ImageBase64},
		}, logger)
	})

	v1.POST("/kundli", func(c *gin.Context) {
		var req KundliRequest
		if !bindJSON(c, &req, logger) {
			return
		}
		var img *prompt.Image
		if req.ImageBase64 != "" {
			mediaType := req.ImageMediaType
			if mediaType == "" {
				mediaType = "image/jpeg"
			}
			img = &prompt.Image{MediaType: mediaType, Base64: req.ImageBase64}
		}
		serve(c, a.kundli, orchestrator.Request{
			UserID: req.UserID,
			Fields: map[string]string{
				"name":        req.Name,
				"birth_date":  req.BirthDate,
				"birth_time":  req.BirthTime,
				"birth_place": req.BirthPlace,
			},
			Image: img,
		}, logger)
	})

	v1.POST("/diet", func(c *gin.Context) {
		var req DietRequest
		if !bindJSON(c, &req, logger) {
			return
		}
		serve(c, a.diet, orchestrator.Request{
			UserID: req.UserID,
			Fields: map[string]string{
				"goal":       req.Goal,
				"preference": req.Preference,
			},
		}, logger)
	})

	v1.POST("/puja", func(c *gin.Context) {
		var req PujaRequest
		if !bindJSON(c, &req, logger) {
			return
		}
		serve(c, a.puja, orchestrator.Request{
			UserID: req.UserID,
			Fields: map[string]string{"intention": req.Intention},
		}, logger)
	})
}

// bindJSON parses the request body and writes the 400 response on failure
func bindJSON(c *gin.Context, req interface{}, logger *zap.Logger) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		logger.Error("Failed to parse request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return false
	}
	return true
}

// serve executes one pipeline run and writes the result. Runtime failures
// inside the pipeline never surface here; an error means a malformed
// feature template, which is a server bug.
func serve[T any](c *gin.Context, orch *orchestrator.Orchestrator[T], req orchestrator.Request, logger *zap.Logger) {
	startTime := time.Now()

	result, err := orch.Execute(c.Request.Context(), req)
	if err != nil {
		logger.Error("Pipeline execution failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate content",
		})
		return
	}

	logger.Info("Request completed",
		zap.String("client_ip", c.ClientIP()),
		zap.String("source", string(result.Source)),
		zap.String("status", string(result.Status)),
		zap.Duration("processing_time", time.Since(startTime)),
	)

	if result.Status == orchestrator.StatusQuotaExhausted {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"status": result.Status,
			"error":  "Daily usage limit reached",
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// initializeLogger creates a logger based on configuration settings
func initializeLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config

	if cfg.Logging.Format == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	switch cfg.Logging.Level {
	case "debug":
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "info":
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	case "warn":
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	if cfg.Logging.Output == "file" {
		zapConfig.OutputPaths = []string{"contentd.log"}
		zapConfig.ErrorOutputPaths = []string{"contentd.log"}
	} else {
		zapConfig.OutputPaths = []string{"stdout"}
		zapConfig.ErrorOutputPaths = []string{"stderr"}
	}

	return zapConfig.Build()
}
