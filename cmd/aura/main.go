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

// Command aura is an operator CLI for exercising the content pipelines
// without running the HTTP service.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/your-org/aura-wellness-engine/internal/config"
	"github.com/your-org/aura-wellness-engine/internal/features"
	"github.com/your-org/aura-wellness-engine/internal/gateway"
	"github.com/your-org/aura-wellness-engine/internal/media"
	"github.com/your-org/aura-wellness-engine/internal/orchestrator"
	"github.com/your-org/aura-wellness-engine/internal/prompt"
	"github.com/your-org/aura-wellness-engine/internal/usage"
)

var (
	configPath string
	userID     string
	seed       int64

	sign       string
	date       string
	feeling    string
	concern    string
	imagePath  string
	name       string
	birthDate  string
	birthTime  string
	birthPlace string
	goal       string
	preference string
	intention  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "aura",
		Short: "Aura Wellness Engine operator CLI",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "cli", "User ID for usage counting")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "Seed for deterministic fallback synthesis (0 = random)")

	horoscopeCmd := &cobra.Command{
		Use:   "horoscope",
		Short: "Generate a three-day horoscope",
		RunE: func(_ *cobra.Command, _ []string) error {
			if date == "" {
				date = time.Now().Format("January 2, 2006")
			}
			return runFeature(features.Horoscope, nil, map[string]string{"sign": sign, "date": date}, nil)
		},
	}
	horoscopeCmd.Flags().StringVarP(&sign, "sign", "s", "", "Zodiac sign")
	horoscopeCmd.Flags().StringVar(&date, "date", "", "Date to center the reading on (defaults to today)")
	_ = horoscopeCmd.MarkFlagRequired("sign")

	videosCmd := &cobra.Command{
		Use:   "videos",
		Short: "Recommend healing videos for a feeling",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runFeature(features.VideoTherapy, features.TherapyBroadener, map[string]string{"feeling": feeling}, nil)
		},
	}
	videosCmd.Flags().StringVarP(&feeling, "feeling", "f", "", "How the user is feeling")
	_ = videosCmd.MarkFlagRequired("feeling")

	angelCmd := &cobra.Command{
		Use:   "angel",
		Short: "Channel angel guidance for a concern",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runFeature(features.Angel, nil, map[string]string{"concern": concern}, nil)
		},
	}
	angelCmd.Flags().StringVar(&concern, "concern", "", "What the user seeks guidance about")
	_ = angelCmd.MarkFlagRequired("concern")

	palmCmd := &cobra.Command{
		Use:   "palm",
		Short: "Analyze a palm photograph",
		RunE: func(_ *cobra.Command, _ []string) error {
			img, err := loadImage(imagePath)
			if err != nil {
				return err
			}
			return runFeature(features.Palm, nil, map[string]string{}, img)
		},
	}
	palmCmd.Flags().StringVarP(&imagePath, "image", "i", "", "Path to the palm photograph")
	_ = palmCmd.MarkFlagRequired("image")

	kundliCmd := &cobra.Command{
		Use:   "kundli",
		Short: "Prepare a kundli reading",
		RunE: func(_ *cobra.Command, _ []string) error {
			var img *prompt.Image
			if imagePath != "" {
				loaded, err := loadImage(imagePath)
				if err != nil {
					return err
				}
				img = loaded
			}
			return runFeature(features.Kundli, nil, map[string]string{
				"name":        name,
				"birth_date":  birthDate,
				"birth_time":  birthTime,
				"birth_place": birthPlace,
			}, img)
		},
	}
	kundliCmd.Flags().StringVarP(&name, "name", "n", "", "Name of the person")
	kundliCmd.Flags().StringVarP(&imagePath, "image", "i", "", "Optional photograph of an existing birth chart")
	kundliCmd.Flags().StringVar(&birthDate, "birth-date", "", "Birth date (YYYY-MM-DD)")
	kundliCmd.Flags().StringVar(&birthTime, "birth-time", "", "Birth time (HH:MM)")
	kundliCmd.Flags().StringVar(&birthPlace, "birth-place", "", "Birth place")
	_ = kundliCmd.MarkFlagRequired("name")
	_ = kundliCmd.MarkFlagRequired("birth-date")
	_ = kundliCmd.MarkFlagRequired("birth-time")
	_ = kundliCmd.MarkFlagRequired("birth-place")

	dietCmd := &cobra.Command{
		Use:   "diet",
		Short: "Create a one-day sattvic meal plan",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runFeature(features.Diet, nil, map[string]string{
				"goal":       goal,
				"preference": preference,
			}, nil)
		},
	}
	dietCmd.Flags().StringVarP(&goal, "goal", "g", "", "Wellness goal")
	dietCmd.Flags().StringVarP(&preference, "preference", "p", "vegetarian", "Dietary preference")
	_ = dietCmd.MarkFlagRequired("goal")

	pujaCmd := &cobra.Command{
		Use:   "puja",
		Short: "Recommend a puja for an intention",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runFeature(features.Puja, nil, map[string]string{"intention": intention}, nil)
		},
	}
	pujaCmd.Flags().StringVar(&intention, "intention", "", "The devotee's intention")
	_ = pujaCmd.MarkFlagRequired("intention")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and fallback content pools",
		RunE: func(_ *cobra.Command, _ []string) error {
			if _, err := config.Load(configPath); err != nil {
				return err
			}
			if err := features.CheckPools(); err != nil {
				return err
			}
			fmt.Println("Configuration and fallback pools are valid")
			return nil
		},
	}

	rootCmd.AddCommand(horoscopeCmd, videosCmd, angelCmd, palmCmd, kundliCmd, dietCmd, pujaCmd, checkCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runFeature wires a single pipeline from configuration, executes it once
// and prints the result as indented JSON
func runFeature[T any](
	define func(features.Params) orchestrator.Feature[T],
	broaden media.Broadener,
	fields map[string]string,
	img *prompt.Image,
) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	model, err := gateway.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Endpoint,
		gateway.WithLogger(logger),
		gateway.WithTimeout(time.Duration(cfg.Pipeline.TimeoutSeconds)*time.Second),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize model gateway: %w", err)
	}

	feature := define(features.Params{
		Model:       cfg.Pipeline.Model,
		VisionModel: cfg.Pipeline.VisionModel,
		MaxTokens:   cfg.Pipeline.MaxTokens,
		Temperature: float32(cfg.Pipeline.Temperature),
	})

	var resolver orchestrator.MediaResolver
	if feature.MediaQueries != nil {
		opts := []media.ResolverOption{
			media.WithMaxConcurrent(cfg.YouTube.MaxConcurrent),
			media.WithResolverLogger(logger),
		}
		if broaden != nil {
			opts = append(opts, media.WithBroadener(broaden))
		}
		resolver = media.NewResolver(media.NewYouTubeClient(cfg.YouTube.Endpoint, cfg.YouTube.APIKey, logger), opts...)
	}

	// The CLI never counts against user quotas
	orch, err := orchestrator.New(feature, model, resolver, usage.NopGate{}, logger)
	if err != nil {
		return err
	}

	req := orchestrator.Request{UserID: userID, Fields: fields, Image: img}
	if seed != 0 {
		req.Seed = &seed
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := orch.Execute(ctx, req)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// loadImage reads and base64-encodes a palm photograph
func loadImage(path string) (*prompt.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	mediaType := "image/jpeg"
	if len(data) >= 8 && string(data[1:4]) == "PNG" {
		mediaType = "image/png"
	}

	return &prompt.Image{
		MediaType: mediaType,
		Base64:    base64.StdEncoding.EncodeToString(data),
	}, nil
}
