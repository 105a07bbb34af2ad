/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/shapetran/internal/cache"
	"github.com/valpere/shapetran/internal/config"
	"github.com/valpere/shapetran/internal/orchestrator"
	"github.com/valpere/shapetran/internal/store"
)

// flagBindings maps config keys to the flags that can override them. Flags
// missing from a command are skipped.
var flagBindings = map[string]string{
	"backend":            "backend",
	"max_input_length":   "max-length",
	"timeout":            "timeout",
	"db":                 "db",
	"no_cache":           "no-cache",
	"verbose":            "verbose",
	"ollama.base_url":    "ollama-url",
	"openai.base_url":    "openai-url",
	"openai.api_key":     "openai-key",
	"google.credentials": "credentials",
	"redis.url":          "redis-url",
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v, err := config.New(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}
	return config.Load(v)
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for key, name := range flagBindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

func openStore(path string) (*store.Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// buildMemory layers the shared Redis cache, when configured, in front of
// the local sqlite memory. A Redis connection failure only disables the
// shared tier.
func buildMemory(ctx context.Context, db *store.Store) (orchestrator.Memory, func()) {
	if cfg.Redis.URL == "" {
		return db, func() {}
	}
	rc, err := cache.NewRedisCache(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, using local translation memory only", "error", err)
		return db, func() {}
	}
	logger.Debug("using shared translation memory", "redis", cfg.Redis.URL)
	return cache.NewLayered(rc, db), func() { rc.Close() }
}
