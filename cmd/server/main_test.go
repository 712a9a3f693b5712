package main

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vyrodovalexey/avgui-demo/internal/config"
	"github.com/vyrodovalexey/avgui-demo/internal/model"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantLevel zapcore.Level
	}{
		{"debug level", "debug", zapcore.DebugLevel},
		{"info level", "info", zapcore.InfoLevel},
		{"warn level", "warn", zapcore.WarnLevel},
		{"error level", "error", zapcore.ErrorLevel},
		{"invalid level defaults to info", "invalid", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			logger, err := initLogger(tt.level)

			// Assert
			if err != nil {
				t.Fatalf("initLogger() error = %v", err)
			}
			if logger == nil {
				t.Fatal("initLogger() returned nil logger")
			}
			if !logger.Core().Enabled(tt.wantLevel) {
				t.Errorf("level %s should be enabled", tt.wantLevel)
			}
			if tt.wantLevel > zapcore.DebugLevel && logger.Core().Enabled(tt.wantLevel-1) {
				t.Errorf("level %s should be disabled", tt.wantLevel-1)
			}
		})
	}
}

func TestNewComponents(t *testing.T) {
	// Arrange
	cfg := &config.Config{
		TodoStartID:  500,
		TodoStrict:   false,
		TMDBBaseURL:  "http://127.0.0.1:1/3",
		TMDBLanguage: config.DefaultTMDBLanguage,
		TMDBTimeout:  time.Second,
		TMDBCacheTTL: 0,
	}

	// Act
	todoStore, movies, err := newComponents(cfg, zap.NewNop())

	// Assert
	if err != nil {
		t.Fatalf("newComponents() error = %v", err)
	}
	if movies == nil {
		t.Fatal("newComponents() returned nil TMDB client")
	}

	items, err := todoStore.Dispatch(context.Background(), model.OpAdd, model.TodoItem{Text: "first"})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if len(items) != 1 || items[0].ID != 500 {
		t.Errorf("items = %+v, want a single item with id 500", items)
	}
}

func TestNewComponents_InvalidBaseURL(t *testing.T) {
	// Arrange
	cfg := &config.Config{
		TodoStartID: 1000,
		TMDBBaseURL: "http://[::1",
		TMDBTimeout: time.Second,
	}

	// Act
	_, _, err := newComponents(cfg, zap.NewNop())

	// Assert
	if err == nil {
		t.Error("newComponents() expected error for malformed base URL")
	}
}
