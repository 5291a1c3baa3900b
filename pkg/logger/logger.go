package logger

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	rootOnce sync.Once
	root     *zap.Logger
	rootErr  error
)

// SetLevel changes the level of every logger created by this package.
func SetLevel(lvl string) error {
	l, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(lvl)))
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", lvl, err)
	}
	level.SetLevel(l)
	return nil
}

func rootLogger() (*zap.Logger, error) {
	rootOnce.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.Level = level
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		root, rootErr = cfg.Build()
	})
	return root, rootErr
}

// Named returns a sugared logger scoped to name.
func Named(name string) (*zap.SugaredLogger, error) {
	l, err := rootLogger()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l.Named(name).Sugar(), nil
}

func MustNamed(name string) *zap.SugaredLogger {
	l, err := Named(name)
	if err != nil {
		panic(err)
	}
	return l
}

// Sync flushes buffered entries of the root logger.
func Sync() error {
	if root == nil {
		return nil
	}
	return root.Sync()
}
