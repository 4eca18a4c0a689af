package main

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/lattice-works/semdex/config"
	"github.com/lattice-works/semdex/segment"
)

func newLoggerApp() *cli.App {
	return &cli.App{
		Name: "test",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
			},
		},
		Before: setupLogger,
		Action: func(c *cli.Context) error {
			return nil
		},
	}
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			t.Run(level, func(t *testing.T) {
				err := newLoggerApp().Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		for _, level := range []string{"DEBUG", "Info", "WaRn", "ERROR"} {
			t.Run(level, func(t *testing.T) {
				err := newLoggerApp().Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newLoggerApp().Run([]string{"test", "--log-level", "verbose"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		err := newLoggerApp().Run([]string{"test", "-l", "debug"})
		require.NoError(t, err)
	})
}

func TestSegmentOptionsFromConfig(t *testing.T) {
	cfg := &config.AppConfig{
		Segmenter: config.SegmenterConfig{ChunkSize: 40, Overlap: 10},
	}

	seg, err := segment.NewSegmenter(segmentOptionsFromConfig(cfg)...)
	require.NoError(t, err)

	text := strings.Repeat("alpha beta ", 14)
	chunks, err := seg.Segment(context.Background(), []byte(text), "text/plain", "a.txt")
	require.NoError(t, err)

	require.Greater(t, len(chunks), 1, "configured chunk size splits the text")
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk.Content)), 40)
	}
}

func TestSegmentOptionsFromConfig_InvalidOverlap(t *testing.T) {
	cfg := &config.AppConfig{
		Segmenter: config.SegmenterConfig{ChunkSize: 40, Overlap: 40},
	}

	_, err := segment.NewSegmenter(segmentOptionsFromConfig(cfg)...)
	assert.ErrorIs(t, err, segment.ErrInvalidOverlap)
}

func TestPipelineOptionsFromConfig(t *testing.T) {
	cfg := &config.AppConfig{Pipeline: config.PipelineConfig{PoolSize: 3}}
	assert.Len(t, pipelineOptionsFromConfig(cfg), 1)

	cfg.Pipeline.PoolSize = 0
	assert.Empty(t, pipelineOptionsFromConfig(cfg), "unset pool size keeps the pipeline default")
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{uri: "/tmp/docs/report.pdf", want: "report.pdf"},
		{uri: "report.pdf", want: "report.pdf"},
		{uri: "s3://bucket/2026/q1/report.pdf", want: "report.pdf"},
		{uri: "s3://bucket/report.pdf/", want: "report.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.want, displayName(tt.uri))
		})
	}
}
