package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMergeDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	v, err := NewViper("")
	require.NoError(t, err)

	cfg := LoadMerge(v)
	assert.Equal(t, Frame{Width: 720, Height: 1280, FPS: 30}, cfg.Frame)
	assert.Equal(t, 0.5, cfg.TransitionDuration)
	assert.Equal(t, 2.0, cfg.FinalDuration)
	assert.Equal(t, 0.5, cfg.Sound.TickMax)
	assert.Equal(t, 1.0, cfg.Sound.EndMax)
	assert.Equal(t, "libx264", cfg.Encode.VideoCodec)
	assert.Equal(t, "aac", cfg.Encode.AudioCodec)
	assert.Equal(t, 10*time.Minute, cfg.JoinTimeout)
	assert.Equal(t, filepath.Join(".", "ding.wav"), cfg.Sound.TickPath())
	assert.Empty(t, cfg.FontPaths)
}

func TestConfigFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clipkit.yaml")
	content := "frame:\n  width: 1080\n  height: 1920\ntransition:\n  duration: 1.0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("CLIPKIT_FFMPEG_BIN", "/opt/ffmpeg/bin/ffmpeg")

	v, err := NewViper(path)
	require.NoError(t, err)

	cfg := LoadMerge(v)
	assert.Equal(t, 1080, cfg.Frame.Width)
	assert.Equal(t, 1920, cfg.Frame.Height)
	assert.Equal(t, 1.0, cfg.TransitionDuration)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.FFmpegBin)
}

func TestMissingExplicitConfigFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestParseHeadlessMode(t *testing.T) {
	tests := []struct {
		input string
		want  HeadlessMode
	}{
		{"new", HeadlessNew},
		{"true", HeadlessOld},
		{"FALSE", HeadlessOff},
		{"", HeadlessNew},
		{"whatever", HeadlessNew},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseHeadlessMode(tt.input))
		})
	}
	assert.False(t, HeadlessOff.Headless())
	assert.True(t, HeadlessNew.Headless())
}
