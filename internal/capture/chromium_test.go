package capture

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pogocal/internal/config"
)

func TestOptionsFromConfig(t *testing.T) {
	c := config.DefaultConfig().Capture
	o := OptionsFrom(c)
	assert.Equal(t, c.URL, o.URL)
	assert.Equal(t, c.OutputPath, o.OutputPath)
	assert.Equal(t, 1280, o.Width)
	assert.Equal(t, 960, o.Height)
}

func TestNormalizeDefaults(t *testing.T) {
	o := Options{URL: "http://127.0.0.1:8080/calendar", OutputPath: "out.png"}
	require.NoError(t, o.normalize())
	assert.Equal(t, DefaultWidth, o.Width)
	assert.Equal(t, DefaultHeight, o.Height)
	assert.Equal(t, DefaultTimeout, o.Timeout)
}

func TestCalendarPNGRequiresURLAndPath(t *testing.T) {
	err := CalendarPNG(context.Background(), Options{OutputPath: "out.png"})
	assert.ErrorContains(t, err, "URL is required")

	err = CalendarPNG(context.Background(), Options{URL: "http://x", Timeout: time.Second})
	assert.ErrorContains(t, err, "OutputPath is required")
}

func TestWriteCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "preview.png")
	require.NoError(t, write(path, []byte("png")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png", string(got))
}
