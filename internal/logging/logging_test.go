package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/pile/internal/config"
	"github.com/nikbrunner/pile/internal/logging"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{input: "", want: zapcore.InfoLevel},
		{input: "debug", want: zapcore.DebugLevel},
		{input: "WARN", want: zapcore.WarnLevel},
		{input: " error ", want: zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := logging.ParseLevel(tt.input)
			assert.NilError(t, err)
			assert.Equal(t, got, tt.want)
		})
	}

	_, err := logging.ParseLevel("loud")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pile.log")
	logger, err := logging.New(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1, MaxBackups: 1})
	assert.NilError(t, err)

	logger.Debug("hidden")
	logger.Named("storage").Info("using local store", zap.String("blob", "file"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	assert.NilError(t, err)
	out := string(data)
	assert.Check(t, is.Contains(out, `"msg":"using local store"`))
	assert.Check(t, is.Contains(out, `"logger":"storage"`))
	assert.Check(t, !strings.Contains(out, "hidden"))
}

func TestNew_RequiresFile(t *testing.T) {
	_, err := logging.New(config.LogConfig{Level: "info"})
	assert.ErrorContains(t, err, "log file not configured")
}
