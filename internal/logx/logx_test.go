package logx

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger builds a logger writing line JSON to a buffer, without
// timestamps so output is deterministic.
func testLogger(level string) (Logger, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	zl := zerolog.New(buf).Level(parseLevel(level))
	return Logger{base: zl, hasBase: true}, buf
}

// TestLogger_LevelFiltering tests that events below the threshold are
// dropped.
func TestLogger_LevelFiltering(t *testing.T) {
	log, buf := testLogger("warn")

	log.Debug("ignored")
	log.Info("ignored too")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Contains(t, buf.String(), `"message":"kept"`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

// TestLogger_With_CarriesFields tests that derived loggers attach their
// fixed fields to every event, alongside per-call fields.
func TestLogger_With_CarriesFields(t *testing.T) {
	log, buf := testLogger("info")
	derived := log.With(String("collection", "ABC123"))

	derived.Info("scanned", Int("items", 7))

	out := buf.String()
	assert.Contains(t, out, `"collection":"ABC123"`)
	assert.Contains(t, out, `"items":7`)
	assert.Contains(t, out, `"message":"scanned"`)

	// The parent logger is untouched.
	buf.Reset()
	log.Info("plain")
	assert.NotContains(t, buf.String(), "collection")
}

// TestLogger_ZeroValueIsSafe tests that an unconfigured logger never writes
// and never panics.
func TestLogger_ZeroValueIsSafe(t *testing.T) {
	var log Logger
	log.Info("nowhere")
	log.With(String("k", "v")).Error("still nowhere", Err(errors.New("boom")))

	Nop().Warn("also nowhere")
}

// TestLogger_ErrField tests the error field: nil adds nothing, non-nil lands
// under the err key.
func TestLogger_ErrField(t *testing.T) {
	log, buf := testLogger("info")

	log.Info("ok", Err(nil))
	assert.NotContains(t, buf.String(), "err")

	buf.Reset()
	log.Error("failed", Err(errors.New("connection reset")))
	assert.Contains(t, buf.String(), `"connection reset"`)
}

// TestNew_FileSink tests that a configured file path receives line-JSON
// events and that Close releases it.
func TestNew_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	svc, log, err := New(Config{Level: "debug", FilePath: path})
	require.NoError(t, err)

	log.Info("run started", String("run_id", "r-1"))
	require.NoError(t, svc.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"run started"`)
	assert.Contains(t, string(data), `"run_id":"r-1"`)

	// Closing twice is harmless.
	assert.NoError(t, svc.Close())
}

// TestNew_BadFilePath tests that an unwritable log file fails construction.
func TestNew_BadFilePath(t *testing.T) {
	_, _, err := New(Config{FilePath: filepath.Join(t.TempDir(), "missing", "run.log")})
	require.Error(t, err)
}

// TestParseLevel tests the accepted level spellings and the info fallback.
func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("info"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zerolog.ErrorLevel, parseLevel(" error "))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("loud"))
}

// TestLogger_ConcurrentUse tests that a shared logger may be used from many
// goroutines.
func TestLogger_ConcurrentUse(t *testing.T) {
	log := Logger{base: zerolog.New(io.Discard), hasBase: true}.With(String("component", "worker"))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			log.Info("tick", Int("n", n))
			log.With(Int("extra", n)).Debug("detail")
		}(i)
	}
	wg.Wait()
}
