package gate_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/config"
	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/gate"
	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/models"
	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/ratelimit"
	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/session"
)

func testConfig() *config.Config {
	return &config.Config{
		Upload: config.UploadConfig{
			MaxArchiveBytes: 1 << 20,
			SessionTTL:      time.Minute,
		},
		RateLimit: config.RateLimitConfig{
			Window:          time.Minute,
			ListMax:         100,
			GenerateMax:     100,
			CleanupInterval: 5 * time.Minute,
		},
	}
}

func newTestGate(t *testing.T, cfg *config.Config) *gate.Gate {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	sessions := session.NewStore(log)
	t.Cleanup(func() { _ = sessions.Close() })

	return gate.New(cfg, ratelimit.New(cfg.RateLimit.CleanupInterval), sessions, log)
}

func buildZip(t *testing.T, files map[string]string, order []string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func TestListGenerateRoundTrip(t *testing.T) {
	g := newTestGate(t, testConfig())
	payload := buildZip(t,
		map[string]string{"proj/a.txt": "hello", "proj/sub/b.txt": "world"},
		[]string{"proj/a.txt", "proj/sub/b.txt"},
	)

	result, err := g.List(context.Background(), "client", payload)
	require.NoError(t, err)
	require.NotEmpty(t, result.SessionID)
	require.Len(t, result.Files, 2)
	assert.Equal(t, "a.txt", result.Files[0].DisplayPath)
	assert.Equal(t, "sub/b.txt", result.Files[1].DisplayPath)
	assert.True(t, result.ExpiresAt.After(time.Now()))

	sections, err := g.Generate(context.Background(), "client", result.SessionID,
		[]string{"a.txt", "sub/b.txt"})
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "a.txt", sections[0].Path)
	assert.Equal(t, []byte("hello"), sections[0].Content)
	assert.Equal(t, "sub/b.txt", sections[1].Path)
	assert.Equal(t, []byte("world"), sections[1].Content)
}

func TestGenerateHonorsCallerOrder(t *testing.T) {
	g := newTestGate(t, testConfig())
	payload := buildZip(t,
		map[string]string{"proj/a.txt": "a", "proj/b.txt": "b"},
		[]string{"proj/a.txt", "proj/b.txt"},
	)

	result, err := g.List(context.Background(), "client", payload)
	require.NoError(t, err)

	sections, err := g.Generate(context.Background(), "client", result.SessionID,
		[]string{"b.txt", "a.txt"})
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "b.txt", sections[0].Path)
	assert.Equal(t, "a.txt", sections[1].Path)
}

func TestRepeatedListsYieldDistinctSessions(t *testing.T) {
	g := newTestGate(t, testConfig())
	payload := buildZip(t, map[string]string{"a.txt": "x"}, []string{"a.txt"})

	first, err := g.List(context.Background(), "client", payload)
	require.NoError(t, err)
	second, err := g.List(context.Background(), "client", payload)
	require.NoError(t, err)

	assert.NotEqual(t, first.SessionID, second.SessionID)

	// Both sessions are independently valid.
	_, err = g.Generate(context.Background(), "client", first.SessionID, []string{"a.txt"})
	assert.NoError(t, err)
	_, err = g.Generate(context.Background(), "client", second.SessionID, []string{"a.txt"})
	assert.NoError(t, err)
}

func TestListEmptyPayload(t *testing.T) {
	g := newTestGate(t, testConfig())

	_, err := g.List(context.Background(), "client", nil)

	svcErr, ok := models.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "empty_payload", svcErr.Code)
}

func TestListPayloadTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxArchiveBytes = 16
	g := newTestGate(t, cfg)

	_, err := g.List(context.Background(), "client", bytes.Repeat([]byte{0x1}, 17))

	svcErr, ok := models.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "payload_too_large", svcErr.Code)
}

func TestListMalformedArchive(t *testing.T) {
	g := newTestGate(t, testConfig())

	_, err := g.List(context.Background(), "client", []byte("not a zip"))

	svcErr, ok := models.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "malformed_archive", svcErr.Code)
}

func TestGenerateEmptySelection(t *testing.T) {
	g := newTestGate(t, testConfig())

	_, err := g.Generate(context.Background(), "client", "some-session", nil)

	svcErr, ok := models.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "empty_selection", svcErr.Code)
}

func TestGenerateUnknownSession(t *testing.T) {
	g := newTestGate(t, testConfig())

	_, err := g.Generate(context.Background(), "client", "no-such-session", []string{"a.txt"})

	svcErr, ok := models.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "session_not_found", svcErr.Code)
}

func TestGenerateUnknownFilesAreNamed(t *testing.T) {
	g := newTestGate(t, testConfig())
	payload := buildZip(t, map[string]string{"a.txt": "x"}, []string{"a.txt"})

	result, err := g.List(context.Background(), "client", payload)
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), "client", result.SessionID,
		[]string{"a.txt", "missing.txt", "also-gone.txt"})

	svcErr, ok := models.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "unknown_files", svcErr.Code)
	assert.Equal(t, []string{"missing.txt", "also-gone.txt"}, svcErr.Files)
}

func TestListRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.ListMax = 2
	g := newTestGate(t, cfg)
	payload := buildZip(t, map[string]string{"a.txt": "x"}, []string{"a.txt"})

	for i := 0; i < 2; i++ {
		_, err := g.List(context.Background(), "client", payload)
		require.NoError(t, err)
	}

	_, err := g.List(context.Background(), "client", payload)
	svcErr, ok := models.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "rate_limited", svcErr.Code)

	// Another client is unaffected.
	_, err = g.List(context.Background(), "other-client", payload)
	assert.NoError(t, err)
}

func TestCategoriesHaveIndependentQuotas(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.ListMax = 1
	g := newTestGate(t, cfg)
	payload := buildZip(t, map[string]string{"a.txt": "x"}, []string{"a.txt"})

	result, err := g.List(context.Background(), "client", payload)
	require.NoError(t, err)

	_, err = g.List(context.Background(), "client", payload)
	svcErr, ok := models.AsServiceError(err)
	require.True(t, ok)
	require.Equal(t, "rate_limited", svcErr.Code)

	// The exhausted list quota does not touch the generate quota.
	_, err = g.Generate(context.Background(), "client", result.SessionID, []string{"a.txt"})
	assert.NoError(t, err)
}
