package pkg_test

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mstanek/fitsite/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestCombinedWriter(t *testing.T) {
	var first, second bytes.Buffer
	writer := pkg.NewCombinedWriter(&first, &second)

	n, err := writer.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 10, n, "bytes written across both writers")
	assert.Equal(t, "hello", first.String())
	assert.Equal(t, "hello", second.String())
}

func TestCombinedWriter_PartialFailure(t *testing.T) {
	var ok bytes.Buffer
	writer := pkg.NewCombinedWriter(failingWriter{}, &ok)

	n, err := writer.Write([]byte("hello"))
	require.Error(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", ok.String(), "a failing writer does not stop the others")
}

func TestWriteJSONResponseOK(t *testing.T) {
	rr := httptest.NewRecorder()
	pkg.WriteJSONResponseOK(rr, `{"ok":true}`)

	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, `{"ok":true}`, rr.Body.String())
}

func TestWriteResponse(t *testing.T) {
	rr := httptest.NewRecorder()
	pkg.WriteResponse(rr, "text/plain", "fine")

	assert.Equal(t, "text/plain", rr.Header().Get("Content-Type"))
	assert.Equal(t, "fine", rr.Body.String())
}

func TestPathExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))

	exists, err := pkg.PathExists(file, false)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = pkg.PathExists(file, true)
	require.NoError(t, err)
	assert.False(t, exists, "a file is not a directory")

	exists, err = pkg.PathExists(dir, true)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = pkg.PathExists(filepath.Join(dir, "missing"), false)
	require.NoError(t, err)
	assert.False(t, exists)
}
