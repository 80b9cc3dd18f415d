package restyutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput struct {
	mu       sync.Mutex
	messages map[string]string
}

func (m *memoryOutput) Write(id string, contents string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.messages == nil {
		m.messages = map[string]string{}
	}
	m.messages[id] = contents
}

func TestInstrumentClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Set-Cookie", "SID=secret")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	output := &memoryOutput{}
	client := resty.New().SetBaseURL(server.URL)
	InstrumentClient(client, output)

	_, err := client.R().
		SetHeader("Authorization", "SAPISIDHASH 1_abc").
		SetBody(map[string]any{"hello": "world"}).
		Post("/youtubei/v1/feedback")
	require.NoError(t, err)
	_, err = client.R().Get("/feed/history")
	require.NoError(t, err)

	require.Len(t, output.messages, 2)
	first := output.messages["1"]
	require.Contains(t, first, "POST "+server.URL+"/youtubei/v1/feedback")
	require.Contains(t, first, "Authorization: <redacted>")
	require.NotContains(t, first, "1_abc")
	require.Contains(t, first, `{"hello":"world"}`)
	require.Contains(t, first, "Set-Cookie: <redacted>")
	require.Contains(t, first, `{"ok":true}`)
	require.Contains(t, output.messages["2"], "GET "+server.URL+"/feed/history")
}

func TestInstrumentClientNilOutput(t *testing.T) {
	client := resty.New()
	InstrumentClient(client, nil)
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dump")
	require.NoError(t, os.MkdirAll(dir, 0777))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.txt"), []byte("old"), 0600))

	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)
	output.Write("1", "contents")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(filepath.Join(dir, "1.txt"))
	require.NoError(t, err)
	require.Equal(t, "contents", string(data))
}

func TestFormatHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Set("X-Origin", "https://www.youtube.com")
	headers.Set("Cookie", "SAPISID=secret")
	require.Equal(t, "Cookie: <redacted>\nX-Origin: https://www.youtube.com", formatHeaders(headers))
	require.Equal(t, "", formatHeaders(nil))
}

func TestFormatRequestBodyWithoutBody(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://localhost/feed/history", nil)
	require.NoError(t, err)
	require.Equal(t, "", formatRequestBody(req))

	req.GetBody = func() (io.ReadCloser, error) { return nil, nil }
	require.Equal(t, "", formatRequestBody(req))
}
