package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// baseURL points at a running stack (API + postgres + minio). The test is
// skipped unless PAGEBOX_E2E_BASE_URL is set.
func baseURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("PAGEBOX_E2E_BASE_URL")
	if url == "" {
		t.Skip("PAGEBOX_E2E_BASE_URL not set")
	}
	return strings.TrimRight(url, "/")
}

func TestPublishWorkflow(t *testing.T) {
	base := baseURL(t)
	client := &http.Client{Timeout: 30 * time.Second}

	// 1. Register
	email := fmt.Sprintf("e2e_%d@example.com", time.Now().UnixNano())
	registerBody, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": "password123",
	})
	resp, err := client.Post(base+"/v1/auth/register", "application/json", bytes.NewReader(registerBody))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var registered struct {
		User struct {
			Handle string `json:"handle"`
		} `json:"user"`
		Tokens struct {
			AccessToken string `json:"access_token"`
		} `json:"tokens"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&registered))
	resp.Body.Close()
	token := registered.Tokens.AccessToken
	require.NotEmpty(t, token)

	// 2. Create a site from a two-file batch
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("name", "Demo"))
	require.NoError(t, writer.WriteField("slug", "demo"))

	part, err := writer.CreateFormFile("file", "index.html")
	require.NoError(t, err)
	_, err = part.Write([]byte("<html><head><title>demo</title></head><body><img src=\"img/logo.png\"></body></html>"))
	require.NoError(t, err)

	part, err = writer.CreateFormFile("file", "logo.png")
	require.NoError(t, err)
	_, err = part.Write([]byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("path-logo.png", "img/logo.png"))
	writer.Close()

	req, _ := http.NewRequest(http.MethodPost, base+"/v1/sites", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	// 3. Public fetch gets the rewritten HTML
	publicURL := fmt.Sprintf("%s/s/%s/demo/", base, registered.User.Handle)
	resp, err = client.Get(publicURL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Equal(t, "public, max-age=3600", resp.Header.Get("Cache-Control"))

	page, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, string(page), fmt.Sprintf("<base href=\"/s/%s/demo/\">", registered.User.Handle))

	// 4. The raw asset is served untouched
	resp, err = client.Get(publicURL + "img/logo.png")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	resp.Body.Close()

	// 5. Delete the site; the public URL turns into an opaque 404
	req, _ = http.NewRequest(http.MethodDelete, base+"/v1/sites/"+created.ID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = client.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp, err = client.Get(publicURL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
