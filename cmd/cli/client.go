package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"animehub/pkg/models"
)

type client struct {
	http      *http.Client
	baseURL   string
	tokenPath string
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type animeListResponse struct {
	Animes []models.Anime `json:"animes"`
}

type categoryListResponse struct {
	Categories []models.Category `json:"categories"`
}

// animeBody serializes only the fields that are set, which gives PATCH its
// presence semantics and lets create send explicit zeros.
type animeBody struct {
	Title      *string  `json:"title,omitempty"`
	Rating     *float64 `json:"rating,omitempty"`
	Reviews    *int     `json:"reviews,omitempty"`
	Seasons    *int     `json:"seasons,omitempty"`
	Type       *string  `json:"type,omitempty"`
	Poster     *string  `json:"poster,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

type tokenData struct {
	Token string `json:"token"`
}

// do sends payload as JSON and decodes a 2xx response into out. Error
// responses surface the API's message.
func (c *client) do(ctx context.Context, method, path string, authed bool, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token, err := readToken(c.tokenPath)
		if err != nil {
			return fmt.Errorf("not logged in: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		var m messageResponse
		if json.Unmarshal(data, &m) == nil && m.Message != "" {
			return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, m.Message)
		}
		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.animehub-token.json"
	}
	return filepath.Join(home, ".animehub", "token.json")
}

func saveToken(path, token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokenData{Token: token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return "", err
	}
	if td.Token == "" {
		return "", errors.New("empty token")
	}
	return td.Token, nil
}

func clearToken(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String(), nil
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(b))
}

func printAnime(a models.Anime) {
	names := make([]string, 0, len(a.Categories))
	for _, c := range a.Categories {
		names = append(names, c.Name)
	}
	fmt.Printf("%4d  %-32s %4.1f  %-6s %2d season(s)  [%s]\n",
		a.ID, a.Title, a.Rating, a.Type, a.Seasons, strings.Join(names, ", "))
}
