//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go/modules/compose"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	baseURL    string
	httpClient *http.Client
)

// Response types are defined locally so the tests stay black-box, with no
// imports from internal packages.

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type loginResponse struct {
	Token   *string `json:"token"`
	Message string  `json:"message"`
}

type errorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}

type productResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Available   bool    `json:"available"`
}

type productPage struct {
	Content       []productResponse `json:"content"`
	Page          int               `json:"page"`
	Size          int               `json:"size"`
	TotalElements int64             `json:"totalElements"`
	TotalPages    int               `json:"totalPages"`
}

type orderRequest struct {
	Items []orderItemRequest `json:"items"`
}

type orderItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type orderResponse struct {
	ID         int64       `json:"id"`
	UserID     int64       `json:"userId"`
	Items      []orderItem `json:"items"`
	OrderTotal float64     `json:"orderTotal"`
}

type orderItem struct {
	ProductID       int64   `json:"productId"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unitPrice"`
	DiscountApplied float64 `json:"discountApplied"`
	TotalPrice      float64 `json:"totalPrice"`
}

func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}

func testMain(m *testing.M) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	dc, err := tc.NewDockerCompose("docker-compose.test.yml")
	if err != nil {
		log.Fatalf("compose init: %v", err)
	}

	// Start postgres + api, wait until the API readiness check passes. The
	// API seeds users and products from its embedded fixtures on startup.
	err = dc.
		WaitForService("api", wait.ForHTTP("/readyz").WithPort("8080/tcp")).
		Up(ctx, tc.Wait(true))
	if err != nil {
		log.Fatalf("compose up: %v", err)
	}

	apiContainer, err := dc.ServiceContainer(ctx, "api")
	if err != nil {
		log.Fatalf("api container: %v", err)
	}

	host, err := apiContainer.Host(ctx)
	if err != nil {
		log.Fatalf("host: %v", err)
	}

	mappedPort, err := apiContainer.MappedPort(ctx, "8080/tcp")
	if err != nil {
		log.Fatalf("mapped port: %v", err)
	}

	baseURL = fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
	httpClient = &http.Client{Timeout: 10 * time.Second}
	log.Printf("API available at %s", baseURL)

	if err := waitForSeededData(ctx); err != nil {
		log.Fatalf("wait for seed: %v", err)
	}

	code := m.Run()

	downCtx, downCancel := context.WithTimeout(context.Background(), time.Minute)
	defer downCancel()
	if err := dc.Down(downCtx, tc.RemoveOrphans(true), tc.RemoveVolumes(true)); err != nil {
		log.Printf("compose down: %v", err)
	}

	return code
}

// waitForSeededData polls until the seeded admin account can log in,
// which means the bootstrap loader has finished.
func waitForSeededData(ctx context.Context) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		body, _ := json.Marshal(map[string]string{"username": "admin", "password": "admin123"})
		resp, err := httpClient.Post(baseURL+"/api/auth/login", "application/json", bytes.NewReader(body))
		if err != nil {
			continue
		}
		code := resp.StatusCode
		resp.Body.Close()
		if code == http.StatusOK {
			return nil
		}
	}
}

// login authenticates a seeded account and returns its bearer token.
func login(t *testing.T, username, password string) string {
	t.Helper()

	resp := doPost(t, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d", username, resp.StatusCode)
	}

	body := decodeJSON[loginResponse](t, resp)
	if body.Token == nil || *body.Token == "" {
		t.Fatalf("login %s: empty token", username)
	}
	return *body.Token
}

func doGet(t *testing.T, path, token string) *http.Response {
	t.Helper()
	return doRequest(t, http.MethodGet, path, token, nil)
}

func doPost(t *testing.T, path, token string, body any) *http.Response {
	t.Helper()
	return doRequest(t, http.MethodPost, path, token, body)
}

func doPut(t *testing.T, path, token string, body any) *http.Response {
	t.Helper()
	return doRequest(t, http.MethodPut, path, token, body)
}

func doDelete(t *testing.T, path, token string) *http.Response {
	t.Helper()
	return doRequest(t, http.MethodDelete, path, token, nil)
}

func doRequest(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, baseURL+path, reader)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}
