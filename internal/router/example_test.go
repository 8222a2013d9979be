package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"time"

	"github.com/patric-chuzhbe/brainly/internal/auth"
	"github.com/patric-chuzhbe/brainly/internal/models"
)

func ExampleRouter_GetPing() {
	server, _, _ := setupTestRouter(nil)
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL+"/ping", nil)
	if err != nil {
		panic(err)
	}

	client := &http.Client{}

	resp, err := client.Do(req)
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	fmt.Println("Status Code:", resp.StatusCode)

	// Output:
	// Status Code: 200
}

func ExampleRouter_PostSignup() {
	server, _, _ := setupTestRouter(nil)
	defer server.Close()

	body, err := json.Marshal(models.SignupRequest{Name: "alice", Password: "pw1"})
	if err != nil {
		panic(err)
	}

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/v1/signup", bytes.NewReader(body))
	if err != nil {
		panic(err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}

	resp, err := client.Do(req)
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		panic(err)
	}

	fmt.Println("Status Code:", resp.StatusCode)
	fmt.Print("Body: ", string(b))

	// Output:
	// Status Code: 201
	// Body: {"message":"Account created successfully"}
}

func ExampleRouter_PostShare() {
	server, _, router := setupTestRouter(nil)
	server.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/share", bytes.NewBufferString(`{"share":true}`))
	req.Header.Set("Content-Type", "application/json")

	token, err := auth.New([]byte(testSecretKey), -time.Minute).BuildJWTString(mockedUserID)
	if err != nil {
		panic(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	fmt.Println("Status Code:", rec.Code)
	fmt.Println("Expired token rejected:", rec.Code == http.StatusUnauthorized)

	server, db, router := setupTestRouter(nil, withMockAuth())
	server.Close()

	req = httptest.NewRequest(http.MethodPost, "/api/v1/share", bytes.NewBufferString(`{"share":true}`))
	req = req.WithContext(context.WithValue(req.Context(), auth.UserIDKey, mockedUserID))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var result models.ShareResponse
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		panic(err)
	}

	links, err := db.GetNumberOfShareLinks(context.Background())
	if err != nil {
		panic(err)
	}

	fmt.Println("Status Code:", rec.Code)
	fmt.Println("Hash is valid:", regexp.MustCompile(`^[a-zA-Z0-9]{10}$`).MatchString(result.Hash))
	fmt.Println("Share links:", links)

	// Output:
	// Status Code: 401
	// Expired token rejected: true
	// Status Code: 200
	// Hash is valid: true
	// Share links: 1
}
