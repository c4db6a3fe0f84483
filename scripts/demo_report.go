package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
)

type httpError struct {
	StatusCode int
	body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.body)
}

func main() {
	baseURL := flag.String("base-url", "http://localhost:8080", "gateway base URL")
	token := flag.String("token", "", "bearer token for an admin user")
	flag.Parse()

	if *token == "" {
		log.Fatal("a -token is required; log in against the LINC backend first")
	}

	if err := pushClientLogs(*baseURL); err != nil {
		log.Printf("push client logs failed: %v", err)
	}
	if err := submitReport(*baseURL, *token); err != nil {
		log.Fatalf("submit report failed: %v", err)
	}
	log.Print("demo report submitted")
}

func pushClientLogs(baseURL string) error {
	payload := map[string]any{
		"lines": []map[string]string{
			{"level": "warn", "message": "slow response from /applications"},
			{"level": "error", "message": "print preview render failed"},
		},
	}
	return postJSON(baseURL+"/api/v1/debug/client-logs", payload, "", nil)
}

func submitReport(baseURL, token string) error {
	payload := map[string]any{
		"description":  "Print preview stays blank after selecting a license application",
		"page_url":     "http://localhost:3000/applications/42/print",
		"browser_info": "demo script",
	}
	var created map[string]any
	if err := postJSON(baseURL+"/api/v1/reports", payload, token, &created); err != nil {
		return err
	}
	out, _ := json.MarshalIndent(created, "", "  ")
	log.Printf("gateway answered:\n%s", out)
	return nil
}

func postJSON(url string, payload any, token string, out any) error {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &httpError{StatusCode: resp.StatusCode, body: string(b)}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
