package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
)

// Manual smoke test for a locally running server. Start the binary first,
// then run this to check the health endpoint and an MCP initialize call.
func main() {
	base := "http://localhost:3005"
	if v := os.Getenv("TEAMWORK_MCP_URL"); v != "" {
		base = v
	}

	fmt.Println("=== Starting HTTP Mode Test ===")

	resp, err := http.Get(base + "/health")
	if err != nil {
		fmt.Printf("Error probing health endpoint: %v\n", err)
		os.Exit(1)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	fmt.Printf("Health status: %d\n", resp.StatusCode)
	fmt.Printf("Health body: %s\n", body)

	fmt.Println("\n=== Testing MCP Initialize ===")

	initReq := []byte(`{
		"jsonrpc": "2.0",
		"id": 1,
		"method": "initialize",
		"params": {
			"protocolVersion": "2025-03-26",
			"capabilities": {},
			"clientInfo": {"name": "test-http-mode", "version": "0.0.1"}
		}
	}`)

	req, err := http.NewRequest(http.MethodPost, base+"/mcp", bytes.NewReader(initReq))
	if err != nil {
		fmt.Printf("Error building initialize request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if token := os.Getenv("TEAMWORK_ACCESS_TOKEN"); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if domain := os.Getenv("TEAMWORK_DOMAIN"); domain != "" {
		req.Header.Set("X-Teamwork-Domain", domain)
	}

	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error sending initialize request: %v\n", err)
		os.Exit(1)
	}
	body2, _ := io.ReadAll(resp2.Body)
	resp2.Body.Close()

	fmt.Printf("Initialize status: %d\n", resp2.StatusCode)
	fmt.Printf("Initialize body: %s\n", body2)

	fmt.Println("\n=== Test Complete ===")
}
