package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Shared client with a cookie jar so the chat_session cookie sticks between
// calls, like a browser would.
var client *http.Client

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	jar, _ := cookiejar.New(nil)
	client = &http.Client{Jar: jar} // No timeout, ollama can be slow

	color.Cyan("🚀 Starting Assistant API Smoke Test\n")

	// 1. Send first chat message (anonymous, no thread yet)
	color.Yellow("\n[USER] 1. Send First Chat Message")
	resp, body, err := sendRequest("POST", "/assistant/v1/chat", map[string]interface{}{
		"chat": "Hello! What can you help me with?",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var chatResp map[string]interface{}
	json.Unmarshal(body, &chatResp)
	prettyPrint(chatResp)

	var threadID string
	if data, ok := chatResp["data"].(map[string]interface{}); ok {
		if id, ok := data["thread_id"].(string); ok {
			threadID = id
			fmt.Printf("Thread ID: %s\n", threadID)
		}
	}

	// 2. Send follow-up on the same session cookie
	color.Yellow("\n[USER] 2. Send Follow-Up Message")
	resp, body, err = sendRequest("POST", "/assistant/v1/chat", map[string]interface{}{
		"chat": "Can you repeat what I just asked you?",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	json.Unmarshal(body, &chatResp)
	prettyPrint(chatResp)

	// 3. Fetch history
	color.Yellow("\n[USER] 3. Get Chat History")
	resp, body, err = sendRequest("GET", "/assistant/v1/history", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var historyResp map[string]interface{}
	json.Unmarshal(body, &historyResp)
	prettyPrint(historyResp)

	// 4. History by explicit thread id
	if threadID != "" {
		color.Yellow("\n[USER] 4. Get History By Thread ID")
		resp, body, err = sendRequest("GET", "/assistant/v1/history?thread_id="+threadID, nil)
		if err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
		color.Green("Status: %s", resp.Status)
		json.Unmarshal(body, &historyResp)
		prettyPrint(historyResp)
	}

	// 5. Validation error path
	color.Yellow("\n[USER] 5. Send Empty Chat (expect 400)")
	resp, body, err = sendRequest("POST", "/assistant/v1/chat", map[string]interface{}{
		"chat": "",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var errResp map[string]interface{}
	json.Unmarshal(body, &errResp)
	prettyPrint(errResp)

	// 6. Clear the conversation
	color.Yellow("\n[USER] 6. Clear Conversation")
	resp, body, err = sendRequest("DELETE", "/assistant/v1/session", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var clearResp map[string]interface{}
	json.Unmarshal(body, &clearResp)
	prettyPrint(clearResp)

	// 7. History must be empty afterwards
	color.Yellow("\n[USER] 7. Get History After Clear (expect empty)")
	resp, body, err = sendRequest("GET", "/assistant/v1/history", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	json.Unmarshal(body, &historyResp)
	prettyPrint(historyResp)

	color.Cyan("\n✅ Smoke test finished")
}
