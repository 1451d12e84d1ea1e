// Package main provides a line-based CLI client for the playground: messages
// are submitted over HTTP and replies are rendered from the session websocket.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/xiaot623/gogo/playground/internal/domain"
	"github.com/xiaot623/gogo/playground/internal/transport/ws"
)

// Client talks to one playground session.
type Client struct {
	baseURL    string
	sessionID  string
	httpClient *http.Client
	conn       *websocket.Conn
	renderer   *Renderer
	done       chan struct{}
}

// NewClient connects to the session websocket of the server at baseURL.
func NewClient(baseURL, sessionID string, out io.Writer) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse addr: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/v1/sessions/" + url.PathEscape(sessionID) + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		sessionID:  sessionID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		conn:       conn,
		renderer:   NewRenderer(out),
		done:       make(chan struct{}),
	}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	close(c.done)
	return c.conn.Close()
}

// Send submits a user message.
func (c *Client) Send(content string) error {
	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return err
	}
	return c.do(http.MethodPost, "/messages", body, nil)
}

// Abort cancels the reply being streamed. It goes over the websocket so it
// is not queued behind a slow HTTP request.
func (c *Client) Abort() error {
	return c.conn.WriteJSON(ws.BaseMessage{
		Type:      ws.TypeAbort,
		Ts:        time.Now().UnixMilli(),
		RequestID: fmt.Sprintf("req_%d", time.Now().UnixNano()),
		SessionID: c.sessionID,
	})
}

// History prints the whole message log.
func (c *Client) History() error {
	var resp struct {
		Messages []domain.Message `json:"messages"`
	}
	if err := c.do(http.MethodGet, "/messages", nil, &resp); err != nil {
		return err
	}
	for _, msg := range resp.Messages {
		c.renderer.Full(msg)
	}
	return nil
}

// Reset restores the default conversation.
func (c *Client) Reset() error {
	return c.do(http.MethodPost, "/messages/reset", nil, nil)
}

// Clear empties the message log.
func (c *Client) Clear() error {
	return c.do(http.MethodDelete, "/messages", nil, nil)
}

func (c *Client) do(method, path string, body []byte, out interface{}) error {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, c.baseURL+"/v1/sessions/"+url.PathEscape(c.sessionID)+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		var e struct {
			Error domain.ErrorInfo `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error.Code != "" {
			return fmt.Errorf("%s: %s", e.Error.Code, e.Error.Description())
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}

// ReadMessages renders updates from the server until the connection closes.
func (c *Client) ReadMessages() {
	for {
		select {
		case <-c.done:
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					log.Printf("Read error: %v", err)
				}
				return
			}
			c.renderer.Handle(data)
		}
	}
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "Playground server address")
	sessionID := flag.String("session", "", "Session ID (generated when empty)")
	flag.Parse()

	log.SetFlags(log.Ltime)

	if *sessionID == "" {
		*sessionID = "sess_" + uuid.New().String()[:8]
	}

	fmt.Printf("Connecting to %s...\n", *addr)

	client, err := NewClient(*addr, *sessionID, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	fmt.Printf("Session: %s\n", *sessionID)
	fmt.Println("\nType a message and press Enter to send.")
	fmt.Println("Commands: /abort /history /reset /clear /quit")

	go client.ReadMessages()

	// Handle Ctrl+C
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		fmt.Println("\nInterrupted")
		client.Close()
		os.Exit(0)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch input {
		case "/quit":
			fmt.Println("Bye!")
			return
		case "/abort":
			err = client.Abort()
		case "/history":
			err = client.History()
		case "/reset":
			err = client.Reset()
		case "/clear":
			err = client.Clear()
		default:
			err = client.Send(input)
		}
		if err != nil {
			log.Printf("Error: %v", err)
		}
	}
}
