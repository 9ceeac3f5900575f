package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"task_manager/internal/ws"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	var server, token string
	var count int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Stream live task events for the token's owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			wsURL, err := eventsURL(server, token)
			if err != nil {
				return err
			}
			conn, _, err := websocket.DefaultDialer.DialContext(cmd.Context(), wsURL, nil)
			if err != nil {
				return fmt.Errorf("dial %s: %w", server, err)
			}
			defer conn.Close()

			stop := make(chan struct{})
			defer close(stop)
			go func() {
				select {
				case <-cmd.Context().Done():
					conn.Close()
				case <-stop:
				}
			}()

			return streamEvents(conn, cmd.OutOrStdout(), count)
		},
	}
	cmd.Flags().StringVar(&server, "server", "http://127.0.0.1:5000", "API base URL")
	cmd.Flags().StringVar(&token, "token", "", "bearer token (see \"taskctl token\")")
	cmd.Flags().IntVar(&count, "count", 0, "exit after this many task events (0 streams forever)")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

// eventsURL turns an http(s) base URL into the websocket endpoint.
func eventsURL(server, token string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String(), nil
}

type eventFrame struct {
	Type   string `json:"type"`
	TaskID string `json:"taskId"`
	Task   *struct {
		Title  string `json:"title"`
		Status string `json:"status"`
	} `json:"task"`
}

type messageReader interface {
	ReadMessage() (int, []byte, error)
}

func streamEvents(conn messageReader, out io.Writer, count int) error {
	seen := 0
	for count == 0 || seen < count {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		var f eventFrame
		if err := json.Unmarshal(msg, &f); err != nil {
			continue
		}
		switch f.Type {
		case ws.MsgReady:
			fmt.Fprintln(out, "connected")
			continue
		case ws.MsgPong:
			continue
		}
		if f.Task != nil {
			fmt.Fprintf(out, "%s %s %q %s\n", f.Type, f.TaskID, f.Task.Title, f.Task.Status)
		} else {
			fmt.Fprintf(out, "%s %s\n", f.Type, f.TaskID)
		}
		seen++
	}
	return nil
}
