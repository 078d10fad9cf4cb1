package swarmapi

import (
	"context"
	"encoding/json"
	"fmt"
)

// NewSession creates a server session and stores its ID on the client.
// It also forces the user settings every other call relies on: transient
// images reformatted to the requested file format, with generation
// metadata embedded.
func (c *Client) NewSession(ctx context.Context) (string, error) {
	resp, err := c.post(ctx, c.http, endpointNewSession, map[string]any{})
	if err != nil {
		return "", err
	}
	sessionID, err := stringField(resp, "session_id")
	if err != nil {
		return "", err
	}

	if err := c.changeUserSettings(ctx, sessionID); err != nil {
		return "", err
	}

	c.sessionID = sessionID
	c.log.Debugw("session created", "session_id", sessionID)
	return sessionID, nil
}

// changeUserSettings asks the server to keep metadata in transient images.
//
// The endpoint reports success unconditionally; a wrong setting name only
// shows up in the server logs.
func (c *Client) changeUserSettings(ctx context.Context, sessionID string) error {
	params := map[string]any{
		"session_id": sessionID,
		"settings": map[string]any{
			"fileformat.reformattransientimages": true,
			"fileformat.savemetadata":            true,
		},
	}
	_, err := c.post(ctx, c.http, endpointChangeUserSettings, params)
	return err
}

// Status is the server and backend status report.
type Status struct {
	Server   json.RawMessage
	Backends json.RawMessage
}

// CurrentStatus returns the server's own status plus the status of its
// generation backends, both as raw JSON for display.
func (c *Client) CurrentStatus(ctx context.Context) (*Status, error) {
	if c.sessionID == "" {
		return nil, fmt.Errorf("swarmapi: no session; call NewSession first")
	}
	resp, err := c.post(ctx, c.http, endpointCurrentStatus, map[string]any{
		"session_id": c.sessionID,
	})
	if err != nil {
		return nil, err
	}
	return &Status{
		Server:   resp["status"],
		Backends: resp["backend_status"],
	}, nil
}
