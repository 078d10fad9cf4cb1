package swarmapi

import (
	"context"
	"encoding/json"
	"fmt"
)

// Model subtypes understood by the server's ListModels endpoint.
const (
	SubtypeStableDiffusion = "Stable-Diffusion"
	SubtypeLoRA            = "LoRA"
	SubtypeVAE             = "VAE"
)

// SubtypeForType maps the user-facing model type names (base, lora, vae)
// to the server's subtype identifiers. Unknown names map to the base
// model subtype.
func SubtypeForType(modelType string) string {
	switch modelType {
	case "lora":
		return SubtypeLoRA
	case "vae":
		return SubtypeVAE
	default:
		return SubtypeStableDiffusion
	}
}

// Model describes one model known to the server.
type Model struct {
	Name          string `json:"name"`
	Title         string `json:"title"`
	Architecture  string `json:"architecture"`
	CompatClass   string `json:"compat_class"`
	Resolution    string `json:"resolution"`
	TriggerPhrase string `json:"trigger_phrase"`
	Description   string `json:"description"`
}

// ListModels returns the models of the given subtype, walking the
// server's model directory four levels deep.
func (c *Client) ListModels(ctx context.Context, subtype string) ([]Model, error) {
	if c.sessionID == "" {
		return nil, fmt.Errorf("swarmapi: no session; call NewSession first")
	}
	resp, err := c.post(ctx, c.http, endpointListModels, map[string]any{
		"session_id": c.sessionID,
		"path":       "",
		"depth":      4,
		"subtype":    subtype,
	})
	if err != nil {
		return nil, err
	}

	var models []Model
	if raw, ok := resp["files"]; ok {
		if err := json.Unmarshal(raw, &models); err != nil {
			return nil, fmt.Errorf("swarmapi: decoding 'files': %w", err)
		}
	}
	return models, nil
}

// ListLUTs returns the LUT names offered by the PostRender extension, or
// an empty list when the extension is not installed. The names live in
// the value list of the 'lutname' generation parameter.
func (c *Client) ListLUTs(ctx context.Context) ([]string, error) {
	if c.sessionID == "" {
		return nil, fmt.Errorf("swarmapi: no session; call NewSession first")
	}
	resp, err := c.post(ctx, c.http, endpointListT2IParams, map[string]any{
		"session_id": c.sessionID,
	})
	if err != nil {
		return nil, err
	}

	var list []struct {
		ID     string   `json:"id"`
		Values []string `json:"values"`
	}
	if raw, ok := resp["list"]; ok {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("swarmapi: decoding 'list': %w", err)
		}
	}
	for _, param := range list {
		if param.ID == "lutname" {
			return param.Values, nil
		}
	}
	return nil, nil
}
