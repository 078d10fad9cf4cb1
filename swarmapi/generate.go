package swarmapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// loraArrayKeys are parameters the server wants as comma-separated
// strings but which recovered image metadata stores as JSON arrays.
var loraArrayKeys = []string{
	"loras",
	"loraweights",
	"loratencweights",
	"lorasectionconfinement",
}

// GenerateOptions adjusts a single generation request.
type GenerateOptions struct {
	// SaveOnServer keeps the generated image in the server's output
	// directory. By default only the downloaded copy exists.
	SaveOnServer bool
}

// GenerateText2Image submits one generation request and returns the
// server's reference to the produced image: either a relative URL or a
// base64 data URI, depending on server configuration. Pass the reference
// to DownloadImage to obtain the bytes.
//
// The session ID, a single-image count, and the output format are
// injected into a copy of params; the caller's map is not modified.
func (c *Client) GenerateText2Image(ctx context.Context, params map[string]any, opts GenerateOptions) (string, error) {
	if c.sessionID == "" {
		return "", fmt.Errorf("swarmapi: no session; call NewSession first")
	}

	body := make(map[string]any, len(params)+4)
	for k, v := range params {
		body[k] = v
	}
	body["session_id"] = c.sessionID
	body["images"] = 1
	if _, ok := body["imageformat"]; !ok {
		body["imageformat"] = "PNG"
	}
	if !opts.SaveOnServer {
		body["donotsave"] = true
	}
	for _, key := range loraArrayKeys {
		flattenArray(body, key)
	}

	resp, err := c.post(ctx, c.generate, endpointGenerateText2Image, body)
	if err != nil {
		return "", err
	}

	var images []string
	if raw, ok := resp["images"]; ok {
		if err := json.Unmarshal(raw, &images); err != nil {
			return "", fmt.Errorf("swarmapi: decoding 'images': %w", err)
		}
	}
	if len(images) == 0 {
		return "", fmt.Errorf("swarmapi: generation succeeded but returned no images")
	}
	return images[0], nil
}

// DownloadImage resolves a generation image reference into bytes. A data
// URI is decoded locally; anything else is fetched from the server as a
// relative path.
func (c *Client) DownloadImage(ctx context.Context, ref string) ([]byte, error) {
	if strings.Contains(ref, "base64") {
		_, b64, found := strings.Cut(ref, ",")
		if !found {
			return nil, fmt.Errorf("swarmapi: malformed data URI image reference")
		}
		data, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, fmt.Errorf("swarmapi: decoding base64 image: %w", err)
		}
		return data, nil
	}
	return c.get(ctx, ref)
}

// flattenArray rewrites a []any or []string value under key as a
// comma-joined string, in place. Non-array values are left alone.
func flattenArray(params map[string]any, key string) {
	switch v := params[key].(type) {
	case []string:
		params[key] = strings.Join(v, ",")
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprintf("%v", item)
		}
		params[key] = strings.Join(parts, ",")
	}
}
