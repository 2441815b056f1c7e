package mcpserver

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"

	"mockingbird/internal/domain"
)

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// rejectedResult reports a command the design rules refused. The agent
// gets a normal result it can read rather than a protocol error.
func rejectedResult(err error) *mcp.CallToolResult {
	res := textResult("rejected: " + err.Error())
	res.IsError = true
	return res
}

// outcome turns a service call into a tool result: rejections become
// readable results, anything else is a tool error.
func outcome(v any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		if domain.IsRejected(err) {
			return rejectedResult(err), nil
		}
		return nil, err
	}
	return jsonResult(v)
}

// requireString returns a non-empty string argument.
func requireString(req mcp.CallToolRequest, key string) (string, error) {
	v := req.GetString(key, "")
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

// requireInt returns an integer argument. JSON numbers arrive as float64;
// fractional or out-of-range values are refused rather than truncated.
func requireInt(req mcp.CallToolRequest, key string) (int, error) {
	v, ok := req.GetArguments()[key]
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return 0, fmt.Errorf("%s must be a whole number, got %v", key, n)
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return 0, fmt.Errorf("%s is out of range: %v", key, n)
		}
		return int(n), nil
	case int:
		return n, nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%s must be a whole number, got %s", key, n)
		}
		if i < math.MinInt32 || i > math.MaxInt32 {
			return 0, fmt.Errorf("%s is out of range: %d", key, i)
		}
		return int(i), nil
	}
	return 0, fmt.Errorf("%s must be a number", key)
}

// parseJSON parses a JSON string into the target type.
func parseJSON(data string, target any) error {
	return json.Unmarshal([]byte(data), target)
}
