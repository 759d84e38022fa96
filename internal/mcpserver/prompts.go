package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerPrompts adds guided starters for the common injection flows. Each
// prompt expands its arguments into a concrete tool call for the client to
// make.
func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        "click_at",
		Description: "Click at coordinates with mouse_click.",
		Arguments: []*mcp.PromptArgument{
			{Name: "at", Description: "target as \"x,y\"", Required: true},
			{Name: "button", Description: "left, right, or middle (default left)"},
			{Name: "clicks", Description: "click count (default 1)"},
		},
	}, promptClickAt)

	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        "type_text",
		Description: "Type text into the focused window with type_text.",
		Arguments: []*mcp.PromptArgument{
			{Name: "text", Description: "text to type", Required: true},
			{Name: "method", Description: "unicode, vk, or clipboard (default unicode)"},
		},
	}, promptTypeText)

	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        "send_shortcut",
		Description: "Send a keyboard shortcut like ctrl+c or win+r with send_shortcut.",
		Arguments: []*mcp.PromptArgument{
			{Name: "shortcut", Description: "combo such as \"ctrl+shift+esc\"", Required: true},
		},
	}, promptSendShortcut)

	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        "activate_window",
		Description: "Find a window and bring it to the foreground.",
		Arguments: []*mcp.PromptArgument{
			{Name: "query", Description: "title, class, or pid substring"},
			{Name: "index", Description: "pick the nth match instead of the best one"},
		},
	}, promptActivateWindow)

	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        "drag_from_to",
		Description: "Drag from one point to another with mouse_drag.",
		Arguments: []*mcp.PromptArgument{
			{Name: "from", Description: "start as \"x,y\"", Required: true},
			{Name: "to", Description: "end as \"x,y\"", Required: true},
		},
	}, promptDragFromTo)
}

func promptClickAt(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := req.Params.Arguments
	button := argOr(args, "button", "left")
	clicks := argOr(args, "clicks", "1")
	return promptText(fmt.Sprintf("Call mouse_click with at=%q, button=%q, clicks=%s.", args["at"], button, clicks)), nil
}

func promptTypeText(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := req.Params.Arguments
	method := argOr(args, "method", "unicode")
	return promptText(fmt.Sprintf("Call type_text with text=%q, method=%q.", args["text"], method)), nil
}

func promptSendShortcut(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return promptText(fmt.Sprintf("Call send_shortcut with shortcut=%q.", req.Params.Arguments["shortcut"])), nil
}

func promptActivateWindow(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := req.Params.Arguments
	pick := "the best match"
	if idx := args["index"]; idx != "" {
		pick = "index " + idx
	}
	return promptText(fmt.Sprintf("Call window_list with query=%q, then window_select picking %s, then window_activate with its hwnd.", args["query"], pick)), nil
}

func promptDragFromTo(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := req.Params.Arguments
	return promptText(fmt.Sprintf("Call mouse_drag with from=%q, to=%q.", args["from"], args["to"])), nil
}

func argOr(args map[string]string, key, def string) string {
	if v := args[key]; v != "" {
		return v
	}
	return def
}

func promptText(text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: text}},
		},
	}
}
