package mcpserver

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func promptReq(args map[string]string) *mcp.GetPromptRequest {
	return &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Arguments: args}}
}

func promptMessage(t *testing.T, res *mcp.GetPromptResult) string {
	t.Helper()
	require.Len(t, res.Messages, 1)
	text, ok := res.Messages[0].Content.(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestPromptClickAt(t *testing.T) {
	res, err := promptClickAt(context.Background(), promptReq(map[string]string{"at": "100,200"}))
	require.NoError(t, err)
	assert.Equal(t, `Call mouse_click with at="100,200", button="left", clicks=1.`, promptMessage(t, res))

	res, err = promptClickAt(context.Background(), promptReq(map[string]string{"at": "5,5", "button": "right", "clicks": "2"}))
	require.NoError(t, err)
	assert.Equal(t, `Call mouse_click with at="5,5", button="right", clicks=2.`, promptMessage(t, res))
}

func TestPromptTypeText(t *testing.T) {
	res, err := promptTypeText(context.Background(), promptReq(map[string]string{"text": "hello"}))
	require.NoError(t, err)
	assert.Equal(t, `Call type_text with text="hello", method="unicode".`, promptMessage(t, res))

	res, err = promptTypeText(context.Background(), promptReq(map[string]string{"text": "hi", "method": "clipboard"}))
	require.NoError(t, err)
	assert.Equal(t, `Call type_text with text="hi", method="clipboard".`, promptMessage(t, res))
}

func TestPromptSendShortcut(t *testing.T) {
	res, err := promptSendShortcut(context.Background(), promptReq(map[string]string{"shortcut": "ctrl+shift+esc"}))
	require.NoError(t, err)
	assert.Equal(t, `Call send_shortcut with shortcut="ctrl+shift+esc".`, promptMessage(t, res))
}

func TestPromptActivateWindow(t *testing.T) {
	res, err := promptActivateWindow(context.Background(), promptReq(map[string]string{"query": "firefox"}))
	require.NoError(t, err)
	assert.Contains(t, promptMessage(t, res), `query="firefox"`)
	assert.Contains(t, promptMessage(t, res), "the best match")

	res, err = promptActivateWindow(context.Background(), promptReq(map[string]string{"query": "term", "index": "2"}))
	require.NoError(t, err)
	assert.Contains(t, promptMessage(t, res), "index 2")
}

func TestPromptDragFromTo(t *testing.T) {
	res, err := promptDragFromTo(context.Background(), promptReq(map[string]string{"from": "0,0", "to": "300,300"}))
	require.NoError(t, err)
	assert.Equal(t, `Call mouse_drag with from="0,0", to="300,300".`, promptMessage(t, res))
}
