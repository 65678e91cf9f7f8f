package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeAPI records the last request and plays back a canned response body.
type fakeAPI struct {
	path    string
	payload map[string]any
	reply   string
}

func (f *fakeAPI) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		f.payload = map[string]any{}
		_ = json.Unmarshal(body, &f.payload)
		w.Header().Set("content-type", "application/json")
		_, _ = w.Write([]byte(f.reply))
	}
}

func testClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	c := NewClient("TESTTOKEN", slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.SetBaseURL(srv.URL)
	return c
}

func TestSendMessageRequestShape(t *testing.T) {
	api := &fakeAPI{reply: `{"ok":true,"result":{"message_id":55,"chat":{"id":42}}}`}
	c := testClient(t, api)

	kb := &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{{Text: "🏠 Menu", CallbackData: "menu_main"}},
	}}
	msg, err := c.SendMessage(context.Background(), 42, "hello", kb)
	require.NoError(t, err)
	require.Equal(t, 55, msg.MessageID)
	require.Equal(t, int64(42), msg.Chat.ID)

	require.Equal(t, "/botTESTTOKEN/sendMessage", api.path)
	require.Equal(t, float64(42), api.payload["chat_id"])
	require.Equal(t, "hello", api.payload["text"])
	require.Equal(t, "Markdown", api.payload["parse_mode"])
	require.Contains(t, api.payload, "reply_markup")
}

func TestSendMessageWithoutKeyboard(t *testing.T) {
	api := &fakeAPI{reply: `{"ok":true,"result":{"message_id":1,"chat":{"id":2}}}`}
	c := testClient(t, api)

	_, err := c.SendMessage(context.Background(), 2, "plain", nil)
	require.NoError(t, err)
	require.NotContains(t, api.payload, "reply_markup")
}

func TestGetUpdatesParsesBothEventKinds(t *testing.T) {
	api := &fakeAPI{reply: `{"ok":true,"result":[
		{"update_id":100,"message":{"message_id":7,"chat":{"id":42},"text":"/start"}},
		{"update_id":101,"callback_query":{"id":"cb1","data":"age_start","message":{"message_id":8,"chat":{"id":42}}}}
	]}`}
	c := testClient(t, api)

	updates, err := c.GetUpdates(context.Background(), 100, 30*time.Second)
	require.NoError(t, err)
	require.Len(t, updates, 2)

	require.Equal(t, int64(100), updates[0].UpdateID)
	require.NotNil(t, updates[0].Message)
	require.Equal(t, "/start", updates[0].Message.Text)

	require.NotNil(t, updates[1].CallbackQuery)
	require.Equal(t, "age_start", updates[1].CallbackQuery.Data)
	require.Equal(t, 8, updates[1].CallbackQuery.Message.MessageID)

	require.Equal(t, "/botTESTTOKEN/getUpdates", api.path)
	require.Equal(t, float64(100), api.payload["offset"])
	require.Equal(t, float64(30), api.payload["timeout"])
	require.Equal(t, []any{"message", "callback_query"}, api.payload["allowed_updates"])
}

func TestEditMessageSwallowsNotModified(t *testing.T) {
	api := &fakeAPI{reply: `{"ok":false,"description":"Bad Request: message is not modified"}`}
	c := testClient(t, api)

	err := c.EditMessageText(context.Background(), 42, 7, "same text", nil)
	require.NoError(t, err)
	require.Equal(t, "/botTESTTOKEN/editMessageText", api.path)
	require.Equal(t, float64(7), api.payload["message_id"])
}

func TestEditMessageSurfacesOtherErrors(t *testing.T) {
	api := &fakeAPI{reply: `{"ok":false,"description":"Bad Request: message to edit not found"}`}
	c := testClient(t, api)

	err := c.EditMessageText(context.Background(), 42, 7, "text", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "message to edit not found")
}

func TestAnswerCallbackQuery(t *testing.T) {
	api := &fakeAPI{reply: `{"ok":true,"result":true}`}
	c := testClient(t, api)

	require.NoError(t, c.AnswerCallbackQuery(context.Background(), "cb123"))
	require.Equal(t, "/botTESTTOKEN/answerCallbackQuery", api.path)
	require.Equal(t, "cb123", api.payload["callback_query_id"])
}

func TestAPIErrorIncludesMethodAndDescription(t *testing.T) {
	api := &fakeAPI{reply: `{"ok":false,"description":"Unauthorized"}`}
	c := testClient(t, api)

	_, err := c.GetUpdates(context.Background(), 0, time.Second)
	require.Error(t, err)
	require.Contains(t, err.Error(), "getUpdates")
	require.Contains(t, err.Error(), "Unauthorized")
}
