package whatsapp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDelivery = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "1234567890",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "messages": [
          {
            "from": "15551234567",
            "id": "wamid.text1",
            "timestamp": "1700000000",
            "type": "text",
            "text": {"body": "hello there"}
          },
          {
            "from": "15551234567",
            "id": "wamid.img1",
            "type": "image",
            "image": {"id": "media-42", "mime_type": "image/jpeg"}
          },
          {
            "from": "15559876543",
            "id": "wamid.doc1",
            "type": "document",
            "document": {"id": "media-43", "mime_type": "application/pdf", "filename": "report.pdf"}
          },
          {
            "from": "15551234567",
            "id": "wamid.stk1",
            "type": "sticker"
          }
        ]
      }
    }]
  }]
}`

func TestDecodeDelivery(t *testing.T) {
	var payload WebhookPayload
	require.NoError(t, json.Unmarshal([]byte(sampleDelivery), &payload))

	messages := payload.Messages()
	require.Len(t, messages, 4)

	text := messages[0]
	assert.Equal(t, KindText, text.Kind)
	assert.Equal(t, "15551234567", text.From)
	assert.Equal(t, "wamid.text1", text.ID)
	assert.Equal(t, "hello there", text.Text)
	assert.False(t, text.HasMedia())

	image := messages[1]
	assert.Equal(t, KindImage, image.Kind)
	require.True(t, image.HasMedia())
	assert.Equal(t, "media-42", image.Media.MediaID)
	assert.Equal(t, "image/jpeg", image.Media.MimeType)
	assert.Equal(t, "", image.Media.Filename)

	doc := messages[2]
	assert.Equal(t, KindDocument, doc.Kind)
	require.True(t, doc.HasMedia())
	assert.Equal(t, "report.pdf", doc.Media.Filename)

	sticker := messages[3]
	assert.Equal(t, KindUnsupported, sticker.Kind)
	assert.Equal(t, "sticker", sticker.RawType)
	assert.False(t, sticker.HasMedia())
}

func TestDecodeEmptyDelivery(t *testing.T) {
	var payload WebhookPayload
	require.NoError(t, json.Unmarshal([]byte(`{"entry": []}`), &payload))
	assert.Empty(t, payload.Messages())
}

func TestDecodeDropsSenderlessMessages(t *testing.T) {
	raw := `{"entry":[{"changes":[{"value":{"messages":[{"id":"wamid.x","type":"text","text":{"body":"hi"}}]}}]}]}`
	var payload WebhookPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	assert.Empty(t, payload.Messages())
}
