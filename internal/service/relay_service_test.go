package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"detectorbot/relay/internal/whatsapp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	sent         []string // bodies sent, in order
	sentTo       []string
	markedRead   []string
	media        map[string][]byte
	mediaMime    string
	downloadErr  error
	sendErr      error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{media: make(map[string][]byte)}
}

func (f *fakeTransport) SendText(ctx context.Context, to, body string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, body)
	f.sentTo = append(f.sentTo, to)
	return nil
}

func (f *fakeTransport) DownloadMedia(ctx context.Context, mediaID string) ([]byte, string, error) {
	if f.downloadErr != nil {
		return nil, "", f.downloadErr
	}
	content, ok := f.media[mediaID]
	if !ok {
		return nil, "", errors.New("unknown media id")
	}
	return content, f.mediaMime, nil
}

func (f *fakeTransport) MarkRead(ctx context.Context, messageID string) error {
	f.markedRead = append(f.markedRead, messageID)
	return nil
}

func newTestRelay(t *testing.T, transport Transport) (*RelayService, *fakeDetectionRepo) {
	t.Helper()
	repo := newFakeDetectionRepo()
	ingest := NewIngestService(newFakeStorage(), repo)
	resolver := NewIdentityResolver(&stubProvider{}, "test-ns")
	relay, err := NewRelayService(transport, ingest, resolver, 16)
	require.NoError(t, err)
	return relay, repo
}

func textMessage(id, from, body string) whatsapp.Message {
	return whatsapp.Message{ID: id, From: from, Kind: whatsapp.KindText, Text: body}
}

func TestFirstTextMessageGetsWelcome(t *testing.T) {
	transport := newFakeTransport()
	relay, _ := newTestRelay(t, transport)

	relay.HandleMessage(context.Background(), textMessage("m1", "15551234567", "what is this"))

	require.Len(t, transport.sent, 1)
	assert.Contains(t, transport.sent[0], "Welcome")
	assert.Equal(t, []string{"m1"}, transport.markedRead)
}

func TestTextCommands(t *testing.T) {
	transport := newFakeTransport()
	relay, _ := newTestRelay(t, transport)
	ctx := context.Background()

	relay.HandleMessage(ctx, textMessage("m1", "15551234567", "hi")) // greeting consumes first contact

	relay.HandleMessage(ctx, textMessage("m2", "15551234567", "HELP"))
	require.Len(t, transport.sent, 2)
	assert.Contains(t, transport.sent[1], "How to use this bot")

	relay.HandleMessage(ctx, textMessage("m3", "15551234567", "start"))
	require.Len(t, transport.sent, 3)
	assert.Contains(t, transport.sent[2], "Welcome")

	relay.HandleMessage(ctx, textMessage("m4", "15551234567", "random words"))
	require.Len(t, transport.sent, 4)
	assert.Contains(t, transport.sent[3], "Text received: random words")
}

func TestMediaMessageIngested(t *testing.T) {
	transport := newFakeTransport()
	transport.media["media-1"] = []byte{0xff, 0xd8, 0xff}
	transport.mediaMime = "image/jpeg"
	relay, repo := newTestRelay(t, transport)

	relay.HandleMessage(context.Background(), whatsapp.Message{
		ID:    "m1",
		From:  "15551234567",
		Kind:  whatsapp.KindImage,
		Media: &whatsapp.MediaRef{MediaID: "media-1", Filename: "photo.jpg", MimeType: "image/jpeg"},
	})

	// Greeting first, then the upload summary.
	require.Len(t, transport.sent, 2)
	assert.Contains(t, transport.sent[0], "Welcome")
	assert.Contains(t, transport.sent[1], "uploaded successfully")

	require.Len(t, repo.records, 1)
	for _, record := range repo.records {
		assert.Nil(t, record.Owner)
		require.NotNil(t, record.SessionID)
		// The stored handle is derived, never the raw phone number.
		assert.True(t, strings.HasPrefix(*record.SessionID, "anon_"))
		assert.NotContains(t, *record.SessionID, "15551234567")
	}
}

func TestRepeatSendersShareSessionHandle(t *testing.T) {
	transport := newFakeTransport()
	transport.media["media-1"] = []byte("a")
	transport.media["media-2"] = []byte("b")
	relay, repo := newTestRelay(t, transport)
	ctx := context.Background()

	msg := func(id, mediaID string) whatsapp.Message {
		return whatsapp.Message{
			ID: id, From: "15551234567", Kind: whatsapp.KindDocument,
			Media: &whatsapp.MediaRef{MediaID: mediaID, Filename: "doc.pdf"},
		}
	}
	relay.HandleMessage(ctx, msg("m1", "media-1"))
	relay.HandleMessage(ctx, msg("m2", "media-2"))

	require.Len(t, repo.records, 2)
	sessions := make(map[string]bool)
	keys := make(map[string]bool)
	for _, record := range repo.records {
		sessions[*record.SessionID] = true
		keys[record.StorageKey] = true
	}
	assert.Len(t, sessions, 1, "same phone number must map to the same session handle")
	assert.Len(t, keys, 2, "each upload gets an independent key")
}

func TestMediaDownloadFailureNotifiesSender(t *testing.T) {
	transport := newFakeTransport()
	transport.downloadErr = errors.New("transport timeout")
	relay, repo := newTestRelay(t, transport)

	relay.HandleMessage(context.Background(), whatsapp.Message{
		ID: "m1", From: "15551234567", Kind: whatsapp.KindVideo,
		Media: &whatsapp.MediaRef{MediaID: "media-1"},
	})

	require.NotEmpty(t, transport.sent)
	assert.Contains(t, transport.sent[len(transport.sent)-1], "Error processing video")
	assert.Empty(t, repo.records)
}

func TestUnsupportedKind(t *testing.T) {
	transport := newFakeTransport()
	relay, _ := newTestRelay(t, transport)
	ctx := context.Background()

	relay.HandleMessage(ctx, textMessage("m1", "15551234567", "hi")) // consume greeting

	relay.HandleMessage(ctx, whatsapp.Message{
		ID: "m2", From: "15551234567", Kind: whatsapp.KindUnsupported, RawType: "sticker",
	})
	require.Len(t, transport.sent, 2)
	assert.Contains(t, transport.sent[1], `Unsupported message type "sticker"`)
}
