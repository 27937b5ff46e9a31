package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"detectorbot/relay/internal/domain"
	"detectorbot/relay/internal/whatsapp"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Transport is the messaging side the relay talks back through.
type Transport interface {
	SendText(ctx context.Context, to, body string) error
	DownloadMedia(ctx context.Context, mediaID string) (content []byte, mimeType string, err error)
	MarkRead(ctx context.Context, messageID string) error
}

const welcomeMessage = `Hey there! Welcome to Deepfake Detector Bot.

I can help you detect deepfakes and AI-generated content.
Send me an image, video or document and I'll queue it for analysis.

Type "help" at any time for usage instructions.`

const helpMessage = `How to use this bot:

Send the image, video or document you want analyzed.

Supported formats:
  Images: JPG, PNG, GIF, WebP, HEIC
  Videos: MP4, MOV, AVI, MKV, WebM
  Documents: PDF, DOC, DOCX, TXT, CSV

Type "start" or "hi" to begin again.`

// RelayService routes inbound transport messages: greetings and help for
// text, the ingestion pipeline for media. Replies are best effort — a failed
// send never fails the handling of the delivery.
type RelayService struct {
	transport Transport
	ingest    IngestService
	identity  IdentityResolver

	// Presence cache of senders already greeted. Purely presentational, not
	// authoritative, fine to lose on restart.
	greeted *lru.Cache[string, struct{}]
}

// NewRelayService creates a new RelayService. greetedSize bounds the
// greeted-sender cache.
func NewRelayService(transport Transport, ingest IngestService, identity IdentityResolver, greetedSize int) (*RelayService, error) {
	if greetedSize <= 0 {
		greetedSize = 4096
	}
	greeted, err := lru.New[string, struct{}](greetedSize)
	if err != nil {
		return nil, err
	}
	return &RelayService{
		transport: transport,
		ingest:    ingest,
		identity:  identity,
		greeted:   greeted,
	}, nil
}

// HandleMessage processes one inbound message end to end: acknowledge the
// delivery, act on it, reply. It never returns an error — the webhook must
// ack the transport regardless of what happened here.
func (s *RelayService) HandleMessage(ctx context.Context, msg whatsapp.Message) {
	if msg.ID != "" {
		if err := s.transport.MarkRead(ctx, msg.ID); err != nil {
			log.Printf("WARN: Failed to mark message %s as read: %v", msg.ID, err)
		}
	}

	var reply string
	switch msg.Kind {
	case whatsapp.KindText:
		reply = s.handleText(msg)
	case whatsapp.KindImage, whatsapp.KindVideo, whatsapp.KindDocument:
		reply = s.handleMedia(ctx, msg)
	default:
		reply = s.handleUnsupported(msg)
	}

	if reply == "" {
		return
	}
	if err := s.transport.SendText(ctx, msg.From, reply); err != nil {
		log.Printf("ERROR: Failed to send reply to %s: %v", msg.From, err)
	}
}

func (s *RelayService) handleText(msg whatsapp.Message) string {
	if s.firstContact(msg.From) {
		return welcomeMessage
	}

	switch strings.ToLower(strings.TrimSpace(msg.Text)) {
	case "hi", "hello", "hey", "start":
		return welcomeMessage
	case "help", "info", "?", "support":
		return helpMessage
	default:
		return fmt.Sprintf("Text received: %s\n\n%s", msg.Text, helpMessage)
	}
}

func (s *RelayService) handleMedia(ctx context.Context, msg whatsapp.Message) string {
	// Greet first-contact senders before the upload result, matching the
	// conversational flow of the bot.
	if s.firstContact(msg.From) {
		if err := s.transport.SendText(ctx, msg.From, welcomeMessage); err != nil {
			log.Printf("WARN: Failed to greet %s: %v", msg.From, err)
		}
	}

	if !msg.HasMedia() {
		return s.failureNotice(msg.Kind, "no media reference found")
	}

	content, mimeType, err := s.transport.DownloadMedia(ctx, msg.Media.MediaID)
	if err != nil {
		log.Printf("ERROR: Failed to download media %s: %v", msg.Media.MediaID, err)
		return s.failureNotice(msg.Kind, "failed to retrieve the file")
	}
	if mimeType == "" {
		mimeType = msg.Media.MimeType
	}

	// The phone number is the durable external identifier; the stored handle
	// is derived from it, never the number itself.
	principal := domain.Principal{SessionHandle: s.identity.AnonymousHandle(msg.From)}

	record, err := s.ingest.Ingest(ctx, IngestInput{
		Content:   content,
		Filename:  msg.Media.Filename,
		MediaType: mimeType,
		Principal: principal,
	})
	if err != nil {
		log.Printf("ERROR: Ingestion failed for sender %s: %v", msg.From, err)
		return s.failureNotice(msg.Kind, "failed to store the file")
	}

	return formatMediaReply(msg.Kind, record)
}

func (s *RelayService) handleUnsupported(msg whatsapp.Message) string {
	if s.firstContact(msg.From) {
		return welcomeMessage
	}
	return fmt.Sprintf("Unsupported message type %q.\n\n%s", msg.RawType, helpMessage)
}

// firstContact records the sender as greeted and reports whether this was
// their first message.
func (s *RelayService) firstContact(from string) bool {
	if s.greeted.Contains(from) {
		return false
	}
	s.greeted.Add(from, struct{}{})
	return true
}

func (s *RelayService) failureNotice(kind whatsapp.MessageKind, reason string) string {
	return fmt.Sprintf("Error processing %s: %s.\n\nPlease try again or contact support if the issue persists.", kind, reason)
}

func formatMediaReply(kind whatsapp.MessageKind, record *domain.DetectionRecord) string {
	name := string(kind)
	if len(name) > 0 {
		name = strings.ToUpper(name[:1]) + name[1:]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s uploaded successfully!\n\n", name)
	fmt.Fprintf(&b, "File: %s\n", record.StorageKey)
	fmt.Fprintf(&b, "Type: %s\n", record.Category)
	fmt.Fprintf(&b, "Size: %d bytes\n\n", record.ByteSize)
	b.WriteString("Analyzing for deepfakes...\nThis may take a moment.")
	return b.String()
}
