package whatsapp

// Typed decoding of WhatsApp Cloud API webhook deliveries. Payloads are
// decoded once here, at the transport boundary, into a tagged Message variant;
// nothing downstream touches the raw wire shape.

// MessageKind tags the variant of an inbound message.
type MessageKind string

const (
	KindText        MessageKind = "text"
	KindImage       MessageKind = "image"
	KindVideo       MessageKind = "video"
	KindDocument    MessageKind = "document"
	KindUnsupported MessageKind = "unsupported"
)

// Message is one inbound message, reduced to the fields relevant to its kind.
type Message struct {
	ID   string // Transport message id, used for read receipts
	From string // Sender's phone number
	Kind MessageKind

	// Kind == KindText
	Text string

	// Kind in {KindImage, KindVideo, KindDocument}
	Media *MediaRef

	// Kind == KindUnsupported: the raw transport type, for diagnostics
	RawType string
}

// MediaRef points at transport-held media bytes, resolvable via
// Client.DownloadMedia.
type MediaRef struct {
	MediaID  string
	Filename string // Original filename when the transport supplies one
	MimeType string
}

// HasMedia reports whether the message carries a downloadable attachment.
func (m Message) HasMedia() bool {
	return m.Media != nil && m.Media.MediaID != ""
}

// --- Wire types (Graph API webhook payload shape) ---

type WebhookPayload struct {
	Entry []entry `json:"entry"`
}

type entry struct {
	Changes []change `json:"changes"`
}

type change struct {
	Value changeValue `json:"value"`
}

type changeValue struct {
	Messages []rawMessage `json:"messages"`
}

type rawMessage struct {
	From     string        `json:"from"`
	ID       string        `json:"id"`
	Type     string        `json:"type"`
	Text     *textPayload  `json:"text,omitempty"`
	Image    *mediaPayload `json:"image,omitempty"`
	Video    *mediaPayload `json:"video,omitempty"`
	Document *mediaPayload `json:"document,omitempty"`
}

type textPayload struct {
	Body string `json:"body"`
}

type mediaPayload struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	Filename string `json:"filename,omitempty"`
}

// Messages flattens the delivery into tagged variants, dropping entries
// without a sender.
func (p *WebhookPayload) Messages() []Message {
	var out []Message
	for _, e := range p.Entry {
		for _, c := range e.Changes {
			for _, raw := range c.Value.Messages {
				if raw.From == "" {
					continue
				}
				out = append(out, decodeMessage(raw))
			}
		}
	}
	return out
}

func decodeMessage(raw rawMessage) Message {
	msg := Message{ID: raw.ID, From: raw.From}

	switch raw.Type {
	case "text":
		msg.Kind = KindText
		if raw.Text != nil {
			msg.Text = raw.Text.Body
		}
	case "image":
		msg.Kind = KindImage
		msg.Media = mediaRef(raw.Image)
	case "video":
		msg.Kind = KindVideo
		msg.Media = mediaRef(raw.Video)
	case "document":
		msg.Kind = KindDocument
		msg.Media = mediaRef(raw.Document)
	default:
		msg.Kind = KindUnsupported
		msg.RawType = raw.Type
	}
	return msg
}

func mediaRef(p *mediaPayload) *MediaRef {
	if p == nil {
		return nil
	}
	return &MediaRef{
		MediaID:  p.ID,
		Filename: p.Filename,
		MimeType: p.MimeType,
	}
}
