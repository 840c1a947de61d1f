package mail

import "context"

type Attachment struct {
	Filename    string
	ContentType string
	// ContentID marks the attachment as inline, referenced from the HTML
	// body as cid:<ContentID>.
	ContentID string
	Data      []byte
}

type Message struct {
	From        string
	To          []string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Sender delivers one message and returns the provider's message id, if any.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

const (
	KindPayment      = "payment"
	KindConfirmation = "confirmation"
)

type paymentEmailData struct {
	Name         string
	Reference    string
	BankRef      string
	Event        eventView
	Amount       string
	PayNowMobile string
	QRContentID  string
	QRAvailable  bool
}

type confirmationEmailData struct {
	Name        string
	Reference   string
	ProjectIdea string
	Event       eventView
	Timeline    []TimelineItem
}

type eventView struct {
	Title     string
	Date      string
	Time      string
	Location  string
	Duration  string
	Organizer string
	Year      int
}
