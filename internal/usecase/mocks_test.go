package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/xavierca1/vibe-registration/internal/entity"
	"github.com/xavierca1/vibe-registration/internal/infra/integration/telegram"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendPayment(ctx context.Context, reg *entity.Registration) (string, error) {
	args := m.Called(ctx, reg)
	return args.String(0), args.Error(1)
}

func (m *MockMailer) SendConfirmation(ctx context.Context, reg *entity.Registration) (string, error) {
	args := m.Called(ctx, reg)
	return args.String(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendHTML(chatID int64, text string, buttons []telegram.Button) error {
	args := m.Called(chatID, text, buttons)
	return args.Error(0)
}

func (m *MockNotifier) AnswerCallback(callbackID, text string) error {
	args := m.Called(callbackID, text)
	return args.Error(0)
}

// lastText returns the text of the most recent SendHTML call.
func (m *MockNotifier) lastText() string {
	for i := len(m.Calls) - 1; i >= 0; i-- {
		if m.Calls[i].Method == "SendHTML" {
			return m.Calls[i].Arguments.String(1)
		}
	}
	return ""
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishRegistration(ctx context.Context, event entity.RegistrationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockCaptcha struct {
	mock.Mock
}

func (m *MockCaptcha) Verify(id, answer string) bool {
	args := m.Called(id, answer)
	return args.Bool(0)
}

const adminChat int64 = -1001234

var sgt = time.FixedZone("SGT", 8*60*60)

func testEvent() entity.Event {
	return entity.Event{
		Title:      "Vibe Coding Nov 2025",
		Start:      time.Date(2025, 11, 6, 18, 30, 0, 0, sgt),
		End:        time.Date(2025, 11, 6, 21, 0, 0, 0, sgt),
		Location:   "182 Cecil St, #35-01 Frasers Tower",
		PriceCents: 1000,
		Currency:   "SGD",
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validForm() entity.FormData {
	return entity.FormData{
		Name:            "Jane Doe",
		Email:           "jane@example.com",
		Phone:           "+65 9123 4567",
		Company:         "Acme",
		LinkedInProfile: "",
		HasExperience:   true,
		ToolsUsed:       "Cursor, Claude",
		ProjectIdea:     "A playlist generator that matches songs to my mood",
	}
}
