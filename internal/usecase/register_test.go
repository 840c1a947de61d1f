package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/vibe-registration/internal/entity"
	"github.com/xavierca1/vibe-registration/internal/infra/integration/telegram"
	"github.com/xavierca1/vibe-registration/internal/reference"
	"github.com/xavierca1/vibe-registration/internal/security"
)

type registerFixture struct {
	uc        *RegisterUseCase
	mailer    *MockMailer
	notifier  *MockNotifier
	publisher *MockPublisher
	store     *security.MemorySubmissionStore
}

func newRegisterFixture() *registerFixture {
	f := &registerFixture{
		mailer:    new(MockMailer),
		notifier:  new(MockNotifier),
		publisher: new(MockPublisher),
		store:     security.NewMemorySubmissionStore(),
	}
	f.uc = NewRegisterUseCase(
		false,
		adminChat,
		nil,
		security.NewDuplicateChecker(f.store),
		reference.NewCodec(reference.NewSigner("")),
		f.mailer,
		f.notifier,
		f.publisher,
		testEvent(),
		discardLogger(),
	)
	f.uc.Now = func() time.Time { return time.Date(2025, 10, 1, 4, 0, 0, 1234*int(time.Millisecond), time.UTC) }
	return f
}

func TestRegisterSuccess(t *testing.T) {
	f := newRegisterFixture()
	ctx := context.Background()

	f.publisher.On("PublishRegistration", ctx, mock.MatchedBy(func(e entity.RegistrationEvent) bool {
		return e.PaymentStatus == entity.StatusPending && e.Email == "jane@example.com" && e.EventDate == "2025-11-06"
	})).Return(nil)
	f.mailer.On("SendPayment", ctx, mock.AnythingOfType("*entity.Registration")).Return("msg-1", nil)
	f.notifier.On("SendHTML", adminChat, mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.Execute(ctx, RegisterInput{FormData: validForm()})
	require.NoError(t, err)

	assert.True(t, out.Success)
	assert.Equal(t, "JANEDOE_JANE@EXAMPLE.COM_1234", out.Reference)

	f.mailer.AssertNumberOfCalls(t, "SendPayment", 1)
	f.publisher.AssertExpectations(t)

	text := f.notifier.lastText()
	assert.Contains(t, text, "🎨 <b>NEW VIBE CODING REGISTRATION</b>")
	assert.Contains(t, text, "🔧 <b>Experience:</b> Yes - Cursor, Claude")
	assert.Contains(t, text, "💰 <b>Payment:</b> $10 SGD")
	assert.Contains(t, text, "📅 <b>Submitted:</b> 1 Oct 2025, 12:00:01 PM")
	assert.Contains(t, text, "✅ <b>Payment email sent to participant!</b>")
	assert.Contains(t, text, "<code>/paid_JANEDOE_JANE@EXAMPLE.COM_1234</code>")
	assert.Contains(t, text, "<code>/reject_JANEDOE_JANE@EXAMPLE.COM_1234</code>")

	buttons := f.notifier.Calls[0].Arguments.Get(2).([]telegram.Button)
	require.Len(t, buttons, 1)
	assert.Equal(t, "paid_JANEDOE_JANE@EXAMPLE.COM_1234", buttons[0].Data)
}

func TestRegisterApproveLineCarriesDecodablePayload(t *testing.T) {
	f := newRegisterFixture()
	f.publisher.On("PublishRegistration", mock.Anything, mock.Anything).Return(nil)
	f.mailer.On("SendPayment", mock.Anything, mock.Anything).Return("msg-1", nil)
	f.notifier.On("SendHTML", adminChat, mock.Anything, mock.Anything).Return(nil)

	_, err := f.uc.Execute(context.Background(), RegisterInput{FormData: validForm()})
	require.NoError(t, err)

	text := f.notifier.lastText()
	start := strings.Index(text, "/approve_")
	require.NotEqual(t, -1, start)
	payload := strings.TrimSuffix(strings.Fields(text[start+len("/approve_"):])[0], "</code>")

	reg, ok := f.uc.Codec.Decode(payload)
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", reg.Name)
	assert.Equal(t, "+65 9123 4567", reg.Phone)
	assert.Equal(t, "A playlist generator that matches songs to my mood", reg.ProjectIdea)
}

func TestRegisterEscapesOperatorHTML(t *testing.T) {
	f := newRegisterFixture()
	f.publisher.On("PublishRegistration", mock.Anything, mock.Anything).Return(nil)
	f.mailer.On("SendPayment", mock.Anything, mock.Anything).Return("msg-1", nil)
	f.notifier.On("SendHTML", adminChat, mock.Anything, mock.Anything).Return(nil)

	form := validForm()
	form.Company = "<b>Acme</b> & Co"

	_, err := f.uc.Execute(context.Background(), RegisterInput{FormData: form})
	require.NoError(t, err)

	assert.Contains(t, f.notifier.lastText(), "&lt;b&gt;Acme&lt;/b&gt; &amp; Co")
}

func TestRegisterToleratesEmailAndWebhookFailures(t *testing.T) {
	f := newRegisterFixture()
	f.publisher.On("PublishRegistration", mock.Anything, mock.Anything).Return(errors.New("webhook down"))
	f.mailer.On("SendPayment", mock.Anything, mock.Anything).Return("", errors.New("resend API error (422): invalid from"))
	f.notifier.On("SendHTML", adminChat, mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.Execute(context.Background(), RegisterInput{FormData: validForm()})
	require.NoError(t, err)
	assert.True(t, out.Success)

	assert.Contains(t, f.notifier.lastText(), "⚠️ <b>Payment email failed:</b> resend API error (422): invalid from")
}

func TestRegisterNotifyFailure(t *testing.T) {
	f := newRegisterFixture()
	f.publisher.On("PublishRegistration", mock.Anything, mock.Anything).Return(nil)
	f.mailer.On("SendPayment", mock.Anything, mock.Anything).Return("msg-1", nil)
	f.notifier.On("SendHTML", adminChat, mock.Anything, mock.Anything).Return(errors.New("chat not found"))

	out, err := f.uc.Execute(context.Background(), RegisterInput{FormData: validForm()})
	assert.Nil(t, out)

	var te *TechnicalError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, CodeNotifyFailed, te.Code)
}

func TestRegisterRefusals(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(f *registerFixture)
		form   func() entity.FormData
		code   string
		domain bool
	}{
		{
			name:   "signups closed",
			setup:  func(f *registerFixture) { f.uc.SignupsDisabled = true },
			form:   validForm,
			code:   CodeSignupsClosed,
			domain: true,
		},
		{
			name:  "telegram not configured",
			setup: func(f *registerFixture) { f.uc.AdminChatID = 0 },
			form:  validForm,
			code:  CodeTelegramConfig,
		},
		{
			name:  "missing fields",
			setup: func(f *registerFixture) {},
			form: func() entity.FormData {
				form := validForm()
				form.Email = ""
				form.ProjectIdea = "  "
				return form
			},
			code:   CodeValidation,
			domain: true,
		},
		{
			name: "captcha",
			setup: func(f *registerFixture) {
				c := new(MockCaptcha)
				c.On("Verify", "cap-1", "WRONG").Return(false)
				f.uc.Captcha = c
			},
			form: func() entity.FormData {
				form := validForm()
				form.CaptchaID = "cap-1"
				form.CaptchaAnswer = "WRONG"
				return form
			},
			code:   CodeCaptcha,
			domain: true,
		},
		{
			name:  "spam",
			setup: func(f *registerFixture) {},
			form: func() entity.FormData {
				form := validForm()
				form.Name = "Spam King"
				form.ProjectIdea = "easy money with crypto and bitcoin"
				return form
			},
			code:   CodeSpam,
			domain: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRegisterFixture()
			tt.setup(f)

			out, err := f.uc.Execute(context.Background(), RegisterInput{FormData: tt.form()})
			assert.Nil(t, out)
			require.Error(t, err)

			if tt.domain {
				var de *DomainError
				require.True(t, errors.As(err, &de))
				assert.Equal(t, tt.code, de.Code)
			} else {
				var te *TechnicalError
				require.True(t, errors.As(err, &te))
				assert.Equal(t, tt.code, te.Code)
			}

			f.mailer.AssertNotCalled(t, "SendPayment", mock.Anything, mock.Anything)
			f.notifier.AssertNotCalled(t, "SendHTML", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRegisterValidationFields(t *testing.T) {
	f := newRegisterFixture()
	form := validForm()
	form.Email = "not-an-email"
	form.Phone = "12"

	_, err := f.uc.Execute(context.Background(), RegisterInput{FormData: form})

	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "is invalid", de.Fields["email"])
	assert.Equal(t, "must be a valid phone number", de.Fields["phone"])
}

func TestRegisterSpamReasons(t *testing.T) {
	f := newRegisterFixture()
	form := validForm()
	form.Name = "Spam King"
	form.ProjectIdea = "easy money with crypto and bitcoin"

	_, err := f.uc.Execute(context.Background(), RegisterInput{FormData: form})

	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Contains(t, de.Reasons, "Suspicious name content")
}

func TestRegisterDuplicate(t *testing.T) {
	f := newRegisterFixture()
	f.publisher.On("PublishRegistration", mock.Anything, mock.Anything).Return(nil)
	f.mailer.On("SendPayment", mock.Anything, mock.Anything).Return("msg-1", nil)
	f.notifier.On("SendHTML", adminChat, mock.Anything, mock.Anything).Return(nil)

	_, err := f.uc.Execute(context.Background(), RegisterInput{FormData: validForm()})
	require.NoError(t, err)

	again := validForm()
	again.Email = "JANE@example.com"
	again.Phone = "+65 9123-4567"

	_, err = f.uc.Execute(context.Background(), RegisterInput{FormData: again})

	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, CodeDuplicate, de.Code)
	f.mailer.AssertNumberOfCalls(t, "SendPayment", 1)
}

func TestRegisterCaptchaPasses(t *testing.T) {
	f := newRegisterFixture()
	c := new(MockCaptcha)
	c.On("Verify", "cap-1", "K7P2Q").Return(true)
	f.uc.Captcha = c

	f.publisher.On("PublishRegistration", mock.Anything, mock.Anything).Return(nil)
	f.mailer.On("SendPayment", mock.Anything, mock.Anything).Return("msg-1", nil)
	f.notifier.On("SendHTML", adminChat, mock.Anything, mock.Anything).Return(nil)

	form := validForm()
	form.CaptchaID = "cap-1"
	form.CaptchaAnswer = "K7P2Q"

	out, err := f.uc.Execute(context.Background(), RegisterInput{FormData: form})
	require.NoError(t, err)
	assert.True(t, out.Success)
	c.AssertExpectations(t)
}

func TestRegisterLongReferenceKeepsPaidCommand(t *testing.T) {
	f := newRegisterFixture()
	f.publisher.On("PublishRegistration", mock.Anything, mock.Anything).Return(nil)
	f.mailer.On("SendPayment", mock.Anything, mock.Anything).Return("msg-1", nil)
	f.notifier.On("SendHTML", adminChat, mock.Anything, mock.Anything).Return(nil)

	form := validForm()
	form.Name = "Maximiliana Alexandrina Konstantinopoulou"
	form.Email = "maximiliana.konstantinopoulou@example-company.com"

	out, err := f.uc.Execute(context.Background(), RegisterInput{FormData: form})
	require.NoError(t, err)
	require.Greater(t, len("paid_"+out.Reference), telegram.MaxCallbackData)

	buttons := f.notifier.Calls[0].Arguments.Get(2).([]telegram.Button)
	assert.Empty(t, buttons)
	assert.Contains(t, f.notifier.lastText(), "<code>/paid_"+out.Reference+"</code>")
}
