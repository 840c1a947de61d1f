package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/vibe-registration/internal/entity"
	"github.com/xavierca1/vibe-registration/internal/infra/integration/telegram"
	"github.com/xavierca1/vibe-registration/internal/reference"
)

type operatorFixture struct {
	uc        *OperatorUseCase
	codec     *reference.Codec
	mailer    *MockMailer
	notifier  *MockNotifier
	publisher *MockPublisher
}

func newOperatorFixture(secret string) *operatorFixture {
	f := &operatorFixture{
		codec:     reference.NewCodec(reference.NewSigner(secret)),
		mailer:    new(MockMailer),
		notifier:  new(MockNotifier),
		publisher: new(MockPublisher),
	}
	f.uc = NewOperatorUseCase(
		adminChat,
		f.codec,
		f.mailer,
		f.notifier,
		f.publisher,
		testEvent(),
		"+65 9123 4567",
		"https://api.qrserver.com/v1/create-qr-code/",
		discardLogger(),
	)
	f.notifier.On("SendHTML", adminChat, mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("AnswerCallback", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("PublishRegistration", mock.Anything, mock.Anything).Return(nil)
	return f
}

func fullRegistration() *entity.Registration {
	return &entity.Registration{
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		Phone:       "+65 9123 4567",
		ProjectIdea: "A playlist generator that matches songs to my mood",
		Reference:   "JANEDOE_JANE@EXAMPLE.COM_1234",
		Timestamp:   "2025-10-01T04:00:01Z",
	}
}

func text(s string) telegram.Inbound {
	return telegram.Inbound{ChatID: adminChat, Text: s}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want Command
	}{
		{"/paid_JANEDOE_JANE@EXAMPLE.COM_1234", Command{CmdPaid, "JANEDOE_JANE@EXAMPLE.COM_1234"}},
		{"PAID_abc", Command{CmdPaid, "abc"}},
		{"paid_abc", Command{CmdPaid, "abc"}},
		{"/Approve_eyJuYW1lIjoiSmFuZSJ9", Command{CmdApprove, "eyJuYW1lIjoiSmFuZSJ9"}},
		{"/reject_X_Y_Z", Command{CmdReject, "X_Y_Z"}},
		{"/confirm_X_Y_Z", Command{CmdConfirm, "X_Y_Z"}},
		{"/resend_X_Y_Z", Command{CmdResend, "X_Y_Z"}},
		{"/help", Command{Name: CmdHelp}},
		{"/START", Command{Name: CmdHelp}},
		{"/help@VibeCodingBot", Command{Name: CmdHelp}},
		{"JANEDOE_JANE_1234|jane@example.com", Command{CmdPipe, "JANEDOE_JANE_1234|jane@example.com"}},
		{"hello", Command{CmdUnknown, "hello"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCommand(tt.in))
		})
	}
}

func TestOperatorIgnoresOtherChats(t *testing.T) {
	f := newOperatorFixture("")

	res := f.uc.Execute(context.Background(), telegram.Inbound{ChatID: 42, Text: "/help"})

	assert.Equal(t, http.StatusOK, res.Status)
	assert.True(t, res.OK)
	assert.Equal(t, CmdUnauthorized, res.Command)
	f.notifier.AssertNotCalled(t, "SendHTML", mock.Anything, mock.Anything, mock.Anything)
}

func TestOperatorApprove(t *testing.T) {
	f := newOperatorFixture("")
	ctx := context.Background()
	payload, err := f.codec.Encode(fullRegistration())
	require.NoError(t, err)

	f.mailer.On("SendPayment", ctx, mock.MatchedBy(func(r *entity.Registration) bool {
		return r.Email == "jane@example.com" && r.Phone == "+65 9123 4567"
	})).Return("msg-1", nil)

	res := f.uc.Execute(ctx, text("/approve_"+payload))

	assert.Equal(t, OperatorResult{
		Status: http.StatusOK, Command: CmdApprove, Success: true, Action: "approved", Reference: "JANEDOE_JANE@EXAMPLE.COM_1234",
	}, res)
	assert.Contains(t, f.notifier.lastText(), "/resend_JANEDOE_JANE@EXAMPLE.COM_1234")
}

func TestOperatorApproveInvalidPayload(t *testing.T) {
	f := newOperatorFixture("")

	res := f.uc.Execute(context.Background(), text("/approve_not-a-payload"))

	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "Invalid data", res.Error)
	assert.Contains(t, f.notifier.lastText(), "Invalid registration data")
	f.mailer.AssertNotCalled(t, "SendPayment", mock.Anything, mock.Anything)
}

func TestOperatorApproveRejectsTamperedPayload(t *testing.T) {
	f := newOperatorFixture("s3cret")
	payload, err := reference.EncodePayload(fullRegistration())
	require.NoError(t, err)

	res := f.uc.Execute(context.Background(), text("/approve_"+payload))

	assert.Equal(t, http.StatusBadRequest, res.Status)
	f.mailer.AssertNotCalled(t, "SendPayment", mock.Anything, mock.Anything)
}

func TestOperatorApproveEmailFailure(t *testing.T) {
	f := newOperatorFixture("")
	payload, _ := f.codec.Encode(fullRegistration())
	f.mailer.On("SendPayment", mock.Anything, mock.Anything).Return("", errors.New("resend API error (403): domain not verified"))

	res := f.uc.Execute(context.Background(), text("/approve_"+payload))

	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.Equal(t, "Email sending failed", res.Error)
	assert.Contains(t, f.notifier.lastText(), "Error: resend API error (403): domain not verified")
}

func TestOperatorPaidFromReference(t *testing.T) {
	f := newOperatorFixture("")
	ctx := context.Background()

	f.mailer.On("SendConfirmation", ctx, mock.MatchedBy(func(r *entity.Registration) bool {
		return r.Email == "jane@example.com" && r.Reference == "JANEDOE_JANE@EXAMPLE.COM_1234"
	})).Return("msg-2", nil)

	res := f.uc.Execute(ctx, telegram.Inbound{
		ChatID:     adminChat,
		Text:       "paid_JANEDOE_JANE@EXAMPLE.COM_1234",
		CallbackID: "cb-1",
		IsCallback: true,
	})

	assert.Equal(t, http.StatusOK, res.Status)
	assert.True(t, res.Success)
	assert.Equal(t, "paid", res.Action)
	f.mailer.AssertNumberOfCalls(t, "SendConfirmation", 1)
	f.notifier.AssertCalled(t, "AnswerCallback", "cb-1", "✅ Done")
	f.publisher.AssertCalled(t, "PublishRegistration", ctx, mock.MatchedBy(func(e entity.RegistrationEvent) bool {
		return e.PaymentStatus == entity.StatusPaid
	}))
}

func TestOperatorPaidPartial(t *testing.T) {
	f := newOperatorFixture("")

	res := f.uc.Execute(context.Background(), text("/paid_JANEDOE_JANE_1234"))

	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "paid_partial", res.Action)
	assert.Contains(t, f.notifier.lastText(), "LIMITED INFO AVAILABLE")
	assert.Contains(t, f.notifier.lastText(), "JANEDOE_JANE_1234|email@example.com")
	f.mailer.AssertNotCalled(t, "SendConfirmation", mock.Anything, mock.Anything)
}

func TestOperatorPaidInvalidReference(t *testing.T) {
	f := newOperatorFixture("")

	res := f.uc.Execute(context.Background(), text("/paid_JANE"))

	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "Invalid reference format", res.Error)
}

func TestOperatorPaidEmailFailure(t *testing.T) {
	f := newOperatorFixture("")
	f.mailer.On("SendConfirmation", mock.Anything, mock.Anything).Return("", errors.New("smtp: 550 mailbox unavailable"))

	res := f.uc.Execute(context.Background(), text("/paid_JANEDOE_JANE@EXAMPLE.COM_1234"))

	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.Equal(t, "JANEDOE_JANE@EXAMPLE.COM_1234", res.Reference)
	assert.Contains(t, f.notifier.lastText(), "EMAIL ERROR")
	assert.Contains(t, f.notifier.lastText(), "smtp: 550 mailbox unavailable")
	f.publisher.AssertNotCalled(t, "PublishRegistration", mock.Anything, mock.Anything)
}

func TestOperatorPaidTwiceSendsTwice(t *testing.T) {
	f := newOperatorFixture("")
	f.mailer.On("SendConfirmation", mock.Anything, mock.Anything).Return("msg", nil)

	f.uc.Execute(context.Background(), text("/paid_JANEDOE_JANE@EXAMPLE.COM_1234"))
	f.uc.Execute(context.Background(), text("/paid_JANEDOE_JANE@EXAMPLE.COM_1234"))

	f.mailer.AssertNumberOfCalls(t, "SendConfirmation", 2)
}

func TestOperatorPipe(t *testing.T) {
	f := newOperatorFixture("")
	f.mailer.On("SendConfirmation", mock.Anything, mock.MatchedBy(func(r *entity.Registration) bool {
		return r.Email == "jane@example.com" && r.LinkedInProfile == "https://linkedin.com/in/jane-doe"
	})).Return("msg", nil)

	res := f.uc.Execute(context.Background(), text("JANEDOE_JANE_1234 | jane@example.com | jane-doe"))

	assert.Equal(t, "paid", res.Action)
	assert.Equal(t, CmdPipe, res.Command)
	f.mailer.AssertExpectations(t)
}

func TestOperatorPipeInvalidEmail(t *testing.T) {
	f := newOperatorFixture("")

	res := f.uc.Execute(context.Background(), text("JANEDOE_JANE_1234|nope"))

	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "Invalid email", res.Error)
}

func TestOperatorReject(t *testing.T) {
	f := newOperatorFixture("")
	ctx := context.Background()

	res := f.uc.Execute(ctx, text("/reject_JANEDOE_JANE@EXAMPLE.COM_1234"))

	assert.Equal(t, "rejected", res.Action)
	assert.Contains(t, f.notifier.lastText(), "REGISTRATION REJECTED")
	f.publisher.AssertCalled(t, "PublishRegistration", ctx, mock.MatchedBy(func(e entity.RegistrationEvent) bool {
		return e.PaymentStatus == entity.StatusRejected && e.ID == "JANEDOE_JANE@EXAMPLE.COM_1234"
	}))
}

func TestOperatorConfirm(t *testing.T) {
	f := newOperatorFixture("")
	f.mailer.On("SendPayment", mock.Anything, mock.Anything).Return("msg", nil)

	res := f.uc.Execute(context.Background(), text("/confirm_JANEDOE_JANE@EXAMPLE.COM_1234"))

	assert.Equal(t, "confirmed", res.Action)
	msg := f.notifier.lastText()
	assert.Contains(t, msg, "🏦 <b>Payment Instructions</b>")
	assert.Contains(t, msg, "<code>JANEDOE_JANE_1234</code>")
	assert.Contains(t, msg, "size=300x300&amp;data=paynow")
	f.mailer.AssertNumberOfCalls(t, "SendPayment", 1)
}

func TestOperatorConfirmWithoutEmail(t *testing.T) {
	f := newOperatorFixture("")

	res := f.uc.Execute(context.Background(), text("/confirm_JANEDOE_JANE_1234"))

	assert.Equal(t, "confirmed", res.Action)
	assert.Contains(t, f.notifier.lastText(), "No email address")
	f.mailer.AssertNotCalled(t, "SendPayment", mock.Anything, mock.Anything)
}

func TestOperatorResend(t *testing.T) {
	f := newOperatorFixture("")
	f.mailer.On("SendPayment", mock.Anything, mock.Anything).Return("msg", nil)

	res := f.uc.Execute(context.Background(), text("/resend_JANEDOE_JANE@EXAMPLE.COM_1234"))
	assert.Equal(t, "resent", res.Action)

	res = f.uc.Execute(context.Background(), text("/resend_JANEDOE_JANE_1234"))
	assert.Equal(t, http.StatusBadRequest, res.Status)
	f.mailer.AssertNumberOfCalls(t, "SendPayment", 1)
}

func TestOperatorHelpAndUnknown(t *testing.T) {
	f := newOperatorFixture("")

	res := f.uc.Execute(context.Background(), text("/help"))
	assert.Equal(t, "help", res.Action)
	assert.Contains(t, f.notifier.lastText(), "Vibe Coding Registration Bot")

	res = f.uc.Execute(context.Background(), text("what's up"))
	assert.Equal(t, OperatorResult{Status: http.StatusOK, Command: CmdUnknown, OK: true}, res)
	assert.Equal(t, "❓ Unknown command. Send /help for available commands.", f.notifier.lastText())
}

func TestOperatorCallbackAnswersErrors(t *testing.T) {
	f := newOperatorFixture("")

	f.uc.Execute(context.Background(), telegram.Inbound{ChatID: adminChat, Text: "paid_BAD", CallbackID: "cb-2", IsCallback: true})

	f.notifier.AssertCalled(t, "AnswerCallback", "cb-2", "❌ Invalid reference format")
}

// Intake and the Mark as Paid button share only the reference string.
func TestIntakeThenPaidSendsOneConfirmation(t *testing.T) {
	rf := newRegisterFixture()
	rf.publisher.On("PublishRegistration", mock.Anything, mock.Anything).Return(nil)
	rf.mailer.On("SendPayment", mock.Anything, mock.Anything).Return("msg-1", nil)
	rf.notifier.On("SendHTML", adminChat, mock.Anything, mock.Anything).Return(nil)

	out, err := rf.uc.Execute(context.Background(), RegisterInput{FormData: validForm()})
	require.NoError(t, err)

	of := newOperatorFixture("")
	of.mailer.On("SendConfirmation", mock.Anything, mock.Anything).Return("msg-2", nil)

	res := of.uc.Execute(context.Background(), text("paid_"+out.Reference))

	assert.True(t, res.Success)
	assert.Equal(t, "paid", res.Action)
	of.mailer.AssertNumberOfCalls(t, "SendConfirmation", 1)
	sent := of.mailer.Calls[0].Arguments.Get(1).(*entity.Registration)
	assert.Equal(t, "jane@example.com", sent.Email)
}

func TestIntakeThenPaidWithNonLatinName(t *testing.T) {
	rf := newRegisterFixture()
	rf.publisher.On("PublishRegistration", mock.Anything, mock.Anything).Return(nil)
	rf.mailer.On("SendPayment", mock.Anything, mock.Anything).Return("msg-1", nil)
	rf.notifier.On("SendHTML", adminChat, mock.Anything, mock.Anything).Return(nil)

	form := validForm()
	form.Name = "李小明"

	out, err := rf.uc.Execute(context.Background(), RegisterInput{FormData: form})
	require.NoError(t, err)
	assert.Equal(t, "PARTICIPANT_JANE@EXAMPLE.COM_1234", out.Reference)

	buttons := rf.notifier.Calls[0].Arguments.Get(2).([]telegram.Button)
	require.Len(t, buttons, 1)

	of := newOperatorFixture("")
	of.mailer.On("SendConfirmation", mock.Anything, mock.Anything).Return("msg-2", nil)

	res := of.uc.Execute(context.Background(), telegram.Inbound{ChatID: adminChat, Text: buttons[0].Data, CallbackID: "cb-9", IsCallback: true})

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "paid", res.Action)
	sent := of.mailer.Calls[0].Arguments.Get(1).(*entity.Registration)
	assert.Equal(t, "jane@example.com", sent.Email)
	assert.Equal(t, "Participant", sent.DisplayName())

	res = of.uc.Execute(context.Background(), text("PARTICIPANT_JANE@EXAMPLE.COM_1234|li@example.com"))
	assert.Equal(t, "paid", res.Action)
}
