package usecase

import (
	"fmt"
	"html"

	"github.com/xavierca1/vibe-registration/internal/entity"
)

// Textos enviados ao chat do operador (parse_mode HTML). Todo dado vindo do
// participante passa por html.EscapeString.

func participant(reg *entity.Registration) string {
	return fmt.Sprintf("%s (%s)", html.EscapeString(reg.DisplayName()), html.EscapeString(reg.Email))
}

func approvedMessage(reg *entity.Registration) string {
	ref := html.EscapeString(reg.Reference)
	return fmt.Sprintf(`✅ <b>REGISTRATION APPROVED & EMAIL SENT</b>

<b>Participant:</b> %s
<b>Reference:</b> %s

📧 Payment email with QR code sent to participant.

<b>Next steps:</b>
💳 When paid: /paid_%s
📋 Resend email: /resend_%s`, participant(reg), ref, ref, ref)
}

func resentMessage(reg *entity.Registration) string {
	return fmt.Sprintf(`📋 <b>PAYMENT EMAIL RESENT</b>

<b>Participant:</b> %s
<b>Reference:</b> %s`, participant(reg), html.EscapeString(reg.Reference))
}

func paymentEmailErrorMessage(reg *entity.Registration, err error) string {
	return fmt.Sprintf(`❌ <b>ERROR</b>

Failed to send payment email to %s.
Please check email configuration and try again.

Error: %s`, html.EscapeString(reg.Email), html.EscapeString(err.Error()))
}

func rejectedMessage(reg *entity.Registration) string {
	return fmt.Sprintf(`❌ <b>REGISTRATION REJECTED</b>

Registration for %s has been rejected.

Reference: %s`, participant(reg), html.EscapeString(reg.Reference))
}

func paidMessage(reg *entity.Registration) string {
	return fmt.Sprintf(`💳 <b>PAYMENT CONFIRMED & EMAIL SENT</b>

<b>Participant:</b> %s
<b>Reference:</b> %s
<b>Status:</b> ✅ FULLY CONFIRMED

📧 Event confirmation email with details sent to participant.

🎯 Participant is now fully registered for Vibe Coding!`, participant(reg), html.EscapeString(reg.Reference))
}

func confirmationEmailErrorMessage(ref string, err error) string {
	return fmt.Sprintf(`❌ <b>EMAIL ERROR</b>

Payment marked as confirmed for %s, but failed to send confirmation email.

Error: %s

Please manually contact participant or retry email sending.`, html.EscapeString(ref), html.EscapeString(err.Error()))
}

func limitedInfoMessage(ref string) string {
	ref = html.EscapeString(ref)
	return fmt.Sprintf(`⚠️ <b>LIMITED INFO AVAILABLE</b>

The reference %s carries no email address, so no confirmation was sent.
Reply with the participant's email:
<code>%s|email@example.com</code>

Or with their LinkedIn handle too:
<code>%s|email@example.com|linkedin-handle</code>`, ref, ref, ref)
}

func noEmailMessage(ref string) string {
	return fmt.Sprintf(`⚠️ <b>NO EMAIL ADDRESS</b>

The reference %s carries no email address.
Use the /approve_ command from the original registration message instead.`, html.EscapeString(ref))
}

func invalidReferenceMessage(arg string) string {
	return fmt.Sprintf(`❌ Invalid reference format: <code>%s</code>

Expected NAME_EMAIL_SUFFIX, as shown in the registration message.`, html.EscapeString(arg))
}

func paymentInstructions(event entity.Event, mobile, bankRef, qrLink string) string {
	msg := fmt.Sprintf(`🏦 <b>Payment Instructions</b>

💰 <b>Amount:</b> %s
🆔 <b>Reference:</b> %s
📱 <b>Mobile:</b> %s
`, event.DisplayPrice(), bankRef, html.EscapeString(mobile))

	if qrLink != "" {
		msg += fmt.Sprintf("\n<a href=\"%s\">📱 View QR Code</a>\n", html.EscapeString(qrLink))
	}

	msg += fmt.Sprintf(`
<b>Payment Options:</b>
1. Scan QR code with your banking app
2. Manual PayNow transfer using mobile: %s

⚠️ <b>Important:</b> Use reference: <code>%s</code>`, html.EscapeString(mobile), bankRef)
	return msg
}

func confirmedMessage(reg *entity.Registration, emailSent bool, instructions string) string {
	status := "⚠️ No email address in the reference, send the instructions manually."
	if emailSent {
		status = "📧 Payment email sent to " + html.EscapeString(reg.Email) + "."
	}
	ref := html.EscapeString(reg.Reference)
	return fmt.Sprintf(`✅ <b>Registration Confirmed!</b>

Registration %s has been approved.
%s

%s

Reply with <code>/paid_%s</code> when payment is complete.`, ref, status, instructions, ref)
}

func helpMessage() string {
	return `🤖 <b>Vibe Coding Registration Bot</b>

<b>Available Commands:</b>
• <code>/approve_[DATA]</code> - Send the payment email (from the registration message)
• <code>/reject_[REFERENCE]</code> - Reject a registration
• <code>/paid_[REFERENCE]</code> - Mark as paid & send confirmation email
• <code>/confirm_[REFERENCE]</code> - Send payment email & show PayNow instructions
• <code>/resend_[REFERENCE]</code> - Resend the payment email
• <code>REFERENCE|email[|linkedin]</code> - Confirm payment for a reference without email

<b>How it works:</b>
1. 📝 User submits registration → payment email goes out and you get a notification here
2. 💳 When payment is received → press <b>Mark as Paid</b> or send <code>/paid_[REFERENCE]</code>
3. 🎉 Participant gets the confirmation email with namecard & calendar invite

<i>No database: everything needed travels in the commands.</i>`
}
