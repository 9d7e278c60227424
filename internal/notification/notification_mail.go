package notification

import (
	"fmt"
	"html"
	"strings"

	"go-leave/internal/mail"
	"go-leave/internal/user"
)

func describeLeave(l LeaveSummary) string {
	kind := l.LeaveType
	if l.HalfDayType != "" {
		kind = fmt.Sprintf("%s (%s)", l.LeaveType, l.HalfDayType)
	}
	return fmt.Sprintf("%s leave on %s", kind, strings.Join(l.Dates, ", "))
}

func buildMail(to *user.User, subject, intro string, l LeaveSummary) mail.Message {
	lines := []string{
		fmt.Sprintf("Hi %s,", to.Name),
		"",
		intro,
		"",
		"Type: " + l.LeaveType,
		"Dates: " + strings.Join(l.Dates, ", "),
		"Reason: " + l.Reason,
	}
	if l.HalfDayType != "" {
		lines = append(lines, "Half: "+l.HalfDayType)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hi %s,</p><p>%s</p><ul>", html.EscapeString(to.Name), html.EscapeString(intro))
	fmt.Fprintf(&b, "<li><b>Type:</b> %s</li>", html.EscapeString(l.LeaveType))
	fmt.Fprintf(&b, "<li><b>Dates:</b> %s</li>", html.EscapeString(strings.Join(l.Dates, ", ")))
	fmt.Fprintf(&b, "<li><b>Reason:</b> %s</li>", html.EscapeString(l.Reason))
	if l.HalfDayType != "" {
		fmt.Fprintf(&b, "<li><b>Half:</b> %s</li>", html.EscapeString(l.HalfDayType))
	}
	b.WriteString("</ul>")

	return mail.Message{
		To:      to.Email,
		Subject: subject,
		Text:    strings.Join(lines, "\n"),
		HTML:    b.String(),
	}
}
