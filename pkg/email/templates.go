package email

import (
	"fmt"
	"html"
	"strings"
)

// AppointmentEmailData contains the data needed for appointment email templates.
type AppointmentEmailData struct {
	CustomerName  string
	Email         string
	JobNumber     int64
	Date          string
	TimeSlot      string
	ServiceType   string
	Address       string
	MechanicName  string
	AppName       string
	BaseURL       string
	AppointmentID string
}

func (d AppointmentEmailData) appName() string {
	if d.AppName == "" {
		return defaultAppName
	}
	return d.AppName
}

func (d AppointmentEmailData) firstName() string {
	name := strings.TrimSpace(d.CustomerName)
	if name == "" {
		return "there"
	}
	return strings.Fields(name)[0]
}

// CancelURL is the public capability link for cancelling the booking.
func (d AppointmentEmailData) CancelURL() string {
	if d.BaseURL == "" || d.AppointmentID == "" {
		return ""
	}
	return strings.TrimRight(d.BaseURL, "/") + "/appointments/" + d.AppointmentID + "/cancel"
}

func (d AppointmentEmailData) summary() []string {
	lines := []string{
		fmt.Sprintf("Job number: #%d", d.JobNumber),
		fmt.Sprintf("Service: %s", d.ServiceType),
		fmt.Sprintf("When: %s at %s", d.Date, d.TimeSlot),
		fmt.Sprintf("Where: %s", d.Address),
	}
	if d.MechanicName != "" {
		lines = append(lines, fmt.Sprintf("Technician: %s", d.MechanicName))
	}
	return lines
}

// render builds both bodies from a headline, an intro paragraph and the
// appointment summary. link is optional.
func render(d AppointmentEmailData, subject, intro, linkLabel, link string) Message {
	appName := d.appName()
	summary := d.summary()

	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\n%s\n\n", d.firstName(), intro)
	for _, l := range summary {
		text.WriteString(l + "\n")
	}
	if link != "" {
		fmt.Fprintf(&text, "\n%s: %s\n", linkLabel, link)
	}
	fmt.Fprintf(&text, "\nThanks,\nThe %s Team", appName)

	var items strings.Builder
	for _, l := range summary {
		fmt.Fprintf(&items, "        <li>%s</li>\n", html.EscapeString(l))
	}
	button := ""
	if link != "" {
		button = fmt.Sprintf(`    <p style="text-align: center; margin: 30px 0;">
        <a href="%s" style="background-color: #2563eb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">%s</a>
    </p>
`, html.EscapeString(link), html.EscapeString(linkLabel))
	}

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Hi %s,</h2>
    <p>%s</p>
    <ul>
%s    </ul>
%s    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>The %s Team</p>
</body>
</html>`,
		html.EscapeString(d.firstName()), html.EscapeString(intro), items.String(), button, html.EscapeString(appName))

	return Message{
		To:        []string{d.Email},
		Subject:   subject,
		TextBody:  text.String(),
		HTMLBody:  htmlBody,
		JobNumber: d.JobNumber,
	}
}

// BuildBookingConfirmationEmail confirms a new booking and carries the cancel link.
func BuildBookingConfirmationEmail(d AppointmentEmailData) Message {
	return render(d,
		fmt.Sprintf("Your %s appointment is booked (#%d)", d.appName(), d.JobNumber),
		"Your appointment is confirmed. A technician will come to you at the time below.",
		"Cancel appointment", d.CancelURL())
}

func BuildAssignedEmail(d AppointmentEmailData) Message {
	intro := "Your appointment has a technician assigned."
	if d.MechanicName == "" {
		intro = "Your appointment no longer has a technician assigned. We will let you know once a new one is scheduled."
	}
	return render(d,
		fmt.Sprintf("Technician update for job #%d", d.JobNumber),
		intro, "", "")
}

func BuildCancellationEmail(d AppointmentEmailData) Message {
	return render(d,
		fmt.Sprintf("Appointment #%d cancelled", d.JobNumber),
		"Your appointment has been cancelled. You can book a new time any time.",
		"", "")
}

func BuildJobCompletedEmail(d AppointmentEmailData) Message {
	return render(d,
		fmt.Sprintf("Job #%d completed", d.JobNumber),
		"Your service is complete. Thanks for choosing us.",
		"", "")
}

func BuildReminderEmail(d AppointmentEmailData) Message {
	return render(d,
		fmt.Sprintf("Reminder: your appointment today at %s", d.TimeSlot),
		"This is a reminder of your appointment today.",
		"Cancel appointment", d.CancelURL())
}
