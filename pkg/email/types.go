package email

// HeaderJobNumber carries the job number so replies and bounces can be
// matched to an appointment.
const HeaderJobNumber = "X-Oilcall-Job-Number"

// Message is one outgoing customer e-mail. An empty ReplyTo falls back to
// the client's configured address.
type Message struct {
	To        []string
	BCC       []string
	ReplyTo   string
	Subject   string
	TextBody  string
	HTMLBody  string
	JobNumber int64
}
