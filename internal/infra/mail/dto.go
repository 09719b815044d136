package mail

type VerificationEmailData struct {
	Username string
	Link     string
}

type ResetEmailData struct {
	Username string
	Link     string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}
