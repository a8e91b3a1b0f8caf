package notification

// Message is a rendered email ready for delivery
type Message struct {
	FromName  string
	FromEmail string
	To        string
	ToName    string
	Subject   string
	HTML      string
	Text      string
}
