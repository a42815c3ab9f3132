package inbound

type SendEmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

type SendEmailResponse struct {
	MessageID string `json:"messageId"`
}
