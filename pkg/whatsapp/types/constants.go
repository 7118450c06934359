package types

const (
	APIBase          = "/api"
	EndpointSendText = "/sendText"
	EndpointSessions = "/sessions"
)
