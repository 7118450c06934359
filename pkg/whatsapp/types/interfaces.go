package types

import (
	"context"
	"time"
)

// WAClient is the gateway surface the dispatcher depends on.
type WAClient interface {
	SendText(ctx context.Context, chatID, text string) (*SendMessageResponse, error)
	SendTextWithSession(ctx context.Context, chatID, text, sessionName string) (*SendMessageResponse, error)
	GetSessionStatus(ctx context.Context) (*Session, error)
	WaitForSessionReady(ctx context.Context, maxWaitTime time.Duration) error
	GetSessionName() string
}
