package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/relaymind/autopilot/internal/model"
	"github.com/relaymind/autopilot/pkg/anthropic"
)

// --- Anthropic Mock ---

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

// --- Mailbox Source Mock ---

type mockSource struct {
	mock.Mock
}

func (m *mockSource) FetchUnprocessed(ctx context.Context, user model.User, purpose model.ProcessPurpose, limit int) ([]model.EmailMessage, error) {
	args := m.Called(ctx, user, purpose, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.EmailMessage), args.Error(1)
}

func (m *mockSource) MarkProcessed(ctx context.Context, user model.User, emailID string, purpose model.ProcessPurpose) error {
	args := m.Called(ctx, user, emailID, purpose)
	return args.Error(0)
}

// --- Notifier Mock ---

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendLeadFollowUp(ctx context.Context, user model.User, lead model.Lead) error {
	args := m.Called(ctx, user, lead)
	return args.Error(0)
}

func (m *mockNotifier) SendTaskDigest(ctx context.Context, user model.User, tasks []model.Task) error {
	args := m.Called(ctx, user, tasks)
	return args.Error(0)
}

func (m *mockNotifier) SendInvoiceReminder(ctx context.Context, user model.User, invoice model.Invoice, offsetDays int) error {
	args := m.Called(ctx, user, invoice, offsetDays)
	return args.Error(0)
}

// modelReply wraps a raw model reply text in a MessageResponse.
func modelReply(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
		Usage:   anthropic.TokenUsage{InputTokens: 100, OutputTokens: 20},
	}
}
