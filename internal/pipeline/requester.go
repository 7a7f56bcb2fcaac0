package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/relaymind/autopilot/internal/config"
	"github.com/relaymind/autopilot/internal/model"
	"github.com/relaymind/autopilot/internal/resilience"
	"github.com/relaymind/autopilot/pkg/anthropic"
)

// Requester builds kind-specific prompts, drives the model call, and applies
// the confidence gate to the parsed reply.
type Requester struct {
	client           anthropic.Client
	aiCfg            config.AnthropicConfig
	meetingThreshold float64
	retry            resilience.RetryConfig
}

// NewRequester creates a Requester. Transient provider errors are retried
// with backoff; anything else propagates to the caller.
func NewRequester(client anthropic.Client, aiCfg config.AnthropicConfig, pipeCfg config.PipelineConfig) *Requester {
	threshold := pipeCfg.MeetingConfidenceThreshold
	if threshold <= 0 {
		threshold = 0.6
	}
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("anthropic", "create_message")
	return &Requester{
		client:           client,
		aiCfg:            aiCfg,
		meetingThreshold: threshold,
		retry:            retry,
	}
}

// Extract runs one extraction attempt. It returns (nil, nil) when the reply
// parsed but the candidate is gated out — low meeting confidence, a negative
// classification, or missing required fields. That is a silent drop, not an
// error. An unparsable reply returns ExtractionError.
func (r *Requester) Extract(ctx context.Context, kind model.ExtractionKind, contextText string) (*model.ExtractionResult, error) {
	prompt := buildPrompt(kind, contextText)

	resp, err := resilience.DoVal(ctx, r.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return r.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     r.aiCfg.Model,
			MaxTokens: r.aiCfg.MaxTokens,
			System:    systemPrompt,
			Messages: []anthropic.Message{
				{Role: "user", Content: prompt},
			},
		})
	})
	if err != nil {
		return nil, eris.Wrapf(err, "requester: %s model call", kind)
	}
	resp.Usage.LogCost(r.aiCfg.Model, string(kind))

	fields, err := ExtractJSON(resp.Text())
	if err != nil {
		return nil, &ExtractionError{Kind: kind, Err: err}
	}

	result := &model.ExtractionResult{Kind: kind, Fields: fields}
	if conf, ok := result.FloatField("confidence"); ok {
		result.Confidence = conf
	}

	if !r.accept(result) {
		zap.L().Debug("requester: candidate gated out",
			zap.String("kind", string(kind)),
			zap.Float64("confidence", result.Confidence),
		)
		return nil, nil
	}
	return result, nil
}

// accept applies the per-kind gates: the meeting confidence threshold, the
// model's own classification flag, and minimally required fields.
func (r *Requester) accept(result *model.ExtractionResult) bool {
	switch result.Kind {
	case model.KindMeeting:
		return result.BoolField("is_meeting_request") && result.Confidence >= r.meetingThreshold
	case model.KindLead:
		return result.BoolField("is_lead") &&
			result.StringField("name") != "" &&
			result.StringField("email") != ""
	case model.KindInvoice:
		if !result.BoolField("is_billable") {
			return false
		}
		if result.StringField("client_name") != "" {
			return true
		}
		_, hasAmount := result.FloatField("amount")
		return hasAmount
	case model.KindTask:
		return result.BoolField("has_task") && result.StringField("title") != ""
	default:
		return false
	}
}
