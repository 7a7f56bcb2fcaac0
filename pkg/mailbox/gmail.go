package mailbox

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/relaymind/autopilot/internal/model"
)

const gmailUser = "me"

// GmailSource implements Source against the Gmail API. Processed flags are
// per-purpose Gmail labels under LabelPrefix, so state lives with the
// mailbox and survives our own store being reset.
type GmailSource struct {
	credentialsFile string
	tokenDir        string
	labelPrefix     string

	mu       sync.Mutex
	services map[string]*gmail.Service // keyed by user ID
	labelIDs map[string]string         // "userID/labelName" → label ID
}

// NewGmailSource creates a Gmail-backed source. Tokens are expected at
// <tokenDir>/<userID>.json; a missing token means the user never connected
// their account.
func NewGmailSource(credentialsFile, tokenDir, labelPrefix string) *GmailSource {
	if labelPrefix == "" {
		labelPrefix = "autopilot"
	}
	return &GmailSource{
		credentialsFile: credentialsFile,
		tokenDir:        tokenDir,
		labelPrefix:     labelPrefix,
		services:        make(map[string]*gmail.Service),
		labelIDs:        make(map[string]string),
	}
}

func (s *GmailSource) purposeLabel(purpose model.ProcessPurpose) string {
	return s.labelPrefix + "/" + string(purpose) + "-processed"
}

// FetchUnprocessed lists inbox messages without the purpose's processed
// label and hydrates each to a full message, oldest first.
func (s *GmailSource) FetchUnprocessed(ctx context.Context, user model.User, purpose model.ProcessPurpose, limit int) ([]model.EmailMessage, error) {
	srv, err := s.service(ctx, user)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("in:inbox -in:draft -label:%s", s.purposeLabel(purpose))
	list, err := srv.Users.Messages.List(gmailUser).
		MaxResults(int64(limit)).
		Q(query).
		Context(ctx).
		Do()
	if err != nil {
		return nil, eris.Wrapf(err, "mailbox: list messages for %s", user.ID)
	}

	emails := make([]model.EmailMessage, 0, len(list.Messages))
	// The list endpoint returns newest first; walk backwards so the pipeline
	// sees messages in arrival order.
	for i := len(list.Messages) - 1; i >= 0; i-- {
		ref := list.Messages[i]
		full, getErr := srv.Users.Messages.Get(gmailUser, ref.Id).Format("full").Context(ctx).Do()
		if getErr != nil {
			zap.L().Warn("mailbox: failed to hydrate message",
				zap.String("user", user.ID),
				zap.String("message", ref.Id),
				zap.Error(getErr),
			)
			continue
		}
		emails = append(emails, parseMessage(full))
	}
	return emails, nil
}

// MarkProcessed applies the purpose's processed label, creating it on first
// use.
func (s *GmailSource) MarkProcessed(ctx context.Context, user model.User, emailID string, purpose model.ProcessPurpose) error {
	srv, err := s.service(ctx, user)
	if err != nil {
		return err
	}

	labelID, err := s.ensureLabel(ctx, srv, user.ID, s.purposeLabel(purpose))
	if err != nil {
		return err
	}

	_, err = srv.Users.Messages.Modify(gmailUser, emailID, &gmail.ModifyMessageRequest{
		AddLabelIds: []string{labelID},
	}).Context(ctx).Do()
	if err != nil {
		return eris.Wrapf(err, "mailbox: mark %s processed for %s", emailID, purpose)
	}
	return nil
}

// service returns (and caches) a per-user Gmail service. A missing token
// file is reported as NotConnectedError so callers can degrade instead of
// aborting.
func (s *GmailSource) service(ctx context.Context, user model.User) (*gmail.Service, error) {
	s.mu.Lock()
	if srv, ok := s.services[user.ID]; ok {
		s.mu.Unlock()
		return srv, nil
	}
	s.mu.Unlock()

	creds, err := os.ReadFile(s.credentialsFile)
	if err != nil {
		return nil, eris.Wrap(err, "mailbox: read client credentials")
	}
	oauthCfg, err := google.ConfigFromJSON(creds, gmail.GmailModifyScope)
	if err != nil {
		return nil, eris.Wrap(err, "mailbox: parse client credentials")
	}

	tok, err := tokenFromFile(filepath.Join(s.tokenDir, user.ID+".json"))
	if err != nil {
		return nil, &NotConnectedError{UserID: user.ID}
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, tok)))
	if err != nil {
		return nil, eris.Wrapf(err, "mailbox: build gmail service for %s", user.ID)
	}

	s.mu.Lock()
	s.services[user.ID] = srv
	s.mu.Unlock()
	return srv, nil
}

func (s *GmailSource) ensureLabel(ctx context.Context, srv *gmail.Service, userID, name string) (string, error) {
	cacheKey := userID + "/" + name

	s.mu.Lock()
	if id, ok := s.labelIDs[cacheKey]; ok {
		s.mu.Unlock()
		return id, nil
	}
	s.mu.Unlock()

	labels, err := srv.Users.Labels.List(gmailUser).Context(ctx).Do()
	if err != nil {
		return "", eris.Wrap(err, "mailbox: list labels")
	}
	for _, l := range labels.Labels {
		if l.Name == name {
			s.mu.Lock()
			s.labelIDs[cacheKey] = l.Id
			s.mu.Unlock()
			return l.Id, nil
		}
	}

	created, err := srv.Users.Labels.Create(gmailUser, &gmail.Label{
		Name:                  name,
		LabelListVisibility:   "labelHide",
		MessageListVisibility: "hide",
	}).Context(ctx).Do()
	if err != nil {
		return "", eris.Wrapf(err, "mailbox: create label %s", name)
	}

	s.mu.Lock()
	s.labelIDs[cacheKey] = created.Id
	s.mu.Unlock()
	return created.Id, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// parseMessage maps a full Gmail message onto our EmailMessage shape.
func parseMessage(msg *gmail.Message) model.EmailMessage {
	email := model.EmailMessage{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Snippet:  msg.Snippet,
	}
	if msg.Payload == nil {
		return email
	}
	for _, header := range msg.Payload.Headers {
		switch header.Name {
		case "Subject":
			email.Subject = header.Value
		case "From":
			email.From = header.Value
		case "To":
			email.To = header.Value
		case "Date":
			email.Date = parseDateHeader(header.Value, msg.InternalDate)
		}
	}
	if email.Date.IsZero() && msg.InternalDate > 0 {
		email.Date = time.UnixMilli(msg.InternalDate)
	}
	email.Body = plainTextBody(msg.Payload)
	return email
}

// parseDateHeader tries the common RFC formats seen in the wild, falling
// back to Gmail's internal timestamp.
func parseDateHeader(value string, internalDate int64) time.Time {
	for _, layout := range []string{
		time.RFC1123Z,
		"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"2 Jan 2006 15:04:05 -0700",
		time.RFC1123,
	} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if internalDate > 0 {
		return time.UnixMilli(internalDate)
	}
	return time.Time{}
}

// plainTextBody walks the MIME tree for the first decodable text/plain part.
func plainTextBody(payload *gmail.MessagePart) string {
	if payload.MimeType == "text/plain" && payload.Body != nil && payload.Body.Data != "" {
		if data, err := base64.URLEncoding.DecodeString(payload.Body.Data); err == nil {
			return string(data)
		}
	}
	for _, part := range payload.Parts {
		mime := strings.ToLower(part.MimeType)
		if strings.HasPrefix(mime, "text/") || strings.HasPrefix(mime, "multipart/") {
			if body := plainTextBody(part); body != "" {
				return body
			}
		}
	}
	return ""
}
