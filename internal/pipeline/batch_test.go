package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/relaymind/autopilot/internal/config"
	"github.com/relaymind/autopilot/internal/model"
	"github.com/relaymind/autopilot/internal/store"
)

func newTestBatch(t *testing.T, st store.Store, source *mockSource, client *mockAnthropicClient, cfg config.BatchConfig) *Batch {
	t.Helper()
	return NewBatch(st, newTestRunner(t, st, source, client, nil), cfg)
}

func addUser(t *testing.T, st store.Store, email, prefs string) model.User {
	t.Helper()
	user := &model.User{Email: email, Preferences: prefs}
	require.NoError(t, st.CreateUser(context.Background(), user))
	return *user
}

func TestBatch_OneUserFailingDoesNotStopOthers(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	userA := addUser(t, st, "a@me.com", "")
	userB := addUser(t, st, "b@me.com", "")

	source := &mockSource{}
	client := &mockAnthropicClient{}

	// User A's mailbox fails hard on the first allowed purpose.
	source.On("FetchUnprocessed", mock.Anything, userA, model.PurposeLeads, 25).
		Return(nil, assert.AnError).Once()
	// User B sails through.
	expectEmptyFetch(source, userB, model.PurposeLeads, model.PurposeInvoices)

	stats, err := newTestBatch(t, st, source, client, config.BatchConfig{}).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.UsersFailed)
	assert.Equal(t, 1, stats.UsersProcessed)
	assert.Zero(t, stats.UsersSkipped)
	assert.Equal(t, 1, stats.Errors)
	source.AssertExpectations(t)
}

func TestBatch_HeldLockSkipsUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	userA := addUser(t, st, "a@me.com", "")
	userB := addUser(t, st, "b@me.com", "")

	// Another process already holds A's lock.
	acquired, err := st.AcquireRunLock(ctx, userA.ID)
	require.NoError(t, err)
	require.True(t, acquired)

	source := &mockSource{}
	client := &mockAnthropicClient{}
	expectEmptyFetch(source, userB, model.PurposeLeads, model.PurposeInvoices)

	stats, err := newTestBatch(t, st, source, client, config.BatchConfig{}).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.UsersSkipped)
	assert.Equal(t, 1, stats.UsersProcessed)
	assert.Zero(t, stats.UsersFailed)
	// A was never touched.
	source.AssertNotCalled(t, "FetchUnprocessed", mock.Anything, userA, model.PurposeLeads, 25)
}

func TestBatch_LockReleasedAfterRun(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := addUser(t, st, "a@me.com", "")

	source := &mockSource{}
	client := &mockAnthropicClient{}
	expectEmptyFetch(source, user, model.PurposeLeads, model.PurposeInvoices)

	_, err := newTestBatch(t, st, source, client, config.BatchConfig{}).Run(ctx)
	require.NoError(t, err)

	acquired, err := st.AcquireRunLock(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, acquired, "lock must be released when the run finishes")
}

func TestBatch_UserLimitTruncates(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	addUser(t, st, "a@me.com", `{"pauseAI": true}`)
	addUser(t, st, "b@me.com", `{"pauseAI": true}`)
	addUser(t, st, "c@me.com", `{"pauseAI": true}`)

	source := &mockSource{}
	client := &mockAnthropicClient{}

	stats, err := newTestBatch(t, st, source, client, config.BatchConfig{UserLimit: 1}).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.UsersProcessed)
	source.AssertNotCalled(t, "FetchUnprocessed")
}

func TestBatch_StatsAggregated(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	userA := addUser(t, st, "a@me.com", "")
	userB := addUser(t, st, "b@me.com", "")

	source := &mockSource{}
	client := &mockAnthropicClient{}

	inquiry := func(id string) model.EmailMessage {
		return model.EmailMessage{
			ID: id, From: "dana@prospect.io", Subject: "Interested in your services",
			Body: "Hi, I'm interested in a quote for a project we're planning this fall.",
		}
	}
	for _, u := range []model.User{userA, userB} {
		source.On("FetchUnprocessed", mock.Anything, u, model.PurposeLeads, 25).
			Return([]model.EmailMessage{inquiry("m-" + u.ID)}, nil).Once()
		source.On("MarkProcessed", mock.Anything, u, "m-"+u.ID, model.PurposeLeads).Return(nil).Once()
		expectEmptyFetch(source, u, model.PurposeInvoices)
	}
	client.On("CreateMessage", mock.Anything, mock.AnythingOfType("anthropic.MessageRequest")).
		Return(modelReply(`{"is_lead": true, "confidence": 0.9, "name": "Dana Reyes", "email": "dana@prospect.io"}`), nil).Twice()

	stats, err := newTestBatch(t, st, source, client, config.BatchConfig{MaxConcurrentUsers: 2}).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.UsersProcessed)
	assert.Equal(t, 2, stats.EmailsProcessed)
	assert.Equal(t, 2, stats.Created)
	source.AssertExpectations(t)
	client.AssertExpectations(t)
}
