package chatsync_test

import (
	"context"
	"testing"

	"mentorlink/backend/internal/chatsync"
	"mentorlink/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectoryAPI struct {
	conversations []models.Conversation
	listErr       error
	created       *models.Conversation
	createErr     error
}

func (f *fakeDirectoryAPI) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.conversations, nil
}

func (f *fakeDirectoryAPI) CreateConversation(ctx context.Context, mentorID string) (*models.Conversation, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

func TestDirectory_RefreshReplacesList(t *testing.T) {
	api := &fakeDirectoryAPI{conversations: []models.Conversation{{ID: "c1"}, {ID: "c2"}}}
	dir := chatsync.NewDirectory(api)

	require.NoError(t, dir.Refresh(context.Background()))
	assert.Len(t, dir.Conversations(), 2)

	api.conversations = []models.Conversation{{ID: "c3"}}
	require.NoError(t, dir.Refresh(context.Background()))

	convs := dir.Conversations()
	require.Len(t, convs, 1)
	assert.Equal(t, "c3", convs[0].ID)
}

func TestDirectory_RefreshFailureKeepsLastFetch(t *testing.T) {
	api := &fakeDirectoryAPI{conversations: []models.Conversation{{ID: "c1"}}}
	dir := chatsync.NewDirectory(api)
	require.NoError(t, dir.Refresh(context.Background()))

	api.listErr = assert.AnError
	err := dir.Refresh(context.Background())

	var fetchErr *chatsync.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Len(t, dir.Conversations(), 1, "previous fetch stays visible")
}

func TestDirectory_OpenAddsNewConversation(t *testing.T) {
	api := &fakeDirectoryAPI{created: &models.Conversation{ID: "c-new"}}
	dir := chatsync.NewDirectory(api)

	conv, err := dir.Open(context.Background(), "mentor-1")
	require.NoError(t, err)
	assert.Equal(t, "c-new", conv.ID)

	convs := dir.Conversations()
	require.Len(t, convs, 1)
	assert.Equal(t, "c-new", convs[0].ID)

	// Opening the same conversation again must not duplicate it.
	_, err = dir.Open(context.Background(), "mentor-1")
	require.NoError(t, err)
	assert.Len(t, dir.Conversations(), 1)
}
