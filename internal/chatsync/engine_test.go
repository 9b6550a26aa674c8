package chatsync_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"mentorlink/backend/internal/chatsync"
	"mentorlink/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T) (*chatsync.Engine, *fakeAPI, *fakeTransport) {
	t.Helper()
	api := newFakeAPI()
	transport := newFakeTransport()
	engine := chatsync.NewEngine(api, transport, zap.NewNop())
	require.NoError(t, engine.Start())
	t.Cleanup(engine.Stop)
	return engine, api, transport
}

func waitForLog(t *testing.T, engine *chatsync.Engine, want []string) {
	t.Helper()
	require.Eventually(t, func() bool {
		current := engine.Log()
		if len(current) != len(want) {
			return false
		}
		for i, m := range current {
			if m.ID != want[i] {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond, "log never reached %v", want)
}

func TestEngine_SelectJoinsRoomAndLoadsSnapshot(t *testing.T) {
	engine, api, transport := newTestEngine(t)
	api.setSnapshot("c1", []models.Message{msg("1", "c1", 10), msg("2", "c1", 20)})

	engine.SelectConversation("c1")

	waitForLog(t, engine, []string{"1", "2"})
	assert.Equal(t, []string{"join:c1"}, transport.opsSnapshot())

	active, joined := engine.ActiveConversation()
	assert.True(t, joined)
	assert.Equal(t, "c1", active)
}

func TestEngine_LeaveAlwaysPrecedesNextJoin(t *testing.T) {
	engine, _, transport := newTestEngine(t)

	engine.SelectConversation("c1")
	engine.SelectConversation("c2")
	engine.SelectConversation("c3")

	require.Eventually(t, func() bool {
		return len(transport.opsSnapshot()) == 5
	}, 2*time.Second, 10*time.Millisecond)

	ops := transport.opsSnapshot()
	assert.Equal(t, []string{"join:c1", "leave:c1", "join:c2", "leave:c2", "join:c3"}, ops)

	// At no point are two joins outstanding without a leave in between.
	outstanding := 0
	for _, op := range ops {
		if strings.HasPrefix(op, "join:") {
			outstanding++
		} else {
			outstanding--
		}
		assert.LessOrEqual(t, outstanding, 1)
	}
}

func TestEngine_ReselectingActiveRoomIsNoOp(t *testing.T) {
	engine, api, transport := newTestEngine(t)
	api.setSnapshot("c1", []models.Message{msg("1", "c1", 10)})

	engine.SelectConversation("c1")
	waitForLog(t, engine, []string{"1"})
	engine.SelectConversation("c1")

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{"join:c1"}, transport.opsSnapshot())
	assert.Equal(t, 1, api.fetches("c1"))
}

func TestEngine_PushBeforeSnapshotIsNotLost(t *testing.T) {
	// Conversation c1 has messages {1,t10} and {2,t20} on the server. A
	// push for {3,t15} arrives before the snapshot resolves; the final log
	// must hold all three in timestamp order.
	engine, api, transport := newTestEngine(t)
	api.setSnapshot("c1", []models.Message{msg("1", "c1", 10), msg("2", "c1", 20)})
	release := api.gate("c1")

	engine.SelectConversation("c1")
	require.Eventually(t, func() bool {
		return len(transport.opsSnapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	transport.push(msg("3", "c1", 15))
	waitForLog(t, engine, []string{"3"})

	release()
	waitForLog(t, engine, []string{"1", "3", "2"})
}

func TestEngine_StaleFetchDoesNotOverwriteNewRoom(t *testing.T) {
	engine, api, _ := newTestEngine(t)
	api.setSnapshot("a", []models.Message{msg("a1", "a", 10)})
	api.setSnapshot("b", []models.Message{msg("b1", "b", 10)})
	releaseA := api.gate("a")

	engine.SelectConversation("a")
	time.Sleep(50 * time.Millisecond)
	engine.SelectConversation("b")
	waitForLog(t, engine, []string{"b1"})

	// The fetch for a resolves only now, long after the switch.
	releaseA()
	time.Sleep(100 * time.Millisecond)

	waitForLog(t, engine, []string{"b1"})
}

func TestEngine_PushForInactiveRoomIsDiscarded(t *testing.T) {
	engine, api, transport := newTestEngine(t)
	api.setSnapshot("c1", nil)

	engine.SelectConversation("c1")
	transport.push(msg("x", "other", 10))

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, engine.Log())
}

func TestEngine_DuplicatePushAppearsOnce(t *testing.T) {
	engine, api, transport := newTestEngine(t)
	api.setSnapshot("c1", nil)

	engine.SelectConversation("c1")
	require.Eventually(t, func() bool {
		active, ok := engine.ActiveConversation()
		return ok && active == "c1"
	}, 2*time.Second, 10*time.Millisecond)

	transport.push(msg("1", "c1", 10))
	transport.push(msg("1", "c1", 10))

	waitForLog(t, engine, []string{"1"})
}

func TestEngine_FetchErrorKeepsLogAndNotifies(t *testing.T) {
	engine, api, transport := newTestEngine(t)
	api.fetchErrs["c1"] = assert.AnError

	engine.SelectConversation("c1")
	require.Eventually(t, func() bool {
		return len(transport.opsSnapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	transport.push(msg("1", "c1", 10))
	waitForLog(t, engine, []string{"1"})

	select {
	case err := <-engine.Notifications():
		var fetchErr *chatsync.FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, "c1", fetchErr.ConversationID)
	case <-time.After(2 * time.Second):
		t.Fatal("no FetchError notification")
	}

	// The pushed entry survives the failed snapshot.
	waitForLog(t, engine, []string{"1"})
}

func TestEngine_SendDoesNotTouchLog(t *testing.T) {
	// The send pipeline relies on the push echo; when the push channel
	// drops the echo, the sender does not see its own message. This pins
	// the current behavior rather than endorsing it.
	engine, api, _ := newTestEngine(t)
	api.setSnapshot("c1", nil)

	engine.SelectConversation("c1")

	require.NoError(t, engine.SendMessage(context.Background(), "c1", "hello"))
	assert.Equal(t, []string{"hello"}, api.sent)

	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, engine.Log(), "sent message must only appear via the push channel")
}

func TestEngine_SendValidation(t *testing.T) {
	engine, api, _ := newTestEngine(t)

	err := engine.SendMessage(context.Background(), "c1", "   \t ")
	var validationErr *chatsync.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, api.sent)
}

func TestEngine_SendDeliveryError(t *testing.T) {
	engine, api, _ := newTestEngine(t)
	api.sendErr = assert.AnError

	err := engine.SendMessage(context.Background(), "c1", "hello")
	var deliveryErr *chatsync.DeliveryError
	require.ErrorAs(t, err, &deliveryErr)
}

func TestEngine_ReconnectRejoinsAndRefetches(t *testing.T) {
	engine, api, transport := newTestEngine(t)
	api.setSnapshot("c1", []models.Message{msg("1", "c1", 10)})

	engine.SelectConversation("c1")
	waitForLog(t, engine, []string{"1"})

	api.setSnapshot("c1", []models.Message{msg("1", "c1", 10), msg("2", "c1", 20)})
	transport.reportStatus(chatsync.StatusDisconnected)
	transport.reportStatus(chatsync.StatusReconnected)

	// The active room is re-joined and the snapshot re-fetched.
	require.Eventually(t, func() bool {
		ops := transport.opsSnapshot()
		return len(ops) == 2 && ops[1] == "join:c1"
	}, 2*time.Second, 10*time.Millisecond)
	waitForLog(t, engine, []string{"1", "2"})

	select {
	case err := <-engine.Notifications():
		var chanErr *chatsync.ChannelError
		assert.ErrorAs(t, err, &chanErr)
	case <-time.After(2 * time.Second):
		t.Fatal("no ChannelError notification for the disconnect")
	}
}
