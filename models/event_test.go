package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// applyJoin and applyLeave mimic what the guarded update does to the
// document when the filter matches: both fields change together.
func applyJoin(e *Event, userID primitive.ObjectID) error {
	if err := e.JoinGuard(userID); err != nil {
		return err
	}
	e.Participants = append(e.Participants, userID)
	e.CurrentParticipants++
	return nil
}

func applyLeave(e *Event, userID primitive.ObjectID) error {
	if err := e.LeaveGuard(userID); err != nil {
		return err
	}
	for i, p := range e.Participants {
		if p == userID {
			e.Participants = append(e.Participants[:i], e.Participants[i+1:]...)
			break
		}
	}
	e.CurrentParticipants--
	return nil
}

func TestCounterMatchesParticipantsAfterAnySequence(t *testing.T) {
	event := &Event{MaxParticipants: 3}
	users := []primitive.ObjectID{
		primitive.NewObjectID(),
		primitive.NewObjectID(),
		primitive.NewObjectID(),
		primitive.NewObjectID(),
	}

	_ = applyJoin(event, users[0])
	_ = applyJoin(event, users[1])
	_ = applyJoin(event, users[1]) // duplicate, rejected
	_ = applyLeave(event, users[0])
	_ = applyJoin(event, users[2])
	_ = applyJoin(event, users[3])
	_ = applyLeave(event, users[2])
	_ = applyLeave(event, users[2]) // not joined, rejected

	assert.Equal(t, len(event.Participants), event.CurrentParticipants)
}

func TestJoinGuard_AlreadyJoined(t *testing.T) {
	user := primitive.NewObjectID()
	event := &Event{}

	require.NoError(t, applyJoin(event, user))
	err := applyJoin(event, user)

	assert.ErrorIs(t, err, ErrAlreadyJoined)
	assert.Equal(t, 1, event.CurrentParticipants)
	assert.Len(t, event.Participants, 1)
}

func TestJoinGuard_EventFull(t *testing.T) {
	event := &Event{MaxParticipants: 2}
	require.NoError(t, applyJoin(event, primitive.NewObjectID()))
	require.NoError(t, applyJoin(event, primitive.NewObjectID()))

	err := applyJoin(event, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrEventFull)
}

func TestJoinGuard_MemberOfFullEventGetsAlreadyJoined(t *testing.T) {
	user := primitive.NewObjectID()
	event := &Event{MaxParticipants: 1}
	require.NoError(t, applyJoin(event, user))

	assert.ErrorIs(t, event.JoinGuard(user), ErrAlreadyJoined)
}

func TestLeaveFreesExactlyOneSeat(t *testing.T) {
	event := &Event{MaxParticipants: 2}
	first := primitive.NewObjectID()
	require.NoError(t, applyJoin(event, first))
	require.NoError(t, applyJoin(event, primitive.NewObjectID()))
	require.ErrorIs(t, applyJoin(event, primitive.NewObjectID()), ErrEventFull)

	require.NoError(t, applyLeave(event, first))

	assert.NoError(t, applyJoin(event, primitive.NewObjectID()))
	assert.ErrorIs(t, applyJoin(event, primitive.NewObjectID()), ErrEventFull)
}

func TestUnboundedEventNeverFull(t *testing.T) {
	event := &Event{}
	for i := 0; i < 100; i++ {
		require.NoError(t, applyJoin(event, primitive.NewObjectID()))
	}
	assert.False(t, event.IsFull())
}

func TestLeaveGuard_NotJoined(t *testing.T) {
	event := &Event{}
	assert.ErrorIs(t, event.LeaveGuard(primitive.NewObjectID()), ErrNotJoined)
}

func TestJoinFilter_GuardsMembershipAndCapacity(t *testing.T) {
	eventID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	filter := JoinFilter(eventID, userID)

	assert.Equal(t, eventID, filter["_id"])
	assert.Equal(t, bson.M{"$ne": userID}, filter["participants"])

	or, ok := filter["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, or, 3)
	assert.Equal(t, bson.M{"max_participants": bson.M{"$exists": false}}, or[0])
	assert.Equal(t, bson.M{"max_participants": nil}, or[1])
	assert.Equal(t, bson.M{"$expr": bson.M{"$lt": bson.A{"$current_participants", "$max_participants"}}}, or[2])
}

func TestJoinUpdate_MutatesSetAndCounterTogether(t *testing.T) {
	userID := primitive.NewObjectID()
	now := time.Now()

	update := JoinUpdate(userID, now)

	assert.Equal(t, bson.M{"participants": userID}, update["$addToSet"])
	assert.Equal(t, bson.M{"current_participants": 1}, update["$inc"])
}

func TestLeaveUpdate_MutatesSetAndCounterTogether(t *testing.T) {
	userID := primitive.NewObjectID()
	now := time.Now()

	filter := LeaveFilter(primitive.NewObjectID(), userID)
	update := LeaveUpdate(userID, now)

	assert.Equal(t, userID, filter["participants"])
	assert.Equal(t, bson.M{"participants": userID}, update["$pull"])
	assert.Equal(t, bson.M{"current_participants": -1}, update["$inc"])
}

func TestValidCategory(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, ValidCategory(c), c)
	}
	assert.False(t, ValidCategory("all"))
	assert.False(t, ValidCategory("cooking"))
	assert.False(t, ValidCategory(""))
}

func TestValidStatus(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, ValidStatus(s), s)
	}
	assert.False(t, ValidStatus("archived"))
}
