package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Domain errors surfaced by the participation rules. Controllers map
// these to HTTP statuses at the boundary.
var (
	ErrEventNotFound  = errors.New("event not found")
	ErrAlreadyJoined  = errors.New("already registered for this event")
	ErrNotJoined      = errors.New("not registered for this event")
	ErrEventFull      = errors.New("event is full")
	ErrInvalidEventID = errors.New("invalid event id")
)

// Categories an event can belong to. "all" is accepted by the listing
// endpoint as a no-filter sentinel but is not a storable category.
var Categories = []string{
	"community-service",
	"environmental",
	"education",
	"healthcare",
	"social-welfare",
	"disaster-relief",
	"other",
}

// Event lifecycle states. Only published events appear in listings.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

var Statuses = []string{StatusDraft, StatusPublished, StatusCancelled, StatusCompleted}

// ValidCategory reports whether c is a storable event category.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a known lifecycle state.
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Location is the in-person venue of a non-virtual event.
type Location struct {
	Address string `bson:"address" json:"address"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	ZipCode string `bson:"zip_code" json:"zipCode"`
}

// Event is a volunteer event document. The organizer reference is set
// once at creation and never changes. CurrentParticipants mirrors
// len(Participants); both are always mutated in the same update.
type Event struct {
	ID                  primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title               string               `bson:"title" json:"title"`
	Description         string               `bson:"description" json:"description"`
	Category            string               `bson:"category" json:"category"`
	Date                time.Time            `bson:"date" json:"date"`
	Time                string               `bson:"time" json:"time"`
	Location            Location             `bson:"location" json:"location"`
	Organizer           primitive.ObjectID   `bson:"organizer" json:"organizer"`
	MaxParticipants     int                  `bson:"max_participants,omitempty" json:"maxParticipants,omitempty"`
	CurrentParticipants int                  `bson:"current_participants" json:"currentParticipants"`
	Participants        []primitive.ObjectID `bson:"participants" json:"participants"`
	Requirements        []string             `bson:"requirements" json:"requirements"`
	Tags                []string             `bson:"tags" json:"tags"`
	Status              string               `bson:"status" json:"status"`
	IsVirtual           bool                 `bson:"is_virtual" json:"isVirtual"`
	VirtualLink         string               `bson:"virtual_link,omitempty" json:"virtualLink,omitempty"`
	CreatedAt           time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt           time.Time            `bson:"updated_at" json:"updatedAt"`
}

// HasParticipant reports whether userID is in the participants set.
func (e *Event) HasParticipant(userID primitive.ObjectID) bool {
	for _, p := range e.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// IsFull reports whether the event has reached its capacity. Events
// without MaxParticipants are unbounded.
func (e *Event) IsFull() bool {
	return e.MaxParticipants > 0 && e.CurrentParticipants >= e.MaxParticipants
}

// JoinGuard classifies why userID cannot join, or returns nil.
// Membership is checked before capacity so a member of a full event
// gets ErrAlreadyJoined, not ErrEventFull.
func (e *Event) JoinGuard(userID primitive.ObjectID) error {
	if e.HasParticipant(userID) {
		return ErrAlreadyJoined
	}
	if e.IsFull() {
		return ErrEventFull
	}
	return nil
}

// LeaveGuard classifies why userID cannot leave, or returns nil.
func (e *Event) LeaveGuard(userID primitive.ObjectID) error {
	if !e.HasParticipant(userID) {
		return ErrNotJoined
	}
	return nil
}

// JoinFilter matches the event only while userID is absent from the
// participants set and a seat is free. Combined with JoinUpdate in a
// single UpdateOne this makes the capacity check and the
// append/increment pair one atomic document operation; two racing
// joins on the last seat cannot both match.
func JoinFilter(eventID, userID primitive.ObjectID) bson.M {
	return bson.M{
		"_id":          eventID,
		"participants": bson.M{"$ne": userID},
		"$or": []bson.M{
			{"max_participants": bson.M{"$exists": false}},
			{"max_participants": nil},
			{"$expr": bson.M{"$lt": bson.A{"$current_participants", "$max_participants"}}},
		},
	}
}

// JoinUpdate appends the user and bumps the counter together.
func JoinUpdate(userID primitive.ObjectID, now time.Time) bson.M {
	return bson.M{
		"$addToSet": bson.M{"participants": userID},
		"$inc":      bson.M{"current_participants": 1},
		"$set":      bson.M{"updated_at": now},
	}
}

// LeaveFilter matches the event only while userID is a participant.
func LeaveFilter(eventID, userID primitive.ObjectID) bson.M {
	return bson.M{
		"_id":          eventID,
		"participants": userID,
	}
}

// LeaveUpdate removes the user and drops the counter together.
func LeaveUpdate(userID primitive.ObjectID, now time.Time) bson.M {
	return bson.M{
		"$pull": bson.M{"participants": userID},
		"$inc":  bson.M{"current_participants": -1},
		"$set":  bson.M{"updated_at": now},
	}
}
