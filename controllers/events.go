package controllers

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/deepthiduddupudi31/community-serve/config"
	"github.com/deepthiduddupudi31/community-serve/models"
)

// LocationInput is the venue part of event creation.
type LocationInput struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// CreateEventInput is the request body for creating an event.
type CreateEventInput struct {
	Title           string         `json:"title" binding:"required,max=200"`
	Description     string         `json:"description" binding:"required,max=2000"`
	Category        string         `json:"category" binding:"required"`
	Date            time.Time      `json:"date" binding:"required"`
	Time            string         `json:"time" binding:"required"`
	Location        *LocationInput `json:"location"`
	MaxParticipants int            `json:"maxParticipants" binding:"omitempty,min=1"`
	Requirements    []string       `json:"requirements"`
	Tags            []string       `json:"tags"`
	IsVirtual       bool           `json:"isVirtual"`
	VirtualLink     string         `json:"virtualLink"`
}

// UpdateEventInput allows partial updates by the organizer.
type UpdateEventInput struct {
	Title           *string        `json:"title" binding:"omitempty,max=200"`
	Description     *string        `json:"description" binding:"omitempty,max=2000"`
	Category        *string        `json:"category"`
	Date            *time.Time     `json:"date"`
	Time            *string        `json:"time"`
	Location        *LocationInput `json:"location"`
	MaxParticipants *int           `json:"maxParticipants" binding:"omitempty,min=1"`
	Requirements    *[]string      `json:"requirements"`
	Tags            *[]string      `json:"tags"`
	Status          *string        `json:"status"`
	VirtualLink     *string        `json:"virtualLink"`
}

// EventView is an event enriched with user summaries. The summaries
// live under their own keys so the event's raw organizer and
// participant ids still serialize on every path.
type EventView struct {
	models.Event
	OrganizerInfo      *models.UserSummary  `json:"organizerInfo,omitempty"`
	ParticipantDetails []models.UserSummary `json:"participantDetails,omitempty"`
}

// CreateEvent creates a new event organized by the caller.
func CreateEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input CreateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if !models.ValidCategory(input.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid category"})
		return
	}

	if input.IsVirtual {
		if input.VirtualLink == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide virtual meeting link for virtual events"})
			return
		}
	} else {
		if input.Location == nil || input.Location.Address == "" || input.Location.City == "" || input.Location.State == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide complete location details for in-person events"})
			return
		}
	}

	now := time.Now().UTC()
	event := models.Event{
		ID:              primitive.NewObjectID(),
		Title:           strings.TrimSpace(input.Title),
		Description:     input.Description,
		Category:        input.Category,
		Date:            input.Date,
		Time:            input.Time,
		Organizer:       userID,
		MaxParticipants: input.MaxParticipants,
		Participants:    []primitive.ObjectID{},
		Requirements:    normalizeList(input.Requirements, false),
		Tags:            normalizeList(input.Tags, true),
		Status:          models.StatusPublished,
		IsVirtual:       input.IsVirtual,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if input.IsVirtual {
		event.VirtualLink = input.VirtualLink
	} else {
		event.Location = models.Location(*input.Location)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if _, err := config.Events().InsertOne(ctx, event); err != nil {
		serverError(c, "Server error during event creation", err)
		return
	}

	view, err := attachOrganizers(ctx, []models.Event{event})
	if err != nil {
		serverError(c, "Server error during event creation", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Event created successfully",
		"event":   view[0],
	})
}

// ListEvents returns a page of published events filtered by category
// and free-text search, sorted by ascending date.
func ListEvents(c *gin.Context) {
	category := c.Query("category")
	if category != "" && category != "all" && !models.ValidCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid category"})
		return
	}

	filter := buildListFilter(category, c.Query("search"))
	page, limit := parsePagination(c.Query("page"), c.Query("limit"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	findOpts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	events, err := findEvents(ctx, filter, findOpts)
	if err != nil {
		serverError(c, "Server error while fetching events", err)
		return
	}

	total, err := config.Events().CountDocuments(ctx, filter)
	if err != nil {
		serverError(c, "Server error while fetching events", err)
		return
	}

	views, err := attachOrganizers(ctx, events)
	if err != nil {
		serverError(c, "Server error while fetching events", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": views,
		"pagination": gin.H{
			"current": page,
			"pages":   pageCount(total, limit),
			"total":   total,
		},
	})
}

// GetEvent fetches a single event with organizer and participant info.
func GetEvent(c *gin.Context) {
	eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var event models.Event
	err = config.Events().FindOne(ctx, bson.M{"_id": eventID}).Decode(&event)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
		return
	}
	if err != nil {
		serverError(c, "Server error while fetching event", err)
		return
	}

	views, err := attachOrganizers(ctx, []models.Event{event})
	if err != nil {
		serverError(c, "Server error while fetching event", err)
		return
	}
	view := views[0]

	if len(event.Participants) > 0 {
		summaries, err := fetchUserSummaries(ctx, event.Participants)
		if err != nil {
			serverError(c, "Server error while fetching event", err)
			return
		}
		for _, p := range event.Participants {
			if s, ok := summaries[p]; ok {
				view.ParticipantDetails = append(view.ParticipantDetails, s)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"event": view})
}

// JoinEvent adds the caller to the participants set. The membership
// and capacity checks and the append/increment pair run as one
// conditional update, so concurrent joins cannot oversubscribe the
// event or desync the counter.
func JoinEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	res, err := config.Events().UpdateOne(ctx, models.JoinFilter(eventID, userID), models.JoinUpdate(userID, now))
	if err != nil {
		serverError(c, "Server error while joining event", err)
		return
	}

	if res.ModifiedCount == 0 {
		// the guarded update did not apply; read back to say why
		var event models.Event
		err := config.Events().FindOne(ctx, bson.M{"_id": eventID}).Decode(&event)
		if err == mongo.ErrNoDocuments {
			status, msg := joinDenial(nil, userID)
			c.JSON(status, gin.H{"message": msg})
			return
		}
		if err != nil {
			serverError(c, "Server error while joining event", err)
			return
		}
		status, msg := joinDenial(&event, userID)
		c.JSON(status, gin.H{"message": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully joined the event"})
}

// LeaveEvent removes the caller from the participants set.
func LeaveEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	res, err := config.Events().UpdateOne(ctx, models.LeaveFilter(eventID, userID), models.LeaveUpdate(userID, now))
	if err != nil {
		serverError(c, "Server error while leaving event", err)
		return
	}

	if res.ModifiedCount == 0 {
		var event models.Event
		err := config.Events().FindOne(ctx, bson.M{"_id": eventID}).Decode(&event)
		if err != nil && err != mongo.ErrNoDocuments {
			serverError(c, "Server error while leaving event", err)
			return
		}
		found := &event
		if err == mongo.ErrNoDocuments {
			found = nil
		}
		status, msg := leaveDenial(found, userID)
		c.JSON(status, gin.H{"message": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully left the event"})
}

// UpdateEvent applies a partial update; only the organizer may modify
// an event, and the organizer reference itself is immutable.
func UpdateEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event ID"})
		return
	}

	var input UpdateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if input.Category != nil && !models.ValidCategory(*input.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid category"})
		return
	}
	if input.Status != nil && !models.ValidStatus(*input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var existing models.Event
	err = config.Events().FindOne(ctx, bson.M{"_id": eventID}).Decode(&existing)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
		return
	}
	if err != nil {
		serverError(c, "Server error while updating event", err)
		return
	}
	if existing.Organizer != userID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Only the organizer can modify this event"})
		return
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if input.Title != nil {
		set["title"] = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.Category != nil {
		set["category"] = *input.Category
	}
	if input.Date != nil {
		set["date"] = *input.Date
	}
	if input.Time != nil {
		set["time"] = *input.Time
	}
	if input.Location != nil {
		set["location"] = models.Location(*input.Location)
	}
	if input.MaxParticipants != nil {
		set["max_participants"] = *input.MaxParticipants
	}
	if input.Requirements != nil {
		set["requirements"] = normalizeList(*input.Requirements, false)
	}
	if input.Tags != nil {
		set["tags"] = normalizeList(*input.Tags, true)
	}
	if input.Status != nil {
		set["status"] = *input.Status
	}
	if input.VirtualLink != nil {
		set["virtual_link"] = *input.VirtualLink
	}

	if _, err := config.Events().UpdateByID(ctx, eventID, bson.M{"$set": set}); err != nil {
		serverError(c, "Server error while updating event", err)
		return
	}

	var updated models.Event
	if err := config.Events().FindOne(ctx, bson.M{"_id": eventID}).Decode(&updated); err != nil {
		serverError(c, "Server error while updating event", err)
		return
	}
	views, err := attachOrganizers(ctx, []models.Event{updated})
	if err != nil {
		serverError(c, "Server error while updating event", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event updated successfully",
		"event":   views[0],
	})
}

// DeleteEvent removes an event; organizer only.
func DeleteEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var existing models.Event
	err = config.Events().FindOne(ctx, bson.M{"_id": eventID}).Decode(&existing)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
		return
	}
	if err != nil {
		serverError(c, "Server error while deleting event", err)
		return
	}
	if existing.Organizer != userID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Only the organizer can delete this event"})
		return
	}

	if _, err := config.Events().DeleteOne(ctx, bson.M{"_id": eventID}); err != nil {
		serverError(c, "Server error while deleting event", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}

// OrganizedEvents lists the caller's own events, newest first.
func OrganizedEvents(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	events, err := findEvents(ctx, bson.M{"organizer": userID}, opts)
	if err != nil {
		serverError(c, "Server error while fetching user events", err)
		return
	}

	views, err := attachOrganizers(ctx, events)
	if err != nil {
		serverError(c, "Server error while fetching user events", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": views})
}

// JoinedEvents lists events the caller participates in, soonest first.
func JoinedEvents(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	events, err := findEvents(ctx, bson.M{"participants": userID}, opts)
	if err != nil {
		serverError(c, "Server error while fetching joined events", err)
		return
	}

	views, err := attachOrganizers(ctx, events)
	if err != nil {
		serverError(c, "Server error while fetching joined events", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": views})
}

// joinDenial explains a guarded join update that matched nothing. A
// nil event means the document does not exist.
func joinDenial(event *models.Event, userID primitive.ObjectID) (int, string) {
	if event == nil {
		return http.StatusNotFound, "Event not found"
	}
	if err := event.JoinGuard(userID); err != nil {
		return http.StatusBadRequest, capitalize(err.Error())
	}
	// a concurrent leave freed a seat between update and read
	return http.StatusBadRequest, "Event changed, please retry"
}

// leaveDenial explains a guarded leave update that matched nothing.
func leaveDenial(event *models.Event, userID primitive.ObjectID) (int, string) {
	if event == nil {
		return http.StatusNotFound, "Event not found"
	}
	return http.StatusBadRequest, capitalize(models.ErrNotJoined.Error())
}

// buildListFilter composes the published-only listing filter with the
// optional category and case-insensitive search terms.
func buildListFilter(category, search string) bson.M {
	filter := bson.M{"status": models.StatusPublished}

	if category != "" && category != "all" {
		filter["category"] = category
	}

	if search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = []bson.M{
			{"title": pattern},
			{"description": pattern},
			{"tags": pattern},
		}
	}

	return filter
}

// parsePagination coerces page and limit to positive integers with
// defaults of 1 and 10.
func parsePagination(pageStr, limitStr string) (page, limit int64) {
	page, limit = 1, 10
	if n, err := strconv.ParseInt(pageStr, 10, 64); err == nil && n > 0 {
		page = n
	}
	if n, err := strconv.ParseInt(limitStr, 10, 64); err == nil && n > 0 {
		limit = n
	}
	return page, limit
}

// pageCount computes ceil(total/limit).
func pageCount(total, limit int64) int64 {
	if total == 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func findEvents(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Event, error) {
	cursor, err := config.Events().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	events := []models.Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// attachOrganizers resolves organizer ids to user summaries with a
// single $in query.
func attachOrganizers(ctx context.Context, events []models.Event) ([]EventView, error) {
	ids := make([]primitive.ObjectID, 0, len(events))
	seen := map[primitive.ObjectID]bool{}
	for _, e := range events {
		if !seen[e.Organizer] {
			seen[e.Organizer] = true
			ids = append(ids, e.Organizer)
		}
	}

	summaries := map[primitive.ObjectID]models.UserSummary{}
	if len(ids) > 0 {
		var err error
		summaries, err = fetchUserSummaries(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	views := make([]EventView, 0, len(events))
	for _, e := range events {
		view := EventView{Event: e}
		if s, ok := summaries[e.Organizer]; ok {
			view.OrganizerInfo = &s
		}
		views = append(views, view)
	}
	return views, nil
}

func fetchUserSummaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	cursor, err := config.Users().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	summaries := map[primitive.ObjectID]models.UserSummary{}
	for cursor.Next(ctx) {
		var s models.UserSummary
		if err := cursor.Decode(&s); err != nil {
			return nil, err
		}
		summaries[s.ID] = s
	}
	return summaries, cursor.Err()
}

func normalizeList(in []string, lower bool) []string {
	out := []string{}
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if lower {
			s = strings.ToLower(s)
		}
		out = append(out, s)
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
