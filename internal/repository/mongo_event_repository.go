package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prohmpiriya/event-scheduler/internal/domain"
	"github.com/prohmpiriya/event-scheduler/pkg/telemetry"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// EventCollection is the MongoDB collection holding event documents
const EventCollection = "events"

// eventDoc is the persistence shape of an event
type eventDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Title         string             `bson:"title"`
	Description   string             `bson:"description"`
	Location      string             `bson:"location"`
	Venue         string             `bson:"venue"`
	EventSchedule time.Time          `bson:"event_schedule"`
	Participants  int                `bson:"participants"`
	ReminderJobID string             `bson:"reminder_job_id,omitempty"`
	CreatedAt     time.Time          `bson:"created_at"`
}

func (d *eventDoc) toDomain() *domain.Event {
	return &domain.Event{
		ID:            d.ID.Hex(),
		Title:         d.Title,
		Description:   d.Description,
		Location:      d.Location,
		Venue:         d.Venue,
		EventSchedule: d.EventSchedule,
		Participants:  d.Participants,
		ReminderJobID: d.ReminderJobID,
		CreatedAt:     d.CreatedAt,
	}
}

// MongoEventRepository implements EventRepository using MongoDB
type MongoEventRepository struct {
	collection *mongo.Collection
}

// NewMongoEventRepository creates a new MongoEventRepository
func NewMongoEventRepository(db *mongo.Database) *MongoEventRepository {
	return &MongoEventRepository{collection: db.Collection(EventCollection)}
}

// Create persists a new event and returns it with its assigned id
func (r *MongoEventRepository) Create(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.mongo.event.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("venue", event.Venue),
		attribute.String("title", event.Title),
	)

	doc := &eventDoc{
		Title:         event.Title,
		Description:   event.Description,
		Location:      event.Location,
		Venue:         event.Venue,
		EventSchedule: event.EventSchedule,
		Participants:  event.Participants,
		CreatedAt:     time.Now().UTC(),
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	doc.ID = result.InsertedID.(primitive.ObjectID)
	span.SetAttributes(attribute.String("event_id", doc.ID.Hex()))
	return doc.toDomain(), nil
}

// GetByID retrieves an event by id
func (r *MongoEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.mongo.event.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// An id the store cannot even parse identifies nothing
		span.SetStatus(codes.Error, "malformed id")
		return nil, domain.ErrEventNotFound
	}

	var doc eventDoc
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to find event: %w", err)
	}

	return doc.toDomain(), nil
}

// Find lists events matching the filter in the requested order
func (r *MongoEventRepository) Find(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.mongo.event.find")
	defer span.End()

	query := bson.M{}
	if filter.Venue != "" {
		query["venue"] = filter.Venue
	}
	if filter.Location != "" {
		query["location"] = filter.Location
	}

	opts := options.Find()
	switch filter.SortBy {
	case domain.SortByPopularity:
		opts.SetSort(bson.D{{Key: "participants", Value: -1}})
	case domain.SortByDate:
		opts.SetSort(bson.D{{Key: "event_schedule", Value: 1}})
	case domain.SortByCreationTime:
		opts.SetSort(bson.D{{Key: "created_at", Value: 1}})
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*domain.Event
	for cursor.Next(ctx) {
		var doc eventDoc
		if err := cursor.Decode(&doc); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to decode event: %w", err)
		}
		events = append(events, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("event cursor failed: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	return events, nil
}

// FindBySlot looks up an event occupying the given (venue, schedule) slot
func (r *MongoEventRepository) FindBySlot(ctx context.Context, venue string, schedule time.Time) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.mongo.event.find_by_slot")
	defer span.End()

	span.SetAttributes(attribute.String("venue", venue))

	var doc eventDoc
	err := r.collection.FindOne(ctx, bson.M{
		"venue":          venue,
		"event_schedule": schedule,
	}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to check slot: %w", err)
	}

	return doc.toDomain(), nil
}

// Update applies a partial update and returns the updated event
func (r *MongoEventRepository) Update(ctx context.Context, id string, patch *domain.EventPatch) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.mongo.event.update")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		span.SetStatus(codes.Error, "malformed id")
		return nil, domain.ErrEventNotFound
	}

	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Location != nil {
		set["location"] = *patch.Location
	}
	if patch.Venue != nil {
		set["venue"] = *patch.Venue
	}
	if patch.EventSchedule != nil {
		set["event_schedule"] = *patch.EventSchedule
	}
	if patch.Participants != nil {
		set["participants"] = *patch.Participants
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc eventDoc
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return doc.toDomain(), nil
}

// SetReminderJobID back-links the event to its reminder job
func (r *MongoEventRepository) SetReminderJobID(ctx context.Context, id, jobID string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.mongo.event.set_reminder_job")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", id),
		attribute.String("job_id", jobID),
	)

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		span.SetStatus(codes.Error, "malformed id")
		return domain.ErrEventNotFound
	}

	result, err := r.collection.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"reminder_job_id": jobID}})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to set reminder job id: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrEventNotFound
	}

	return nil
}

// Delete removes an event and returns the removed record
func (r *MongoEventRepository) Delete(ctx context.Context, id string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.mongo.event.delete")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		span.SetStatus(codes.Error, "malformed id")
		return nil, domain.ErrEventNotFound
	}

	var doc eventDoc
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to delete event: %w", err)
	}

	return doc.toDomain(), nil
}

// DeleteAll removes every event and returns the removed count
func (r *MongoEventRepository) DeleteAll(ctx context.Context) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.mongo.event.delete_all")
	defer span.End()

	result, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to delete events: %w", err)
	}

	span.SetAttributes(attribute.Int64("deleted", result.DeletedCount))
	return result.DeletedCount, nil
}

var _ EventRepository = (*MongoEventRepository)(nil)
