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
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ReminderJobCollection is the MongoDB collection holding reminder job records
const ReminderJobCollection = "reminder_jobs"

// reminderJobDoc is the persistence shape of a reminder job record
type reminderJobDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	EventID       string             `bson:"event_id"`
	JobID         string             `bson:"job_id"`
	Title         string             `bson:"title"`
	EventSchedule time.Time          `bson:"event_schedule"`
	ReminderTime  time.Time          `bson:"reminder_time"`
	CreatedAt     time.Time          `bson:"created_at"`
}

func (d *reminderJobDoc) toDomain() *domain.ReminderJob {
	return &domain.ReminderJob{
		ID:            d.ID.Hex(),
		EventID:       d.EventID,
		JobID:         d.JobID,
		Title:         d.Title,
		EventSchedule: d.EventSchedule,
		ReminderTime:  d.ReminderTime,
		CreatedAt:     d.CreatedAt,
	}
}

// MongoReminderJobRepository implements ReminderJobRepository using MongoDB
type MongoReminderJobRepository struct {
	collection *mongo.Collection
}

// NewMongoReminderJobRepository creates a new MongoReminderJobRepository
func NewMongoReminderJobRepository(db *mongo.Database) *MongoReminderJobRepository {
	return &MongoReminderJobRepository{collection: db.Collection(ReminderJobCollection)}
}

// Create persists a reminder job record
func (r *MongoReminderJobRepository) Create(ctx context.Context, job *domain.ReminderJob) (*domain.ReminderJob, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.mongo.reminder.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", job.EventID),
		attribute.String("job_id", job.JobID),
	)

	doc := &reminderJobDoc{
		EventID:       job.EventID,
		JobID:         job.JobID,
		Title:         job.Title,
		EventSchedule: job.EventSchedule,
		ReminderTime:  job.ReminderTime,
		CreatedAt:     time.Now().UTC(),
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to insert reminder job: %w", err)
	}

	doc.ID = result.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

// FindByEventID retrieves the reminder job record for an event
func (r *MongoReminderJobRepository) FindByEventID(ctx context.Context, eventID string) (*domain.ReminderJob, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.mongo.reminder.find_by_event")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	var doc reminderJobDoc
	if err := r.collection.FindOne(ctx, bson.M{"event_id": eventID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReminderNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to find reminder job: %w", err)
	}

	return doc.toDomain(), nil
}

// FindByJobID retrieves the reminder job record by queue job id
func (r *MongoReminderJobRepository) FindByJobID(ctx context.Context, jobID string) (*domain.ReminderJob, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.mongo.reminder.find_by_job")
	defer span.End()

	span.SetAttributes(attribute.String("job_id", jobID))

	var doc reminderJobDoc
	if err := r.collection.FindOne(ctx, bson.M{"job_id": jobID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReminderNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to find reminder job: %w", err)
	}

	return doc.toDomain(), nil
}

// DeleteByJobID removes the reminder job record by queue job id
func (r *MongoReminderJobRepository) DeleteByJobID(ctx context.Context, jobID string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.mongo.reminder.delete_by_job")
	defer span.End()

	span.SetAttributes(attribute.String("job_id", jobID))

	result, err := r.collection.DeleteOne(ctx, bson.M{"job_id": jobID})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete reminder job: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrReminderNotFound
	}

	return nil
}

// DeleteByEventID removes the reminder job record for an event
func (r *MongoReminderJobRepository) DeleteByEventID(ctx context.Context, eventID string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.mongo.reminder.delete_by_event")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	result, err := r.collection.DeleteOne(ctx, bson.M{"event_id": eventID})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete reminder job: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrReminderNotFound
	}

	return nil
}

var _ ReminderJobRepository = (*MongoReminderJobRepository)(nil)
