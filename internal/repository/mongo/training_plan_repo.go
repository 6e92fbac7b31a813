// internal/repository/mongo/training_plan_repo.go
package mongo

import (
	"alcyxob/coaching-api/internal/domain"
	"alcyxob/coaching-api/internal/repository"
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const trainingPlanCollectionName = "training_plans"

// mongoTrainingPlanRepository implements repository.TrainingPlanRepository
type mongoTrainingPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoTrainingPlanRepository creates a new TrainingPlan repository.
func NewMongoTrainingPlanRepository(db *mongo.Database) repository.TrainingPlanRepository {
	return &mongoTrainingPlanRepository{
		collection: db.Collection(trainingPlanCollectionName),
	}
}

// Create inserts a new training plan.
func (r *mongoTrainingPlanRepository) Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error) {
	if plan.AthleteID == primitive.NilObjectID || plan.CoachID == primitive.NilObjectID || plan.Name == "" {
		return primitive.NilObjectID, errors.New("plan requires athleteId, coachId, and name")
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	if plan.Sessions == nil {
		plan.Sessions = []domain.Session{}
	}

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single training plan by its ID.
func (r *mongoTrainingPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error) {
	var plan domain.TrainingPlan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetByCoachID retrieves plans authored by a coach, optionally narrowed to one athlete.
func (r *mongoTrainingPlanRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID, athleteID *primitive.ObjectID) ([]domain.TrainingPlan, error) {
	filter := bson.M{"coachId": coachID}
	if athleteID != nil {
		filter["athleteId"] = *athleteID
	}
	return r.find(ctx, filter)
}

// GetByAthleteID retrieves every plan assigned to an athlete.
func (r *mongoTrainingPlanRepository) GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	return r.find(ctx, bson.M{"athleteId": athleteID})
}

func (r *mongoTrainingPlanRepository) find(ctx context.Context, filter bson.M) ([]domain.TrainingPlan, error) {
	// Newest first
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var plans []domain.TrainingPlan
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// Update replaces the coach-editable parts of a plan, including the nested sessions.
// Ownership and creation time are never changed here.
func (r *mongoTrainingPlanRepository) Update(ctx context.Context, plan *domain.TrainingPlan) error {
	if plan.ID == primitive.NilObjectID {
		return errors.New("training plan ID is required for update")
	}
	sessions := plan.Sessions
	if sessions == nil {
		sessions = []domain.Session{}
	}

	updateDoc := bson.M{
		"$set": bson.M{
			"name":        plan.Name,
			"description": plan.Description,
			"startDate":   plan.StartDate,
			"endDate":     plan.EndDate,
			"sessions":    sessions,
			"updatedAt":   time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": plan.ID}, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoTrainingPlanRepository) Delete(ctx context.Context, planID, coachID primitive.ObjectID) error {
	if planID == primitive.NilObjectID || coachID == primitive.NilObjectID {
		return errors.New("plan ID and coach ID are required for deletion")
	}

	// Filter ensures that the plan exists AND belongs to the specified coach.
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": planID, "coachId": coachID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrDeleteFailed
	}
	return nil
}

func (r *mongoTrainingPlanRepository) SetTemplateStatus(ctx context.Context, planID primitive.ObjectID, isTemplate bool, templateID *primitive.ObjectID) error {
	set := bson.M{"isTemplate": isTemplate, "updatedAt": time.Now().UTC()}
	update := bson.M{"$set": set}
	if templateID != nil {
		set["templateId"] = *templateID
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": planID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// exerciseFilter matches the plan only when the addressed session and exercise exist,
// so a wrong path reports ErrNotFound instead of a silent no-op.
func exerciseFilter(ref repository.ExerciseRef) bson.M {
	return bson.M{
		"_id": ref.PlanID,
		"sessions": bson.M{"$elemMatch": bson.M{
			"sessionId":            ref.SessionID,
			"exercises.exerciseId": ref.ExerciseID,
		}},
	}
}

func exerciseArrayFilters(ref repository.ExerciseRef) *options.UpdateOptions {
	return options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"s.sessionId": ref.SessionID},
			bson.M{"e.exerciseId": ref.ExerciseID},
		},
	})
}

const exercisePath = "sessions.$[s].exercises.$[e]."

// UpdateExerciseFeedback writes only the athlete fields present in update.
func (r *mongoTrainingPlanRepository) UpdateExerciseFeedback(ctx context.Context, ref repository.ExerciseRef, update repository.ExerciseFeedbackUpdate) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Completed != nil {
		set[exercisePath+"completed"] = *update.Completed
	}
	if update.PerformanceComment != nil {
		set[exercisePath+"performanceComment"] = *update.PerformanceComment
	}
	if update.AthleteNotes != nil {
		set[exercisePath+"athleteNotes"] = *update.AthleteNotes
	}
	if update.MediaKey != nil {
		set[exercisePath+"mediaKey"] = *update.MediaKey
	}

	result, err := r.collection.UpdateOne(ctx, exerciseFilter(ref), bson.M{"$set": set}, exerciseArrayFilters(ref))
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ReplacePerformedSets overwrites the whole performedSets array of one exercise.
func (r *mongoTrainingPlanRepository) ReplacePerformedSets(ctx context.Context, ref repository.ExerciseRef, sets []domain.PerformedSet) error {
	if sets == nil {
		sets = []domain.PerformedSet{}
	}
	update := bson.M{"$set": bson.M{
		exercisePath + "performedSets": sets,
		"updatedAt":                    time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, exerciseFilter(ref), update, exerciseArrayFilters(ref))
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoTrainingPlanRepository) UpdateSessionNotes(ctx context.Context, planID, sessionID primitive.ObjectID, notes string) error {
	filter := bson.M{"_id": planID, "sessions.sessionId": sessionID}
	update := bson.M{"$set": bson.M{
		"sessions.$.sessionNotes": notes,
		"updatedAt":               time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureTrainingPlanIndexes creates necessary indexes. Call during startup.
func EnsureTrainingPlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Main coach query: plans for one athlete by one coach
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "athleteId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "athleteId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warnf("failed to create indexes for collection %s: %s", collection.Name(), err)
	}
}
