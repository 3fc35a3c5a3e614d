package providerRepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"propertyservices/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// providerDocument is the stored shape of a provider. Money is kept as a double and weekday
// keys as "0".."6".
type providerDocument struct {
	ID                       string                        `bson:"id"`
	Name                     string                        `bson:"name"`
	RatingAverage            float64                       `bson:"ratingAverage"`
	TotalReviews             int                           `bson:"totalReviews"`
	CompletedJobs            int                           `bson:"completedJobs"`
	ServiceCategories        []string                      `bson:"serviceCategories"`
	AcceptsEmergencyRequests bool                          `bson:"acceptsEmergencyRequests"`
	BaseHourlyRate           *float64                      `bson:"baseHourlyRate,omitempty"`
	AvailabilitySchedule     map[string]models.DaySchedule `bson:"availabilitySchedule,omitempty"`
	ServiceRadiusKm          float64                       `bson:"serviceRadiusKm"`
	UpdatedAt                time.Time                     `bson:"updatedAt"`
}

func (d providerDocument) toModel() models.ServiceProvider {
	p := models.ServiceProvider{
		ID:                       d.ID,
		Name:                     d.Name,
		RatingAverage:            d.RatingAverage,
		TotalReviews:             d.TotalReviews,
		CompletedJobs:            d.CompletedJobs,
		ServiceCategories:        d.ServiceCategories,
		AcceptsEmergencyRequests: d.AcceptsEmergencyRequests,
		ServiceRadiusKm:          d.ServiceRadiusKm,
	}
	if d.BaseHourlyRate != nil {
		rate := decimal.NewFromFloat(*d.BaseHourlyRate)
		p.BaseHourlyRate = &rate
	}
	if len(d.AvailabilitySchedule) > 0 {
		p.AvailabilitySchedule = make(map[time.Weekday]models.DaySchedule, len(d.AvailabilitySchedule))
		for key, s := range d.AvailabilitySchedule {
			day, err := strconv.Atoi(key)
			if err != nil || day < 0 || day > 6 {
				continue
			}
			p.AvailabilitySchedule[time.Weekday(day)] = s
		}
	}
	return p
}

// MongoProviderRepo implements ProviderRepository using MongoDB.
type MongoProviderRepo struct {
	coll *mongo.Collection
}

// NewMongoProviderRepo creates a ProviderRepository over the "providers" collection.
func NewMongoProviderRepo(db *mongo.Database, logger *zap.Logger) ProviderRepository {
	repo := &MongoProviderRepo{coll: db.Collection("providers")}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("Failed to create provider indexes", zap.Error(err))
	}
	return repo
}

// newContext bounds a repository call by timeout on top of the caller's context.
func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

func (r *MongoProviderRepo) GetByID(ctx context.Context, id string) (*models.ServiceProvider, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var doc providerDocument
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("provider %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch provider with id %s: %w", id, err)
	}
	p := doc.toModel()
	return &p, nil
}

func (r *MongoProviderRepo) GetByIDs(ctx context.Context, ids []string) ([]models.ServiceProvider, error) {
	if len(ids) == 0 {
		return []models.ServiceProvider{}, nil
	}
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve providers: %w", err)
	}
	defer cursor.Close(ctx)

	providers := make([]models.ServiceProvider, 0, len(ids))
	for cursor.Next(ctx) {
		var doc providerDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode provider: %w", err)
		}
		providers = append(providers, doc.toModel())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return providers, nil
}
