package marketRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"propertyservices/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// marketDocument is the stored shape of a market. A missing commissionRatePct means the
// platform commission applies.
type marketDocument struct {
	ID                  string   `bson:"id"`
	CountryCode         string   `bson:"countryCode"`
	CurrencyCode        string   `bson:"currencyCode"`
	CommissionRatePct   *float64 `bson:"commissionRatePct,omitempty"`
	TaxRatePct          float64  `bson:"taxRatePct"`
	MinServiceFeeAmount float64  `bson:"minServiceFeeAmount"`
	EmergencyMultiplier float64  `bson:"emergencyMultiplier"`
	CityNameKey         string   `bson:"cityNameKey"`
	Timezone            string   `bson:"timezone,omitempty"`
}

func (d marketDocument) toModel() (*models.Market, error) {
	m := &models.Market{
		ID:                  d.ID,
		CountryCode:         d.CountryCode,
		CurrencyCode:        d.CurrencyCode,
		TaxRatePct:          decimal.NewFromFloat(d.TaxRatePct),
		MinServiceFeeAmount: decimal.NewFromFloat(d.MinServiceFeeAmount),
		EmergencyMultiplier: d.EmergencyMultiplier,
		CityNameKey:         d.CityNameKey,
		Timezone:            d.Timezone,
	}
	if d.CommissionRatePct != nil {
		m.CommissionRatePct = decimal.NewNullDecimal(decimal.NewFromFloat(*d.CommissionRatePct))
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// MongoMarketRepo stores markets and their service-area polygons.
type MongoMarketRepo struct {
	markets *mongo.Collection
	areas   *mongo.Collection
}

func NewMongoMarketRepo(db *mongo.Database, logger *zap.Logger) MarketRepository {
	repo := &MongoMarketRepo{
		markets: db.Collection("markets"),
		areas:   db.Collection("service_areas"),
	}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("Failed to create market indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoMarketRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.markets.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create market indexes: %w", err)
	}
	areaIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "marketId", Value: 1}}},
		{Keys: bson.D{{Key: "boundary", Value: "2dsphere"}}},
	}
	if _, err := r.areas.Indexes().CreateMany(ctx, areaIndexes); err != nil {
		return fmt.Errorf("failed to create service area indexes: %w", err)
	}
	return nil
}

func (r *MongoMarketRepo) GetByID(ctx context.Context, id string) (*models.Market, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc marketDocument
	if err := r.markets.FindOne(ctx, bson.M{"id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("market %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch market with id %s: %w", id, err)
	}
	return doc.toModel()
}

// FindByLocation asks Mongo for an active service area whose boundary intersects loc.
func (r *MongoMarketRepo) FindByLocation(ctx context.Context, loc models.Location) (*models.Market, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"isActive": true,
		"boundary": bson.M{
			"$geoIntersects": bson.M{
				"$geometry": loc.ToGeoPoint(),
			},
		},
	}
	var area models.ServiceArea
	if err := r.areas.FindOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "id", Value: 1}})).Decode(&area); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("no service area at %.5f,%.5f: %w", loc.Latitude, loc.Longitude, models.ErrNotFound)
		}
		return nil, fmt.Errorf("service area lookup failed: %w", err)
	}
	return r.GetByID(ctx, area.MarketID)
}
