package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/importados/internal/domain/models"
)

// Repository defines the interface for profit snapshot storage.
type Repository interface {
	SaveProfitSnapshot(ctx context.Context, snapshot models.ProfitSnapshot) error
	LatestProfitSnapshot(ctx context.Context) (*models.ProfitSnapshot, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

type tripDocument struct {
	TripNumber           string `bson:"trip_number"`
	GrossCost            string `bson:"gross_cost"`
	ExpectedSellingPrice string `bson:"expected_selling_price"`
	NumberOfProducts     int    `bson:"number_of_products"`
	ExpectedProfit       string `bson:"expected_profit"`
}

type snapshotDocument struct {
	TakenAt        time.Time      `bson:"taken_at"`
	WeekStart      time.Time      `bson:"week_start"`
	WeekEnd        time.Time      `bson:"week_end"`
	Revenue        string         `bson:"revenue"`
	Cost           string         `bson:"cost"`
	NetProfit      string         `bson:"net_profit"`
	ProductsSold   int            `bson:"products_sold"`
	Expected       []tripDocument `bson:"expected"`
	UnitsAvailable int            `bson:"units_available"`
	CreatedAt      time.Time      `bson:"created_at"`
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: "profit_snapshots",
	}, nil
}

// SaveProfitSnapshot stores a snapshot. Amounts are kept as decimal strings.
func (r *MongoDBRepository) SaveProfitSnapshot(ctx context.Context, snapshot models.ProfitSnapshot) error {
	collection := r.client.Database(r.dbName).Collection(r.collName)
	if _, err := collection.InsertOne(ctx, toDocument(snapshot)); err != nil {
		return fmt.Errorf("failed to insert profit snapshot: %w", err)
	}
	return nil
}

// LatestProfitSnapshot returns the most recent snapshot, or nil when none exists.
func (r *MongoDBRepository) LatestProfitSnapshot(ctx context.Context) (*models.ProfitSnapshot, error) {
	collection := r.client.Database(r.dbName).Collection(r.collName)
	opts := options.FindOne().SetSort(bson.D{{Key: "taken_at", Value: -1}})

	var doc snapshotDocument
	err := collection.FindOne(ctx, bson.D{}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest profit snapshot: %w", err)
	}

	snapshot := fromDocument(doc)
	return &snapshot, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func toDocument(s models.ProfitSnapshot) snapshotDocument {
	trips := make([]tripDocument, 0, len(s.Expected))
	for _, row := range s.Expected {
		trips = append(trips, tripDocument{
			TripNumber:           row.TripNumber,
			GrossCost:            row.GrossCost.String(),
			ExpectedSellingPrice: row.ExpectedSellingPrice.String(),
			NumberOfProducts:     row.NumberOfProducts,
			ExpectedProfit:       row.ExpectedProfit.String(),
		})
	}
	return snapshotDocument{
		TakenAt:        s.TakenAt,
		WeekStart:      s.Week.Start,
		WeekEnd:        s.Week.End,
		Revenue:        s.Week.Revenue.String(),
		Cost:           s.Week.Cost.String(),
		NetProfit:      s.Week.NetProfit.String(),
		ProductsSold:   s.Week.ProductsSold,
		Expected:       trips,
		UnitsAvailable: s.UnitsAvailable,
		CreatedAt:      s.CreatedAt,
	}
}

func fromDocument(d snapshotDocument) models.ProfitSnapshot {
	trips := make([]models.ExpectedProfitRow, 0, len(d.Expected))
	for _, t := range d.Expected {
		trips = append(trips, models.ExpectedProfitRow{
			TripNumber:           t.TripNumber,
			GrossCost:            decimalOrZero(t.GrossCost),
			ExpectedSellingPrice: decimalOrZero(t.ExpectedSellingPrice),
			NumberOfProducts:     t.NumberOfProducts,
			ExpectedProfit:       decimalOrZero(t.ExpectedProfit),
		})
	}
	return models.ProfitSnapshot{
		TakenAt: d.TakenAt,
		Week: models.NetProfitSummary{
			Start:        d.WeekStart,
			End:          d.WeekEnd,
			Revenue:      decimalOrZero(d.Revenue),
			Cost:         decimalOrZero(d.Cost),
			NetProfit:    decimalOrZero(d.NetProfit),
			ProductsSold: d.ProductsSold,
		},
		Expected:       trips,
		UnitsAvailable: d.UnitsAvailable,
		CreatedAt:      d.CreatedAt,
	}
}
