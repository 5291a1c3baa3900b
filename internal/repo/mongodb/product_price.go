package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/nguyentranbao-ct/price-extractor/internal/models"
	"github.com/nguyentranbao-ct/price-extractor/internal/repository"
	log "github.com/nguyentranbao-ct/price-extractor/pkg/logger/logctx"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	countersCollection = "counters"
	productPriceSeq    = "product_price"
)

type productPriceDoc struct {
	ID          int64                `bson:"_id"`
	ProductName string               `bson:"product_name"`
	Price       primitive.Decimal128 `bson:"price"`
	ImagePath   *string              `bson:"image_path,omitempty"`
	ExtractedAt time.Time            `bson:"extracted_at"`
	CreatedAt   time.Time            `bson:"created_at"`
	Metadata    bson.M               `bson:"metadata"`
}

func (productPriceDoc) CollectionName() string {
	return "product_price"
}

type counterDoc struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

type productPriceRepo struct {
	baseRepo[productPriceDoc]
	client   *mongo.Client
	counters *mongo.Collection
	now      func() time.Time
}

// NewProductPriceRepository stores batches in a multi-document transaction,
// which requires a replica set or sharded cluster.
func NewProductPriceRepository(db *DB) repository.ProductPriceRepository {
	return newProductPriceRepo(db)
}

func newProductPriceRepo(db *DB) *productPriceRepo {
	return &productPriceRepo{
		baseRepo: newBaseRepo[productPriceDoc](db.Database),
		client:   db.Client,
		counters: db.Database.Collection(countersCollection),
		now:      time.Now,
	}
}

// EnsureIndexes mirrors the SQL indexes on product_name and extracted_at.
func EnsureIndexes(ctx context.Context, db *DB) error {
	coll := db.Database.Collection(productPriceDoc{}.CollectionName())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "product_name", Value: 1}},
			Options: options.Index().SetName("idx_product_name"),
		},
		{
			Keys:    bson.D{{Key: "extracted_at", Value: -1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_extracted_at"),
		},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

func (r *productPriceRepo) SaveBatch(ctx context.Context, products []models.ExtractedProduct, imagePath *string, metadata models.Metadata) ([]*models.ProductPrice, error) {
	if len(products) == 0 {
		return []*models.ProductPrice{}, nil
	}

	// BSON dates keep milliseconds only
	ts := r.now().UTC().Truncate(time.Millisecond)

	sess, err := r.client.StartSession()
	if err != nil {
		return nil, models.PersistenceError("start session", err)
	}
	defer sess.EndSession(ctx)

	var docs []productPriceDoc
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		firstID, err := r.reserveIDs(sc, len(products))
		if err != nil {
			return nil, err
		}
		docs, err = newProductPriceDocs(products, firstID, imagePath, metadata, ts)
		if err != nil {
			return nil, err
		}
		return nil, r.InsertMany(sc, docs)
	})
	if err != nil {
		return nil, models.PersistenceError("save products", err)
	}

	saved := make([]*models.ProductPrice, 0, len(docs))
	for i := range docs {
		p, err := docs[i].toModel()
		if err != nil {
			return nil, models.PersistenceError("decode product", err)
		}
		saved = append(saved, p)
	}
	log.Infow(ctx, "saved products", "count", len(saved))
	return saved, nil
}

// reserveIDs bumps the sequence by n and returns the first id of the block.
func (r *productPriceRepo) reserveIDs(ctx context.Context, n int) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter counterDoc
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": productPriceSeq},
		bson.M{"$inc": bson.M{"seq": int64(n)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("reserve ids: %w", err)
	}
	return counter.Seq - int64(n) + 1, nil
}

func (r *productPriceRepo) List(ctx context.Context, filter models.ListFilter) (*models.PageResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "extracted_at", Value: -1}, {Key: "_id", Value: 1}})
	page, err := r.PaginateWithTotal(ctx, buildFilter(filter), int64(filter.PageSize), int64(filter.Offset()), opts)
	if err != nil {
		return nil, models.PersistenceError("list products", err)
	}

	items := make([]*models.ProductPrice, 0, len(page.Data))
	for i := range page.Data {
		p, err := page.Data[i].toModel()
		if err != nil {
			return nil, models.PersistenceError("decode product", err)
		}
		items = append(items, p)
	}
	return models.NewPageResult(items, page.Total, filter.Page, filter.PageSize), nil
}

func (r *productPriceRepo) GetByID(ctx context.Context, id int64) (*models.ProductPrice, error) {
	doc, err := r.FindOne(ctx, bson.M{"_id": id})
	if errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, models.PersistenceError("get product", err)
	}
	p, err := doc.toModel()
	if err != nil {
		return nil, models.PersistenceError("decode product", err)
	}
	return p, nil
}

func buildFilter(f models.ListFilter) bson.M {
	filter := bson.M{}
	if f.ProductName != "" {
		filter["product_name"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.ProductName), Options: "i"}
	}

	extractedAt := bson.M{}
	if f.StartDate != nil {
		extractedAt["$gte"] = f.StartDate.UTC()
	}
	if f.EndDate != nil {
		extractedAt["$lt"] = f.EndDate.UTC()
	}
	if len(extractedAt) > 0 {
		filter["extracted_at"] = extractedAt
	}
	return filter
}

// newProductPriceDocs runs inside the save transaction, so a rejected row
// also rolls back the ids reserved for the batch.
func newProductPriceDocs(products []models.ExtractedProduct, firstID int64, imagePath *string, metadata models.Metadata, ts time.Time) ([]productPriceDoc, error) {
	docs := make([]productPriceDoc, 0, len(products))
	for i, p := range products {
		if !p.Price.IsPositive() {
			return nil, fmt.Errorf("insert product %q: price must be positive", p.ProductName)
		}
		price, err := primitive.ParseDecimal128(p.Price.StringFixed(models.PriceScale))
		if err != nil {
			return nil, fmt.Errorf("encode price %s: %w", p.Price, err)
		}
		meta := bson.M{}
		for k, v := range metadata {
			meta[k] = v
		}
		docs = append(docs, productPriceDoc{
			ID:          firstID + int64(i),
			ProductName: p.ProductName,
			Price:       price,
			ImagePath:   imagePath,
			ExtractedAt: ts,
			CreatedAt:   ts,
			Metadata:    meta,
		})
	}
	return docs, nil
}

func (d *productPriceDoc) toModel() (*models.ProductPrice, error) {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return nil, fmt.Errorf("decode price %s: %w", d.Price, err)
	}
	meta := models.Metadata{}
	for k, v := range d.Metadata {
		meta[k] = v
	}
	return &models.ProductPrice{
		ID:          d.ID,
		ProductName: d.ProductName,
		Price:       price,
		ImagePath:   d.ImagePath,
		ExtractedAt: d.ExtractedAt.UTC(),
		CreatedAt:   d.CreatedAt.UTC(),
		Metadata:    meta,
	}, nil
}
