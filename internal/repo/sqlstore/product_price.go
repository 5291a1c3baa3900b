package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/nguyentranbao-ct/price-extractor/internal/models"
	"github.com/nguyentranbao-ct/price-extractor/internal/repository"
	log "github.com/nguyentranbao-ct/price-extractor/pkg/logger/logctx"
	"github.com/shopspring/decimal"
)

const productPriceColumns = `id, product_name, price, image_path, extracted_at, created_at, metadata`

type productPriceRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewProductPriceRepository(db *sql.DB) repository.ProductPriceRepository {
	return newProductPriceRepo(db)
}

func newProductPriceRepo(db *sql.DB) *productPriceRepo {
	return &productPriceRepo{
		db:  db,
		now: time.Now,
	}
}

func (r *productPriceRepo) SaveBatch(ctx context.Context, products []models.ExtractedProduct, imagePath *string, metadata models.Metadata) ([]*models.ProductPrice, error) {
	if len(products) == 0 {
		return []*models.ProductPrice{}, nil
	}

	meta, err := encodeMetadata(metadata)
	if err != nil {
		return nil, models.PersistenceError("encode metadata", err)
	}
	ts := r.now().UTC().Truncate(time.Microsecond)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, models.PersistenceError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO ` + tableName + ` (product_name, price, image_path, extracted_at, created_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	saved := make([]*models.ProductPrice, 0, len(products))
	for _, p := range products {
		var id int64
		if err := tx.QueryRowContext(ctx, query,
			p.ProductName, p.Price, imagePath, ts, ts, meta,
		).Scan(&id); err != nil {
			return nil, models.PersistenceError(fmt.Sprintf("insert product %q", p.ProductName), err)
		}
		saved = append(saved, &models.ProductPrice{
			ID:          id,
			ProductName: p.ProductName,
			Price:       p.Price,
			ImagePath:   imagePath,
			ExtractedAt: ts,
			CreatedAt:   ts,
			Metadata:    copyMetadata(metadata),
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, models.PersistenceError("commit transaction", err)
	}
	log.Infow(ctx, "saved products", "count", len(saved))
	return saved, nil
}

func (r *productPriceRepo) List(ctx context.Context, filter models.ListFilter) (*models.PageResult, error) {
	where, args := buildWhere(filter)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+tableName+where, args...).Scan(&total); err != nil {
		return nil, models.PersistenceError("count products", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY extracted_at DESC, id ASC LIMIT $%d OFFSET $%d`,
		productPriceColumns, tableName, where, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, query, append(args, filter.PageSize, filter.Offset())...)
	if err != nil {
		return nil, models.PersistenceError("list products", err)
	}
	defer rows.Close()

	items := make([]*models.ProductPrice, 0, filter.PageSize)
	for rows.Next() {
		item, err := scanProductPrice(rows)
		if err != nil {
			return nil, models.PersistenceError("scan product", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, models.PersistenceError("iterate products", err)
	}

	log.Debugw(ctx, "listed products", "count", len(items), "total", total, "page", filter.Page)
	return models.NewPageResult(items, total, filter.Page, filter.PageSize), nil
}

func (r *productPriceRepo) GetByID(ctx context.Context, id int64) (*models.ProductPrice, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productPriceColumns+` FROM `+tableName+` WHERE id = $1`, id)
	item, err := scanProductPrice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, models.PersistenceError("get product", err)
	}
	return item, nil
}

// buildWhere numbers placeholders in order of appearance so that SQLite and
// PostgreSQL bind them the same way.
func buildWhere(filter models.ListFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.ProductName != "" {
		args = append(args, "%"+escapeLike(strings.ToLower(filter.ProductName))+"%")
		conds = append(conds, fmt.Sprintf(`LOWER(product_name) LIKE $%d ESCAPE '\'`, len(args)))
	}
	if filter.StartDate != nil {
		args = append(args, filter.StartDate.UTC())
		conds = append(conds, fmt.Sprintf(`extracted_at >= $%d`, len(args)))
	}
	if filter.EndDate != nil {
		args = append(args, filter.EndDate.UTC())
		conds = append(conds, fmt.Sprintf(`extracted_at < $%d`, len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProductPrice(row scanner) (*models.ProductPrice, error) {
	var (
		item      models.ProductPrice
		price     decimal.Decimal
		imagePath sql.NullString
		meta      []byte
	)
	if err := row.Scan(
		&item.ID, &item.ProductName, &price, &imagePath,
		&item.ExtractedAt, &item.CreatedAt, &meta,
	); err != nil {
		return nil, err
	}

	item.Price = price.Round(models.PriceScale)
	if imagePath.Valid {
		item.ImagePath = &imagePath.String
	}
	item.ExtractedAt = item.ExtractedAt.UTC()
	item.CreatedAt = item.CreatedAt.UTC()

	metadata, err := decodeMetadata(meta)
	if err != nil {
		return nil, err
	}
	item.Metadata = metadata
	return &item, nil
}

func encodeMetadata(m models.Metadata) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeMetadata(b []byte) (models.Metadata, error) {
	m := models.Metadata{}
	if len(b) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return m, nil
}

func copyMetadata(m models.Metadata) models.Metadata {
	out := make(models.Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
