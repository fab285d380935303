package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"HazardScanner/internal/domain"
	"HazardScanner/internal/geo"
	"HazardScanner/internal/ports"
)

const sourceContentLimit = 1000

// PostgresRepository persists hazards, feed sources, processing logs, and
// system configuration in Postgres.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.HazardRepository = (*PostgresRepository)(nil)
var _ ports.FeedSourceStore = (*PostgresRepository)(nil)
var _ ports.ConfigStore = (*PostgresRepository)(nil)
var _ ports.ProcessingLogStore = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ListActiveSources returns active feeds ordered by priority.
func (r *PostgresRepository) ListActiveSources(ctx context.Context) ([]domain.FeedSource, error) {
	query, args, err := r.builder.
		Select("feed_url", "feed_name", "category", "priority", "fetch_interval_minutes", "is_active").
		From("rss_feeds").
		Where(sq.Eq{"is_active": true}).
		OrderBy("priority ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sources query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query feed sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.FeedSource
	for rows.Next() {
		var (
			src             domain.FeedSource
			intervalMinutes int
		)
		if err := rows.Scan(&src.URL, &src.DisplayName, &src.Category, &src.Priority, &intervalMinutes, &src.IsActive); err != nil {
			return nil, fmt.Errorf("scan feed source: %w", err)
		}
		src.FetchInterval = time.Duration(intervalMinutes) * time.Minute
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return sources, nil
}

// SaveHazard inserts a hazard row and returns its generated ID. The
// geometry column stores the point in longitude-latitude order.
func (r *PostgresRepository) SaveHazard(ctx context.Context, hazard domain.Hazard) (string, error) {
	id := hazard.ID
	if id == "" {
		id = uuid.NewString()
	}

	content := hazard.SourceContent
	if len(content) > sourceContentLimit {
		content = content[:sourceContentLimit]
	}

	query, args, err := r.builder.
		Insert("hazards").
		Columns(
			"id", "hazard_type", "severity", "status", "location",
			"latitude", "longitude", "location_name", "admin_division",
			"confidence_score", "model_version", "source_type", "source_url",
			"source_title", "source_content", "source_published_at",
			"content_hash", "detected_at", "validated", "validated_at",
			"validation_notes", "source",
		).
		Values(
			id, string(hazard.Type), nullString(hazard.Severity), hazard.Status,
			fmt.Sprintf("POINT(%f %f)", hazard.Longitude, hazard.Latitude),
			hazard.Latitude, hazard.Longitude, hazard.LocationName,
			hazard.AdminDivision, hazard.ConfidenceScore,
			nullString(hazard.ModelVersion), hazard.SourceType, hazard.SourceURL,
			hazard.SourceTitle, content, nullTime(hazard.SourcePublishedAt),
			hazard.ContentHash, hazard.DetectedAt, hazard.Validated,
			nullTime(hazard.ValidatedAt), nullString(hazard.ValidationNotes),
			hazard.SourceFeed,
		).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build hazard insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("insert hazard: %w", err)
	}

	return id, nil
}

// FindBySourceURL looks up an existing hazard by exact article URL.
func (r *PostgresRepository) FindBySourceURL(ctx context.Context, sourceURL string) (string, bool, error) {
	query, args, err := r.builder.
		Select("id").
		From("hazards").
		Where(sq.Eq{"source_url": sourceURL}).
		Limit(1).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build url lookup: %w", err)
	}

	var id string
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("query by source url: %w", err)
	}
	return id, true, nil
}

// FindByContentHash looks up hazards with the same content digest detected
// after the cutoff.
func (r *PostgresRepository) FindByContentHash(ctx context.Context, hash string, since time.Time) (string, bool, error) {
	query, args, err := r.builder.
		Select("id").
		From("hazards").
		Where(sq.Eq{"content_hash": hash}).
		Where(sq.GtOrEq{"detected_at": since}).
		Limit(1).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build hash lookup: %w", err)
	}

	var id string
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("query by content hash: %w", err)
	}
	return id, true, nil
}

// FindNearby reports the nearest hazard within radiusKm detected after the
// cutoff. A bounding-rect prefilter narrows the scan; exact great-circle
// distances decide the match.
func (r *PostgresRepository) FindNearby(ctx context.Context, lat, lng, radiusKm float64, since time.Time) (string, bool, error) {
	rect := geo.BoundingRect(lat, lng, radiusKm)

	query, args, err := r.builder.
		Select("id", "latitude", "longitude").
		From("hazards").
		Where(sq.GtOrEq{"detected_at": since}).
		Where(sq.And{
			sq.GtOrEq{"latitude": rect.LatMin},
			sq.LtOrEq{"latitude": rect.LatMax},
			sq.GtOrEq{"longitude": rect.LngMin},
			sq.LtOrEq{"longitude": rect.LngMax},
		}).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build nearby lookup: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return "", false, fmt.Errorf("query nearby hazards: %w", err)
	}
	defer rows.Close()

	var (
		nearestID   string
		nearestDist float64
		found       bool
	)
	for rows.Next() {
		var (
			id     string
			rowLat float64
			rowLng float64
		)
		if err := rows.Scan(&id, &rowLat, &rowLng); err != nil {
			return "", false, fmt.Errorf("scan nearby hazard: %w", err)
		}

		dist := geo.DistanceKm(lat, lng, rowLat, rowLng)
		if dist > radiusKm {
			continue
		}
		if !found || dist < nearestDist {
			nearestID, nearestDist, found = id, dist, true
		}
	}
	if err := rows.Err(); err != nil {
		return "", false, fmt.Errorf("rows iteration: %w", err)
	}

	return nearestID, found, nil
}

// ReadValues fetches system-config rows for the requested keys.
func (r *PostgresRepository) ReadValues(ctx context.Context, keys []string) (map[string]string, error) {
	if len(keys) == 0 {
		return map[string]string{}, nil
	}

	query, args, err := r.builder.
		Select("config_key", "config_value").
		From("system_config").
		Where(sq.Eq{"config_key": keys}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build config query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query system config: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan config row: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return values, nil
}

// SaveLog appends one processing-log row. Log rows are never mutated.
func (r *PostgresRepository) SaveLog(ctx context.Context, entry domain.ProcessingLogEntry) error {
	query, args, err := r.builder.
		Insert("rss_processing_logs").
		Columns(
			"feed_url", "status", "items_processed", "items_added",
			"duplicates_detected", "errors_count", "processing_time_seconds",
			"hazard_ids", "error_message", "processed_by",
		).
		Values(
			entry.FeedURL, entry.Status, entry.ItemsProcessed, entry.ItemsAdded,
			entry.DuplicatesDetected, entry.ErrorsCount,
			entry.ProcessingTime.Seconds(), pq.Array(entry.HazardIDs),
			nullString(entry.ErrorMessage), entry.ProcessedBy,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build log insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert processing log: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
