// Package postgres provides PostgreSQL infrastructure components.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	appctx "bakerypos/internal/core/context"
	"bakerypos/internal/core/id"
	"bakerypos/internal/domain"
)

var _ domain.Auditor = (*AuditService)(nil)

// CompressionAlgo specifies the compression algorithm used.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// defaultCompressThreshold is the snapshot size above which it is stored zstd-compressed.
const defaultCompressThreshold = 10 * 1024

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID                 id.ID              `db:"id" json:"id"`
	EntityType         string             `db:"entity_type" json:"entityType"`
	EntityID           id.ID              `db:"entity_id" json:"entityId"`
	Action             domain.AuditAction `db:"action" json:"action"`
	UserID             *string            `db:"user_id" json:"userId,omitempty"`
	Username           *string            `db:"username" json:"username,omitempty"`
	Snapshot           json.RawMessage    `db:"snapshot" json:"snapshot"`
	SnapshotCompressed []byte             `db:"snapshot_compressed" json:"-"`
	CompressionAlgo    CompressionAlgo    `db:"compression_algo" json:"-"`
	CreatedAt          time.Time          `db:"created_at" json:"createdAt"`
}

// AuditService writes bill, order, payment and catalog snapshots to sys_audit
// inside the caller's transaction.
type AuditService struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewAuditService creates a new audit service.
func NewAuditService(txManager *TxManager) (*AuditService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditService{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: defaultCompressThreshold,
	}, nil
}

// Record stores a JSON snapshot of an entity after a state change.
func (s *AuditService) Record(ctx context.Context, entityType string, entityID id.ID, action domain.AuditAction, snapshot any) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal audit snapshot: %w", err)
	}

	entry := AuditEntry{
		ID:         id.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Snapshot:   raw,
		CreatedAt:  time.Now().UTC(),
	}
	if user := appctx.GetUser(ctx); user != nil {
		entry.UserID = &user.UserID
		entry.Username = &user.Username
	}
	s.compress(&entry)

	_, err = s.txManager.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO sys_audit (
			id, entity_type, entity_id, action, user_id, username,
			snapshot, snapshot_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entry.ID, entry.EntityType, entry.EntityID, entry.Action,
		entry.UserID, entry.Username,
		entry.Snapshot, entry.SnapshotCompressed, entry.CompressionAlgo, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *AuditService) compress(entry *AuditEntry) {
	entry.CompressionAlgo = CompressionNone
	if len(entry.Snapshot) > s.compressThreshold {
		entry.SnapshotCompressed = s.encoder.EncodeAll(entry.Snapshot, nil)
		entry.Snapshot = nil
		entry.CompressionAlgo = CompressionZstd
	}
}

func (s *AuditService) decompress(entry *AuditEntry) error {
	if entry.CompressionAlgo != CompressionZstd || len(entry.SnapshotCompressed) == 0 {
		return nil
	}
	raw, err := s.decoder.DecodeAll(entry.SnapshotCompressed, nil)
	if err != nil {
		return fmt.Errorf("decompress snapshot: %w", err)
	}
	entry.Snapshot = raw
	entry.SnapshotCompressed = nil
	return nil
}

// History returns the newest audit entries of one entity.
func (s *AuditService) History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]AuditEntry, error) {
	rows, err := s.txManager.GetQuerier(ctx).Query(ctx, `
		SELECT id, entity_type, entity_id, action, user_id, username,
		       snapshot, snapshot_compressed, compression_algo, created_at
		FROM sys_audit
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3`, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit history: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(
			&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.UserID, &e.Username,
			&e.Snapshot, &e.SnapshotCompressed, &e.CompressionAlgo, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if err := s.decompress(&e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
