package store

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"
)

// PostgresStore shares verification records across server instances so the
// token-reuse protection does not fragment behind a load balancer. Enabled
// by configuring store.dsn; the in-memory store remains the default.
type PostgresStore struct {
	db       *sql.DB
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

const createRecordsTable = `
        CREATE TABLE IF NOT EXISTS verification_records (
                token_digest TEXT PRIMARY KEY,
                action_type  TEXT NOT NULL,
                action_id    TEXT NOT NULL,
                verified_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )
`

func NewPostgresStore(db *sql.DB, ttl, sweepInterval time.Duration) (*PostgresStore, error) {
	if _, err := db.Exec(createRecordsTable); err != nil {
		return nil, fmt.Errorf("create verification_records table: %w", err)
	}
	s := &PostgresStore{
		db:   db,
		ttl:  ttl,
		stop: make(chan struct{}),
	}
	go s.sweepLoop(sweepInterval)
	return s, nil
}

func (s *PostgresStore) Get(key string) (VerificationRecord, bool, error) {
	const q = `
                SELECT action_type, action_id, verified_at
                FROM verification_records
                WHERE token_digest = $1 AND verified_at > $2
        `
	var rec VerificationRecord
	err := s.db.QueryRow(q, key, time.Now().Add(-s.ttl)).
		Scan(&rec.ActionType, &rec.ActionID, &rec.VerifiedAt)
	if err == sql.ErrNoRows {
		return VerificationRecord{}, false, nil
	}
	if err != nil {
		return VerificationRecord{}, false, err
	}
	return rec, true, nil
}

func (s *PostgresStore) PutIfAbsent(key string, rec VerificationRecord) (VerificationRecord, bool, error) {
	const ins = `
                INSERT INTO verification_records (token_digest, action_type, action_id, verified_at)
                VALUES ($1, $2, $3, $4)
                ON CONFLICT (token_digest) DO NOTHING
        `
	res, err := s.db.Exec(ins, key, rec.ActionType, rec.ActionID, rec.VerifiedAt)
	if err != nil {
		return VerificationRecord{}, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return VerificationRecord{}, false, err
	}
	if n == 1 {
		return rec, true, nil
	}
	existing, ok, err := s.Get(key)
	if err != nil {
		return VerificationRecord{}, false, err
	}
	if !ok {
		// Conflicting row was already expired; replace it.
		const upd = `
                        UPDATE verification_records
                        SET action_type = $2, action_id = $3, verified_at = $4
                        WHERE token_digest = $1
                `
		if _, err := s.db.Exec(upd, key, rec.ActionType, rec.ActionID, rec.VerifiedAt); err != nil {
			return VerificationRecord{}, false, err
		}
		return rec, true, nil
	}
	return existing, false, nil
}

func (s *PostgresStore) Len() (int, error) {
	const q = `SELECT COUNT(*) FROM verification_records WHERE verified_at > $1`
	var n int
	if err := s.db.QueryRow(q, time.Now().Add(-s.ttl)).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *PostgresStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *PostgresStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			const q = `DELETE FROM verification_records WHERE verified_at <= $1`
			if _, err := s.db.Exec(q, time.Now().Add(-s.ttl)); err != nil {
				log.Printf("[store][sweep] delete expired records: %v", err)
			}
		case <-s.stop:
			return
		}
	}
}
