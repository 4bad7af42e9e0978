package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/hospivibe/internal/client/models"
	"github.com/dmitrijs2005/hospivibe/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/hospivibe/internal/dbx"
)

// SQLiteStore keeps the session in the local metadata table. Writes go
// through one transaction so user and token never diverge.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Save(ctx context.Context, sess *models.Session) error {
	user, err := encodeUser(sess)
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, KeyUser, user); err != nil {
			return err
		}
		return repo.Set(ctx, KeyToken, []byte(sess.Token))
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*models.Session, error) {
	var rawUser, rawToken []byte

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		var err error
		if rawUser, err = repo.Get(ctx, KeyUser); err != nil {
			return err
		}
		rawToken, err = repo.Get(ctx, KeyToken)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	return assemble(rawUser, rawToken)
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if err := metadata.NewSQLiteRepository(s.db).Delete(ctx, KeyUser, KeyToken); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
