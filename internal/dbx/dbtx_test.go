package dbx

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openJournal(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "dbx.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE uploads (id TEXT PRIMARY KEY, url TEXT NOT NULL)`)
	require.NoError(t, err)
	return db
}

func uploadCount(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM uploads`).Scan(&n))
	return n
}

func insert(ctx context.Context, tx DBTX, id string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO uploads (id, url) VALUES (?, ?)`, id, "https://cdn/"+id)
	return err
}

func TestWithTx(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(ctx context.Context, tx DBTX) error
		wantErr bool
		want    int
	}{
		{
			name: "commit",
			fn: func(ctx context.Context, tx DBTX) error {
				if err := insert(ctx, tx, "1"); err != nil {
					return err
				}
				return insert(ctx, tx, "2")
			},
			want: 2,
		},
		{
			name: "rollback on error",
			fn: func(ctx context.Context, tx DBTX) error {
				if err := insert(ctx, tx, "1"); err != nil {
					return err
				}
				return errors.New("upload journal full")
			},
			wantErr: true,
		},
		{
			name: "rollback on statement failure",
			fn: func(ctx context.Context, tx DBTX) error {
				if err := insert(ctx, tx, "1"); err != nil {
					return err
				}
				return insert(ctx, tx, "1")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openJournal(t)
			err := WithTx(context.Background(), db, nil, tt.fn)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, uploadCount(t, db))
		})
	}
}

func TestWithTx_PanicRollsBackAndRepanics(t *testing.T) {
	db := openJournal(t)

	assert.PanicsWithValue(t, "kaput", func() {
		_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
			require.NoError(t, insert(ctx, tx, "1"))
			panic("kaput")
		})
	})
	assert.Equal(t, 0, uploadCount(t, db))
}

func TestWithTx_BeginError(t *testing.T) {
	db := openJournal(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, func(context.Context, DBTX) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
}

func TestRebind(t *testing.T) {
	q := `UPDATE uploads SET status = ? WHERE attempt_id = ? AND status = ?`

	assert.Equal(t, q, Rebind(DialectSQLite, q))
	assert.Equal(t,
		`UPDATE uploads SET status = $1 WHERE attempt_id = $2 AND status = $3`,
		Rebind(DialectPostgres, q))
	assert.Equal(t, "SELECT 1", Rebind(DialectPostgres, "SELECT 1"))
}
