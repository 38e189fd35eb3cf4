// Package numbering issues per-auction lot numbers. Counters live in the
// meta table under one key per auction and only ever move forward: a number,
// once issued, is never handed out again even if its lot is deleted.
package numbering

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dkovalev/lotkeeper/internal/client/repositories/meta"
	"github.com/dkovalev/lotkeeper/internal/dbx"
)

// Service issues lot numbers. Safe for concurrent use: the read-increment-
// write runs inside one transaction, and a busy transaction is retried whole.
type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Next returns the next number for the auction, zero-padded to four digits
// ("0001", "0002", ...). Deleting a lot does not release its number.
func (s *Service) Next(ctx context.Context, auctionID string) (string, error) {
	key := meta.KeyLotCounterPrefix + auctionID

	var issued uint64
	b := retry.WithMaxRetries(5, retry.NewConstant(50*time.Millisecond))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			repo := meta.NewSQLiteRepository(tx)

			raw, err := repo.Get(ctx, key)
			if err != nil {
				return err
			}
			var current uint64
			if raw != nil {
				current, err = strconv.ParseUint(string(raw), 10, 64)
				if err != nil {
					return fmt.Errorf("corrupt lot counter %q: %w", raw, err)
				}
			}

			issued = current + 1
			return repo.Set(ctx, key, []byte(strconv.FormatUint(issued, 10)))
		})
		if dbx.IsBusy(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to issue lot number: %w", err)
	}

	return fmt.Sprintf("%04d", issued), nil
}
