package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"busmanager/internal/domain"
)

// link is a join-table column that references the row being deleted.
type link struct {
	table  string
	column string
}

// deleteWithLinks deletes one row and every join row pointing at it in a
// single transaction. A missing row is reported as NotFound.
func deleteWithLinks(ctx context.Context, conn *sql.DB, resource, table, id string, links ...link) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete %s: %w", table, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, l := range links {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+l.table+` WHERE `+l.column+` = ?`, id); err != nil {
			return fmt.Errorf("delete %s links: %w", l.table, err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return domain.NotFoundError{Resource: resource, ID: id}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete %s: %w", table, err)
	}
	return nil
}
