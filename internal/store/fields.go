package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/punchamoorthee/bankcore/internal/domain"
)

type table struct {
	name string
	id   string
}

var tables = map[domain.EntityType]table{
	domain.EntityCustomer:   {"customers", "customer_id"},
	domain.EntityAccount:    {"accounts", "account_id"},
	domain.EntityEmployee:   {"employees", "employee_id"},
	domain.EntityLoan:       {"loans", "loan_id"},
	domain.EntityCreditCard: {"credit_cards", "card_id"},
}

// UpdateField sets one whitelisted column. The column name is only ever taken
// from domain.UpdatableFields, never from the caller verbatim.
func (q *queries) UpdateField(ctx context.Context, entity domain.EntityType, id int64, field string, value any) error {
	if _, ok := domain.LookupField(entity, field); !ok {
		return domain.Validationf("%s field %q is not updatable", entity, field)
	}
	t := tables[entity]

	sql := fmt.Sprintf("UPDATE %s SET %s = $1 WHERE %s = $2", t.name, pgx.Identifier{field}.Sanitize(), t.id)
	tag, err := q.db.Exec(ctx, sql, value, id)
	if err != nil {
		return storageErr(fmt.Sprintf("update %s.%s", entity, field), err)
	}
	if tag.RowsAffected() == 0 {
		return rowErr(entity, id, pgx.ErrNoRows)
	}
	return nil
}
