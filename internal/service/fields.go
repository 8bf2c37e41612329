package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/bankcore/internal/domain"
)

// UpdateField changes one whitelisted column of an entity (see
// domain.UpdatableFields). value may be the column's Go type or its string
// form; it is normalised before the write.
func (b *Bank) UpdateField(ctx context.Context, entity domain.EntityType, id int64, field string, value any) (err error) {
	defer timer("update_field").ObserveDuration()
	defer func() {
		b.report(ctx, "update_field", err, "entity", entity, "id", id, "field", field)
	}()

	_, err = b.updateField(ctx, entity, id, field, value)
	return err
}

func (b *Bank) updateField(ctx context.Context, entity domain.EntityType, id int64, field string, value any) (any, error) {
	kind, ok := domain.LookupField(entity, field)
	if !ok {
		return nil, domain.Validationf("%s field %q is not updatable", entity, field)
	}
	v, err := coerce(field, kind, value)
	if err != nil {
		return nil, err
	}
	if err := b.repo.UpdateField(ctx, entity, id, field, v); err != nil {
		return nil, err
	}
	b.refresh(ctx, entity, id)
	return v, nil
}

func coerce(field string, kind domain.FieldKind, value any) (any, error) {
	switch kind {
	case domain.FieldText, domain.FieldRequiredText:
		s, ok := value.(string)
		if !ok {
			return nil, domain.Validationf("%s must be a string", field)
		}
		s = strings.TrimSpace(s)
		if kind == domain.FieldRequiredText && s == "" {
			return nil, domain.Validationf("%s is required", field)
		}
		return s, nil

	case domain.FieldMoney:
		d, err := toDecimal(value)
		if err != nil {
			return nil, domain.Validationf("%s: %v", field, err)
		}
		if err := nonNegativeMoney(field, d); err != nil {
			return nil, err
		}
		return d, nil

	case domain.FieldBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return nil, domain.Validationf("%s must be a boolean", field)
			}
			return parsed, nil
		}
		return nil, domain.Validationf("%s must be a boolean", field)
	}
	return nil, domain.Validationf("%s has an unsupported type", field)
}

func toDecimal(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	}
	return decimal.Decimal{}, fmt.Errorf("unsupported number type %T", value)
}
