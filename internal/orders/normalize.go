package orders

import (
	"errors"
	"strconv"

	"github.com/shopspring/decimal"
)

var errMalformedPartner = errors.New("partner_id is not a 2-element sequence")

// Flatten maps a loosely-typed remote order into the stored shape. Any field
// may be absent, null or Odoo's false-for-empty; none of that is an error.
// A genuinely malformed record (e.g. a partner_id that is a sequence of the
// wrong arity) degrades to a minimal record tagged invalid_record instead of
// failing the batch.
func Flatten(raw map[string]any) Record {
	rec, err := flatten(raw)
	if err != nil {
		return Record{
			OrderName:      asString(raw["name"]),
			OrderID:        stringify(raw["id"]),
			ResponseStatus: StatusInvalidRecord,
		}
	}
	rec.ResponseStatus = StatusSuccess
	return rec
}

func flatten(raw map[string]any) (Record, error) {
	customerID, customerName, err := splitPartner(raw["partner_id"])
	if err != nil {
		return Record{}, err
	}

	return Record{
		OrderName:    asString(raw["name"]),
		OrderID:      stringify(raw["id"]),
		CustomerID:   customerID,
		CustomerName: customerName,
		AmountTotal:  safeDecimal(raw["amount_total"]),
		State:        optString(raw["state"]),
		DateOrder:    optString(raw["date_order"]),
	}, nil
}

// splitPartner handles the many2one encoding: either [id, display_name] or
// null/false/absent. A null partner is valid and yields two nulls.
func splitPartner(v any) (id, name *string, err error) {
	switch t := v.(type) {
	case nil, bool:
		return nil, nil, nil
	case []any:
		if len(t) != 2 {
			return nil, nil, errMalformedPartner
		}
		idStr := stringify(t[0])
		return &idStr, optString(t[1]), nil
	default:
		return nil, nil, errMalformedPartner
	}
}

// safeDecimal coerces a loosely-typed amount to a decimal; anything that
// does not parse becomes null rather than an error.
func safeDecimal(v any) *Amount {
	switch t := v.(type) {
	case float64:
		return &Amount{decimal.NewFromFloat(t)}
	case string:
		d, err := decimal.NewFromString(t)
		if err != nil {
			return nil
		}
		return &Amount{d}
	default:
		return nil
	}
}

// stringify renders the remote id for storage as a string sort key.
func stringify(v any) string {
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case string:
		return t
	default:
		return ""
	}
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func optString(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}
