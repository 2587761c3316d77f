package validate

import (
	"strings"

	"github.com/baharkarakas/card-ledger/internal/models"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string {
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Helpers
func Required(field, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: "required"}
	}
	return nil
}

func OneOf[T ~string](field string, v T, allowed []T) *ErrField {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	opts := make([]string, len(allowed))
	for i, a := range allowed {
		opts[i] = string(a)
	}
	return &ErrField{Field: field, Msg: "must be one of " + strings.Join(opts, ", ")}
}

// Event checks the shape of an incoming event. prefix is prepended to field
// names, e.g. "events[3]." for batch items.
func Event(prefix string, ev models.Event) Errs {
	var errs Errs
	for _, fe := range []*ErrField{
		OneOf(prefix+"eventType", ev.EventType, models.EventTypes),
		Required(prefix+"eventTime", ev.EventTime),
		Required(prefix+"txnId", ev.TxnID),
	} {
		if fe != nil {
			errs = append(errs, *fe)
		}
	}
	return errs
}
