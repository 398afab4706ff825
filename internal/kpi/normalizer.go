// internal/kpi/normalizer.go
package kpi

import (
	"strconv"
	"strings"
	"time"

	"github.com/aguavida/kpi-backend/internal/domain"
)

// ParseOrderDate parses the POS date format, DD-MM-YYYY. Parsing is strict:
// exactly three dash-separated integer components that form a real calendar
// day. Anything else is a parse failure.
func ParseOrderDate(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return time.Time{}, ErrInvalidDate
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}

	if year < 1 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, ErrInvalidDate
	}

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (31-02 becomes March); reject that.
	if d.Day() != day || d.Month() != time.Month(month) || d.Year() != year {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// Normalize turns a raw record into a canonical Order with its date, price,
// origin and dedup identity resolved. Units are filled in afterwards by the
// reconciler. Pure function over one record.
func Normalize(raw domain.RawOrder, cfg Config) (domain.Order, error) {
	origin, err := resolveOrigin(raw, cfg.LocalName)
	if err != nil {
		return domain.Order{}, err
	}

	dateStr, ok := fieldString(raw, "fecha")
	if !ok {
		return domain.Order{}, ErrInvalidDate
	}
	date, err := ParseOrderDate(dateStr)
	if err != nil {
		return domain.Order{}, err
	}

	price, _ := fieldFloat(raw, "precio", "price")
	if price < 0 {
		price = 0
	}

	return domain.Order{
		Date:     date,
		Price:    price,
		Origin:   origin,
		Identity: resolveIdentity(raw, date, price),
	}, nil
}

// resolveOrigin maps the record's local name to a channel. Records tagged
// with a different local belong to another location and are out of scope.
func resolveOrigin(raw domain.RawOrder, localName string) (domain.Origin, error) {
	name, ok := fieldString(raw, "nombrelocal", "nombre_local")
	if !ok {
		return domain.OriginDelivery, nil
	}
	if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(localName)) {
		return domain.OriginLocal, nil
	}
	return domain.OriginUnknown, ErrWrongLocal
}

// resolveIdentity prefers an explicit id; the (date, customer, price) tuple
// is the fallback dedup key for exports that never carried ids.
func resolveIdentity(raw domain.RawOrder, date time.Time, price float64) string {
	if id, ok := fieldString(raw, "id", "idpedido", "_id"); ok {
		return id
	}
	customer, _ := fieldString(raw, "cliente", "nombrecliente", "nombre")
	return domain.FallbackIdentity(date, customer, price)
}
