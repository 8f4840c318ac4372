package params

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"streamhost/internal/booking"
)

const (
	defaultLimit = 15
	maxLimit     = 50
)

// Pagination carries ?page=&limit= and the metadata computed once the total
// is known.
type Pagination struct {
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	Page       int  `json:"page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// ParsePagination never fails; bad values fall back to the defaults.
func ParsePagination(q url.Values) Pagination {
	p := Pagination{Limit: defaultLimit, Page: 1}

	if limitStr := strings.TrimSpace(q.Get("limit")); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			switch {
			case limit <= 0:
				p.Limit = defaultLimit
			case limit > maxLimit:
				p.Limit = maxLimit
			default:
				p.Limit = limit
			}
		}
	}

	if pageStr := strings.TrimSpace(q.Get("page")); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			p.Page = page
		}
	}

	p.Offset = (p.Page - 1) * p.Limit
	return p
}

// ComputeMeta fills the page counters from the total row count.
func (p *Pagination) ComputeMeta(total int) {
	p.Total = total
	if p.Limit > 0 {
		p.TotalPages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	p.HasPrev = p.Page > 1
	p.HasNext = (p.Page * p.Limit) < total
}

// DayQuery is the ?date=&timezone= pair used by availability lookups.
type DayQuery struct {
	Date     string
	Timezone string
}

// ParseDayQuery requires a yyyy-MM-dd date. The timezone falls back to
// fallbackZone, then to UTC.
func ParseDayQuery(q url.Values, fallbackZone string) (DayQuery, error) {
	d := DayQuery{
		Date:     strings.TrimSpace(q.Get("date")),
		Timezone: strings.TrimSpace(q.Get("timezone")),
	}
	if d.Date == "" {
		return d, &booking.ValidationError{Field: "date", Message: "is required"}
	}
	if !booking.ValidDate(d.Date) {
		return d, &booking.ValidationError{Field: "date", Message: "must be yyyy-MM-dd"}
	}
	if d.Timezone == "" {
		d.Timezone = fallbackZone
	}
	if d.Timezone == "" {
		d.Timezone = "UTC"
	}
	return d, nil
}

// ParseDateRange reads ?from=&to= as an inclusive yyyy-MM-dd range.
func ParseDateRange(q url.Values) (from, to string, err error) {
	from, to = strings.TrimSpace(q.Get("from")), strings.TrimSpace(q.Get("to"))
	if !booking.ValidDate(from) {
		return "", "", &booking.ValidationError{Field: "from", Message: "must be yyyy-MM-dd"}
	}
	if !booking.ValidDate(to) {
		return "", "", &booking.ValidationError{Field: "to", Message: "must be yyyy-MM-dd"}
	}
	if to < from {
		return "", "", &booking.ValidationError{Field: "to", Message: "must not be before from"}
	}
	return from, to, nil
}
