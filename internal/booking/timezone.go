package booking

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"
)

// Minutes east of UTC for zone names the IANA database does not know.
var staticOffsets = map[string]int{
	"UTC":  0,
	"GMT":  0,
	"Z":    0,
	"WIB":  7 * 60,
	"WITA": 8 * 60,
	"WIT":  9 * 60,
	"ICT":  7 * 60,
	"SGT":  8 * 60,
	"MYT":  8 * 60,
	"PHT":  8 * 60,
	"HKT":  8 * 60,
	"AWST": 8 * 60,
	"JST":  9 * 60,
	"KST":  9 * 60,
	"IST":  5*60 + 30,
	"AEST": 10 * 60,
	"AEDT": 11 * 60,
	"NZST": 12 * 60,
	"CET":  1 * 60,
	"CEST": 2 * 60,
	"EET":  2 * 60,
	"BST":  1 * 60,
	"EST":  -5 * 60,
	"EDT":  -4 * 60,
	"CST":  -6 * 60,
	"CDT":  -5 * 60,
	"MST":  -7 * 60,
	"PST":  -8 * 60,
	"PDT":  -7 * 60,
}

var gmtOffsetRx = regexp.MustCompile(`(?i)^(?:GMT|UTC)\s*([+-])\s*(\d{1,2})(?::?(\d{2}))?$`)

var indonesianZones = []struct {
	keywords []string
	offset   int
}{
	{[]string{"jayapura", "papua", "maluku", "ambon", "eastern indonesia"}, 9 * 60},
	{[]string{"makassar", "bali", "denpasar", "lombok", "central indonesia"}, 8 * 60},
	{[]string{"jakarta", "pontianak", "bandung", "surabaya", "western indonesia", "indonesia"}, 7 * 60},
}

// TimezoneResolver turns user supplied zone names into locations and converts
// wall-clock selections into UTC instants.
type TimezoneResolver struct {
	logger *zap.SugaredLogger
}

func NewTimezoneResolver(logger *zap.SugaredLogger) *TimezoneResolver {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &TimezoneResolver{logger: logger}
}

// Location resolves zone. Unknown zones fall back to UTC with a warning so a
// bad client value never blocks a booking.
func (r *TimezoneResolver) Location(zone string) *time.Location {
	zone = strings.TrimSpace(zone)
	if zone == "" {
		r.logger.Warnw("empty timezone, using UTC")
		return time.UTC
	}

	// "Local" would leak the server's own zone into the conversion.
	if !strings.EqualFold(zone, "local") {
		if loc, err := time.LoadLocation(zone); err == nil {
			return loc
		}
	}

	if off, ok := staticOffsets[strings.ToUpper(zone)]; ok {
		return time.FixedZone(strings.ToUpper(zone), off*60)
	}
	if off, ok := parseGMTOffset(zone); ok {
		return time.FixedZone(zone, off*60)
	}
	if off, ok := indonesianOffset(zone); ok {
		return time.FixedZone(zone, off*60)
	}

	r.logger.Warnw("unresolvable timezone, using UTC", "zone", zone)
	return time.UTC
}

func parseGMTOffset(zone string) (int, bool) {
	m := gmtOffsetRx.FindStringSubmatch(strings.TrimSpace(zone))
	if m == nil {
		return 0, false
	}
	hours, _ := strconv.Atoi(m[2])
	minutes := 0
	if m[3] != "" {
		minutes, _ = strconv.Atoi(m[3])
	}
	if hours > 14 || minutes > 59 {
		return 0, false
	}
	off := hours*60 + minutes
	if m[1] == "-" {
		off = -off
	}
	return off, true
}

func indonesianOffset(zone string) (int, bool) {
	lower := strings.ToLower(zone)
	for _, z := range indonesianZones {
		for _, kw := range z.keywords {
			if strings.Contains(lower, kw) {
				return z.offset, true
			}
		}
	}
	return 0, false
}

// ToUTC interprets dateStr (yyyy-MM-dd) and timeStr (HH:MM) as wall-clock time
// in zone and returns the matching UTC instant. "24:00" means midnight of the
// following day.
func (r *TimezoneResolver) ToUTC(dateStr, timeStr, zone string) (time.Time, error) {
	loc := r.Location(zone)

	day, err := time.ParseInLocation(DateLayout, dateStr, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", dateStr, err)
	}
	minutes, err := parseClock(timeStr)
	if err != nil {
		return time.Time{}, err
	}

	y, m, d := day.Date()
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, loc).UTC(), nil
}

// OffsetMinutes is the east-positive UTC offset of zone at instant at.
func (r *TimezoneResolver) OffsetMinutes(zone string, at time.Time) int {
	_, off := at.In(r.Location(zone)).Zone()
	return off / 60
}

// FormatLocal renders t in zone using layout.
func (r *TimezoneResolver) FormatLocal(t time.Time, zone, layout string) string {
	return t.In(r.Location(zone)).Format(layout)
}

// DayWindow returns the UTC bounds of the calendar day dateStr in zone.
func (r *TimezoneResolver) DayWindow(dateStr, zone string) (time.Time, time.Time, error) {
	loc := r.Location(zone)
	day, err := time.ParseInLocation(DateLayout, dateStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse date %q: %w", dateStr, err)
	}
	return day.UTC(), day.AddDate(0, 0, 1).UTC(), nil
}
