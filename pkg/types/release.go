package types

import (
	"strings"
	"time"

	// Embedded zone data keeps release instants stable on hosts without a
	// zoneinfo database.
	_ "time/tzdata"
)

// FallbackTimezone is used when neither the show timezone nor its country
// resolves to a location.
const FallbackTimezone = "America/New_York"

var countryTimezones = map[string]string{
	"us": "America/New_York",
	"ca": "America/Toronto",
	"gb": "Europe/London",
	"ie": "Europe/Dublin",
	"de": "Europe/Berlin",
	"at": "Europe/Vienna",
	"ch": "Europe/Zurich",
	"fr": "Europe/Paris",
	"es": "Europe/Madrid",
	"it": "Europe/Rome",
	"nl": "Europe/Amsterdam",
	"se": "Europe/Stockholm",
	"no": "Europe/Oslo",
	"dk": "Europe/Copenhagen",
	"fi": "Europe/Helsinki",
	"jp": "Asia/Tokyo",
	"kr": "Asia/Seoul",
	"cn": "Asia/Shanghai",
	"in": "Asia/Kolkata",
	"au": "Australia/Sydney",
	"nz": "Pacific/Auckland",
	"br": "America/Sao_Paulo",
	"mx": "America/Mexico_City",
}

// ReleaseLocation resolves the zone a show releases in: an explicit IANA
// timezone wins, then the country's main zone, then FallbackTimezone.
func ReleaseLocation(timezone, country string) *time.Location {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err == nil {
			return loc
		}
	}
	if name, ok := countryTimezones[strings.ToLower(strings.TrimSpace(country))]; ok {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	loc, err := time.LoadLocation(FallbackTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ReleaseInstant converts a release date ("2006-01-02", or a full RFC 3339
// timestamp) plus the show's HHMM release time and zone into epoch
// milliseconds. An empty or malformed date yields UnknownRelease. A negative
// or malformed release time means midnight.
func ReleaseInstant(date string, releaseTime int, timezone, country string) int64 {
	return releaseInstant(date, releaseTime, 0, timezone, country)
}

// ReleaseInstant is ReleaseInstant with the show's custom overrides
// applied: a custom release time and timezone replace the show's own, and
// the day offset moves the release by whole local days. Instants given as
// full timestamps are not shifted.
func (s *Show) ReleaseInstant(date string) int64 {
	releaseTime, zone, days := s.ReleaseTime, s.Timezone, 0
	if s.CustomTime != nil {
		releaseTime = int(*s.CustomTime)
	}
	if s.CustomZone != "" {
		zone = s.CustomZone
	}
	if s.CustomOffset != nil {
		days = int(*s.CustomOffset)
	}
	return releaseInstant(date, releaseTime, days, zone, s.Country)
}

func releaseInstant(date string, releaseTime, days int, timezone, country string) int64 {
	date = strings.TrimSpace(date)
	if date == "" {
		return UnknownRelease
	}
	if ts, err := time.Parse(time.RFC3339, date); err == nil {
		return ts.UnixMilli()
	}
	day, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return UnknownRelease
	}

	hour, minute := 0, 0
	if releaseTime >= 0 {
		h, m := releaseTime/100, releaseTime%100
		if h < 24 && m < 60 {
			hour, minute = h, m
		}
	}

	loc := ReleaseLocation(timezone, country)
	return time.Date(day.Year(), day.Month(), day.Day()+days, hour, minute, 0, 0, loc).UnixMilli()
}

// LegacyTimeOfDay converts a time of day stored as milliseconds since
// midnight into HHMM. Negative input yields -1.
func LegacyTimeOfDay(ms int64) int {
	if ms < 0 {
		return -1
	}
	minutes := (ms / 60000) % (24 * 60)
	return int(minutes/60*100 + minutes%60)
}
