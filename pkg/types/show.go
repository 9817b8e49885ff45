package types

import "strings"

// Show status values.
const (
	ShowStatusUnknown    = -1
	ShowStatusContinuing = 1
	ShowStatusEnded      = 0
	ShowStatusUpcoming   = 2
)

// Release weekday values. 1 through 7 are Monday through Sunday.
const (
	WeekdayUnknown = -1
	WeekdayDaily   = 0
)

// Show is a TV series. A show is identified either by a TMDB id or, for
// shows added before TMDB support, by a TVDB id; never both.
type Show struct {
	ID           int64
	TmdbID       *int64
	TvdbID       *int64
	Title        string
	Overview     string
	Network      string
	Poster       string
	Status       int
	Language     string
	ReleaseTime  int // HHMM, -1 when unknown.
	Weekday      int
	Timezone     string
	Country      string
	CustomTime   *int64
	CustomOffset *int64
	CustomZone   string
	RatingGlobal float64
	RatingVotes  int
	RatingUser   int
	Favorite     bool
	Hidden       bool
	Notify       bool
	NextEpisode  *int64
	NextAirMs    int64
	NextText     string
	LastWatchID  *int64
	LastWatchMs  int64
	Unwatched    int
	LastUpdated  int64
}

// Validate checks the identity invariant of a show.
func (s *Show) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return ErrInvalidData
	}
	if s.TmdbID != nil && s.TvdbID != nil {
		return ErrInvalidData
	}
	return nil
}

// Values returns the insertable columns of s. The row id is included only
// when set.
func (s *Show) Values() Values {
	v := Values{
		ShowTmdbID:                 nullable(s.TmdbID),
		ShowTvdbID:                 nullable(s.TvdbID),
		ShowTitle:                  s.Title,
		ShowTitleNoArticle:         TitleNoArticle(s.Title),
		ShowOverview:               s.Overview,
		ShowNetwork:                s.Network,
		ShowPoster:                 s.Poster,
		ShowStatus:                 int64(s.Status),
		ShowLanguage:               s.Language,
		ShowReleaseTime:            int64(s.ReleaseTime),
		ShowReleaseWeekday:         int64(s.Weekday),
		ShowReleaseTimezone:        s.Timezone,
		ShowReleaseCountry:         s.Country,
		ShowCustomReleaseTime:      nullable(s.CustomTime),
		ShowCustomReleaseDayOffset: nullable(s.CustomOffset),
		ShowCustomReleaseTimezone:  s.CustomZone,
		ShowRatingGlobal:           s.RatingGlobal,
		ShowRatingVotes:            int64(s.RatingVotes),
		ShowRatingUser:             int64(s.RatingUser),
		ShowFavorite:               boolInt(s.Favorite),
		ShowHidden:                 boolInt(s.Hidden),
		ShowNotify:                 boolInt(s.Notify),
		ShowNextEpisode:            nullable(s.NextEpisode),
		ShowNextAirMs:              s.NextAirMs,
		ShowNextText:               s.NextText,
		ShowLastWatchedID:          nullable(s.LastWatchID),
		ShowLastWatchedMs:          s.LastWatchMs,
		ShowUnwatchedCount:         int64(s.Unwatched),
		ShowLastUpdated:            s.LastUpdated,
	}
	if s.ID != 0 {
		v[ShowID] = s.ID
	}
	return v
}

// ShowFromRow decodes a row of the shows table or of a shows path.
func ShowFromRow(r Row) *Show {
	return &Show{
		ID:           r.Int64(ShowID),
		TmdbID:       r.NullInt64(ShowTmdbID),
		TvdbID:       r.NullInt64(ShowTvdbID),
		Title:        r.String(ShowTitle),
		Overview:     r.String(ShowOverview),
		Network:      r.String(ShowNetwork),
		Poster:       r.String(ShowPoster),
		Status:       r.Int(ShowStatus),
		Language:     r.String(ShowLanguage),
		ReleaseTime:  r.Int(ShowReleaseTime),
		Weekday:      r.Int(ShowReleaseWeekday),
		Timezone:     r.String(ShowReleaseTimezone),
		Country:      r.String(ShowReleaseCountry),
		CustomTime:   r.NullInt64(ShowCustomReleaseTime),
		CustomOffset: r.NullInt64(ShowCustomReleaseDayOffset),
		CustomZone:   r.String(ShowCustomReleaseTimezone),
		RatingGlobal: r.Float64(ShowRatingGlobal),
		RatingVotes:  r.Int(ShowRatingVotes),
		RatingUser:   r.Int(ShowRatingUser),
		Favorite:     r.Bool(ShowFavorite),
		Hidden:       r.Bool(ShowHidden),
		Notify:       r.Bool(ShowNotify),
		NextEpisode:  r.NullInt64(ShowNextEpisode),
		NextAirMs:    r.Int64(ShowNextAirMs),
		NextText:     r.String(ShowNextText),
		LastWatchID:  r.NullInt64(ShowLastWatchedID),
		LastWatchMs:  r.Int64(ShowLastWatchedMs),
		Unwatched:    r.Int(ShowUnwatchedCount),
		LastUpdated:  r.Int64(ShowLastUpdated),
	}
}

var leadingArticles = []string{"the ", "a ", "an "}

// TitleNoArticle strips one leading English article from title for sorting.
func TitleNoArticle(title string) string {
	t := strings.TrimSpace(title)
	lower := strings.ToLower(t)
	for _, a := range leadingArticles {
		if strings.HasPrefix(lower, a) && len(t) > len(a) {
			return strings.TrimSpace(t[len(a):])
		}
	}
	return t
}
