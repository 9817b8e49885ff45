package types

// Episode watched states.
const (
	EpisodeUnwatched = 0
	EpisodeIsWatched = 1
	EpisodeSkipped   = 2
)

// UnknownRelease marks an episode or movie without a release instant.
const UnknownRelease int64 = -1

// Episode belongs to one season of one show.
type Episode struct {
	ID             int64
	SeasonID       int64
	ShowID         int64
	TmdbID         *int64
	Title          string
	Overview       string
	Number         int
	SeasonNumber   int
	AbsoluteNumber int
	DvdNumber      float64
	Watched        int
	Plays          int
	Collected      bool
	FirstReleaseMs int64
	RatingGlobal   float64
	RatingVotes    int
	RatingUser     int
	LastUpdated    int64
}

// Values returns the insertable columns of e.
func (e *Episode) Values() Values {
	v := Values{
		EpisodeSeasonID:       e.SeasonID,
		EpisodeShowID:         e.ShowID,
		EpisodeTmdbID:         nullable(e.TmdbID),
		EpisodeTitle:          e.Title,
		EpisodeOverview:       e.Overview,
		EpisodeNumber:         int64(e.Number),
		EpisodeSeasonNumber:   int64(e.SeasonNumber),
		EpisodeAbsoluteNumber: int64(e.AbsoluteNumber),
		EpisodeDvdNumber:      e.DvdNumber,
		EpisodeWatched:        int64(e.Watched),
		EpisodePlays:          int64(e.Plays),
		EpisodeCollected:      boolInt(e.Collected),
		EpisodeFirstReleaseMs: e.FirstReleaseMs,
		EpisodeRatingGlobal:   e.RatingGlobal,
		EpisodeRatingVotes:    int64(e.RatingVotes),
		EpisodeRatingUser:     int64(e.RatingUser),
		EpisodeLastUpdated:    e.LastUpdated,
	}
	if e.ID != 0 {
		v[EpisodeID] = e.ID
	}
	return v
}

// EpisodeFromRow decodes an episodes row.
func EpisodeFromRow(r Row) *Episode {
	return &Episode{
		ID:             r.Int64(EpisodeID),
		SeasonID:       r.Int64(EpisodeSeasonID),
		ShowID:         r.Int64(EpisodeShowID),
		TmdbID:         r.NullInt64(EpisodeTmdbID),
		Title:          r.String(EpisodeTitle),
		Overview:       r.String(EpisodeOverview),
		Number:         r.Int(EpisodeNumber),
		SeasonNumber:   r.Int(EpisodeSeasonNumber),
		AbsoluteNumber: r.Int(EpisodeAbsoluteNumber),
		DvdNumber:      r.Float64(EpisodeDvdNumber),
		Watched:        r.Int(EpisodeWatched),
		Plays:          r.Int(EpisodePlays),
		Collected:      r.Bool(EpisodeCollected),
		FirstReleaseMs: r.Int64(EpisodeFirstReleaseMs),
		RatingGlobal:   r.Float64(EpisodeRatingGlobal),
		RatingVotes:    r.Int(EpisodeRatingVotes),
		RatingUser:     r.Int(EpisodeRatingUser),
		LastUpdated:    r.Int64(EpisodeLastUpdated),
	}
}
