package types

// Movie is keyed by its TMDB id; inserting a movie that already exists
// replaces it.
type Movie struct {
	ID               int64
	TmdbID           int64
	ImdbID           string
	Title            string
	Overview         string
	ReleaseMs        int64
	RuntimeMin       int
	Poster           string
	InCollection     bool
	InWatchlist      bool
	Watched          bool
	Plays            int
	RatingTmdb       float64
	RatingTmdbVotes  int
	RatingTrakt      float64
	RatingTraktVotes int
	RatingUser       int
	LastWatchedMs    int64
	LastUpdated      int64
}

// Values returns the insertable columns of m.
func (m *Movie) Values() Values {
	return Values{
		MovieTmdbID:           m.TmdbID,
		MovieImdbID:           m.ImdbID,
		MovieTitle:            m.Title,
		MovieTitleNoArticle:   TitleNoArticle(m.Title),
		MovieOverview:         m.Overview,
		MovieReleaseMs:        m.ReleaseMs,
		MovieRuntimeMin:       int64(m.RuntimeMin),
		MoviePoster:           m.Poster,
		MovieInCollection:     boolInt(m.InCollection),
		MovieInWatchlist:      boolInt(m.InWatchlist),
		MovieWatched:          boolInt(m.Watched),
		MoviePlays:            int64(m.Plays),
		MovieRatingTmdb:       m.RatingTmdb,
		MovieRatingTmdbVotes:  int64(m.RatingTmdbVotes),
		MovieRatingTrakt:      m.RatingTrakt,
		MovieRatingTraktVotes: int64(m.RatingTraktVotes),
		MovieRatingUser:       int64(m.RatingUser),
		MovieLastWatchedMs:    m.LastWatchedMs,
		MovieLastUpdated:      m.LastUpdated,
	}
}

// MovieFromRow decodes a movies row.
func MovieFromRow(r Row) *Movie {
	return &Movie{
		ID:               r.Int64(MovieID),
		TmdbID:           r.Int64(MovieTmdbID),
		ImdbID:           r.String(MovieImdbID),
		Title:            r.String(MovieTitle),
		Overview:         r.String(MovieOverview),
		ReleaseMs:        r.Int64(MovieReleaseMs),
		RuntimeMin:       r.Int(MovieRuntimeMin),
		Poster:           r.String(MoviePoster),
		InCollection:     r.Bool(MovieInCollection),
		InWatchlist:      r.Bool(MovieInWatchlist),
		Watched:          r.Bool(MovieWatched),
		Plays:            r.Int(MoviePlays),
		RatingTmdb:       r.Float64(MovieRatingTmdb),
		RatingTmdbVotes:  r.Int(MovieRatingTmdbVotes),
		RatingTrakt:      r.Float64(MovieRatingTrakt),
		RatingTraktVotes: r.Int(MovieRatingTraktVotes),
		RatingUser:       r.Int(MovieRatingUser),
		LastWatchedMs:    r.Int64(MovieLastWatchedMs),
		LastUpdated:      r.Int64(MovieLastUpdated),
	}
}
