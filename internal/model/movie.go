package model

import "time"

// MovieInfo is a row of the built-in demo movie table.
type MovieInfo struct {
	ID              int       `json:"id"`
	Title           string    `json:"title"`
	Year            int       `json:"year"`
	Votes           int       `json:"votes"`
	Rating          float64   `json:"rating"`
	Date            time.Time `json:"date"`
	RestfulAssembly string    `json:"restfulAssembly"`
}

// TMDBMovieResult is a single entry of a TMDB movie listing.
type TMDBMovieResult struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	OriginalLanguage string  `json:"original_language"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	Popularity       float64 `json:"popularity"`
	VoteCount        int     `json:"vote_count"`
	VoteAverage      float64 `json:"vote_average"`
	Video            bool    `json:"video"`
	Adult            bool    `json:"adult"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	GenreIDs         []int   `json:"genre_ids"`
}

// TMDBMovieList is a page of TMDB movie results.
type TMDBMovieList struct {
	Page         int               `json:"page"`
	TotalResults int               `json:"total_results"`
	TotalPages   int               `json:"total_pages"`
	Results      []TMDBMovieResult `json:"results"`
}

// TMDBMovie holds the details of a single TMDB movie.
type TMDBMovie struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Homepage string `json:"homepage"`
}
