package domain

import (
	"errors"
	"strings"
)

const (
	MinRating = 1
	MaxRating = 5
)

var (
	ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")
	ErrEmptyComment     = errors.New("comment must not be empty")
)

type Reply struct {
	User    string `json:"user"`
	Content string `json:"content"`
}

type Review struct {
	ID        string  `json:"_id,omitempty"`
	Username  string  `json:"username"`
	ProductID string  `json:"productId"`
	Rating    int     `json:"rating"`
	Comment   string  `json:"comment"`
	Replies   []Reply `json:"replies,omitempty"`
}

func (r Review) Validate() error {
	if r.Rating < MinRating || r.Rating > MaxRating {
		return ErrRatingOutOfRange
	}
	if strings.TrimSpace(r.Comment) == "" {
		return ErrEmptyComment
	}
	return nil
}

// FindReviewBy returns the review written by username, if any.
func FindReviewBy(reviews []Review, username string) (*Review, bool) {
	for i := range reviews {
		if reviews[i].Username == username {
			return &reviews[i], true
		}
	}
	return nil, false
}
