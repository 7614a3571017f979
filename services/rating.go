package services

import "ecommerce-backend/models"

// AverageRating is the arithmetic mean of the review ratings, or 0 when there
// are no reviews.
func AverageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum float64
	for _, r := range reviews {
		sum += r.Rating
	}
	return sum / float64(len(reviews))
}
