package validator

import (
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	urlRegex   = regexp.MustCompile(`^https?:\/\/(www\.)?[-a-zA-Z0-9@:%._\+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b([-a-zA-Z0-9()@:%_\+.~#?&//=]*)$`)
)

// IsValidEmail checks if the email format is valid
func IsValidEmail(email string) bool {
	if strings.TrimSpace(email) == "" {
		return false
	}
	return emailRegex.MatchString(email)
}

// IsValidURL checks if the URL format is valid
func IsValidURL(url string) bool {
	if strings.TrimSpace(url) == "" {
		return false
	}
	return urlRegex.MatchString(url)
}

// IsValidLatitude checks the latitude is within WGS84 bounds
func IsValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

// IsValidLongitude checks the longitude is within WGS84 bounds
func IsValidLongitude(lon float64) bool {
	return lon >= -180 && lon <= 180
}

// IsValidSeverity checks the severity ordinal is in the accepted range
func IsValidSeverity(severity int) bool {
	return severity >= 1 && severity <= 5
}
