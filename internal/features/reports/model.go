package reports

import (
	"time"
)

// Report statuses follow the dashboard workflow: Submitted -> Assigned -> Resolved.
const (
	StatusSubmitted = "Submitted"
	StatusAssigned  = "Assigned"
	StatusResolved  = "Resolved"
)

// GeoPoint is a GeoJSON point stored as [longitude, latitude] so the
// 2dsphere index can serve viewport queries.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

func NewGeoPoint(lon, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lon, lat}}
}

func (p GeoPoint) Longitude() float64 { return p.Coordinates[0] }
func (p GeoPoint) Latitude() float64  { return p.Coordinates[1] }

// Report is the durable entity created once by the ingestion pipeline.
// Everything except status and assignedParty is immutable after creation.
type Report struct {
	ID             string                 `bson:"_id" json:"report_id"`
	CreatedAt      time.Time              `bson:"createdAt" json:"created_at"`
	UpdatedAt      time.Time              `bson:"updatedAt" json:"updated_at"`
	Category       string                 `bson:"category" json:"category"`
	CategoryDetail map[string]interface{} `bson:"categoryDetail,omitempty" json:"category_detail,omitempty"`
	Description    string                 `bson:"description" json:"description"`
	Location       GeoPoint               `bson:"location" json:"location"`
	Accuracy       *float64               `bson:"accuracy,omitempty" json:"accuracy,omitempty"`
	Severity       int                    `bson:"severity" json:"severity"`
	Contact        string                 `bson:"contact,omitempty" json:"contact,omitempty"`
	Status         string                 `bson:"status" json:"status"`
	AssignedParty  string                 `bson:"assignedParty,omitempty" json:"assigned_party,omitempty"`
	ImageURL       string                 `bson:"imageUrl,omitempty" json:"image_url,omitempty"`
}

// GeoData mirrors the geo_data form field: {latitude, longitude, accuracy}
type GeoData struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

// ImageUpload carries the optional photo attached to a submission
type ImageUpload struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Submission is one raw citizen report before ingestion
type Submission struct {
	Category           string
	Description        string
	Geo                GeoData
	Severity           int
	Contact            string
	ContractorAssigned string
	Image              *ImageUpload
}

// Receipt is returned to the submitter. ImageURL is null when no image was
// supplied; Classification is empty when the classifier was skipped or failed.
type Receipt struct {
	ReportID       string  `json:"report_id"`
	ImageURL       *string `json:"image_url"`
	Classification string  `json:"classification"`
}

// UpdateStatusRequest is the dashboard payload for a status transition
type UpdateStatusRequest struct {
	Status        string `json:"status" binding:"required"`
	AssignedParty string `json:"assigned_party"`
}

var statusRank = map[string]int{
	StatusSubmitted: 0,
	StatusAssigned:  1,
	StatusResolved:  2,
}

// CanTransition reports whether a status change moves forward in the
// Submitted -> Assigned -> Resolved workflow.
func CanTransition(from, to string) bool {
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}
