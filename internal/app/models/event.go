package models

import "time"

// AdmissionEventType names a change to the application collection
type AdmissionEventType string

const (
	EventApplicationCreated  AdmissionEventType = "application.created"
	EventApplicationUpdated  AdmissionEventType = "application.updated"
	EventApplicationApproved AdmissionEventType = "application.approved"
	EventApplicationRejected AdmissionEventType = "application.rejected"
	EventApplicationDeleted  AdmissionEventType = "application.deleted"
)

// AdmissionEvent is pushed to dashboard subscribers after every successful mutation
type AdmissionEvent struct {
	Type          AdmissionEventType `json:"type"`
	ApplicationID string             `json:"applicationId"`
	Application   *Application       `json:"application,omitempty"`
	Stats         *Stats             `json:"stats,omitempty"`
	Timestamp     time.Time          `json:"timestamp"`
}
