package handler

import (
	"time"

	consentModel "agency/internal/consent/models"
	"agency/internal/consent/service"
)

// CreateVisitorResponse is returned by POST /v1/visitors.
type CreateVisitorResponse struct {
	VisitorID string         `json:"visitorId"`
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Consents  *service.State `json:"consents"`
}

type HistoryResponse struct {
	History []consentModel.Record `json:"history"`
}

type PreferencesResponse struct {
	Preferences consentModel.Preferences `json:"preferences"`
}
