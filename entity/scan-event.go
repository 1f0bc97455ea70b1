package entity

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// ScanEvent one entry of the append-only qr_scans log; it is kept after its code is deleted
type ScanEvent struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Code           string             `json:"code" bson:"code"`
	ScannedAt      time.Time          `json:"scanned_at" bson:"scanned_at"`
	IP             *string            `json:"ip" bson:"ip"`
	UserAgent      *string            `json:"user_agent" bson:"user_agent"`
	Referrer       *string            `json:"referrer" bson:"referrer"`
	AcceptLanguage *string            `json:"accept_language" bson:"accept_language"`
}

// ScanMeta request details recorded with a scan; empty values are stored as null
type ScanMeta struct {
	IP             string
	UserAgent      string
	Referrer       string
	AcceptLanguage string
}

func (m ScanMeta) Event(code string, at time.Time) *ScanEvent {
	return &ScanEvent{
		Code:           code,
		ScannedAt:      at,
		IP:             nullable(m.IP),
		UserAgent:      nullable(m.UserAgent),
		Referrer:       nullable(m.Referrer),
		AcceptLanguage: nullable(m.AcceptLanguage),
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
