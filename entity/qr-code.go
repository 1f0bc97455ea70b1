package entity

import (
	"fmt"
	"time"
)

const NamePrefix = "QR-"

// QRCode is keyed by Code, stored as the document _id in qr_codes.
// ScanCount is changed only by the store increment, never by a document write.
type QRCode struct {
	Code      string    `json:"code" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	TargetURL string    `json:"target_url" bson:"target_url"`
	ScanURL   string    `json:"scan_url" bson:"scan_url"`
	ImageURL  *string   `json:"image_url" bson:"image_url"`
	IsActive  bool      `json:"is_active" bson:"is_active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	ScanCount int64     `json:"scan_count" bson:"scan_count"`
}

// DefaultName display label used when none was given
func DefaultName(code string) string {
	return NamePrefix + code
}

// ScanURL redirect endpoint for a code; base has no trailing slash
func ScanURL(base, code string) string {
	return fmt.Sprintf("%s/%s", base, code)
}

// ScanTarget is the part of a record the redirect decision depends on
type ScanTarget struct {
	TargetURL string `json:"target_url"`
	IsActive  bool   `json:"is_active"`
}

func (q *QRCode) Target() ScanTarget {
	return ScanTarget{
		TargetURL: q.TargetURL,
		IsActive:  q.IsActive,
	}
}

// Stats aggregate over all records
type Stats struct {
	TotalCodes int64 `json:"total_codes"`
	TotalScans int64 `json:"total_scans"`
}
