package models

import "gorm.io/gorm"

const (
	NotificationKindArrival      = "container_arrival"
	NotificationKindImportReport = "import_report"
	NotificationKindOpsDigest    = "ops_digest"
)

const (
	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"
)

// NotificationLog records every outbound email so failed sends can be traced
// without digging through SMTP server logs.
type NotificationLog struct {
	gorm.Model
	Kind      string `json:"kind" gorm:"index"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Status    string `json:"status" gorm:"default:'sent'"`
	Error     string `json:"error"`
}
