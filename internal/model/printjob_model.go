package model

// PrintJob is a receipt payload that exhausted its automatic delivery
// retries and waits in the offline queue for a manual replay.
type PrintJob struct {
	ID            string `json:"id"`
	Timestamp     int64  `json:"timestamp"` // epoch millis
	DeviceAddress string `json:"deviceAddress"`
	Payload       string `json:"json"`
}
