package domain

// SweepSummary is the result of one lifecycle sweep run.
type SweepSummary struct {
	RemindersSent       int      `json:"reminders_sent"`
	OverdueAlertsSent   int      `json:"overdue_alerts_sent"`
	OrdersMarkedOverdue int      `json:"orders_marked_overdue"`
	Errors              []string `json:"errors"`
}
