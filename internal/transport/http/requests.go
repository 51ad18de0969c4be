package http

type sendReportRequest struct {
	UserID string `json:"user_id" validate:"required,custom_id,min=1,max=64"`
}

type upsertCooldownRequest struct {
	UserID        string `json:"user_id" validate:"required,custom_id,min=1,max=64"`
	NextStart     string `json:"next_start" validate:"required,ymd_date"`
	DurationWeeks int    `json:"duration_weeks" validate:"required,min=1,max=52"`
}

type optRecipientRequest struct {
	UserID  string `json:"user_id" validate:"required,custom_id,min=1,max=64"`
	OptedIn bool   `json:"opted_in"`
}
