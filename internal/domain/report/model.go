package report

import (
	"time"

	"github.com/google/uuid"
)

// Report is one archived issue-report submission. The live copy of the
// issue lives in the LINC backend; this record is the gateway's audit
// trail of what was sent and how the backend answered.
type Report struct {
	ID          uuid.UUID  `json:"id"`
	Description string     `json:"description"`
	PageURL     string     `json:"page_url"`
	BrowserInfo string     `json:"browser_info,omitempty"`
	Screenshot  *string    `json:"screenshot,omitempty"`
	ConsoleLogs []string   `json:"console_logs"`
	Status      string     `json:"status"`
	BackendRef  *string    `json:"backend_ref,omitempty"`
	SubmittedBy *uuid.UUID `json:"submitted_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SubmitRequest captures an incoming issue report from the admin UI.
// Screenshot arrives as a base64 data URL produced client-side.
type SubmitRequest struct {
	Description string   `json:"description" validate:"required,min=5"`
	PageURL     string   `json:"page_url" validate:"required,url"`
	BrowserInfo string   `json:"browser_info" validate:"max=512"`
	Screenshot  string   `json:"screenshot"`
	ConsoleLogs []string `json:"console_logs"`
}

// Filter encapsulates pagination and filter params for the archive.
type Filter struct {
	Status string
	Limit  int
	Offset int
}
