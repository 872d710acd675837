package dto

type Causer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type Subject struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type ActivityLog struct {
	ID          int64          `json:"id"`
	LogName     string         `json:"log_name"`
	Description string         `json:"description"`
	SubjectType string         `json:"subject_type,omitempty"`
	SubjectID   *int64         `json:"subject_id,omitempty"`
	Subject     *Subject       `json:"subject,omitempty"`
	Event       string         `json:"event,omitempty"`
	CauserType  string         `json:"causer_type,omitempty"`
	CauserID    *int64         `json:"causer_id,omitempty"`
	Causer      *Causer        `json:"causer,omitempty"`
	Properties  map[string]any `json:"properties,omitempty"`
	BatchUUID   string         `json:"batch_uuid,omitempty"`
	CreatedAt   string         `json:"created_at"`
	// Relative time, e.g. "2 hours ago", provided by the backend
	CreatedAtHuman string `json:"created_at_human,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}

type ActivityLogStats struct {
	TotalActivities int64            `json:"total_activities"`
	TodayActivities int64            `json:"today_activities"`
	WeekActivities  int64            `json:"week_activities"`
	MonthActivities int64            `json:"month_activities"`
	ByLogName       map[string]int64 `json:"by_log_name"`
	ByEvent         map[string]int64 `json:"by_event"`
}

type LoginHistoryUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type LoginHistory struct {
	ID         int64             `json:"id"`
	UserID     int64             `json:"user_id"`
	User       *LoginHistoryUser `json:"user,omitempty"`
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent,omitempty"`
	Device     string            `json:"device,omitempty"`
	Browser    string            `json:"browser,omitempty"`
	Platform   string            `json:"platform,omitempty"`
	Location   string            `json:"location,omitempty"`
	LoginAt    string            `json:"login_at"`
	LogoutAt   string            `json:"logout_at,omitempty"`
	Status     string            `json:"status"`
	CreatedAt  string            `json:"created_at,omitempty"`
}

const (
	LoginStatusSuccess = "success"
	LoginStatusFailed  = "failed"
)

// ModulePermissions groups permissions by the module they belong to.
type ModulePermissions struct {
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Permissions []Permission `json:"permissions"`
}

type ModulePermissionsResponse struct {
	ModulePermissions []ModulePermissions `json:"modulePermissions"`
}
