package store

import (
	"adminctl/app/dto"
	"slices"
	"time"
)

const timestampLayout = time.RFC3339

// Activity describes one audited change.
type Activity struct {
	LogName     string
	Event       string
	Description string
	Causer      *User
	SubjectType string
	SubjectID   int64
	SubjectName string
	Properties  map[string]any
}

func (s *Store) AddActivity(a Activity) dto.ActivityLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextActivityID++

	entry := dto.ActivityLog{
		ID:          s.nextActivityID,
		LogName:     a.LogName,
		Description: a.Description,
		Event:       a.Event,
		Properties:  a.Properties,
		CreatedAt:   s.now().Format(timestampLayout),
	}

	if a.SubjectType != "" {
		subjectID := a.SubjectID
		entry.SubjectType = a.SubjectType
		entry.SubjectID = &subjectID
		entry.Subject = &dto.Subject{Type: a.SubjectType, Name: a.SubjectName}
	}

	if a.Causer != nil {
		causerID := a.Causer.ID
		entry.CauserType = "User"
		entry.CauserID = &causerID
		entry.Causer = &dto.Causer{ID: a.Causer.ID, Name: a.Causer.Name, Email: a.Causer.Email}
	}

	s.activities = append(s.activities, entry)

	return entry
}

// ActivityLogs returns the log newest first.
func (s *Store) ActivityLogs() []dto.ActivityLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := slices.Clone(s.activities)
	slices.Reverse(result)

	return result
}

func (s *Store) ActivityLog(id int64) (dto.ActivityLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.activities {
		if entry.ID == id {
			return entry, nil
		}
	}

	return dto.ActivityLog{}, notFound("Activity log")
}

func (s *Store) DeleteActivityLogs(ids []int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.activities)
	s.activities = slices.DeleteFunc(s.activities, func(entry dto.ActivityLog) bool {
		return slices.Contains(ids, entry.ID)
	})

	return before - len(s.activities)
}

func (s *Store) ActivityStats() dto.ActivityLogStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	week := today.AddDate(0, 0, -6)
	month := today.AddDate(0, -1, 0)

	stats := dto.ActivityLogStats{
		TotalActivities: int64(len(s.activities)),
		ByLogName:       map[string]int64{},
		ByEvent:         map[string]int64{},
	}

	for _, entry := range s.activities {
		stats.ByLogName[entry.LogName]++
		if entry.Event != "" {
			stats.ByEvent[entry.Event]++
		}

		created, err := time.Parse(timestampLayout, entry.CreatedAt)
		if err != nil {
			continue
		}
		if !created.Before(today) {
			stats.TodayActivities++
		}
		if !created.Before(week) {
			stats.WeekActivities++
		}
		if !created.Before(month) {
			stats.MonthActivities++
		}
	}

	return stats
}

func (s *Store) AddLogin(entry dto.LoginHistory) dto.LoginHistory {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextLoginID++
	entry.ID = s.nextLoginID
	entry.LoginAt = s.now().Format(timestampLayout)
	entry.CreatedAt = entry.LoginAt

	s.logins = append(s.logins, entry)

	return entry
}

// CloseLogin stamps logout_at on the newest open successful session of the
// user.
func (s *Store) CloseLogin(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.logins) - 1; i >= 0; i-- {
		entry := &s.logins[i]
		if entry.UserID == userID && entry.Status == dto.LoginStatusSuccess && entry.LogoutAt == "" {
			entry.LogoutAt = s.now().Format(timestampLayout)
			return
		}
	}
}

// LoginHistory returns the sessions newest first.
func (s *Store) LoginHistory() []dto.LoginHistory {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := slices.Clone(s.logins)
	slices.Reverse(result)

	return result
}

func (s *Store) LoginEntry(id int64) (dto.LoginHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.logins {
		if entry.ID == id {
			return entry, nil
		}
	}

	return dto.LoginHistory{}, notFound("Login history")
}
