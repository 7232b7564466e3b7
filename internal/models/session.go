package models

import "time"

// UserInfo identifies a signed-in user as reported by the identity provider.
type UserInfo struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// SessionState is cached per-user interaction state (current screen step
// plus scratch data). Kept in Redis with a TTL, memory as fallback.
type SessionState struct {
	UserID      string                 `json:"user_id"`
	CurrentStep string                 `json:"current_step"`
	TempData    map[string]interface{} `json:"temp_data,omitempty"`
	SignedInAt  time.Time              `json:"signed_in_at"`
}

// GetString reads a string value from TempData, empty when absent.
func (s *SessionState) GetString(key string) string {
	if s.TempData == nil {
		return ""
	}
	if str, ok := s.TempData[key].(string); ok {
		return str
	}
	return ""
}

// GetTime reads a time value from TempData, zero when absent or malformed.
func (s *SessionState) GetTime(key string) time.Time {
	if s.TempData == nil {
		return time.Time{}
	}
	switch v := s.TempData[key].(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}
		}
		return t
	default:
		return time.Time{}
	}
}
