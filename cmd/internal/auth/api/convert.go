package authapi

import (
	"cadastro/cmd/identity"
	"cadastro/cmd/internal/activity"
)

func toUserResponse(u identity.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		Age:         u.Age,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

func toUserResponses(us []identity.User) []userResponse {
	out := make([]userResponse, 0, len(us))
	for _, u := range us {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toLogEntryResponse(e activity.Entry) logEntryResponse {
	return logEntryResponse{
		ID:        e.ID,
		Timestamp: e.Timestamp,
		UserID:    e.UserID,
		Action:    string(e.Action),
		Details:   e.Details,
	}
}

func toLogEntryResponses(es []activity.Entry) []logEntryResponse {
	out := make([]logEntryResponse, 0, len(es))
	for _, e := range es {
		out = append(out, toLogEntryResponse(e))
	}
	return out
}
