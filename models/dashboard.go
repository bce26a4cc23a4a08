package models

type DashboardStats struct {
	TeamsTotal      int `json:"teams"`
	CandidatesTotal int `json:"candidates"`
	EventsTotal     int `json:"events"`
	CategoriesTotal int `json:"categories"`
}
