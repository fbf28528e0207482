// ABOUTME: Data models for referral pipeline entities
// ABOUTME: Defines Prospect, Referral, Task, Template, AdvisorProfile, and Client structs
package models

import (
	"time"
)

// Prospect is a person from a client's network. It is owned by whatever
// supplies the network listing and is copied into a Referral at creation.
type Prospect struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Title      string `json:"title,omitempty"`
	Company    string `json:"company,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	ProfileURL string `json:"profile_url,omitempty"`
	Industry   string `json:"industry,omitempty"`
	Location   string `json:"location,omitempty"`
}

// Contact holds the coordinates used to reach a prospect.
type Contact struct {
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	ProfileURL string `json:"profile_url"`
}

// HasDirectLine reports whether an email or phone number is known.
func (c Contact) HasDirectLine() bool {
	return c.Email != "" || c.Phone != ""
}

type Referral struct {
	ID             string    `json:"id"`
	ClientID       string    `json:"client_id"`
	ClientName     string    `json:"client_name"`
	Prospect       Prospect  `json:"prospect"`
	Contact        Contact   `json:"contact"`
	Stage          Stage     `json:"stage"`
	Note           string    `json:"note,omitempty"`
	Response       Response  `json:"response"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	// StageEnteredAt is when Stage was last assigned; NextDueDate counts from its day.
	StageEnteredAt time.Time `json:"stage_entered_at"`
	NextDueDate    *Date     `json:"next_due_date"`
}

// Task status constants.
const (
	TaskStatusOpen = "open"
	TaskStatusDone = "done"
)

// Task type constants.
const (
	TaskTypeAskCoordinates = "ask_coordinates"
	TaskTypeFollowup       = "followup"
	TaskTypeGeneric        = "generic"
)

type Task struct {
	ID          string     `json:"id"`
	ReferralID  string     `json:"referral_id"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	DueDate     Date       `json:"due_date"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// IsOpen returns true until the task has been completed.
func (t Task) IsOpen() bool {
	return t.Status != TaskStatusDone
}

type Template struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
	Body string `json:"body" yaml:"body"`
}

// AdvisorProfile is the rendering context supplied to message templates.
type AdvisorProfile struct {
	AdvisorName  string `json:"advisor_name"`
	ValueProp    string `json:"value_prop"`
	CalendarLink string `json:"calendar_link"`
}

// DefaultAdvisorProfile returns the profile used before the advisor edits theirs.
func DefaultAdvisorProfile() AdvisorProfile {
	return AdvisorProfile{
		AdvisorName: "Advisor",
		ValueProp:   "people like you with planning and decision-making",
	}
}

type Client struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Title      string    `json:"title,omitempty"`
	ProfileURL string    `json:"profile_url,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	Referrals  int       `json:"referrals"`
	LastReview *Date     `json:"last_review,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
