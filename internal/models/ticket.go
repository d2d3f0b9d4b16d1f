package models

import "time"

// Ticket statuses. "draft" exists only between a save-as-draft and the
// first real submit; drafts are excluded from dashboard stats.
const (
	StatusDraft      = "draft"
	StatusOpen       = "open"
	StatusInProgress = "in progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

const (
	CategoryTechnical      = "technical"
	CategoryBilling        = "billing"
	CategoryGeneral        = "general"
	CategoryBugReport      = "bug report"
	CategoryFeatureRequest = "feature request"
)

// FilterAll is the sentinel accepted by the status/category filters.
const FilterAll = "all"

func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func ValidCategory(c string) bool {
	switch c {
	case CategoryTechnical, CategoryBilling, CategoryGeneral, CategoryBugReport, CategoryFeatureRequest:
		return true
	}
	return false
}

type Ticket struct {
	ID           string       `json:"id"`
	TicketNumber string       `json:"ticket_number"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Category     string       `json:"category"`
	Status       string       `json:"status"`
	Priority     string       `json:"priority"`
	CreatedBy    string       `json:"user_id"`
	CreatorName  string       `json:"creator_name,omitempty"`
	Assignee     string       `json:"assignee_id,omitempty"`
	AssigneeName string       `json:"assignee_name,omitempty"`
	Upvotes      int          `json:"upvotes"`
	IsUpvoted    bool         `json:"isUpvoted"` // per requesting user
	CommentCount int          `json:"comment_count"`
	Attachments  []Attachment `json:"attachments,omitempty"`
	Comments     []Comment    `json:"comments,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"last_modified"`
}

// Comment is one message on a ticket. ParentID, when set, must point at a
// top-level comment of the same ticket (replies nest one level only).
type Comment struct {
	ID          string       `json:"id"`
	TicketID    string       `json:"ticket_id"`
	AuthorID    string       `json:"author_id"`
	AuthorName  string       `json:"author_name,omitempty"`
	AuthorEmail string       `json:"author_email,omitempty"`
	Body        string       `json:"content"`
	ParentID    *string      `json:"parent_id,omitempty"`
	IsAgent     bool         `json:"is_agent"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

type Attachment struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"type"`
	Path        string `json:"path"`
	URL         string `json:"url"`
}

// Draft is the server-side copy of an unsubmitted ticket form. One per user.
type Draft struct {
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	UpdatedAt   time.Time `json:"saved_at"`
}

// TicketStats is the dashboard stat block. Drafts are not counted.
type TicketStats struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
}
