package models

import "time"

// BadgeMetric identifies which activity metric a badge rule checks.
type BadgeMetric string

const (
	MetricDebatesCreated    BadgeMetric = "debatesCount"
	MetricVotesCast         BadgeMetric = "votesCount"
	MetricComments          BadgeMetric = "commentsCount"
	MetricReplies           BadgeMetric = "repliesCount"
	MetricReactions         BadgeMetric = "reactionsCount"
	MetricDebatesByCategory BadgeMetric = "debatesByCategory"
)

// BadgeDefinition is an immutable achievement rule: when the metric's
// counter reaches Threshold the badge is awarded once and XP is added to
// the user's score. Category applies only to MetricDebatesByCategory.
type BadgeDefinition struct {
	ID          string      `json:"badgeId"`
	Name        string      `json:"badgeName"`
	Description string      `json:"description"`
	XP          float64     `json:"xp"`
	Metric      BadgeMetric `json:"metric"`
	Threshold   int64       `json:"threshold"`
	Category    string      `json:"category,omitempty"`
}

// GamificationEvent is broadcast over the websocket hub when a badge is
// awarded.
type GamificationEvent struct {
	Type      string    `json:"type"`
	Username  string    `json:"username"`
	BadgeID   string    `json:"badgeId,omitempty"`
	BadgeName string    `json:"badgeName,omitempty"`
	XP        float64   `json:"xp,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
