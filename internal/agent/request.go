package agent

import (
	"fmt"

	"github.com/tidwall/sjson"
)

// LearningProfile tunes how the tutor agent explains things.
type LearningProfile struct {
	Style       string `json:"style"`
	Depth       string `json:"depth"`
	Interaction string `json:"interaction"`
}

// DefaultLearningProfile is used when a session carries none.
func DefaultLearningProfile() LearningProfile {
	return LearningProfile{Style: "conceptual", Depth: "beginner", Interaction: "examples"}
}

// Request is the single JSON line written to the agent's stdin.
type Request struct {
	UserID    string
	CourseID  string
	ChapterID string
	Prompt    string
	Language  string
	Profile   *LearningProfile
	SessionID string
}

// Encode renders the request in the agent's wire shape. Empty optional
// fields are omitted so the agent falls back to its own defaults.
func (r Request) Encode() ([]byte, error) {
	profile := DefaultLearningProfile()
	if r.Profile != nil {
		profile = *r.Profile
	}
	language := r.Language
	if language == "" {
		language = "english"
	}

	doc := []byte(`{}`)
	var err error
	set := func(path string, value interface{}) {
		if err != nil {
			return
		}
		doc, err = sjson.SetBytes(doc, path, value)
	}
	if r.UserID != "" {
		set("userId", r.UserID)
	}
	if r.CourseID != "" {
		set("courseId", r.CourseID)
	}
	if r.ChapterID != "" {
		set("chapterId", r.ChapterID)
	}
	set("prompt", r.Prompt)
	set("language", language)
	set("learningProfile.style", profile.Style)
	set("learningProfile.depth", profile.Depth)
	set("learningProfile.interaction", profile.Interaction)
	if r.SessionID != "" {
		set("session_id", r.SessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("encode agent request: %w", err)
	}
	return doc, nil
}
