// ABOUTME: Stock outreach templates shipped with warmpath
// ABOUTME: Used until the advisor imports or edits their own templates
package templates

import "github.com/harperreed/warmpath/models"

// Template type constants for the stock templates.
const (
	TypeAskCoordinates  = "ask_coordinates"
	TypeAskIntro        = "ask_intro"
	TypeAdvisorFollowup = "advisor_followup"
)

const askCoordinatesBody = `Hi {clientName} — quick question: what's the best email (and/or phone) for {prospectName}?

I'd like to reach out with a brief note and a simple next step.

Thank you,
{advisorName}`

const askIntroBody = `Hi {clientName} — would you be open to introducing me to {prospectName}?

Reason: {reason}

If yes, here's a draft you can forward/edit:

---
Subject: Introduction — {advisorName} <> {prospectName}

Hi {prospectName},

Hope you're doing well. I'd like to introduce you to {advisorName}. {advisorName} helps {valueProp}.

{context}

If you're open to it, would you be willing to do a quick 15-minute call? Here's a link: {calendarLink}

Best,
{clientName}
---

Thank you,
{advisorName}`

const followupBody = `Hi {prospectName} — thank you again for the introduction, and for taking the time.

Based on what {clientName} shared, I thought it could be helpful to connect because {reason}.

If it's useful, here is my calendar link: {calendarLink}

Best,
{advisorName}`

// Defaults returns a fresh copy of the stock templates.
func Defaults() []models.Template {
	return []models.Template{
		{
			ID:   "tpl-ask-coordinates",
			Name: "Ask client for email/phone",
			Type: TypeAskCoordinates,
			Body: askCoordinatesBody,
		},
		{
			ID:   "tpl-ask-intro",
			Name: "Ask client to make intro",
			Type: TypeAskIntro,
			Body: askIntroBody,
		},
		{
			ID:   "tpl-followup-after-intro",
			Name: "Advisor follow-up after intro",
			Type: TypeAdvisorFollowup,
			Body: followupBody,
		},
	}
}

// Find returns the template with id, or the first template when id is empty.
func Find(list []models.Template, id string) (models.Template, bool) {
	if len(list) == 0 {
		return models.Template{}, false
	}
	if id == "" {
		return list[0], true
	}
	for _, t := range list {
		if t.ID == id {
			return t, true
		}
	}
	return models.Template{}, false
}
