package service

import "herstory/internal/model"

// SamplePosts is the starter content inserted by the seed command.
func SamplePosts() []model.PostInput {
	return []model.PostInput{
		{
			Title:   "Feminist Journeys: Reclaiming My Voice",
			Excerpt: "Exploring what it means to find your voice as a woman in law and storytelling.",
			Content: "Feminist journeys are not linear. They are messy, beautiful, and deeply personal.\n\n" +
				"When I first stepped into law school, I was told to make my voice smaller and to wait my turn. " +
				"What I learned in those hallways and courtrooms was that our voices are a right, not a privilege.\n\n" +
				"This piece invites you to reflect on your own journey. Where have you been told to shrink? " +
				"What would it look like to take up space?",
			Date:   "2025-01-15",
			Theme:  "Feminist journeys",
			Author: "Henrietta Marie Foray",
		},
		{
			Title:   "Tech & Gender: Who Gets to Build the Future?",
			Excerpt: "How technology reproduces gender inequities and what we must do about it.",
			Content: "Technology is not neutral. The code we write and the platforms we build carry our assumptions.\n\n" +
				"When we talk about tech and gender we must ask who is building, whose problems are being solved, " +
				"and whose voices are amplified.\n\n" +
				"The future is being built right now, decision by decision. We must insist on building it differently.",
			Date:   "2025-01-08",
			Theme:  "Tech, law & policy",
			Author: "Henrietta Marie Foray",
		},
	}
}
