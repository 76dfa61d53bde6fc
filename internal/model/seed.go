package model

// SeedBookmarks returns the starter collection shown before anything has
// been saved locally.
func SeedBookmarks() Collection {
	return Collection{
		{
			ID:          "1",
			URL:         "https://react.dev",
			Title:       "React - The library for web and native user interfaces",
			Description: "Official documentation for the React JavaScript library.",
			Tags:        []string{"javascript", "react", "frontend", "dev"},
			CreatedAt:   1715421200000,
			IsRead:      false,
		},
		{
			ID:          "2",
			URL:         "https://tailwindcss.com",
			Title:       "Tailwind CSS - Rapidly build modern websites without ever leaving your HTML",
			Description: "A utility-first CSS framework packed with classes like flex, pt-4, text-center and rotate-90.",
			Tags:        []string{"css", "design", "framework", "webdev"},
			CreatedAt:   1715334800000,
			IsRead:      true,
		},
		{
			ID:          "3",
			URL:         "https://ai.google.dev",
			Title:       "Google AI for Developers",
			Description: "Build with Gemini models using the new GenAI SDK.",
			Tags:        []string{"ai", "google", "gemini", "api", "llm"},
			CreatedAt:   1715248400000,
			IsRead:      false,
		},
	}
}
