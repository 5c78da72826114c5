package gateway

import "fmt"

func buildCategoryPrompt(category string, count int) string {
	return fmt.Sprintf(`Generate a list of %d popular and high-rated movies for the category: "%s".
Ensure the titles are accurate.
For "Bollywood", return Hindi movies.
For "South Movies", return popular South Indian movies (Telugu, Tamil, Kannada, Malayalam).
For "Hollywood Hindi Dubbed", return Hollywood blockbusters that are famous in India.
For "Kids Cartoon", return popular animated movies.

Provide the following details for each movie:
- Title
- Year of release
- Rating (out of 10)
- A detailed description (2-3 sentences)
- Main Genre
- Language
- Director name
- List of 3-4 main cast members`, count, category)
}

func buildSearchPrompt(query string, count int) string {
	return fmt.Sprintf(`Recommend %d movies based on the user search query: "%s".
If the query is a specific movie, show that and similar ones.
Provide title, year, rating, genre, language, detailed description, director, and main cast.`, count, query)
}
