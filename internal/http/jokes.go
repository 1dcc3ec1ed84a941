package http

import (
	"math/rand"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Joke struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Joke string `json:"joke"`
}

var jokes = []Joke{
	{ID: 1, Name: "ashes", Joke: "When the window fell into the incinerator, it was a pane in the ash to retrieve."},
	{ID: 2, Name: "pirate's favorite letter", Joke: "What's a pirate's favorite letter? It be the Sea"},
	{ID: 3, Name: "counting cows", Joke: "How do you count cows? A 'Cow'culator"},
	{ID: 4, Name: "he's alright", Joke: "Did you hear about the guy whose whole left side was cut off? He's all right now."},
	{ID: 5, Name: "bakery fire", Joke: "My friend's bakery burned down last night. Now his business is toast."},
	{ID: 6, Name: "nut assault", Joke: "Two peanuts were walking down the street. One was a salted."},
}

func (h *Handler) randomJoke(c *gin.Context) {
	respond(c, http.StatusOK, jokes[rand.Intn(len(jokes))], "joke fetched successfully")
}
