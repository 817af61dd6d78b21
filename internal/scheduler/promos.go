package scheduler

import "math/rand"

type promoMessage struct {
	Title string
	Body  string
}

// promoPool is the rotation used by the random promotional fires and by
// SendRandomNow.
var promoPool = []promoMessage{
	{
		Title: "Deal Alert — Up to 70% OFF!",
		Body:  "Hand-picked deals across electronics, fashion and more. Today only!",
	},
	{
		Title: "Free Shipping Weekend!",
		Body:  "No minimum order. Everything ships free — stock up while it lasts.",
	},
	{
		Title: "New Arrivals Just Dropped",
		Body:  "Fresh styles and the latest gadgets are in. Be the first to grab them.",
	},
	{
		Title: "Your Wishlist Is On Sale",
		Body:  "Prices dropped on popular items. Check your wishlist before they're gone.",
	},
	{
		Title: "Flash Sale — 3 Hours Only!",
		Body:  "Lightning deals are live right now. When the timer ends, so do the prices.",
	},
	{
		Title: "Buy 2 Get 1 Free",
		Body:  "Mix and match across thousands of products. Offer ends at midnight.",
	},
}

func randomPromo() promoMessage {
	return promoPool[rand.Intn(len(promoPool))]
}
