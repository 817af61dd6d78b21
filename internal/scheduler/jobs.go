package scheduler

import (
	"context"
	"fmt"
	"log"
)

// defaultJobs is the fixed fleet: a daily token hygiene run plus the
// promotional fires the store runs year-round. Clock values live here,
// evaluated in the scheduler timezone.
func (s *Scheduler) defaultJobs() []*Job {
	return []*Job{
		{
			Name:     "token_cleanup",
			Spec:     "0 6 * * *",
			Schedule: "6 AM daily",
			handler:  s.runTokenCleanup,
		},
		{
			Name:     "morning_promo",
			Spec:     "0 9 * * *",
			Schedule: "9 AM daily",
			handler:  s.promoHandler("morning_promo", randomPromo),
		},
		{
			Name:     "afternoon_flash_sale",
			Spec:     "0 14 * * *",
			Schedule: "2 PM daily",
			handler: s.promoHandler("flash_sale", func() promoMessage {
				return promoMessage{
					Title: "Afternoon Flash Sale — 60% OFF!",
					Body:  "Limited time offer! Grab your favorites at amazing discounts. Ends in 4 hours!",
				}
			}),
		},
		{
			Name:     "evening_deals",
			Spec:     "0 18 * * *",
			Schedule: "6 PM daily",
			handler:  s.promoHandler("evening_deals", randomPromo),
		},
		{
			Name:     "weekend_special",
			Spec:     "0 11 * * 6,0",
			Schedule: "11 AM Sat & Sun",
			handler: s.promoHandler("weekend_special", func() promoMessage {
				return promoMessage{
					Title: "Weekend Bonanza — Extra 25% OFF!",
					Body:  "It's the weekend! Treat yourself with our special weekend offers. Shop now!",
				}
			}),
		},
		{
			Name:     "midnight_sale",
			Spec:     "0 0 * * *",
			Schedule: "12 AM daily",
			handler: s.promoHandler("midnight_sale", func() promoMessage {
				return promoMessage{
					Title: "Midnight Madness — 50% OFF Everything!",
					Body:  "Can't sleep? Shop now and grab insane midnight deals. Limited time only!",
				}
			}),
		},
		{
			Name:     "random_promo",
			Spec:     "0 */4 * * *",
			Schedule: "Every 4 hours",
			handler:  s.promoHandler("random_promo", randomPromo),
		},
	}
}

// promoHandler builds a job handler that composes a promotional message
// and broadcasts it. A failed broadcast is a logged warning, not an
// error: transient delivery trouble resolves itself at the next fire.
func (s *Scheduler) promoHandler(tag string, pick func() promoMessage) func() error {
	return func() error {
		promo := pick()
		result := s.engine.SendToAllUsers(context.Background(), promo.Title, promo.Body, tag, nil)
		if !result.Success {
			log.Printf("[Scheduler] Promo %q did not succeed: %s (attempted %d, delivered %d)",
				tag, result.Reason, result.Attempted, result.Delivered)
			return nil
		}
		log.Printf("[Scheduler] Promo %q delivered to %d/%d recipients",
			tag, result.Delivered, result.Attempted)
		return nil
	}
}

func (s *Scheduler) runTokenCleanup() error {
	log.Println("[Scheduler] Running daily device token cleanup")
	cleared, err := s.cleaner.Run()
	if err != nil {
		return fmt.Errorf("token cleanup: %w", err)
	}
	log.Printf("[Scheduler] Token cleanup cleared %d tokens", cleared)
	return nil
}
