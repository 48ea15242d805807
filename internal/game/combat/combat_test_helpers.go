package combat

import (
	"time"
)

// SwingUntilHit стартует удар и продвигает его шагами step до hit-moment.
// Возвращает HitResult и true, если hit-moment наступил за maxSteps шагов.
// Observer резолвера на время вызова заменяется.
func SwingUntilHit(r *Resolver, step time.Duration, maxSteps int) (HitResult, bool) {
	var (
		result HitResult
		fired  bool
	)
	r.SetHitObserver(func(h HitResult) {
		result = h
		fired = true
	})
	defer r.SetHitObserver(nil)

	if !r.InProgress() && !r.TryStart() {
		return HitResult{}, false
	}
	for range maxSteps {
		r.Advance(step)
		if fired {
			return result, true
		}
	}
	return HitResult{}, false
}

// FinishSwing продвигает удар до завершения Recovery.
// Возвращает число шагов.
func FinishSwing(r *Resolver, step time.Duration, maxSteps int) int {
	for i := range maxSteps {
		if !r.InProgress() {
			return i
		}
		r.Advance(step)
	}
	return maxSteps
}
