package app

import "time"

const fpsSmoothing = 0.95

// TimeState holds the wall-clock facts of the running app and the
// continuously updated app time context.
type TimeState struct {
	appStartTime   time.Time
	previousUpdate time.Time
	context        TimeContext
}

func NewTimeState() *TimeState {
	return newTimeStateAt(time.Now())
}

func newTimeStateAt(now time.Time) *TimeState {
	return &TimeState{
		appStartTime:   now,
		previousUpdate: now,
		context:        newTimeContext(now),
	}
}

// Update captures the time passed since the previous call. Call it once
// per frame.
func (t *TimeState) Update() {
	t.updateAt(time.Now())
}

func (t *TimeState) updateAt(now time.Time) {
	elapsed := now.Sub(t.previousUpdate)
	t.previousUpdate = now
	t.context.update(elapsed)
}

func (t *TimeState) AppStartTime() time.Time {
	return t.appStartTime
}

func (t *TimeState) AppTimeContext() TimeContext {
	return t.context
}

func (t *TimeState) TotalTime() time.Duration {
	return t.context.totalTime
}

// CurrentInstant is the time captured at the start of the latest update.
func (t *TimeState) CurrentInstant() time.Time {
	return t.context.currentInstant
}

func (t *TimeState) PreviousUpdateTime() time.Duration {
	return t.context.previousUpdateTime
}

// PreviousUpdateDt is the previous update time in seconds.
func (t *TimeState) PreviousUpdateDt() float64 {
	return t.context.previousUpdateDt
}

func (t *TimeState) UpdatesPerSecond() float64 {
	return t.context.updatesPerSecond
}

func (t *TimeState) UpdatesPerSecondSmoothed() float64 {
	return t.context.updatesPerSecondSmoothed
}

func (t *TimeState) UpdateCount() uint64 {
	return t.context.updateCount
}

// TimeContext tracks time passing in one context, e.g. unpaused game
// time.
type TimeContext struct {
	totalTime                time.Duration
	currentInstant           time.Time
	previousUpdateTime       time.Duration
	previousUpdateDt         float64
	updatesPerSecond         float64
	updatesPerSecondSmoothed float64
	updateCount              uint64
}

func newTimeContext(now time.Time) TimeContext {
	return TimeContext{currentInstant: now}
}

func (c *TimeContext) update(elapsed time.Duration) {
	c.totalTime += elapsed
	c.currentInstant = c.currentInstant.Add(elapsed)
	c.previousUpdateTime = elapsed

	dt := elapsed.Seconds()
	c.previousUpdateDt = dt
	var fps float64
	if dt > 0 {
		fps = 1 / dt
	}
	c.updatesPerSecond = fps
	c.updatesPerSecondSmoothed = c.updatesPerSecondSmoothed*fpsSmoothing + fps*(1-fpsSmoothing)
	c.updateCount++
}

func (c TimeContext) TotalTime() time.Duration {
	return c.totalTime
}

func (c TimeContext) CurrentInstant() time.Time {
	return c.currentInstant
}

func (c TimeContext) PreviousUpdateTime() time.Duration {
	return c.previousUpdateTime
}

func (c TimeContext) PreviousUpdateDt() float64 {
	return c.previousUpdateDt
}

func (c TimeContext) UpdatesPerSecond() float64 {
	return c.updatesPerSecond
}

func (c TimeContext) UpdatesPerSecondSmoothed() float64 {
	return c.updatesPerSecondSmoothed
}

func (c TimeContext) UpdateCount() uint64 {
	return c.updateCount
}
