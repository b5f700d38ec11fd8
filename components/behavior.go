package components

import "time"

// BehaviorKind tags the variant stored in a Behavior.
type BehaviorKind uint8

const (
	BehaviorNone BehaviorKind = iota
	BehaviorDeath
	BehaviorThirst
	BehaviorHunger
	BehaviorSeparation
	BehaviorAlignment
	BehaviorCohesion
	BehaviorWander
)

var behaviorNames = [...]string{
	BehaviorNone:       "idle",
	BehaviorDeath:      "dying",
	BehaviorThirst:     "drinking",
	BehaviorHunger:     "eating",
	BehaviorSeparation: "separating",
	BehaviorAlignment:  "aligning",
	BehaviorCohesion:   "cohering",
	BehaviorWander:     "wandering",
}

func (k BehaviorKind) String() string {
	if int(k) < len(behaviorNames) {
		return behaviorNames[k]
	}
	return "unknown"
}

// NumBehaviorKinds is the number of behavior tags, BehaviorNone included.
const NumBehaviorKinds = int(BehaviorWander) + 1

// Behavior is one entry of an entity's priority stack. Kind selects which
// tunables apply:
//
//	Death:      Lifespan, Interval, LastCheck
//	Thirst:     Rate (drink speed)
//	Hunger:     Rate (eat speed)
//	Separation: Radius
//	Wander:     Persistence (chance of keeping the heading each tick)
type Behavior struct {
	Kind        BehaviorKind
	Rate        float64
	Radius      float64
	Persistence float64
	Lifespan    time.Duration
	Interval    time.Duration
	LastCheck   time.Duration
}
