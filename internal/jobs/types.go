package jobs

import "github.com/Nmdk1/StrideIQ-sub003/internal/plans"

const TaskGeneratePlan = "plan:generate"

// QueuePlans carries generation tasks.
const QueuePlans = "plans"

type GeneratePlanPayload struct {
	AthleteID string        `json:"athlete_id"`
	Request   plans.Request `json:"request"`
}
