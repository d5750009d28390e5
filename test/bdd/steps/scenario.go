package steps

import (
	"context"

	"github.com/cucumber/godog"
)

// InitializeScenario registers every step and resets the shared database before each scenario
func InitializeScenario(sc *godog.ScenarioContext) {
	pc := &productionContext{}
	pl := &planningContext{productionContext: pc}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		if err := pc.reset(); err != nil {
			return ctx, err
		}
		pl.reset()
		return ctx, nil
	})

	registerProductionSteps(sc, pc)
	registerPlanningSteps(sc, pl)
}
