package ai

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// StartScheduler registers the periodic pipeline run. Each run is
// independent and produces its own Prediction record; a failing run is
// logged and never brings the scheduler or the serving process down.
// Overlapping with a manual trigger is safe because every run exports into
// its own directory.
func StartScheduler(spec string, pipeline *Pipeline) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		log.Println("Scheduled AI run started")
		prediction, err := pipeline.Run(context.Background())
		if err != nil {
			log.Println("Scheduled AI run failed:", err)
			return
		}
		log.Println("Scheduled AI run completed, prediction id:", prediction.ID)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
