package scheduler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/jchevalier/fundsim/internal/modules/model"
	"github.com/jchevalier/fundsim/internal/modules/rebalancing"
)

// RebalanceJob runs a full rebalancing cycle for every profile.
type RebalanceJob struct {
	service   *rebalancing.Service
	modelPath string
	params    rebalancing.Params
	log       zerolog.Logger
}

// NewRebalanceJob creates the rebalancing job. The model artifact is
// loaded fresh on every run so a retrained model is picked up without
// a restart.
func NewRebalanceJob(service *rebalancing.Service, modelPath string, params rebalancing.Params, log zerolog.Logger) *RebalanceJob {
	return &RebalanceJob{
		service:   service,
		modelPath: modelPath,
		params:    params,
		log:       log.With().Str("job", "rebalance").Logger(),
	}
}

// Name returns the job name
func (j *RebalanceJob) Name() string {
	return "rebalance"
}

// Run executes one rebalancing cycle dated today. A missing model
// artifact is not fatal: the low_turnover profile records a no-trade
// and the other profiles still rebalance.
func (j *RebalanceJob) Run() error {
	regressor, err := model.Load(j.modelPath)
	if err != nil {
		j.log.Warn().
			Err(err).
			Str("path", j.modelPath).
			Msg("Model artifact unavailable, proceeding without predictions")
		regressor = nil
	}

	return j.service.RunCycle(time.Now().UTC().Truncate(24*time.Hour), regressor, j.params)
}
