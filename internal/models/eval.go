package models

// EvalResult holds the reward statistics of an evaluation run.
type EvalResult struct {
	MeanReward float64 `json:"mean_reward"`
	StdReward  float64 `json:"std_reward"`
	NEpisodes  int     `json:"n_eval_episodes"`
}
