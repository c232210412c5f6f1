package main

// LogEntity fields of the engine log lines the charts are built from
type LogEntity struct {
	Level       string `json:"level"`
	Layer       string `json:"layer"`
	Time        string `json:"time"`
	Message     string `json:"message"`
	Tick        uint64 `json:"tick"`
	Sessions    int    `json:"sessions"`
	Connections int    `json:"connections"`
	Queue       int    `json:"queue"`
	DurationUs  int64  `json:"duration_us"`
	MatchID     string `json:"match_id"`
	Reason      string `json:"reason"`
	Winner      string `json:"winner"`
	Ticks       uint64 `json:"ticks"`
	AI          bool   `json:"ai"`
	Private     bool   `json:"private"`
	Duration    int64  `json:"duration"`
}
