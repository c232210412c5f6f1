package entity

// Profile optional public data supplied with join_queue
type Profile struct {
	Address   string
	Name      string
	Signature string
	Equipped  []string
	Cosmetics map[string]string
}

// PlayerInfo participant description sent in match_start
type PlayerInfo struct {
	ID        string            `json:"id"`
	Address   string            `json:"address,omitempty"`
	Name      string            `json:"name,omitempty"`
	Bot       bool              `json:"bot,omitempty"`
	Cosmetics map[string]string `json:"cosmetics,omitempty"`
}
