package protocol

// ErrorResponse is the body of every non-2xx HTTP reply.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type MetaResponse struct {
	ProtocolVersion string   `json:"protocol_version"`
	Variant         string   `json:"variant"`
	Digest          string   `json:"digest"`
	Variants        []string `json:"variants"`
	RaceCount       int      `json:"race_count"`
}

type BuildingInfo struct {
	Index    int    `json:"index"`
	Key      string `json:"key"`
	Icon     string `json:"icon"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type RaceInfo struct {
	Key       string         `json:"key"`
	Display   string         `json:"display"`
	Color     string         `json:"color"`
	Aliases   []string       `json:"aliases"`
	Buildings []BuildingInfo `json:"buildings"`
}

type RacesResponse struct {
	Variant    string     `json:"variant"`
	Races      []RaceInfo `json:"races"`
	Slots      []string   `json:"slots"`
	Population []int64    `json:"population"`
}

type SlotRequest struct {
	Race string    `json:"race"`
	Slot SlotValue `json:"slot"`
}

type LevelEntry struct {
	Index int    `json:"index"`
	Key   string `json:"key"`
	Icon  string `json:"icon"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

type SlotResponse struct {
	Race        string       `json:"race"`
	RaceDisplay string       `json:"race_display"`
	Slot        int          `json:"slot"`
	Label       string       `json:"label"`
	Tier        int          `json:"tier"`
	Sub         int          `json:"sub"`
	Population  int64        `json:"population"`
	Levels      []int        `json:"levels"`
	Buildings   []LevelEntry `json:"buildings"`
}

type FullRequest struct {
	Race string    `json:"race"`
	Tier TierValue `json:"tier"`
}

type FullResponse struct {
	Race        string         `json:"race"`
	RaceDisplay string         `json:"race_display"`
	Tier        int            `json:"tier"`
	Slots       []int          `json:"slots"`
	Labels      []string       `json:"labels"`
	Population  []int64        `json:"population"`
	Buildings   []BuildingInfo `json:"buildings"`
	// Rows[i][j] is the level of building i at Slots[j].
	Rows [][]int `json:"rows"`
}

type DeltaRequest struct {
	Race    string    `json:"race"`
	Slot    SlotValue `json:"slot"`
	Current []int     `json:"current"`
}

type DeltaRow struct {
	Index    int    `json:"index"`
	Key      string `json:"key"`
	Icon     string `json:"icon"`
	Name     string `json:"name"`
	Current  int    `json:"current"`
	Required int    `json:"required"`
	Missing  int    `json:"missing"`
}

type PriorityEntry struct {
	Index    int    `json:"index"`
	Key      string `json:"key"`
	Name     string `json:"name"`
	Missing  int    `json:"missing"`
	Category string `json:"category"`
}

type DeltaResponse struct {
	Race       string          `json:"race"`
	Slot       int             `json:"slot"`
	Label      string          `json:"label"`
	Population int64           `json:"population"`
	Rows       []DeltaRow      `json:"rows"`
	Progress   int             `json:"progress"`
	Complete   bool            `json:"complete"`
	Priority   []PriorityEntry `json:"priority"`
}

type AutoSlotRequest struct {
	Race    string `json:"race"`
	Current []int  `json:"current"`
}

type AutoSlotResponse struct {
	Race    string `json:"race"`
	Current []int  `json:"current"`
	// MaxReachable is 0 when not even slot 1.1 is met; MaxLabel is then empty.
	MaxReachable int           `json:"max_reachable"`
	MaxLabel     string        `json:"max_label"`
	Next         int           `json:"next"`
	NextLabel    string        `json:"next_label"`
	AtMax        bool          `json:"at_max"`
	Delta        DeltaResponse `json:"delta"`
}

type ParseLevelsRequest struct {
	Race string `json:"race"`
	Text string `json:"text"`
}

type ParseLevelsResponse struct {
	Race    string `json:"race"`
	Current []int  `json:"current"`
	Mode    string `json:"mode"`
	Matched int    `json:"matched"`
}
