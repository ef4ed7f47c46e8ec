package schema

// RankingRow is one entry of the ranked query result, in server order.
type RankingRow struct {
	Country string  `json:"country"`
	Change  float64 `json:"change"`
	Damage  float64 `json:"damage"`
}

// RankingParams are the user-facing parameters of a ranking query.
// Quality and TopN are fixed by the controller.
type RankingParams struct {
	Metric    string `json:"metric"`
	Model     string `json:"model"`
	Scenario  string `json:"scenario"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Quality   int    `json:"quality"`
	TopN      int    `json:"top_n"`
}

// RankingTable is the materialized display structure of a ranking result.
type RankingTable struct {
	Title  string       `json:"title"`
	Header []string     `json:"header"`
	Rows   [][]string   `json:"rows"`
	Source []RankingRow `json:"source"`
}

// RankingHeader is the fixed column order of the ranking table.
var RankingHeader = []string{"Country", "Δ T (°C)", "Damage (% GDP)"}
