package schema

// Custom string types for type safety.
type (
	// StepUnit is the playback granularity.
	StepUnit string

	// PlaybackState is the state of one playback scheduler.
	PlaybackState string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for query history.
	DatabaseBackend string

	// QueryStatus is the outcome of a recorded ranking query.
	QueryStatus string
)

// All step units supported.
const (
	YearStep StepUnit = "year" // default
	DayStep  StepUnit = "day"
)

// All playback states. Running covers both the active and draining phases.
const (
	IdleState    PlaybackState = "idle"
	RunningState PlaybackState = "running"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// All query statuses recorded in history.
const (
	QueryPending QueryStatus = "pending"
	QueryOK      QueryStatus = "ok"
	QueryFailed  QueryStatus = "failed"
)

// DateLayout is the YYYY-MM-DD layout used by every date control.
const DateLayout = "2006-01-02"

// Control defaults, matching the frame endpoint's own fallbacks.
const (
	DefaultDate      = "1950-01-01"
	DefaultMinDate   = "1950-01-01"
	DefaultMaxDate   = "2100-12-31"
	DefaultStartDate = "1950-01-01"
	DefaultEndDate   = "1951-01-01"
	DefaultVariable  = "wetbulb"
	DefaultModel     = "ACCESS-CM2"
	DefaultScenario  = "historical"
)

// Fixed ranking query parameters.
const (
	RankingQuality = 0
	RankingTopN    = 5
)

// Camera transition used when a feature is clicked.
const (
	ClickAltitude   = 1.5
	ClickDurationMs = 1000
)

// Feature property keys.
const (
	PropAdmin    = "ADMIN"
	PropName     = "name"
	PropCentroid = "centroid"
	UnknownLabel = "Unknown"
)

// AllStepUnits returns a list of all supported step units.
var AllStepUnits = []StepUnit{YearStep, DayStep}

// ValidStepUnits lists all valid step units.
var ValidStepUnits = map[StepUnit]struct{}{
	YearStep: {},
	DayStep:  {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// Variables lists the raster variables served by the frame endpoint.
var Variables = []string{
	"wetbulb", "hurs", "huss", "pr", "rlds", "rsds", "sfcWind", "tas", "tasmax", "tasmin",
}

// Models lists the CMIP6 models served by the frame endpoint.
var Models = []string{
	"CESM2", "ACCESS-CM2", "CMCC-CM2-SR5", "INM-CM5-0", "CanESM5",
	"MRI-ESM2-0", "MPI-ESM1-2-HR", "MIROC6", "IPSL-CM6A-LR", "GFDL-ESM4",
}

// Scenarios lists the emission scenarios served by the frame endpoint.
var Scenarios = []string{"historical", "ssp585", "ssp370", "ssp245"}

// DefaultPalette is the globe polygon palette.
var DefaultPalette = Palette{
	Default: PolygonAttributes{
		Altitude: 0.015,
		Fill:     "rgba(0, 0, 0, 0.1)",
		Stroke:   "rgba(255, 204, 0, 0.6)",
	},
	Hovered: PolygonAttributes{
		Altitude: 0.03,
		Fill:     "rgba(255, 200, 0, 0.4)",
		Stroke:   "#ff6600",
	},
	Side: "rgba(0, 0, 0, 0)",
}
