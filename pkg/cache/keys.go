package cache

// keyVersion is bumped whenever the cached layout format changes.
const keyVersion = "v1"

// Key prefixes; they double as the key type reported to cache hooks.
const (
	KeyTypeLayout   = "layout"
	KeyTypeArtifact = "artifact"
)

// LayoutKeyOpts holds every option that changes a computed layout.
type LayoutKeyOpts struct {
	Category      string   `json:"category,omitempty"`
	Value         string   `json:"value"`
	Hue           string   `json:"hue,omitempty"`
	Orient        string   `json:"orient"`
	Width         float64  `json:"width"`
	Height        float64  `json:"height"`
	DPI           float64  `json:"dpi"`
	MarkerSize    float64  `json:"marker_size"`
	LineWidth     float64  `json:"line_width"`
	Alpha         float64  `json:"alpha"`
	LaneWidth     float64  `json:"lane_width"`
	Dodge         bool     `json:"dodge"`
	NativeScale   bool     `json:"native_scale"`
	ValueScale    string   `json:"value_scale"`
	CategoryScale string   `json:"category_scale"`
	Order         []string `json:"order,omitempty"`
	HueOrder      []string `json:"hue_order,omitempty"`
	Overflow      string   `json:"overflow"`
	WarnThreshold float64  `json:"warn_threshold"`
	ShrinkFactor  float64  `json:"shrink_factor"`
	MaxIterations int      `json:"max_iterations"`
	Seed          uint64   `json:"seed"`
}

// ArtifactKeyOpts holds every option that changes rendered output.
type ArtifactKeyOpts struct {
	Format            string  `json:"format"`
	Title             string  `json:"title,omitempty"`
	Scale             float64 `json:"scale,omitempty"`
	HighlightOverflow bool    `json:"highlight_overflow,omitempty"`
	NoLegend          bool    `json:"no_legend,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey returns the key of the layout computed from a dataset with
	// the given content hash.
	LayoutKey(datasetHash string, opts LayoutKeyOpts) string

	// ArtifactKey returns the key of an artifact rendered from a layout
	// with the given content hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(datasetHash string, opts LayoutKeyOpts) string {
	return hashKey(KeyTypeLayout, keyVersion, datasetHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, keyVersion, layoutHash, opts)
}
