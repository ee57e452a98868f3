package symbol

// Fill values used by the built-in policies.
const (
	FillNone  = "none"
	FillWhite = "white"
	FillBlack = "#000000"
)

// DefaultMarkerStroke is the stroke color of connection-point markers.
const DefaultMarkerStroke = "#ff0000"

// DefaultVendorPrefixes are the attribute namespaces stripped when a policy
// does not name its own (Visio writes v:mID, v:groupContext, ...).
var DefaultVendorPrefixes = []string{"v"}

// Policy is the per-family decision table consulted for every shape element
// that carries a stroke but no fill. It is plain data so each family keeps
// its own table, quirks included.
type Policy struct {
	// MarkerStroke marks connection points; such elements always get fill="none"
	// and their stroke is never rewritten.
	MarkerStroke string `yaml:"marker_stroke,omitempty" json:"marker_stroke,omitempty"`

	// Closers are the path commands that make a path "closed" ("Z" or "Zz").
	Closers string `yaml:"closers,omitempty" json:"closers,omitempty"`

	// Fills maps a tag name to its default fill.
	Fills map[string]string `yaml:"fills,omitempty" json:"fills,omitempty"`

	ClosedPath string `yaml:"closed_path,omitempty" json:"closed_path,omitempty"`
	OpenPath   string `yaml:"open_path,omitempty" json:"open_path,omitempty"`

	// Fallback applies to tags missing from Fills.
	Fallback string `yaml:"fallback,omitempty" json:"fallback,omitempty"`

	SmallCircle *SmallCircleRule `yaml:"small_circle,omitempty" json:"small_circle,omitempty"`
	BodyRect    *BodyRectRule    `yaml:"body_rect,omitempty" json:"body_rect,omitempty"`

	// ArrowPath requires a closed path to contain both a move and a line
	// command before it takes ClosedPath; other closed paths take OpenPath.
	ArrowPath bool `yaml:"arrow_path,omitempty" json:"arrow_path,omitempty"`

	// MarkerRefFill fills unstroked polygons and closed paths that reference
	// an SVG marker (marker-start, marker-end, marker-mid).
	MarkerRefFill string `yaml:"marker_ref_fill,omitempty" json:"marker_ref_fill,omitempty"`

	// VendorPrefixes overrides DefaultVendorPrefixes. Set from configuration.
	VendorPrefixes []string `yaml:"-" json:"-"`
}

// SmallCircleRule turns circles with r <= MaxRadius into solid points.
type SmallCircleRule struct {
	MaxRadius float64 `yaml:"max_r" json:"max_r"`
	Fill      string  `yaml:"fill" json:"fill"`
}

// BodyRectRule keeps the Fills["rect"] value only for rects wider or taller
// than MinSize; smaller rects, or rects without both dimensions, get SmallFill.
type BodyRectRule struct {
	MinSize   float64 `yaml:"min_size" json:"min_size"`
	SmallFill string  `yaml:"small_fill" json:"small_fill"`
}

// WithVendorPrefixes returns a copy of p that strips the given prefixes.
func (p Policy) WithVendorPrefixes(prefixes []string) Policy {
	if len(prefixes) > 0 {
		p.VendorPrefixes = append([]string(nil), prefixes...)
	}
	return p
}

// Marker returns the connection-point stroke color.
func (p Policy) Marker() string { return p.markerStroke() }

func (p Policy) markerStroke() string {
	if p.MarkerStroke == "" {
		return DefaultMarkerStroke
	}
	return p.MarkerStroke
}

func (p Policy) closers() string {
	if p.Closers == "" {
		return "Zz"
	}
	return p.Closers
}

func (p Policy) vendorPrefixes() []string {
	if len(p.VendorPrefixes) == 0 {
		return DefaultVendorPrefixes
	}
	return p.VendorPrefixes
}

func (p Policy) fillFor(tag string) string {
	if f, ok := p.Fills[tag]; ok {
		return f
	}
	if p.Fallback != "" {
		return p.Fallback
	}
	return FillNone
}

func orNone(fill string) string {
	if fill == "" {
		return FillNone
	}
	return fill
}
