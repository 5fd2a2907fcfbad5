package config

// catalogEntry holds the template portion of a commonly-used design variable.
type catalogEntry struct {
	Property           string
	Unit               string
	IsInteger          bool
	IsSimulationOption bool
}

// VariableCatalog maps well-known variable names to property templates so
// problem authors only need to supply the component and bounds.
var VariableCatalog = map[string]catalogEntry{
	"nose_length":        {Property: "length", Unit: "m"},
	"body_tube_length":   {Property: "length", Unit: "m"},
	"fin_root_chord":     {Property: "root_chord", Unit: "m"},
	"fin_tip_chord":      {Property: "tip_chord", Unit: "m"},
	"fin_height":         {Property: "height", Unit: "m"},
	"fin_count":          {Property: "fin_count", IsInteger: true},
	"parachute_diameter": {Property: "diameter", Unit: "m"},
	"launch_rod_angle":   {Property: "launch_rod_angle", Unit: "rad", IsSimulationOption: true},
	"launch_rod_length":  {Property: "launch_rod_length", Unit: "m", IsSimulationOption: true},
	"wind_speed":         {Property: "wind_speed_average", Unit: "m/s", IsSimulationOption: true},
}

// NewCatalogVariable builds a DesignVariable from a catalog template.
// Returns false if the name is not in the catalog.
func NewCatalogVariable(name, component string, lower, upper float64) (DesignVariable, bool) {
	entry, ok := VariableCatalog[name]
	if !ok {
		return DesignVariable{}, false
	}
	return DesignVariable{
		Name:               name,
		Component:          component,
		Property:           entry.Property,
		LowerBound:         lower,
		UpperBound:         upper,
		Unit:               entry.Unit,
		IsInteger:          entry.IsInteger,
		IsSimulationOption: entry.IsSimulationOption,
	}, true
}
