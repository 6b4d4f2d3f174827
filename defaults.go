package inp

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LinkDefaults are link fields filled in by the factory
type LinkDefaults struct {
	Name          string `yaml:"name" validate:"required"`
	Label         Label  `yaml:"label"`
	BehaviorType  string `yaml:"behavior_type" validate:"required,numeric"`
	DisplayType   string `yaml:"display_type" validate:"required,numeric"`
	Lanes         int    `yaml:"lanes" validate:"gte=1"`
	LaneWidth     string `yaml:"lane_width" validate:"required,numeric"`
	Gradient      string `yaml:"gradient" validate:"required,numeric"`
	Cost          string `yaml:"cost" validate:"required,numeric"`
	Surcharge     string `yaml:"surcharge" validate:"required,numeric"`
	SegmentLength string `yaml:"segment_length" validate:"required,numeric"`
	Evaluation    bool   `yaml:"evaluation"`
}

// ConnectorDefaults are connector fields filled in by the factory
type ConnectorDefaults struct {
	Name          string `yaml:"name" validate:"required"`
	Label         Label  `yaml:"label"`
	Lane          int    `yaml:"lane" validate:"gte=1"`
	ToAt          string `yaml:"to_at" validate:"required,numeric"`
	BehaviorType  string `yaml:"behavior_type" validate:"required,numeric"`
	DisplayType   string `yaml:"display_type" validate:"required,numeric"`
	DxEmergStop   string `yaml:"dx_emerg_stop" validate:"required,numeric"`
	DxLaneChange  string `yaml:"dx_lane_change" validate:"required,numeric"`
	Gradient      string `yaml:"gradient" validate:"required,numeric"`
	Cost          string `yaml:"cost" validate:"required,numeric"`
	Surcharge     string `yaml:"surcharge" validate:"required,numeric"`
	SegmentLength string `yaml:"segment_length" validate:"required,numeric"`
	Visualization bool   `yaml:"visualization"`
}

// ParkingDefaults are parking lot fields filled in by the factory
type ParkingDefaults struct {
	Name         string    `yaml:"name" validate:"required"`
	Label        Label     `yaml:"label"`
	SpacesLength string    `yaml:"spaces_length" validate:"required,numeric"`
	Zones        string    `yaml:"zones" validate:"required"`
	Fraction     string    `yaml:"fraction" validate:"required,numeric"`
	Capacity     string    `yaml:"capacity" validate:"required,numeric"`
	Occupancy    string    `yaml:"occupancy" validate:"required,numeric"`
	DesiredSpeed string    `yaml:"desired_speed" validate:"required,numeric"`
	OpenHours    [2]string `yaml:"open_hours" validate:"dive,required,numeric"`
	MaxTime      string    `yaml:"max_time" validate:"required,numeric"`
	FlatFee      string    `yaml:"flat_fee" validate:"required,numeric"`
	FeePerHour   string    `yaml:"fee_per_hour" validate:"required,numeric"`
	Attraction   []string  `yaml:"attraction" validate:"min=1,dive,numeric"`
	Composition  string    `yaml:"composition"`
}

// TransitDefaults are transit line fields filled in by the factory
type TransitDefaults struct {
	AnmID        string `yaml:"anm_id" validate:"required"`
	Name         string `yaml:"name" validate:"required"`
	Route        string `yaml:"route" validate:"required,numeric"`
	Priority     string `yaml:"priority" validate:"required,numeric"`
	Length       string `yaml:"length" validate:"required,numeric"`
	MeanDistance string `yaml:"mean_distance" validate:"required,numeric"`
	PTTelematics bool   `yaml:"pt_telematics"`
	Color        string `yaml:"color" validate:"required"`
	TimeOffset   string `yaml:"time_offset" validate:"required,numeric"`
}

// RoutingDefaults are routing decision fields filled in by the factory
type RoutingDefaults struct {
	Name           string `yaml:"name" validate:"required"`
	Label          Label  `yaml:"label"`
	From           string `yaml:"from" validate:"required,numeric"`
	Until          string `yaml:"until" validate:"required,numeric"`
	VehicleClasses string `yaml:"vehicle_classes" validate:"required"`
	Fraction       string `yaml:"fraction" validate:"required,numeric"`
}

// NodeDefaults are node fields filled in by the factory
type NodeDefaults struct {
	Name       string `yaml:"name" validate:"required"`
	Label      Label  `yaml:"label"`
	Evaluation bool   `yaml:"evaluation"`
}

// InputDefaults are input fields filled in by the factory
type InputDefaults struct {
	Name  string `yaml:"name" validate:"required"`
	Label Label  `yaml:"label"`
	From  string `yaml:"from" validate:"required,numeric"`
	Until string `yaml:"until" validate:"required,numeric"`
}

// Defaults is the full table of factory defaults
type Defaults struct {
	Link      LinkDefaults      `yaml:"link"`
	Connector ConnectorDefaults `yaml:"connector"`
	Parking   ParkingDefaults   `yaml:"parking"`
	Transit   TransitDefaults   `yaml:"transit"`
	Routing   RoutingDefaults   `yaml:"routing"`
	Node      NodeDefaults      `yaml:"node"`
	Input     InputDefaults     `yaml:"input"`
}

var zeroLabel = Label{"0.00", "0.00"}

// DefaultValues returns built-in factory defaults
func DefaultValues() Defaults {
	return Defaults{
		Link: LinkDefaults{
			Name:          emptyQuote,
			Label:         zeroLabel,
			BehaviorType:  "1",
			DisplayType:   "1",
			Lanes:         1,
			LaneWidth:     "3.66",
			Gradient:      "0.00000",
			Cost:          "0.00000",
			Surcharge:     "0.00000",
			SegmentLength: "10.000",
			Evaluation:    false,
		},
		Connector: ConnectorDefaults{
			Name:          emptyQuote,
			Label:         zeroLabel,
			Lane:          1,
			ToAt:          "0.000",
			BehaviorType:  "1",
			DisplayType:   "1",
			DxEmergStop:   "4.999",
			DxLaneChange:  "200.010",
			Gradient:      "0.00000",
			Cost:          "0.00000",
			Surcharge:     "0.00000",
			SegmentLength: "10.000",
			Visualization: true,
		},
		Parking: ParkingDefaults{
			Name:         emptyQuote,
			Label:        Label{"0.000", "0.000"},
			SpacesLength: "6.000",
			Zones:        "0",
			Fraction:     "1.000",
			Capacity:     "100",
			Occupancy:    "0",
			DesiredSpeed: "999",
			OpenHours:    [2]string{"0", "99999"},
			MaxTime:      "99999",
			FlatFee:      "0.0",
			FeePerHour:   "0.0",
			Attraction:   []string{"0.0", "0.0"},
			Composition:  "1",
		},
		Transit: TransitDefaults{
			AnmID:        emptyQuote,
			Name:         emptyQuote,
			Route:        "0",
			Priority:     "0",
			Length:       "0",
			MeanDistance: "0",
			PTTelematics: false,
			Color:        "CYAN",
			TimeOffset:   "0.0",
		},
		Routing: RoutingDefaults{
			Name:           emptyQuote,
			Label:          zeroLabel,
			From:           "0.0",
			Until:          "99999.0",
			VehicleClasses: "1",
			Fraction:       "1.000",
		},
		Node: NodeDefaults{
			Name:       emptyQuote,
			Label:      zeroLabel,
			Evaluation: false,
		},
		Input: InputDefaults{
			Name:  emptyQuote,
			Label: zeroLabel,
			From:  "0.0",
			Until: "3600.0",
		},
	}
}

// LoadDefaults reads YAML file on top of built-in defaults. Keys missing in the file keep built-in values
func LoadDefaults(path string) (Defaults, error) {
	defaults := DefaultValues()
	data, err := os.ReadFile(path)
	if err != nil {
		return defaults, errors.Wrap(err, "Can't read defaults file")
	}
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return defaults, errors.Wrap(err, "Can't parse defaults file")
	}
	if err := defaults.Validate(); err != nil {
		return defaults, err
	}
	return defaults, nil
}

// Validate checks that every default can be rendered into a valid INP record
func (defaults Defaults) Validate() error {
	v := validator.New()
	if err := v.Struct(defaults); err != nil {
		return errors.Wrap(err, "Invalid defaults")
	}
	return nil
}
