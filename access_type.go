package inp

type AccessType uint16

const (
	ACCESS_MOTOR_VEHICLE = AccessType(iota + 1)
	ACCESS_MOTORCAR
	ACCESS_OSM_ACCESS
	ACCESS_SERVICE
)

func (iotaIdx AccessType) String() string {
	return [...]string{"motor_vehicle", "motorcar", "access", "service"}[iotaIdx-1]
}

var (
	// Values which allow cars regardless of the exclude list
	autoAccessInclude = map[AccessType]map[string]struct{}{
		ACCESS_MOTOR_VEHICLE: {
			"yes": struct{}{},
		},
		ACCESS_MOTORCAR: {
			"yes": struct{}{},
		},
	}

	autoAccessExclude = map[AccessType]map[string]struct{}{
		ACCESS_MOTOR_VEHICLE: {
			"no": struct{}{},
		},
		ACCESS_MOTORCAR: {
			"no": struct{}{},
		},
		ACCESS_OSM_ACCESS: {
			"no":      struct{}{},
			"private": struct{}{},
		},
		ACCESS_SERVICE: {
			"parking":          struct{}{},
			"parking_aisle":    struct{}{},
			"driveway":         struct{}{},
			"private":          struct{}{},
			"emergency_access": struct{}{},
		},
	}
)
