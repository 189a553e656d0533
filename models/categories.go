package models

// Fuel is the normalized fuel type.
type Fuel string

const (
	FuelGasoline Fuel = "Gasoline"
	FuelDiesel   Fuel = "Diesel"
	FuelElectric Fuel = "Electric"
	FuelHybrid   Fuel = "Hybrid"
	FuelUnknown  Fuel = "Unknown"
)

// Gearbox is the normalized transmission type.
type Gearbox string

const (
	GearboxAutomatic Gearbox = "Automatic"
	GearboxManual    Gearbox = "Manual"
	GearboxUnknown   Gearbox = "Unknown"
)

// BodyType is the normalized body style.
type BodyType string

const (
	BodySedan     BodyType = "Sedan"
	BodySUV       BodyType = "SUV"
	BodyHatchback BodyType = "Hatchback"
	BodyCrossover BodyType = "Crossover"
	BodyMPV       BodyType = "MPV"
	BodyPickup    BodyType = "Pickup"
	BodyUnknown   BodyType = "Unknown"
)

// Origin is where the car was built.
type Origin string

const (
	OriginDomestic Origin = "Domestic"
	OriginJapan    Origin = "Japan"
	OriginThailand Origin = "Thailand"
	OriginKorea    Origin = "Korea"
	OriginUnknown  Origin = "Unknown"
)

func orUnknown[T ~string](v T, unknown T) string {
	if v == "" {
		return string(unknown)
	}
	return string(v)
}
