package normalize

import "car-scraper/models"

type rule[T any] struct {
	keys  []string
	value T
}

// The tables are ordered most specific first; the first rule with a
// matching keyword decides.
var (
	fuelRules = []rule[models.Fuel]{
		{[]string{"hybrid", "xăng điện", "xăng lai điện"}, models.FuelHybrid},
		{[]string{"điện", "electric"}, models.FuelElectric},
		{[]string{"dầu", "diesel"}, models.FuelDiesel},
		{[]string{"xăng", "petrol", "gasoline"}, models.FuelGasoline},
	}

	gearboxRules = []rule[models.Gearbox]{
		{[]string{"tự động", "automatic", "cvt"}, models.GearboxAutomatic},
		{[]string{"số sàn", "số tay", "manual", "thủ công"}, models.GearboxManual},
	}

	bodyRules = []rule[models.BodyType]{
		{[]string{"bán tải", "pickup", "pick-up", "pick up"}, models.BodyPickup},
		{[]string{"crossover", "cuv"}, models.BodyCrossover},
		{[]string{"hatchback"}, models.BodyHatchback},
		{[]string{"sedan"}, models.BodySedan},
		{[]string{"suv", "gầm cao"}, models.BodySUV},
		{[]string{"minivan", "mpv", "van"}, models.BodyMPV},
	}

	originRules = []rule[models.Origin]{
		{[]string{"nhật", "japan"}, models.OriginJapan},
		{[]string{"thái", "thailand"}, models.OriginThailand},
		{[]string{"hàn", "korea"}, models.OriginKorea},
		{[]string{"trong nước", "lắp ráp", "việt nam", "vietnam", "việt"}, models.OriginDomestic},
	}
)

func classify[T any](text string, rules []rule[T], unknown T) T {
	s := lower(text)
	if s == "" {
		return unknown
	}
	for _, r := range rules {
		if containsAny(s, r.keys...) {
			return r.value
		}
	}
	return unknown
}

// ClassifyFuel maps fuel text to a Fuel; "xăng điện" is Hybrid, not Gasoline.
func ClassifyFuel(text string) models.Fuel {
	return classify(text, fuelRules, models.FuelUnknown)
}

func ClassifyGearbox(text string) models.Gearbox {
	return classify(text, gearboxRules, models.GearboxUnknown)
}

func ClassifyBody(text string) models.BodyType {
	return classify(text, bodyRules, models.BodyUnknown)
}

func ClassifyOrigin(text string) models.Origin {
	return classify(text, originRules, models.OriginUnknown)
}
