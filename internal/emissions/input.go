package emissions

// Input is the method-specific payload of an ActivityRecord. The set of
// implementations is closed; each one corresponds to exactly one Method.
type Input interface {
	Method() Method
	isInput()
}

// StationaryInput is fuel burned in a stationary source.
type StationaryInput struct {
	FuelType     string  `json:"fuel_type"`
	FuelName     string  `json:"fuel_selection"`
	ActivityType string  `json:"activity_types,omitempty"`
	ActivityData float64 `json:"activity_data"`
	Unit         Unit    `json:"unit_selection"`
}

// MobileFuelInput is fuel consumed by a vehicle.
type MobileFuelInput struct {
	VehicleNo string  `json:"vehicle_no,omitempty"`
	FuelType  string  `json:"fuel_selection"`
	FuelUsed  float64 `json:"fuel_used"`
	Unit      Unit    `json:"unit_selection"`
}

// MobileDistanceInput is distance driven by a vehicle category.
type MobileDistanceInput struct {
	VehicleNo       string  `json:"vehicle_no,omitempty"`
	VehicleCategory string  `json:"transportation_type"`
	Distance        float64 `json:"distance_traveled"`
	Unit            Unit    `json:"unit_selection"`
}

// FugitiveScaleBaseInput is a refrigerant inventory mass balance.
type FugitiveScaleBaseInput struct {
	GasType           string  `json:"gas_type"`
	Unit              Unit    `json:"unit_selection"`
	InventoryStart    float64 `json:"inventory_start"`
	InventoryClose    float64 `json:"inventory_close"`
	Purchase          float64 `json:"purchase"`
	ReturnedUser      float64 `json:"returned_user"`
	ReturnedRecycling float64 `json:"returned_recycling"`
	ChargedEquipment  float64 `json:"charged_equipment"`
	DeliveredUser     float64 `json:"delivered_user"`
	ReturnedProducer  float64 `json:"returned_producer"`
	SentOffsite       float64 `json:"sent_offsite"`
	SentDestruction   float64 `json:"sent_destruction"`
}

// FugitiveScreeningInput estimates leakage from installed equipment.
type FugitiveScreeningInput struct {
	Equipment      string  `json:"equipment_selection"`
	GasType        string  `json:"type_refrigeration"`
	GWP            float64 `json:"gwp_refrigeration"`
	Units          float64 `json:"no_of_units"`
	OriginalCharge float64 `json:"original_charge"`
	AssemblyFactor float64 `json:"assembly_ef"`
	Unit           Unit    `json:"unit_selection"`
}

// FugitiveSimpleInput treats purchased refrigerant as released.
type FugitiveSimpleInput struct {
	GasType         string  `json:"type_refrigeration"`
	AmountPurchased float64 `json:"amount_purchased"`
	Units           float64 `json:"no_of_units,omitempty"`
	GWP             float64 `json:"gwp"`
	Unit            Unit    `json:"unit_selection"`
}

// ElectricityInput is purchased electricity in kWh.
type ElectricityInput struct {
	ActivityType string  `json:"activity_types,omitempty"`
	ActivityData float64 `json:"activity_data"`
	Unit         Unit    `json:"unit_selection"`
}

// TravelFuelInput is fuel consumed on business travel.
type TravelFuelInput struct {
	Description    string  `json:"description,omitempty"`
	FuelType       string  `json:"fuel_type"`
	FuelConsumed   float64 `json:"fuel_consumed"`
	Unit           string  `json:"unit,omitempty"`
	EmissionFactor float64 `json:"emission_factor"`
}

// TravelDistanceInput is distance covered on business travel.
type TravelDistanceInput struct {
	Description    string  `json:"description,omitempty"`
	TransportMode  string  `json:"transport_mode"`
	Distance       float64 `json:"distance_traveled"`
	Unit           string  `json:"unit,omitempty"`
	EmissionFactor float64 `json:"emission_factor"`
}

// TravelSpendInput is money spent on business travel.
type TravelSpendInput struct {
	Description string  `json:"description,omitempty"`
	AmountSpent float64 `json:"amount_spent"`
	Currency    string  `json:"currency,omitempty"`
	EEIOFactor  float64 `json:"eeio_ef"`
}

func (StationaryInput) Method() Method        { return MethodStationary }
func (MobileFuelInput) Method() Method        { return MethodMobileFuel }
func (MobileDistanceInput) Method() Method    { return MethodMobileDistance }
func (FugitiveScaleBaseInput) Method() Method { return MethodFugitiveScaleBase }
func (FugitiveScreeningInput) Method() Method { return MethodFugitiveScreening }
func (FugitiveSimpleInput) Method() Method    { return MethodFugitiveSimple }
func (ElectricityInput) Method() Method       { return MethodElectricity }
func (TravelFuelInput) Method() Method        { return MethodTravelFuel }
func (TravelDistanceInput) Method() Method    { return MethodTravelDistance }
func (TravelSpendInput) Method() Method       { return MethodTravelSpend }

func (StationaryInput) isInput()        {}
func (MobileFuelInput) isInput()        {}
func (MobileDistanceInput) isInput()    {}
func (FugitiveScaleBaseInput) isInput() {}
func (FugitiveScreeningInput) isInput() {}
func (FugitiveSimpleInput) isInput()    {}
func (ElectricityInput) isInput()       {}
func (TravelFuelInput) isInput()        {}
func (TravelDistanceInput) isInput()    {}
func (TravelSpendInput) isInput()       {}
