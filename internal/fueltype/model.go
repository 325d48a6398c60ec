package fueltype

// FuelType — вид топлива с кодом 1С.
type FuelType struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Code1C string `json:"code_1c"`
}
