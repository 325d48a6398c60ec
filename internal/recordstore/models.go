package recordstore

// Строки таблиц. JSON-имена совпадают с тем, что ожидает дашборд.

type Client struct {
	ID       int    `db:"id" json:"id"`
	INN      string `db:"inn" json:"inn"`
	Name     string `db:"name" json:"name"`
	Address  string `db:"address" json:"address"`
	Phone    string `db:"phone" json:"phone"`
	Email    string `db:"email" json:"email"`
	Login    string `db:"login" json:"login"`
	Password string `db:"password" json:"password,omitempty"`
	Admin    bool   `db:"admin" json:"admin"`
}

type Station struct {
	ID      int    `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Code1C  string `db:"code_1c" json:"code_1c"`
	Address string `db:"address" json:"address"`
}

type FuelType struct {
	ID     int    `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Code1C string `db:"code_1c" json:"code_1c"`
}

type Card struct {
	ID            int     `db:"id" json:"id"`
	CardCode      string  `db:"card_code" json:"card_code"`
	ClientID      int     `db:"client_id" json:"client_id"`
	ClientName    string  `db:"client_name" json:"client_name,omitempty"`
	FuelTypeID    int     `db:"fuel_type_id" json:"fuel_type_id"`
	FuelType      string  `db:"fuel_type" json:"fuel_type,omitempty"`
	BalanceLiters float64 `db:"balance_liters" json:"balance_liters"`
	DailyLimit    float64 `db:"daily_limit" json:"daily_limit"`
	Status        string  `db:"status" json:"status"`
	BlockReason   string  `db:"block_reason" json:"block_reason,omitempty"`
	PinCode       string  `db:"pin_code" json:"pin_code,omitempty"`
}

type Operation struct {
	ID            int     `db:"id" json:"id"`
	FuelCardID    int     `db:"fuel_card_id" json:"fuel_card_id"`
	CardCode      string  `db:"card_code" json:"card_code"`
	StationName   string  `db:"station_name" json:"station_name"`
	OperationDate string  `db:"operation_date" json:"operation_date"`
	OperationType string  `db:"operation_type" json:"operation_type"`
	Quantity      float64 `db:"quantity" json:"quantity"`
	Price         float64 `db:"price" json:"price"`
	Amount        float64 `db:"amount" json:"amount"`
	Comment       string  `db:"comment" json:"comment"`
}

type RefuelRequest struct {
	CardCode    string  `json:"card_code" binding:"required"`
	PinCode     string  `json:"pin_code"`
	StationName string  `json:"station_name" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
	Price       float64 `json:"price" binding:"gte=0"`
}

type RefuelResult struct {
	OperationID   int     `json:"operation_id"`
	BalanceLiters float64 `json:"balance_liters"`
}

type CardStatus struct {
	CardCode      string  `json:"card_code"`
	Status        string  `json:"status"`
	BalanceLiters float64 `json:"balance_liters"`
	DailyLimit    float64 `json:"daily_limit"`
	FuelType      string  `json:"fuel_type"`
}
